package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

type testLoggable struct {
	ctx context.Context
}

func (l testLoggable) Ctx() context.Context { return l.ctx }

func TestLoggerTagsAndChaining(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(Config{Level: "debug", Output: buf, Service: "test"})

	ctx := context.WithValue(context.Background(), ConnIDKey, 3)
	ctx = context.WithValue(ctx, ChannelIDKey, 7)
	Infof(testLoggable{ctx}, "ran %s", "LIST")

	line := buf.String()
	for _, want := range []string{`"service":"test"`, `"conn":3`, `"channel":7`, `"ran LIST"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}

	buf.Reset()
	Base().Debug().Str("addr", "localhost:0").Msg("direct")
	if line := buf.String(); !strings.Contains(line, `"addr":"localhost:0"`) {
		t.Errorf("base logger line missing field: %s", line)
	}
}
