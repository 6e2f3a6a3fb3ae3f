package mm0

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// The canonical fixture ships both as a testdata file and as a constant;
// keep them in sync.
func TestTestdataMatchesConstant(t *testing.T) {
	onDisk, err := os.ReadFile("testdata/prop.mm0")
	require.NoError(t, err)
	require.Equal(t, PropCalcSource, string(onDisk))
}
