package mmcheck

import (
	"context"
	"fmt"

	clog "mmcheck/pkg/log"
)

type channelID int

type channel struct {
	connection   *connection
	rawStatement string
	id           int // unique within containing connection

	context context.Context
}

func (channel *channel) Ctx() context.Context {
	return channel.context
}

func newChannel(rawStatement string, ID int, conn *connection) *channel {
	ctx := context.WithValue(conn.Ctx(), clog.ChannelIDKey, ID)
	channel := &channel{
		connection:   conn,
		rawStatement: rawStatement,
		id:           ID,
		context:      ctx,
	}
	return channel
}

func (channel *channel) handleStatement() {
	done, err := channel.validateAndRun()
	if err != nil {
		clog.Error(channel, "statement failed", err)
		channel.writeErrorMessage(err)
	}
	// Remove this channel if we're done.
	if done {
		channel.connection.removeChannel(channel)
	}
}

// validateAndRun returns an error if there was one, and a boolean
// representing whether this statement is done (i.e. whether a watcher
// is still registered on this channel)
func (channel *channel) validateAndRun() (bool, error) {
	// Parse what was sent to us.
	statement, err := Parse(channel.rawStatement)
	if err != nil {
		return true, &parseError{error: err}
	}

	// Validate statement.
	if validationErr := channel.connection.database.validateStatement(statement); validationErr != nil {
		return true, &validationError{error: validationErr}
	}
	return channel.run(statement)
}

// run runs the statement, returning an error if there was one
// and a boolean indicating whether the statement is "done"
// (only false if a watcher stays registered on this channel)
func (channel *channel) run(statement *Statement) (bool, error) {
	conn := channel.connection
	switch {
	case statement.Check != nil:
		return true, conn.executeCheck(statement.Check, channel)
	case statement.Get != nil:
		return !statement.Get.Live, conn.executeGet(statement.Get, channel)
	case statement.Axioms != nil:
		return true, conn.executeAxioms(statement.Axioms, channel)
	case statement.List != nil:
		return true, conn.executeList(channel)
	case statement.Drop != nil:
		return true, conn.executeDrop(statement.Drop, channel)
	case statement.Watch != nil:
		return false, conn.executeWatch(statement.Watch, channel)
	}
	panic(fmt.Sprintf("unknown statement type %v", statement))
}

type ChannelMessage struct {
	StatementID int              `json:"StatementID"`
	Message     *MessageToClient `json:"Message"`
}

type MessageToClientType int

const (
	ErrorMessage MessageToClientType = iota
	AckMessage
	InitialResultMessage
	EnvUpdateMessage
)

func (m MessageToClientType) String() string {
	switch m {
	case ErrorMessage:
		return "error"
	case AckMessage:
		return "ack"
	case InitialResultMessage:
		return "initial_result"
	case EnvUpdateMessage:
		return "env_update"
	}
	panic(fmt.Errorf("unknown type %d", m))
}

func (m MessageToClientType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MessageToClientType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*m = ErrorMessage
	case "ack":
		*m = AckMessage
	case "initial_result":
		*m = InitialResultMessage
	case "env_update":
		*m = EnvUpdateMessage
	default:
		return fmt.Errorf("unknown message type %q", text)
	}
	return nil
}

type MessageToClient struct {
	Type         MessageToClientType `json:"type"`
	ErrorMessage *string             `json:"error,omitempty"`
	AckMessage   *string             `json:"ack,omitempty"`
	// data
	InitialResultMessage *InitialResult `json:"initial_result,omitempty"`
	EnvUpdateMessage     *EnvUpdate     `json:"env_update,omitempty"`
}

// InitialResult is the response to a GET, AXIOMS, or LIST statement.
type InitialResult struct {
	Env     *EnvInfo     `json:"env,omitempty"`
	Envs    []*EnvInfo   `json:"envs,omitempty"`
	Asserts []AssertInfo `json:"asserts,omitempty"`
	Listing string       `json:"listing,omitempty"`
}

// AssertInfo is one axiom or theorem of an environment, with its
// hypotheses and conclusion rendered as s-expressions.
type AssertInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Hyps    []string `json:"hyps,omitempty"`
	Concl   string   `json:"concl"`
	Binders int      `json:"binders"`
}

type EnvUpdateAction string

const (
	EnvChecked EnvUpdateAction = "checked"
	EnvDropped EnvUpdateAction = "dropped"
)

// EnvUpdate is pushed to watchers when an environment is checked or dropped.
type EnvUpdate struct {
	Action EnvUpdateAction `json:"action"`
	Env    *EnvInfo        `json:"env"`
}

func (channel *channel) writeErrorMessage(err error) {
	errStr := err.Error()
	channel.writeMessage(&MessageToClient{
		Type:         ErrorMessage,
		ErrorMessage: &errStr,
	})
}

func (channel *channel) writeAckMessage(message string) {
	channel.writeMessage(&MessageToClient{
		Type:       AckMessage,
		AckMessage: &message,
	})
}

func (channel *channel) writeInitialResult(result *InitialResult) {
	channel.writeMessage(&MessageToClient{
		Type:                 InitialResultMessage,
		InitialResultMessage: result,
	})
}

func (channel *channel) writeEnvUpdate(update *EnvUpdate) {
	channel.writeMessage(&MessageToClient{
		Type:             EnvUpdateMessage,
		EnvUpdateMessage: update,
	})
}

func (channel *channel) writeMessage(message *MessageToClient) {
	msg := &ChannelMessage{
		StatementID: channel.id,
		Message:     message,
	}
	// The connection can go away while a watcher is mid-notify; don't
	// hang on a message nobody will drain.
	select {
	case channel.connection.messages <- msg:
	case <-channel.connection.done:
	}
}
