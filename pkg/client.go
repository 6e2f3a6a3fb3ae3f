package mmcheck

import (
	"encoding/base64"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	clog "mmcheck/pkg/log"
)

type Client struct {
	WebSocketConn    *websocket.Conn
	URL              string
	NextStatementID  int
	StatementsToSend chan *StatementRequest
	IncomingMessages chan *ChannelMessage
	Channels         map[int]*ClientChannel
}

type StatementRequest struct {
	Statement  string
	ResultChan chan *ClientChannel
}

func NewClient(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	clientConn := &Client{
		NextStatementID:  0,
		WebSocketConn:    conn,
		URL:              url,
		StatementsToSend: make(chan *StatementRequest),
		IncomingMessages: make(chan *ChannelMessage),
		Channels:         map[int]*ClientChannel{},
	}
	go clientConn.handleStatements()
	go clientConn.handleIncoming()
	return clientConn, nil
}

func (conn *Client) Close() error {
	return conn.WebSocketConn.Close()
}

func (conn *Client) handleStatements() {
	for {
		select {
		case request := <-conn.StatementsToSend:
			channel := &ClientChannel{
				Conn:        conn,
				StatementID: conn.NextStatementID,
				Statement:   request.Statement,
				Updates:     make(chan *MessageToClient),
			}
			conn.NextStatementID++
			conn.Channels[channel.StatementID] = channel
			request.ResultChan <- channel
			conn.WebSocketConn.WriteMessage(websocket.TextMessage, []byte(request.Statement))

		case incomingMsg := <-conn.IncomingMessages:
			channel := conn.Channels[incomingMsg.StatementID]
			channel.Updates <- incomingMsg.Message
		}
	}
}

func (conn *Client) handleIncoming() {
	defer conn.WebSocketConn.Close()
	for {
		parsedMessage := &ChannelMessage{}
		if err := conn.WebSocketConn.ReadJSON(&parsedMessage); err != nil {
			clog.Base().Debug().Err(err).Msg("client read loop exiting")
			return
		}
		conn.IncomingMessages <- parsedMessage
	}
}

type ClientChannel struct {
	Conn        *Client
	StatementID int
	Statement   string
	Updates     chan *MessageToClient
}

func (conn *Client) Statement(statement string) *ClientChannel {
	resultChan := make(chan *ClientChannel)
	conn.StatementsToSend <- &StatementRequest{
		ResultChan: resultChan,
		Statement:  statement,
	}
	return <-resultChan
}

// Watch runs a watching statement, returning a channel of updates.
func (conn *Client) Watch(statement string) (*ClientChannel, error) {
	channel := conn.Statement(statement)
	update := <-channel.Updates
	if update.ErrorMessage != nil {
		return nil, errors.New(*update.ErrorMessage)
	}
	if update.AckMessage == nil && update.InitialResultMessage == nil {
		return nil, errors.New("watch result neither error, ack, nor initial result")
	}
	return channel, nil
}

// Query runs a statement that responds with an initial result.
func (conn *Client) Query(query string) (*InitialResult, error) {
	resultChan := conn.Statement(query)
	update := <-resultChan.Updates
	if update.ErrorMessage != nil {
		return nil, errors.New(*update.ErrorMessage)
	} else if update.InitialResultMessage != nil {
		return update.InitialResultMessage, nil
	}
	return nil, errors.New("query result neither error nor initial result")
}

// Exec runs a statement that responds with an ack.
func (conn *Client) Exec(statement string) (string, error) {
	resultChan := conn.Statement(statement)
	update := <-resultChan.Updates
	if update.ErrorMessage != nil {
		return "", errors.New(*update.ErrorMessage)
	} else if update.AckMessage != nil {
		return *update.AckMessage, nil
	}
	return "", errors.New("exec result neither error nor ack")
}

// CheckProof is a convenience wrapper building a CHECK statement from
// raw proof and declaration file contents.
func (conn *Client) CheckProof(name string, proof []byte, spec string) (string, error) {
	stmt := fmt.Sprintf("CHECK %s %q", name, base64.StdEncoding.EncodeToString(proof))
	if spec != "" {
		stmt += fmt.Sprintf(" SPEC %q", base64.StdEncoding.EncodeToString([]byte(spec)))
	}
	return conn.Exec(stmt)
}
