package mmcheck

import (
	"context"

	"github.com/gorilla/websocket"

	clog "mmcheck/pkg/log"
)

type connectionID int

type connection struct {
	clientConn    *websocket.Conn
	id            connectionID
	database      *Database
	channels      map[int]*channel // keyed by statement id (aka channel id)
	nextChannelID int
	messages      chan *ChannelMessage
	done          chan struct{} // closed when the connection is torn down
	context       context.Context
}

func newConnection(wsConn *websocket.Conn, db *Database, ID int) *connection {
	ctx := context.WithValue(db.ctx, clog.ConnIDKey, ID)
	conn := &connection{
		clientConn:    wsConn,
		id:            connectionID(ID),
		database:      db,
		channels:      make(map[int]*channel),
		nextChannelID: 0,
		messages:      make(chan *ChannelMessage),
		done:          make(chan struct{}),
		context:       ctx,
	}
	go conn.writeMessagesToSocket()
	return conn
}

func (conn *connection) Ctx() context.Context {
	return conn.context
}

func (conn *connection) writeMessagesToSocket() {
	for {
		select {
		case msg := <-conn.messages:
			if err := conn.clientConn.WriteJSON(msg); err != nil {
				clog.Error(conn, "error writing msg to conn", err)
				conn.discardMessages()
				return
			}
		case <-conn.done:
			return
		}
	}
}

// discardMessages keeps draining senders on a broken socket until the
// read loop tears the connection down.
func (conn *connection) discardMessages() {
	for {
		select {
		case <-conn.messages:
		case <-conn.done:
			return
		}
	}
}

func (conn *connection) handleStatements() {
	clog.Infof(conn, "initiated from %s", conn.clientConn.RemoteAddr())
	for {
		_, message, readErr := conn.clientConn.ReadMessage()
		if readErr != nil {
			clog.Infof(conn, "terminated: %v", readErr)
			conn.database.removeConn(conn)
			return
		}
		conn.addChannel(string(message))
	}
}

func (conn *connection) addChannel(statement string) {
	channel := newChannel(statement, conn.nextChannelID, conn)
	conn.nextChannelID++
	conn.channels[channel.id] = channel

	channel.handleStatement()
}

func (conn *connection) removeChannel(channel *channel) {
	delete(conn.channels, channel.id)
}
