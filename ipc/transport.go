package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Transport moves envelopes between the bridge and the sidecar.
type Transport interface {
	ReadEnvelope() (Envelope, error)
	WriteEnvelope(env Envelope) error
	Close() error
}

// framedTransport speaks length-prefixed JSON over a stream (unix socket).
type framedTransport struct {
	conn io.ReadWriteCloser
}

func NewFramedTransport(conn net.Conn) Transport {
	return &framedTransport{conn: conn}
}

func (t *framedTransport) ReadEnvelope() (Envelope, error)  { return ReadEnvelope(t.conn) }
func (t *framedTransport) WriteEnvelope(env Envelope) error { return WriteEnvelope(t.conn, env) }
func (t *framedTransport) Close() error                     { return t.conn.Close() }

const wsWriteTimeout = 5 * time.Second

// wsTransport carries one envelope per websocket text frame.
type wsTransport struct {
	conn        *websocket.Conn
	readTimeout time.Duration
}

// NewWebsocketTransport wraps conn. With a positive readTimeout a session
// that sends nothing for that long is dropped; pings from the bridge count
// as activity, so a paused game can keep itself alive. Zero waits forever.
func NewWebsocketTransport(conn *websocket.Conn, readTimeout time.Duration) Transport {
	conn.SetReadLimit(MaxFrameSize)
	t := &wsTransport{conn: conn, readTimeout: readTimeout}
	if readTimeout > 0 {
		conn.SetPingHandler(func(data string) error {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(wsWriteTimeout))
			if errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			return err
		})
	}
	return t
}

func (t *wsTransport) ReadEnvelope() (Envelope, error) {
	if t.readTimeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))
	}
	_, msg, err := t.conn.ReadMessage()
	if err != nil {
		return Envelope{}, fmt.Errorf("read message: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

func (t *wsTransport) WriteEnvelope(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_ = t.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := t.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (t *wsTransport) Close() error {
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	return t.conn.Close()
}

// WebsocketHandler upgrades each request and hands the transport to serve,
// which owns it until it returns.
func WebsocketHandler(serve func(Transport), readTimeout time.Duration) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true }, // bridge runs locally
	}
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		serve(NewWebsocketTransport(conn, readTimeout))
	}
}
