package transport

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/host"
)

// Server is the host half of the websocket binding: an http.Handler that
// upgrades each connection into a bridge session served by a dispatcher.
type Server struct {
	disp     *host.Dispatcher
	upgrader websocket.Upgrader
}

// NewServer creates a server feeding invocations into disp.
func NewServer(disp *host.Dispatcher) *Server {
	return &Server{
		disp: disp,
		upgrader: websocket.Upgrader{
			// The bridge binds to loopback and the shell's own webview is
			// the only expected client; origin checks stay with the shell.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := &session{
		disp: s.disp,
		conn: conn,
	}
	sess.run(r.Context())
}

// session is one connected caller. Invocations are serviced in read order;
// pushes and results share a single write lock, so each direction of the
// socket stays an ordered queue.
type session struct {
	disp *host.Dispatcher
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Logger().Warn("bridge session ended abnormally", zap.Error(err))
			}
			return
		}

		m, err := decodeMessage(data)
		if err != nil {
			Logger().Warn("dropping undecodable message", zap.Error(err))
			continue
		}
		if m.Type != typeInvoke {
			Logger().Warn("unexpected message type from caller", zap.String("type", m.Type))
			continue
		}
		s.handleInvoke(ctx, m)
	}
}

func (s *session) handleInvoke(ctx context.Context, m *message) {
	reply := &message{Type: typeResult, ID: m.ID}

	args, err := decodeArgs(m.Args)
	if err != nil {
		reply.Error = "malformed arguments: " + err.Error()
		s.send(reply)
		return
	}

	result, err := s.disp.Dispatch(ctx, m.Op, args, m.Headers, s.push)
	if err != nil {
		reply.Error = err.Error()
		s.send(reply)
		return
	}

	raw, err := encodeValue(result)
	if err != nil {
		reply.Error = "unencodable result: " + err.Error()
		s.send(reply)
		return
	}
	reply.Result = raw
	s.send(reply)
}

// push is the session's frame sink: host-to-caller deliveries for channels
// and event listeners registered on this connection.
func (s *session) push(id callback.ID, payload any) {
	raw, err := encodeValue(payload)
	if err != nil {
		Logger().Warn("dropping unencodable push payload",
			zap.Uint32("callback", uint32(id)),
			zap.Error(err))
		return
	}
	s.send(&message{
		Type:     typePush,
		Callback: uint32(id),
		Payload:  raw,
	})
}

func (s *session) send(m *message) {
	data, err := encodeMessage(m)
	if err != nil {
		Logger().Warn("failed to encode message", zap.Error(err))
		return
	}

	s.writeMu.Lock()
	err = s.conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
	if err != nil {
		Logger().Warn("failed to write message", zap.Error(err))
	}
}

func decodeArgs(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var args map[string]any
	if err := wire.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}
