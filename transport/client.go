package transport

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	bridge "github.com/filipecabaco/ex-tauri-sub000"
	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/errors"
)

// Client is the caller half of the websocket binding. It implements
// bridge.Invoker; host pushes are dispatched into the callback registry it
// was dialed with. Safe for concurrent use.
type Client struct {
	url string
	reg *callback.Registry

	newBackoff func() backoff.BackOff

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]*pendingCall
	closed  bool

	writeMu sync.Mutex

	// pushes decouples callback dispatch from the read loop. A handler may
	// re-enter Invoke, which needs the read loop free to deliver the result;
	// the queue keeps push delivery ordered without holding the loop.
	pushes chan *message

	done chan struct{}
}

type pendingCall struct {
	op   string
	done chan callResult
}

type callResult struct {
	value any
	err   error
}

// ClientOption adjusts a Dial.
type ClientOption func(*Client)

// WithBackoff replaces the reconnect policy. The factory is called once per
// connection attempt sequence.
func WithBackoff(factory func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackoff = factory
	}
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Dial connects to a bridge host and starts the read loop.
func Dial(ctx context.Context, url string, reg *callback.Registry, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:        url,
		reg:        reg,
		newBackoff: defaultBackoff,
		pending:    make(map[string]*pendingCall),
		pushes:     make(chan *message, 256),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	go c.readLoop(conn)
	go c.dispatchLoop()
	return c, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	var conn *websocket.Conn
	operation := func() error {
		var err error
		conn, _, err = websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(c.newBackoff(), ctx)); err != nil {
		return nil, errors.New(errors.PhaseTransport, errors.KindUnavailable).
			Detail("dial %s", c.url).
			Cause(err).
			Build()
	}
	return conn, nil
}

// Invoke implements bridge.Invoker.
func (c *Client) Invoke(ctx context.Context, op string, args map[string]any, opts ...bridge.InvokeOption) (any, error) {
	o := bridge.ApplyOptions(opts)

	rawArgs, err := encodeValue(bridge.EncodeArgs(args))
	if err != nil {
		return nil, errors.Decode(errors.PhaseTransport, err)
	}

	id := uuid.NewString()
	call := &pendingCall{op: op, done: make(chan callResult, 1)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.Closed(errors.PhaseTransport, "client is closed")
	}
	conn := c.conn
	c.pending[id] = call
	c.mu.Unlock()

	data, err := encodeMessage(&message{
		Type:    typeInvoke,
		ID:      id,
		Op:      op,
		Args:    rawArgs,
		Headers: o.Headers,
	})
	if err != nil {
		c.forget(id)
		return nil, errors.Decode(errors.PhaseTransport, err)
	}
	if err := c.write(conn, data); err != nil {
		c.forget(id)
		return nil, errors.New(errors.PhaseTransport, errors.KindClosed).
			Op(op).
			Cause(err).
			Build()
	}

	select {
	case r := <-call.done:
		return r.value, r.err
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case <-c.done:
		return nil, errors.Closed(errors.PhaseTransport, "connection closed while waiting for "+op)
	}
}

// Available implements bridge.Prober.
func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.conn != nil
}

// Close shuts the client down. In-flight invocations fail with a closed
// error; registered callbacks are left to their owners.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	c.failPending(errors.Closed(errors.PhaseTransport, "client closed"))
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) write(conn *websocket.Conn, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]*pendingCall)
	c.mu.Unlock()

	for _, call := range pending {
		call.done <- callResult{err: err}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !c.reconnect() {
				return
			}
			c.mu.Lock()
			conn = c.conn
			c.mu.Unlock()
			continue
		}

		m, err := decodeMessage(data)
		if err != nil {
			Logger().Warn("dropping undecodable message", zap.Error(err))
			continue
		}
		c.handle(m)
	}
}

func (c *Client) handle(m *message) {
	switch m.Type {
	case typeResult:
		c.mu.Lock()
		call, ok := c.pending[m.ID]
		delete(c.pending, m.ID)
		c.mu.Unlock()

		if !ok {
			Logger().Warn("result for unknown invocation id", zap.String("id", m.ID))
			return
		}
		if m.Error != "" {
			call.done <- callResult{err: errors.New(errors.PhaseInvoke, errors.KindRejected).
				Op(call.op).
				Detail(m.Error).
				Build()}
			return
		}
		value, err := decodeValue(m.Result)
		if err != nil {
			call.done <- callResult{err: errors.Decode(errors.PhaseTransport, err)}
			return
		}
		call.done <- callResult{value: value}

	case typePush:
		select {
		case c.pushes <- m:
		case <-c.done:
		}

	default:
		Logger().Warn("unknown message type", zap.String("type", m.Type))
	}
}

// dispatchLoop delivers queued pushes into the registry, one at a time in
// arrival order.
func (c *Client) dispatchLoop() {
	for {
		select {
		case m := <-c.pushes:
			payload, err := decodeValue(m.Payload)
			if err != nil {
				Logger().Warn("dropping undecodable push payload",
					zap.Uint32("callback", m.Callback),
					zap.Error(err))
				continue
			}
			c.reg.Dispatch(callback.ID(m.Callback), payload)
		case <-c.done:
			return
		}
	}
}

// reconnect re-establishes the connection after a read failure. In-flight
// invocations fail; live listeners and channels keep their callback ids and
// resume receiving pushes on the new connection. Returns false when the
// client is closed or the backoff gives up.
func (c *Client) reconnect() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	c.failPending(errors.Closed(errors.PhaseTransport, "connection lost"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	conn, err := c.dial(ctx)
	if err != nil {
		Logger().Warn("reconnect failed, closing client", zap.Error(err))
		c.Close()
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return false
	}
	c.conn = conn
	c.mu.Unlock()

	Logger().Info("reconnected to bridge host", zap.String("url", c.url))
	return true
}
