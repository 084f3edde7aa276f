// Package websocket implements [converse.Backend] over the backend's
// turn-based websocket endpoint: one binary frame of audio out, one JSON
// frame back.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/converse"
	convhttp "github.com/fwojciec/converse/http"
	"github.com/gorilla/websocket"
)

const conversePath = "/ws/converse"

var _ converse.Backend = (*Client)(nil)

// Client holds one connection and redials after any failure.
type Client struct {
	endpoint string
	dialer   *websocket.Dialer
	header   http.Header

	mu   sync.Mutex // serializes exchanges; one turn in flight per connection
	conn *websocket.Conn
}

// Option configures a [Client].
type Option func(*Client)

// WithDialer sets the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithHeader sets headers sent with the handshake.
func WithHeader(h http.Header) Option {
	return func(c *Client) { c.header = h }
}

// New creates a [Client] for the backend at baseURL. http and https map to
// ws and wss.
func New(baseURL string, opts ...Option) (*Client, error) {
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{endpoint: endpoint, dialer: websocket.DefaultDialer}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Endpoint derives the websocket URL of the converse endpoint from an HTTP
// backend base.
func Endpoint(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("websocket: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("websocket: unsupported scheme %q: %w", u.Scheme, converse.ErrValidation)
	}
	if u.Host == "" {
		return "", fmt.Errorf("websocket: base url has no host: %w", converse.ErrValidation)
	}
	return u.ResolveReference(&url.URL{Path: conversePath}).String(), nil
}

// Converse sends audio as one binary message and waits for the JSON reply.
// Any transport failure drops the connection. When the failure happens on a
// connection kept from an earlier turn, the audio is resent once over a fresh
// one, since the server may have closed it between turns. A reply carrying an
// error also drops the connection: the backend hangs up after reporting one.
func (c *Client) Converse(ctx context.Context, audio converse.Audio) (converse.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.send(ctx, audio.Data)
	if err != nil {
		return converse.Result{}, fmt.Errorf("websocket: %w", err)
	}

	result, err := convhttp.DecodeResult(data)
	if err != nil {
		if errors.Is(err, converse.ErrBackend) {
			c.drop()
		}
		return converse.Result{}, fmt.Errorf("websocket: %w", err)
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, audio []byte) ([]byte, error) {
	reused := c.conn != nil
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	data, err := c.exchange(ctx, conn, audio)
	if err == nil {
		return data, nil
	}
	c.drop()
	if ctx.Err() != nil {
		return nil, errors.Join(ctx.Err(), err)
	}
	if !reused {
		return nil, err
	}

	conn, err = c.connect(ctx)
	if err != nil {
		return nil, err
	}
	data, err = c.exchange(ctx, conn, audio)
	if err != nil {
		c.drop()
		if ctx.Err() != nil {
			err = errors.Join(ctx.Err(), err)
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) exchange(ctx context.Context, conn *websocket.Conn, audio []byte) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(dl)
		_ = conn.SetReadDeadline(dl)
		defer func() {
			_ = conn.SetWriteDeadline(time.Time{})
			_ = conn.SetReadDeadline(time.Time{})
		}()
	}
	// Unblock a pending read when ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}
	typ, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
		return nil, fmt.Errorf("unexpected message type %d", typ)
	}
	return data, nil
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, c.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w", c.endpoint, &converse.BackendError{StatusCode: resp.StatusCode, Message: err.Error()})
		}
		return nil, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	c.conn = conn
	return conn, nil
}

func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Close sends a close frame and releases the connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}
