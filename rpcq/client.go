package rpcq

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

// Caller performs a single RPCQ call. Implementations decode the reply's
// result into result, which may be nil to discard it.
type Caller interface {
	Call(ctx context.Context, method string, params, result any) error
}

// Dialer opens a Caller for an endpoint. Credentials may be nil.
type Dialer func(endpoint string, creds *Credentials) (Caller, error)

// Credentials are the Z85-encoded CURVE keys for an encrypted connection.
type Credentials struct {
	ClientPublic string
	ClientSecret string
	ServerPublic string
}

// ErrTimeout is returned when no reply arrives within the Client's timeout.
var ErrTimeout = stderrors.New("rpcq: timed out waiting for reply")

// pollInterval bounds how long a receive blocks before checking ctx.
const pollInterval = 100 * time.Millisecond

// Client is a Caller over a ZeroMQ DEALER socket. Calls on one Client are
// serialized. A call waits for its reply until ctx is done, or until the
// timeout set with SetTimeout has passed.
type Client struct {
	sock     *zmq.Socket
	poller   *zmq.Poller
	endpoint string
	timeout  time.Duration
	mu       sync.Mutex
}

// Dial connects a DEALER socket to endpoint, enabling CURVE when creds is
// non-nil and carries a server key.
func Dial(endpoint string, creds *Credentials) (*Client, error) {
	sock, err := zmq.NewSocket(zmq.DEALER)
	if err != nil {
		return nil, fmt.Errorf("create socket: %w", err)
	}
	if err := configure(sock, creds); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.Connect(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("connect %s: %w", endpoint, err)
	}
	poller := zmq.NewPoller()
	poller.Add(sock, zmq.POLLIN)

	Logger().Debug("rpcq connected",
		zap.String("endpoint", endpoint),
		zap.Bool("curve", creds != nil && creds.ServerPublic != ""))
	return &Client{
		sock:     sock,
		poller:   poller,
		endpoint: endpoint,
	}, nil
}

// DialCaller is a Dialer backed by Dial.
func DialCaller(endpoint string, creds *Credentials) (Caller, error) {
	return Dial(endpoint, creds)
}

// TimeoutDialer returns a Dialer whose clients give up waiting for a reply
// after d. A zero d waits until the call's context is done.
func TimeoutDialer(d time.Duration) Dialer {
	return func(endpoint string, creds *Credentials) (Caller, error) {
		c, err := Dial(endpoint, creds)
		if err != nil {
			return nil, err
		}
		c.SetTimeout(d)
		return c, nil
	}
}

func configure(sock *zmq.Socket, creds *Credentials) error {
	if err := sock.SetLinger(0); err != nil {
		return fmt.Errorf("set linger: %w", err)
	}
	if creds == nil || creds.ServerPublic == "" {
		return nil
	}
	if err := sock.SetCurvePublickey(creds.ClientPublic); err != nil {
		return fmt.Errorf("set public key: %w", err)
	}
	if err := sock.SetCurveSecretkey(creds.ClientSecret); err != nil {
		return fmt.Errorf("set secret key: %w", err)
	}
	if err := sock.SetCurveServerkey(creds.ServerPublic); err != nil {
		return fmt.Errorf("set server public key: %w", err)
	}
	return nil
}

// SetTimeout bounds how long Call waits for a reply. Zero, the default,
// means no bound beyond the call's context.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Call sends a request and waits for the matching reply.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	req, err := NewRequest(method, params)
	if err != nil {
		return err
	}
	data, err := req.Encode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.sock.SendBytes(data, 0); err != nil {
		return fmt.Errorf("send %s to %s: %w", method, c.endpoint, err)
	}
	Logger().Debug("rpcq request sent",
		zap.String("method", method),
		zap.String("id", req.ID),
		zap.Int("bytes", len(data)))

	raw, err := c.receive(ctx, c.timeout)
	if err != nil {
		return fmt.Errorf("receive %s from %s: %w", method, c.endpoint, err)
	}
	return DecodeReply(raw, method, req.ID, result)
}

func (c *Client) receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wait, ok := nextWait(deadline, time.Now())
		if !ok {
			return nil, ErrTimeout
		}
		polled, err := c.poller.Poll(wait)
		if err != nil {
			return nil, err
		}
		if len(polled) == 0 {
			continue
		}
		return c.sock.RecvBytes(0)
	}
}

// nextWait returns how long to poll before checking the context again. A
// zero deadline never expires.
func nextWait(deadline, now time.Time) (time.Duration, bool) {
	if deadline.IsZero() {
		return pollInterval, true
	}
	wait := deadline.Sub(now)
	if wait <= 0 {
		return 0, false
	}
	return min(wait, pollInterval), true
}

// Close releases the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.Close()
}
