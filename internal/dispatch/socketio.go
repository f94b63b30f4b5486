package dispatch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/fields"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOConfig describes the connection to the external runtime worker
// pool.
type SocketIOConfig struct {
	// URL of the runtime, e.g. "ws://runtime:3000/socket.io".
	URL string
	// Namespace defaults to "/".
	Namespace string
	// Event is the event name requests are emitted under. Defaults to
	// "task:run".
	Event string
	// Workers is the size of the runtime's worker pool.
	Workers            int
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

func (c SocketIOConfig) withDefaults() SocketIOConfig {
	if c.Namespace == "" {
		c.Namespace = "/"
	}
	if c.Event == "" {
		c.Event = "task:run"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 15 * time.Second
	}
	return c
}

// emitter is the subset of *socket.Socket used for requests.
type emitter interface {
	Emit(ev string, args ...any) error
	Connected() bool
	Id() string
}

// SocketIO dispatches tasks to an external runtime over a socket.io
// connection. Each request is one event; the runtime answers through the
// event's acknowledgement with {"outputs": {...}} or {"error": "..."}.
type SocketIO struct {
	cfg    SocketIOConfig
	client emitter
	close  func()
}

// DialSocketIO connects to the runtime and waits for the connection to be
// established.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIO, error) {
	cfg = cfg.withDefaults()
	logger := ctxlog.FromContext(ctx).With("runtime", cfg.URL)
	logger.Info("Connecting to runtime...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse runtime URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetTimeout(cfg.ConnectTimeout)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(cfg.ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.ConnectTimeout)
	}

	logger.Info("Connected to runtime.", "sid", io.Id(), "workers", cfg.Workers)
	return &SocketIO{cfg: cfg, client: io, close: func() { io.Disconnect() }}, nil
}

// Capacity implements Sized.
func (s *SocketIO) Capacity() int { return s.cfg.Workers }

// Close disconnects from the runtime.
func (s *SocketIO) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

type ackResult struct {
	outputs fields.Fields
	err     error
}

// Dispatch emits the request and waits for the runtime's acknowledgement or
// for ctx to end.
func (s *SocketIO) Dispatch(ctx context.Context, req Request) (fields.Fields, error) {
	if !s.client.Connected() {
		return nil, ErrNotConnected
	}
	logger := ctxlog.FromContext(ctx).With("sid", s.client.Id(), "task", req.Task)

	in, err := req.Inputs.ToInterface()
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}
	payload := map[string]any{
		"node":    req.Node.String(),
		"task":    req.Task,
		"service": req.Service,
		"inputs":  in,
	}

	done := make(chan ackResult, 1)
	ack := func(args []any, err error) {
		if err != nil {
			done <- ackResult{err: err}
			return
		}
		done <- decodeAck(args)
	}

	logger.Debug("Emitting task request.", "event", s.cfg.Event)
	if err := s.client.Emit(s.cfg.Event, payload, ack); err != nil {
		return nil, fmt.Errorf("failed to emit task request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Debug("Received task result.", "outputs", len(res.outputs))
		return res.outputs, nil
	}
}

// decodeAck interprets the runtime's acknowledgement arguments.
func decodeAck(args []any) ackResult {
	if len(args) == 0 || args[0] == nil {
		return ackResult{outputs: fields.Fields{}}
	}
	body, ok := args[0].(map[string]any)
	if !ok {
		return ackResult{err: fmt.Errorf("unexpected runtime response of type %T", args[0])}
	}
	if msg, ok := body["error"].(string); ok && msg != "" {
		return ackResult{err: fmt.Errorf("runtime: %s", msg)}
	}
	out, err := fields.FromInterface(body["outputs"])
	if err != nil {
		return ackResult{err: fmt.Errorf("failed to decode runtime outputs: %w", err)}
	}
	return ackResult{outputs: out}
}
