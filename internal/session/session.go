package session

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apierrors "github.com/diogo/forecastchat/internal/errors"
	"github.com/diogo/forecastchat/internal/models"
)

// Dialer opens WebSocket connections. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Event is delivered on the session's event channel in transport order
type Event struct {
	Kind  EventKind
	Frame models.Frame // set for EventFrame
	Err   error        // set for EventError
}

// Session owns exactly one connection for its lifetime.
// There is no reconnection: once closed, a session is terminal.
type Session struct {
	endpoint         string
	dialer           Dialer
	logger           *slog.Logger
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	events           chan Event

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Option configures a Session
type Option func(*Session)

// WithDialer replaces the default gorilla dialer
func WithDialer(d Dialer) Option {
	return func(s *Session) {
		s.dialer = d
	}
}

// WithHandshakeTimeout bounds the time spent in the opening handshake
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.handshakeTimeout = d
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session for endpoint. Nothing is dialed until Start.
func New(endpoint string, opts ...Option) *Session {
	s := &Session{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger:           slog.Default(),
		handshakeTimeout: 10 * time.Second,
		writeTimeout:     10 * time.Second,
		events:           make(chan Event, 64),
		state:            StateConnecting,
		done:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("endpoint", endpoint)
	return s
}

// Endpoint returns the URL the session dials
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Events returns the channel on which lifecycle events and frames arrive.
// It is closed once the session stops reading.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current connection state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start dials the endpoint and begins reading frames in the background.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return apierrors.ErrAlreadyStarted
	}
	if s.state.Closed() {
		s.mu.Unlock()
		return apierrors.ErrSessionClosed
	}
	s.started = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Send transmits text unmodified as a single text frame.
// Blank text and sends outside the open state are rejected locally.
func (s *Session) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return apierrors.ErrBlankInput
	}

	s.mu.Lock()
	state, conn := s.state, s.conn
	s.mu.Unlock()

	if state != StateOpen || conn == nil {
		return apierrors.ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return apierrors.NewConnectionError(s.endpoint, "write", err)
	}

	s.logger.Debug("sent command", "bytes", len(text))
	return nil
}

// Close tears the session down regardless of its state and waits for the
// reader to exit. No events are delivered after Close returns.
func (s *Session) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.transition(StateClosedNormal)
		conn, cancel, started := s.conn, s.cancel, s.started
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}

		if conn != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				closeErr = err
			}
		}

		if started {
			<-s.done
			// drop whatever the reader buffered before it stopped
			for range s.events {
			}
		} else {
			close(s.events)
			close(s.done)
		}

		s.logger.Info("session closed")
	})

	return closeErr
}

// run dials and then reads until the transport fails or the session closes
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	dialCtx := ctx
	if s.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.handshakeTimeout)
		defer cancel()
	}

	s.logger.Info("connecting")
	conn, _, err := s.dialer.DialContext(dialCtx, s.endpoint, nil)
	if err != nil {
		s.fail(ctx, nil, apierrors.NewConnectionError(s.endpoint, "dial", err))
		return
	}

	s.mu.Lock()
	if !s.transition(StateOpen) {
		// closed while dialing
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.logger.Info("connected")
	if !s.emit(ctx, Event{Kind: EventOpen}) {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.fail(ctx, conn, apierrors.NewConnectionError(s.endpoint, "read", err))
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", "error", err, "bytes", len(data))
			continue
		}
		if frame.PayloadErr != nil {
			s.logger.Warn("ignoring forecast series", "error", frame.PayloadErr)
		}

		if !s.emit(ctx, Event{Kind: EventFrame, Frame: frame}) {
			return
		}
	}
}

// fail moves the session to closed-error and reports err, unless a teardown
// already closed it.
func (s *Session) fail(ctx context.Context, conn *websocket.Conn, err error) {
	s.mu.Lock()
	ok := s.transition(StateClosedError)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if !ok {
		return
	}

	s.logger.Error("connection failed", "error", err)
	s.emit(ctx, Event{Kind: EventError, Err: err})
}

// emit delivers ev unless the session has been torn down
func (s *Session) emit(ctx context.Context, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// transition applies a state change; the caller must hold s.mu
func (s *Session) transition(to State) bool {
	if !CanTransition(s.state, to) {
		return false
	}
	s.logger.Debug("state transition", "from", s.state.String(), "to", to.String())
	s.state = to
	return true
}
