package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	apierrors "github.com/diogo/forecastchat/internal/errors"
)

const initialForecast = `{"type": "forecast", "historical": [{"date": "2024-01-01", "steel": 1, "wood": 2, "glass": 3}], "forecast": [{"date": "2024-01-02", "steel": 4, "wood": 5, "glass": 6}]}`

// startBackend starts an in-process backend that hands every upgraded
// connection to handler.
func startBackend(handler func(conn *websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// newTestServer starts a backend for the duration of the test and returns its ws:// URL
func newTestServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	srv := startBackend(handler)
	t.Cleanup(srv.Close)
	return wsURL(srv)
}

// drain reads until the peer goes away
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		if !ok {
			t.Fatal("event channel closed unexpectedly")
		}
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func waitState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State() = %s, want %s", s.State(), want)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateConnecting, StateOpen, true},
		{StateConnecting, StateClosedError, true},
		{StateConnecting, StateClosedNormal, true},
		{StateOpen, StateClosedError, true},
		{StateOpen, StateClosedNormal, true},
		{StateOpen, StateConnecting, false},
		{StateOpen, StateOpen, false},
		{StateClosedError, StateOpen, false},
		{StateClosedError, StateClosedNormal, false},
		{StateClosedNormal, StateOpen, false},
		{StateClosedNormal, StateClosedError, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateClosedError.String() != "closed-error" {
		t.Errorf("String() = %s", StateClosedError.String())
	}
	if State(42).String() != "unknown" {
		t.Errorf("String() = %s", State(42).String())
	}
	if !StateClosedNormal.Closed() || StateOpen.Closed() {
		t.Error("Closed() mismatch")
	}
}

func TestSessionOpenAndInitialFrame(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(initialForecast))
		drain(conn)
	})

	s := New(url)
	defer s.Close()

	if s.State() != StateConnecting {
		t.Fatalf("initial State() = %s, want connecting", s.State())
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if ev := nextEvent(t, s); ev.Kind != EventOpen {
		t.Fatalf("first event = %s, want open", ev.Kind)
	}
	if s.State() != StateOpen {
		t.Errorf("State() = %s, want open", s.State())
	}

	ev := nextEvent(t, s)
	if ev.Kind != EventFrame {
		t.Fatalf("second event = %s, want frame", ev.Kind)
	}
	if ev.Frame.Payload == nil {
		t.Fatal("expected forecast payload")
	}
	if len(ev.Frame.Payload.Historical) != 1 || len(ev.Frame.Payload.Forecast) != 1 {
		t.Errorf("payload lengths = %d/%d", len(ev.Frame.Payload.Historical), len(ev.Frame.Payload.Forecast))
	}
}

func TestSessionSendTransmitsUnmodified(t *testing.T) {
	received := make(chan string, 1)
	url := newTestServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(data)
		drain(conn)
	})

	s := New(url)
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	nextEvent(t, s)

	text := "  Increase steel by 20% next week  "
	if err := s.Send(text); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	select {
	case got := <-received:
		if got != text {
			t.Errorf("server received %q, want %q", got, text)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server never received the command")
	}
}

func TestSessionSendRejected(t *testing.T) {
	s := New("ws://127.0.0.1:1/ws")
	defer s.Close()

	if err := s.Send("raise steel"); !errors.Is(err, apierrors.ErrNotConnected) {
		t.Errorf("Send() before Start = %v, want ErrNotConnected", err)
	}

	for _, blank := range []string{"", "   ", "\t\n"} {
		if err := s.Send(blank); !errors.Is(err, apierrors.ErrBlankInput) {
			t.Errorf("Send(%q) = %v, want ErrBlankInput", blank, err)
		}
	}
}

func TestSessionDropsMalformedFrames(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`[1, 2, 3]`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message": "first"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message": "second"}`))
		drain(conn)
	})

	s := New(url)
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	nextEvent(t, s)

	for _, want := range []string{"first", "second"} {
		ev := nextEvent(t, s)
		if ev.Kind != EventFrame || ev.Frame.Message != want {
			t.Fatalf("event = %s %q, want frame %q", ev.Kind, ev.Frame.Message, want)
		}
	}
	if s.State() != StateOpen {
		t.Errorf("State() = %s after malformed frames, want open", s.State())
	}
}

func TestSessionTransportError(t *testing.T) {
	url := newTestServer(t, func(conn *websocket.Conn) {
		// drop the TCP connection without a close handshake
		_ = conn.UnderlyingConn().Close()
	})

	s := New(url)
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if ev := nextEvent(t, s); ev.Kind != EventOpen {
		t.Fatalf("first event = %s, want open", ev.Kind)
	}

	ev := nextEvent(t, s)
	if ev.Kind != EventError {
		t.Fatalf("event = %s, want error", ev.Kind)
	}
	if !apierrors.IsConnectionError(ev.Err) {
		t.Errorf("event error = %v, want ConnectionError", ev.Err)
	}
	if s.State() != StateClosedError {
		t.Errorf("State() = %s, want closed-error", s.State())
	}
	if err := s.Send("raise steel"); !errors.Is(err, apierrors.ErrNotConnected) {
		t.Errorf("Send() after failure = %v, want ErrNotConnected", err)
	}

	if _, ok := <-s.Events(); ok {
		t.Error("expected event channel to be closed after failure")
	}
}

func TestSessionDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := New("ws://" + addr + "/ws")
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	ev := nextEvent(t, s)
	if ev.Kind != EventError {
		t.Fatalf("event = %s, want error", ev.Kind)
	}
	var connErr *apierrors.ConnectionError
	if !errors.As(ev.Err, &connErr) || connErr.Op != "dial" {
		t.Errorf("event error = %v, want dial ConnectionError", ev.Err)
	}
	if s.State() != StateClosedError {
		t.Errorf("State() = %s, want closed-error", s.State())
	}
}

func TestSessionCloseTeardown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	serverSawClose := make(chan struct{})
	srv := startBackend(func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(initialForecast))
		for i := 0; i < 5; i++ {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message": "late"}`))
		}
		drain(conn)
		close(serverSawClose)
	})
	defer srv.Close()

	s := New(wsURL(srv))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	nextEvent(t, s)
	waitState(t, s, StateOpen)

	// let the initial forecast and the late replies sit in the buffer
	deadline := time.Now().Add(3 * time.Second)
	for len(s.Events()) < 6 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if s.State() != StateClosedNormal {
		t.Errorf("State() = %s, want closed-normal", s.State())
	}

	delivered := 0
	for range s.Events() {
		delivered++
	}
	if delivered != 0 {
		t.Errorf("events delivered after Close returned: %d, want 0", delivered)
	}

	select {
	case <-serverSawClose:
	case <-time.After(3 * time.Second):
		t.Error("server never observed the socket closing")
	}

	if err := s.Send("raise steel"); !errors.Is(err, apierrors.ErrNotConnected) {
		t.Errorf("Send() after Close = %v, want ErrNotConnected", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestSessionCloseDuringFailureKeepsErrorState(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := New("ws://" + addr + "/ws")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	nextEvent(t, s)

	if err := s.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if s.State() != StateClosedError {
		t.Errorf("State() = %s, want closed-error to be terminal", s.State())
	}
}

func TestSessionStartTwice(t *testing.T) {
	url := newTestServer(t, drain)

	s := New(url)
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, apierrors.ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
}

func TestSessionCloseBeforeStart(t *testing.T) {
	s := New("ws://127.0.0.1:1/ws")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if s.State() != StateClosedNormal {
		t.Errorf("State() = %s, want closed-normal", s.State())
	}
	if _, ok := <-s.Events(); ok {
		t.Error("expected closed event channel")
	}
	if err := s.Start(context.Background()); !errors.Is(err, apierrors.ErrSessionClosed) {
		t.Errorf("Start() after Close = %v, want ErrSessionClosed", err)
	}
}

func TestSessionOptions(t *testing.T) {
	d := &websocket.Dialer{}
	s := New("ws://example/ws",
		WithDialer(d),
		WithHandshakeTimeout(time.Second),
	)
	defer s.Close()

	if s.dialer != d {
		t.Error("WithDialer not applied")
	}
	if s.handshakeTimeout != time.Second {
		t.Errorf("handshakeTimeout = %v, want 1s", s.handshakeTimeout)
	}
	if s.Endpoint() != "ws://example/ws" {
		t.Errorf("Endpoint() = %s", s.Endpoint())
	}
}
