package live

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/counterpal/counterpal/pkg/audio/pcm"
	"github.com/counterpal/counterpal/pkg/capture"
)

// State is the manager's connection state.
type State string

const (
	// StateIdle means no session is wanted or a dial failed hard.
	StateIdle State = "idle"
	// StateConnecting means the first dial for this activation is in
	// flight.
	StateConnecting State = "connecting"
	// StateActive means a session is open and audio is streaming.
	StateActive State = "active"
	// StateReconnecting means an active session dropped and a redial
	// is pending or in flight.
	StateReconnecting State = "reconnecting"
)

// Retry delays. Expected drops (server go-away, idle timeouts) retry
// quickly; hard dial errors back off longer.
const (
	DefaultRetryShort = 2 * time.Second
	DefaultRetryLong  = 5 * time.Second
)

// SessionConn is the slice of Session the manager drives. Satisfied by
// *Session; tests substitute fakes.
type SessionConn interface {
	SendAudio(data []byte) error
	SendToolResponses(responses []*FunctionResponse) error
	Events() iter.Seq2[*ServerEvent, error]
	Close() error
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Dial opens a new session. Required.
	Dial func(ctx context.Context) (SessionConn, error)

	// Mic supplies captured audio frames. Required.
	Mic capture.MicSource

	// Dispatcher executes inbound tool calls. Required.
	Dispatcher *Dispatcher

	// Player schedules inbound speech. May be nil.
	Player *Player

	// Meter receives input levels. May be nil.
	Meter *Meter

	// RetryShort is the redial delay after an expected drop.
	RetryShort time.Duration

	// RetryLong is the redial delay after a hard dial failure.
	RetryLong time.Duration

	Logger *slog.Logger

	// OnStatus is invoked on every state change. May be nil. Called
	// from manager goroutines; must not block.
	OnStatus func(State)
}

// Manager owns the live session lifecycle: it dials, streams mic audio
// upward, routes server events, and redials on drops until stopped.
// Session state (orders, insights) lives in the store, not here, so it
// survives connection churn.
type Manager struct {
	cfg ManagerConfig
	log *slog.Logger

	mu      sync.Mutex
	state   State
	active  bool
	session SessionConn
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a Manager in the idle state.
func NewManager(cfg ManagerConfig) *Manager {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.RetryShort <= 0 {
		cfg.RetryShort = DefaultRetryShort
	}
	if cfg.RetryLong <= 0 {
		cfg.RetryLong = DefaultRetryLong
	}
	return &Manager{cfg: cfg, log: log, state: StateIdle}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start activates the manager. While activated it keeps one session
// open, redialing on drops. Calling Start when already activated is a
// no-op, except that a session left behind by a drop that has not yet
// been noticed is force-closed so the supervisor redials immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.active {
		stale := m.session
		m.mu.Unlock()
		if stale != nil {
			stale.Close()
		}
		return nil
	}
	m.active = true
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	frames, err := m.cfg.Mic.Start(runCtx)
	if err != nil {
		m.mu.Lock()
		m.active = false
		m.cancel = nil
		m.mu.Unlock()
		cancel()
		return err
	}

	m.wg.Add(2)
	go m.supervise(runCtx)
	go m.forwardAudio(runCtx, frames)
	return nil
}

// Stop deactivates the manager, closes the session and the mic, and
// waits for all goroutines to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	cancel := m.cancel
	m.cancel = nil
	session := m.session
	m.session = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if session != nil {
		session.Close()
	}
	m.cfg.Mic.Close()
	m.wg.Wait()
	m.setState(StateIdle)
}

// supervise keeps one session open until the context is cancelled.
func (m *Manager) supervise(ctx context.Context) {
	defer m.wg.Done()

	m.setState(StateConnecting)
	for {
		if ctx.Err() != nil {
			return
		}

		session, err := m.cfg.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.Error("live: dial failed", "error", err)
			m.setState(StateIdle)
			if !m.sleep(ctx, m.cfg.RetryLong) {
				return
			}
			m.setState(StateConnecting)
			continue
		}

		m.mu.Lock()
		m.session = session
		m.mu.Unlock()
		m.setState(StateActive)
		m.log.Info("live: session open")

		expected := m.run(ctx, session)

		m.mu.Lock()
		m.session = nil
		m.mu.Unlock()
		session.Close()
		if m.cfg.Player != nil {
			m.cfg.Player.Reset()
		}
		if ctx.Err() != nil {
			return
		}

		delay := m.cfg.RetryLong
		if expected {
			delay = m.cfg.RetryShort
		}
		m.setState(StateReconnecting)
		m.log.Info("live: session dropped", "expected", expected, "retry_in", delay)
		if !m.sleep(ctx, delay) {
			return
		}
	}
}

// run consumes one session's events until it ends. It reports whether
// the drop was expected (go-away or clean end) rather than a hard
// read error.
func (m *Manager) run(ctx context.Context, session SessionConn) (expected bool) {
	expected = true
	session.Events()(func(ev *ServerEvent, err error) bool {
		if ctx.Err() != nil {
			return false
		}
		if err != nil {
			if isExpectedClose(err) {
				m.log.Info("live: session closed", "reason", err)
			} else {
				expected = false
				m.log.Warn("live: session error", "error", err)
			}
			return false
		}

		switch ev.Type {
		case EventAudio:
			if m.cfg.Player != nil {
				if perr := m.cfg.Player.Schedule(ev.Audio); perr != nil {
					m.log.Warn("live: playback", "error", perr)
				}
			}
		case EventToolCall:
			responses := m.cfg.Dispatcher.Dispatch(ev.ToolCalls)
			if serr := session.SendToolResponses(responses); serr != nil {
				m.log.Warn("live: send tool responses", "error", serr)
			}
		case EventInterrupted:
			if m.cfg.Player != nil {
				m.cfg.Player.Reset()
			}
		case EventTurnComplete:
			// Nothing to do; the speaking indicator follows the
			// playback timeline.
		case EventGoAway:
			m.log.Info("live: server go-away")
			return false
		}
		return true
	})
	return expected
}

// forwardAudio streams mic frames to whichever session is active.
// Frames arriving while no session is open are dropped silently; the
// mic never stops while the manager is activated.
func (m *Manager) forwardAudio(ctx context.Context, frames <-chan capture.Frame) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if m.cfg.Meter != nil {
				m.cfg.Meter.Update(frame.Samples)
			}

			m.mu.Lock()
			session := m.session
			streaming := m.state == StateActive
			m.mu.Unlock()
			if session == nil || !streaming {
				continue
			}

			samples := frame.Samples
			if frame.Rate != InputFormat.SampleRate() {
				samples = pcm.Decimate(samples, frame.Rate, InputFormat.SampleRate())
			}
			if err := session.SendAudio(pcm.F32ToS16LE(samples)); err != nil {
				m.log.Debug("live: send audio", "error", err)
			}
		}
	}
}

// sleep waits for d or until the context is cancelled. It reports
// false when cancelled.
func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// setState records a state change and notifies the status callback.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()
	if m.cfg.OnStatus != nil {
		m.cfg.OnStatus(s)
	}
}

// isExpectedClose reports whether a session read error is a clean
// websocket shutdown rather than a hard failure. The session wraps
// read errors, so unwrap before inspecting the close code.
func isExpectedClose(err error) bool {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
}

// IsDeviceError reports whether err is a capture device failure, which
// the CLI surfaces as a fatal startup error rather than retrying.
func IsDeviceError(err error) bool {
	return errors.Is(err, capture.ErrDeviceUnavailable)
}
