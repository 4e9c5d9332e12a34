package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/counterpal/counterpal/pkg/audio/pcm"
)

// InputFormat is the wire format for outbound microphone audio.
const InputFormat = pcm.L16Mono16K

// OutputFormat is the wire format of inbound model speech.
const OutputFormat = pcm.L16Mono24K

// Session is one open live connection. It is created by
// Client.Connect; the embedded read loop feeds Events.
type Session struct {
	conn      *websocket.Conn
	closeCh   chan struct{}
	eventsCh  chan eventOrError
	closeOnce sync.Once
	writeMu   sync.Mutex
}

type eventOrError struct {
	event *ServerEvent
	err   error
}

func newSession(conn *websocket.Conn) *Session {
	return &Session{
		conn:     conn,
		closeCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
	}
}

// SendAudio pushes one chunk of s16le 16 kHz mono PCM to the endpoint.
func (s *Session) SendAudio(data []byte) error {
	return s.send(&clientMessage{
		RealtimeInput: &realtimeInput{
			MediaChunks: []*blob{{
				MIMEType: InputFormat.MIMEType(),
				Data:     base64.StdEncoding.EncodeToString(data),
			}},
		},
	})
}

// SendToolResponses sends all responses for one inbound tool-call
// batch together.
func (s *Session) SendToolResponses(responses []*FunctionResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return s.send(&clientMessage{
		ToolResponse: &toolResponse{FunctionResponses: responses},
	})
}

// Events returns an iterator over decoded server events. Iteration
// ends on session close or after yielding a read error.
func (s *Session) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

// send writes one JSON message, serializing concurrent writers.
func (s *Session) send(msg *clientMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		if b, err := json.Marshal(msg); err == nil {
			str := string(b)
			if len(str) > 500 {
				str = str[:500] + "..."
			}
			slog.Debug("live: sending", "content", str)
		}
	}
	return s.conn.WriteJSON(msg)
}

// readLoop reads wire messages and feeds the event channel until the
// connection drops or the session closes.
func (s *Session) readLoop() {
	defer close(s.eventsCh)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- eventOrError{err: fmt.Errorf("read error: %w", err)}:
			}
			return
		}

		if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
			str := string(message)
			if len(str) > 1000 {
				str = str[:1000] + "..."
			}
			slog.Debug("live: received", "len", len(message), "content", str)
		}

		events, err := parseServerMessage(message)
		if err != nil {
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- eventOrError{err: err}:
			}
			continue
		}
		for _, ev := range events {
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- eventOrError{event: ev}:
			}
		}
	}
}

// parseServerMessage decodes one wire message into zero or more events.
func parseServerMessage(message []byte) ([]*ServerEvent, error) {
	var msg serverMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	var events []*ServerEvent
	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		events = append(events, &ServerEvent{
			Type:      EventToolCall,
			ToolCalls: msg.ToolCall.FunctionCalls,
			Raw:       message,
		})
	}
	if sc := msg.ServerContent; sc != nil {
		if sc.ModelTurn != nil {
			for _, p := range sc.ModelTurn.Parts {
				if p.InlineData == nil || p.InlineData.Data == "" {
					continue
				}
				audio, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("parse error: bad audio chunk: %w", err)
				}
				events = append(events, &ServerEvent{
					Type:  EventAudio,
					Audio: audio,
					Raw:   message,
				})
			}
		}
		if sc.Interrupted {
			events = append(events, &ServerEvent{Type: EventInterrupted, Raw: message})
		}
		if sc.TurnComplete {
			events = append(events, &ServerEvent{Type: EventTurnComplete, Raw: message})
		}
	}
	if msg.GoAway != nil {
		events = append(events, &ServerEvent{Type: EventGoAway, Raw: message})
	}
	return events, nil
}
