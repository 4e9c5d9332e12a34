package live

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

const (
	// DefaultEndpoint is the bidi streaming WebSocket endpoint.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is the default live model.
	DefaultModel = "gemini-2.0-flash-live-001"
)

// Client connects live sessions to the hosted endpoint.
type Client struct {
	config *clientConfig
}

// clientConfig holds the client configuration.
type clientConfig struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a live client. The apiKey is required; the CLI
// verifies credential presence before constructing a client, so an
// empty key here is a programming error.
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		panic("live: API key is required")
	}
	cfg := &clientConfig{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{config: cfg}
}

// WithEndpoint overrides the WebSocket endpoint.
func WithEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.endpoint = url
	}
}

// WithHTTPClient sets a custom HTTP client for the handshake.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// SessionConfig configures one live session.
type SessionConfig struct {
	// Model is the live model name; DefaultModel if empty.
	Model string

	// SystemInstruction is the fixed system prompt. The declared menu
	// context is appended by the caller before connecting.
	SystemInstruction string

	// Tools are the callable action declarations.
	Tools []*FunctionDeclaration
}

// Connect dials the endpoint, sends the setup message, and waits for
// setup confirmation before returning an open session.
func (c *Client) Connect(ctx context.Context, config *SessionConfig) (*Session, error) {
	if config == nil {
		config = &SessionConfig{}
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	url := c.config.endpoint + "?key=" + c.config.apiKey
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.httpClient.Timeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Code:       "connection_failed",
				Message:    fmt.Sprintf("failed to connect: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, fmt.Errorf("live: failed to connect: %w", err)
	}

	setup := &clientMessage{
		Setup: &setupMessage{
			Model: "models/" + model,
			GenerationConfig: &generationConfig{
				ResponseModalities: []string{"AUDIO"},
			},
		},
	}
	if config.SystemInstruction != "" {
		setup.Setup.SystemInstruction = &content{
			Parts: []*part{{Text: config.SystemInstruction}},
		}
	}
	if len(config.Tools) > 0 {
		setup.Setup.Tools = []*toolDecl{{FunctionDeclarations: config.Tools}}
	}
	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("live: send setup: %w", err)
	}

	// The first server message must confirm setup.
	var confirm serverMessage
	if err := conn.ReadJSON(&confirm); err != nil {
		conn.Close()
		return nil, fmt.Errorf("live: read setup confirmation: %w", err)
	}
	if confirm.SetupComplete == nil {
		conn.Close()
		return nil, &Error{Code: "setup_failed", Message: "endpoint did not confirm setup"}
	}

	session := newSession(conn)
	go session.readLoop()
	return session, nil
}
