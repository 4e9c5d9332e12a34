package live

import (
	"encoding/json"

	"google.golang.org/genai"
)

// FunctionDeclaration describes one callable action offered to the
// model in the session setup message.
type FunctionDeclaration struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Parameters  *genai.Schema `json:"parameters,omitempty"`
}

// FunctionCall is one structured action requested by the model. A
// toolCall message may carry several; each must produce exactly one
// FunctionResponse correlated by ID.
type FunctionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// FunctionResponse is the result of executing one FunctionCall.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// clientMessage is the envelope for all outbound wire messages.
type clientMessage struct {
	Setup         *setupMessage  `json:"setup,omitempty"`
	RealtimeInput *realtimeInput `json:"realtimeInput,omitempty"`
	ToolResponse  *toolResponse  `json:"toolResponse,omitempty"`
}

// setupMessage configures the session on connect.
type setupMessage struct {
	Model             string            `json:"model"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []*toolDecl       `json:"tools,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Role  string  `json:"role,omitempty"`
	Parts []*part `json:"parts,omitempty"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

// blob carries base64-encoded media with its MIME type.
type blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type realtimeInput struct {
	MediaChunks []*blob `json:"mediaChunks"`
}

type toolDecl struct {
	FunctionDeclarations []*FunctionDeclaration `json:"functionDeclarations"`
}

type toolResponse struct {
	FunctionResponses []*FunctionResponse `json:"functionResponses"`
}

// serverMessage is the envelope for all inbound wire messages.
type serverMessage struct {
	SetupComplete *struct{}       `json:"setupComplete,omitempty"`
	ServerContent *serverContent  `json:"serverContent,omitempty"`
	ToolCall      *serverToolCall `json:"toolCall,omitempty"`
	GoAway        *goAway         `json:"goAway,omitempty"`
}

type serverContent struct {
	ModelTurn    *content `json:"modelTurn,omitempty"`
	TurnComplete bool     `json:"turnComplete,omitempty"`
	Interrupted  bool     `json:"interrupted,omitempty"`
}

type serverToolCall struct {
	FunctionCalls []*FunctionCall `json:"functionCalls"`
}

// goAway announces that the server will close the connection soon.
type goAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

// EventType identifies a decoded server event.
type EventType string

const (
	// EventAudio carries a chunk of model speech.
	EventAudio EventType = "audio"
	// EventToolCall carries one batch of function calls.
	EventToolCall EventType = "tool_call"
	// EventTurnComplete marks the end of a model turn.
	EventTurnComplete EventType = "turn_complete"
	// EventInterrupted signals the model was interrupted by new input.
	EventInterrupted EventType = "interrupted"
	// EventGoAway signals an imminent server-initiated close.
	EventGoAway EventType = "go_away"
)

// ServerEvent is a decoded inbound message.
type ServerEvent struct {
	Type EventType

	// Audio is decoded s16le PCM at the model output rate, set for
	// EventAudio.
	Audio []byte

	// ToolCalls is the batch of requested actions, set for
	// EventToolCall. All responses for the batch must be sent together.
	ToolCalls []*FunctionCall

	// Raw is the original wire message.
	Raw []byte
}
