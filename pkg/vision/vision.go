// Package vision answers on-demand counting questions about tray
// photos using a hosted multimodal model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"

	"github.com/counterpal/counterpal/pkg/capture"
)

// DefaultModel is the default vision model.
const DefaultModel = "gemini-2.0-flash"

// ResponseParseError means the model answered but not in the declared
// shape. Not retried automatically; the operator retriggers.
type ResponseParseError struct {
	Raw string
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("vision: unparseable response %q: %v", e.Raw, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// Counter asks the model to count items on a tray photo.
type Counter struct {
	client *genai.Client
	model  string
}

// NewCounter creates a Counter over an existing client. An empty model
// selects DefaultModel.
func NewCounter(client *genai.Client, model string) *Counter {
	if model == "" {
		model = DefaultModel
	}
	return &Counter{client: client, model: model}
}

// NewCounterWithKey dials a new client with the given API key.
func NewCounterWithKey(ctx context.Context, apiKey, model string) (*Counter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("vision: create client: %w", err)
	}
	return NewCounter(client, model), nil
}

// countResult is the declared structured answer.
type countResult struct {
	Count int `json:"count"`
}

// countSchema constrains the model to a single integer field.
var countSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"count": {
			Type:        genai.TypeInteger,
			Description: "Number of countable items visible on the tray.",
		},
	},
	Required: []string{"count"},
}

// Count submits one tray photo and returns the item count. The
// optional notes steer the model, e.g. "count only the samosas".
func (c *Counter) Count(ctx context.Context, photo *capture.Photo, notes string) (int, error) {
	prompt := "Count the items on this food tray. Answer with the total count."
	if strings.TrimSpace(notes) != "" {
		prompt += " " + strings.TrimSpace(notes)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   countSchema,
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: photo.JPEG}},
			{Text: prompt},
		},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		if e, ok := err.(*apierror.APIError); ok {
			err = e.Unwrap()
		}
		return 0, fmt.Errorf("vision: count: %w", err)
	}
	return parseCount(resp)
}

// parseCount extracts the count from a model response.
func parseCount(resp *genai.GenerateContentResponse) (int, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return 0, errors.New("vision: empty response")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	raw := sb.String()

	var result countResult
	if err := unmarshalResult(raw, &result); err != nil {
		return 0, &ResponseParseError{Raw: raw, Err: err}
	}
	if result.Count < 0 {
		return 0, &ResponseParseError{Raw: raw, Err: errors.New("negative count")}
	}
	return result.Count, nil
}
