package vision

import (
	"errors"
	"testing"

	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func TestParseCount(t *testing.T) {
	n, err := parseCount(textResponse(`{"count": 7}`))
	if err != nil {
		t.Fatalf("parseCount: %v", err)
	}
	if n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
}

func TestParseCountRepairsMalformed(t *testing.T) {
	n, err := parseCount(textResponse("```json\n{\"count\": 3}\n```"))
	if err != nil {
		t.Fatalf("parseCount: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestParseCountUnparseable(t *testing.T) {
	_, err := parseCount(textResponse(`about five or so`))
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *ResponseParseError
	if !errors.As(err, &perr) {
		t.Errorf("err = %T, want *ResponseParseError", err)
	}
}

func TestParseCountNegative(t *testing.T) {
	_, err := parseCount(textResponse(`{"count": -2}`))
	var perr *ResponseParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want parse error for negative count", err)
	}
}

func TestParseCountEmpty(t *testing.T) {
	if _, err := parseCount(&genai.GenerateContentResponse{}); err == nil {
		t.Fatal("expected error for empty response")
	}
}
