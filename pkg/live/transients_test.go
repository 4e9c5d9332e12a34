package live

import (
	"testing"
	"time"
)

func TestTransientsExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	tr := NewTransients(func() time.Time { return now })

	tr.SetPrompt("ask about chai")
	tr.SetSentiment("neutral")

	if got := tr.Prompt(); got != "ask about chai" {
		t.Errorf("Prompt = %q", got)
	}
	if got := tr.Sentiment(); got != "neutral" {
		t.Errorf("Sentiment = %q", got)
	}

	// Prompt expires at 10s, sentiment at 15s.
	now = now.Add(11 * time.Second)
	if got := tr.Prompt(); got != "" {
		t.Errorf("Prompt = %q after TTL, want empty", got)
	}
	if got := tr.Sentiment(); got != "neutral" {
		t.Errorf("Sentiment = %q before its TTL", got)
	}

	now = now.Add(5 * time.Second)
	if got := tr.Sentiment(); got != "" {
		t.Errorf("Sentiment = %q after TTL, want empty", got)
	}
}

func TestTransientsNewerPromptWins(t *testing.T) {
	now := time.Unix(1000, 0)
	tr := NewTransients(func() time.Time { return now })

	tr.SetPrompt("first")
	now = now.Add(5 * time.Second)
	tr.SetPrompt("second")

	if got := tr.Prompt(); got != "second" {
		t.Errorf("Prompt = %q, want second", got)
	}
	// The replacement restarted the clock.
	now = now.Add(8 * time.Second)
	if got := tr.Prompt(); got != "second" {
		t.Errorf("Prompt = %q at 8s after replacement, want second", got)
	}
}

func TestTransientsEmptyByDefault(t *testing.T) {
	tr := NewTransients(nil)
	if tr.Prompt() != "" || tr.Sentiment() != "" {
		t.Error("fresh transients not empty")
	}
}
