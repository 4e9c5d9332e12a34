package live

import (
	"sync"
	"time"
)

// Transient display lifetimes.
const (
	// PromptTTL is how long a suggested cashier prompt stays visible.
	PromptTTL = 10 * time.Second

	// SentimentTTL is how long a sentiment reading stays visible.
	SentimentTTL = 15 * time.Second
)

// Transients holds the short-lived dashboard state: the current
// cashier prompt and customer sentiment. Values expire by wall clock;
// reads after expiry return empty. Safe for concurrent use.
type Transients struct {
	now func() time.Time

	mu             sync.Mutex
	prompt         string
	promptUntil    time.Time
	sentiment      string
	sentimentUntil time.Time
}

// NewTransients creates a Transients. A nil clock uses time.Now.
func NewTransients(clock func() time.Time) *Transients {
	if clock == nil {
		clock = time.Now
	}
	return &Transients{now: clock}
}

// SetPrompt replaces the current cashier prompt. A newer prompt always
// wins, even if the old one has time left.
func (t *Transients) SetPrompt(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prompt = text
	t.promptUntil = t.now().Add(PromptTTL)
}

// Prompt returns the current prompt, or "" if none or expired.
func (t *Transients) Prompt() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.now().After(t.promptUntil) {
		return ""
	}
	return t.prompt
}

// SetSentiment replaces the current sentiment reading.
func (t *Transients) SetSentiment(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sentiment = s
	t.sentimentUntil = t.now().Add(SentimentTTL)
}

// Sentiment returns the current sentiment, or "" if none or expired.
func (t *Transients) Sentiment() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.now().After(t.sentimentUntil) {
		return ""
	}
	return t.sentiment
}
