package live

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"

	"github.com/counterpal/counterpal/pkg/pos"
)

// Action names the session offers to the model.
const (
	ActionLogOrder      = "log_order"
	ActionSaveInsight   = "save_insight"
	ActionSuggestPrompt = "suggest_cashier_prompt"
	ActionLogSentiment  = "log_sentiment"
	ActionTalkback      = "talkback"
)

// DefaultLookback is the window for locally computed running totals.
const DefaultLookback = 5 * time.Minute

// Declared argument shapes. The log-order handler additionally accepts
// the tolerant union in payload.go; this is the canonical schema.
type logOrderArgs struct {
	Items []logOrderItem `json:"items"`
}

type logOrderItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

type saveInsightArgs struct {
	Category string `json:"category"`
	Content  string `json:"content"`
	Severity string `json:"severity,omitempty"`
}

type suggestPromptArgs struct {
	Text   string `json:"text"`
	Reason string `json:"reason,omitempty"`
}

type logSentimentArgs struct {
	Sentiment string `json:"sentiment"`
}

type talkbackArgs struct {
	Text string `json:"text"`
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Store      *pos.Store
	Transients *Transients
	Logger     *slog.Logger

	// Lookback bounds locally computed running totals.
	// DefaultLookback if zero.
	Lookback time.Duration

	// Clock overrides the wall clock, for tests.
	Clock func() time.Time
}

// Dispatcher executes inbound tool calls against the store and the
// transient UI surface.
type Dispatcher struct {
	store      *pos.Store
	transients *Transients
	log        *slog.Logger
	lookback   time.Duration
	now        func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		store:      cfg.Store,
		transients: cfg.Transients,
		log:        cfg.Logger,
		lookback:   cfg.Lookback,
		now:        cfg.Clock,
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.lookback <= 0 {
		d.lookback = DefaultLookback
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Declarations returns the callable action declarations for the
// session setup message.
func (d *Dispatcher) Declarations() []*FunctionDeclaration {
	return []*FunctionDeclaration{
		{
			Name:        ActionLogOrder,
			Description: "Log a recognized customer order. Item names may be colloquial; they are matched against the menu catalog.",
			Parameters:  mustSchemaFor[logOrderArgs](),
		},
		{
			Name:        ActionSaveInsight,
			Description: "Save a shop insight (inventory, customer, general, shopping_list, or security_risk).",
			Parameters:  mustSchemaFor[saveInsightArgs](),
		},
		{
			Name:        ActionSuggestPrompt,
			Description: "Suggest a short prompt for the cashier to read out.",
			Parameters:  mustSchemaFor[suggestPromptArgs](),
		},
		{
			Name:        ActionLogSentiment,
			Description: "Record the customer's current sentiment.",
			Parameters:  mustSchemaFor[logSentimentArgs](),
		},
		{
			Name:        ActionTalkback,
			Description: "Announce that a spoken reply follows on the audio channel.",
			Parameters:  mustSchemaFor[talkbackArgs](),
		},
	}
}

// Dispatch executes one inbound tool-call batch. Every call produces
// exactly one response correlated by the call ID; a failing or
// panicking action is reported as that action's error result and does
// not abort its siblings.
func (d *Dispatcher) Dispatch(calls []*FunctionCall) []*FunctionResponse {
	responses := make([]*FunctionResponse, 0, len(calls))
	for _, call := range calls {
		responses = append(responses, d.dispatchOne(call))
	}
	return responses
}

// dispatchOne runs a single action, converting errors and panics into
// an error response.
func (d *Dispatcher) dispatchOne(call *FunctionCall) (resp *FunctionResponse) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool action panicked", "action", call.Name, "panic", r)
			resp = errorResponse(call, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err := d.execute(call)
	if err != nil {
		d.log.Warn("tool action failed", "action", call.Name, "error", err)
		return errorResponse(call, err)
	}
	result["status"] = "ok"
	return &FunctionResponse{ID: call.ID, Name: call.Name, Response: result}
}

// execute runs the named action.
func (d *Dispatcher) execute(call *FunctionCall) (map[string]any, error) {
	switch call.Name {
	case ActionLogOrder:
		return d.logOrder(call)
	case ActionSaveInsight:
		return d.saveInsight(call)
	case ActionSuggestPrompt:
		return d.suggestPrompt(call)
	case ActionLogSentiment:
		return d.logSentiment(call)
	case ActionTalkback:
		return d.talkback(call)
	}
	return nil, fmt.Errorf("unknown action %q", call.Name)
}

func (d *Dispatcher) logOrder(call *FunctionCall) (map[string]any, error) {
	raw, err := parseOrderItems(call.Args)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]any{"logged": 0}, nil
	}

	catalog := d.store.Catalog()
	items := make([]pos.OrderItem, 0, len(raw))
	for _, r := range raw {
		it := pos.OrderItem{Name: r.Name, Quantity: r.Quantity, Notes: r.Notes}
		if m, ok := catalog.Match(r.Name); ok {
			it.Name = m.Name
			it.UnitPrice = m.Price
		}
		items = append(items, it)
	}

	order, merged := d.store.AppendOrder(items)
	d.log.Info("order logged", "id", order.ID, "items", len(order.Items), "total", order.Total, "merged", merged)
	return map[string]any{
		"order_id": order.ID,
		"merged":   merged,
		"total":    order.Total,
	}, nil
}

func (d *Dispatcher) saveInsight(call *FunctionCall) (map[string]any, error) {
	var args saveInsightArgs
	if err := unmarshalJSON(call.Args, &args); err != nil {
		return nil, fmt.Errorf("insight payload: %w", err)
	}
	if strings.TrimSpace(args.Content) == "" {
		return nil, fmt.Errorf("insight has no content")
	}
	in := d.store.AppendInsight(args.Category, args.Content, args.Severity)
	d.log.Info("insight saved", "id", in.ID, "category", in.Category, "severity", in.Severity)
	return map[string]any{"insight_id": in.ID}, nil
}

func (d *Dispatcher) suggestPrompt(call *FunctionCall) (map[string]any, error) {
	var args suggestPromptArgs
	if err := unmarshalJSON(call.Args, &args); err != nil {
		return nil, fmt.Errorf("prompt payload: %w", err)
	}
	text := strings.TrimSpace(args.Text)
	if text == "" {
		return nil, fmt.Errorf("prompt has no text")
	}

	// Running totals are computed locally from recent orders, never
	// taken from the model's number.
	if concernsTotal(args.Reason) || concernsTotal(args.Text) {
		total := d.store.RecentTotal(d.now(), d.lookback)
		text = fmt.Sprintf("Running total: %d", total)
	}
	if d.transients != nil {
		d.transients.SetPrompt(text)
	}
	return map[string]any{"prompt": text}, nil
}

func (d *Dispatcher) logSentiment(call *FunctionCall) (map[string]any, error) {
	var args logSentimentArgs
	if err := unmarshalJSON(call.Args, &args); err != nil {
		return nil, fmt.Errorf("sentiment payload: %w", err)
	}
	if args.Sentiment == "" {
		return nil, fmt.Errorf("sentiment is empty")
	}
	if d.transients != nil {
		d.transients.SetSentiment(args.Sentiment)
	}
	return map[string]any{"sentiment": args.Sentiment}, nil
}

func (d *Dispatcher) talkback(call *FunctionCall) (map[string]any, error) {
	var args talkbackArgs
	if err := unmarshalJSON(call.Args, &args); err != nil {
		return nil, fmt.Errorf("talkback payload: %w", err)
	}
	// The spoken reply travels on the audio channel; nothing to do
	// locally beyond acknowledging.
	d.log.Debug("talkback", "text", args.Text)
	return map[string]any{"acknowledged": true}, nil
}

// concernsTotal reports whether prompt text asks about a running total.
func concernsTotal(s string) bool {
	return strings.Contains(strings.ToLower(s), "total")
}

// errorResponse builds the error result for one failed action.
func errorResponse(call *FunctionCall, err error) *FunctionResponse {
	return &FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"status": "error",
			"error":  err.Error(),
		},
	}
}

// mustSchemaFor derives the genai schema for an argument type.
func mustSchemaFor[T any]() *genai.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(err)
	}
	return convSchema(s)
}

// convSchema converts a jsonschema schema to the endpoint's schema type.
func convSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       convSchema(schema.Items),
		Required:    schema.Required,
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = convSchema(prop)
		}
	}
	switch schema.Type {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
