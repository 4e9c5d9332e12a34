package live

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/counterpal/counterpal/pkg/menu"
	"github.com/counterpal/counterpal/pkg/pos"
)

func testDispatcher(t *testing.T, clock func() time.Time) (*Dispatcher, *pos.Store, *Transients) {
	t.Helper()
	store := pos.NewStore(menu.Default(), &pos.Options{Clock: clock})
	transients := NewTransients(clock)
	d := NewDispatcher(DispatcherConfig{
		Store:      store,
		Transients: transients,
		Clock:      clock,
	})
	return d, store, transients
}

func TestDispatchLogOrder(t *testing.T) {
	d, store, _ := testDispatcher(t, nil)

	resps := d.Dispatch([]*FunctionCall{{
		ID:   "c1",
		Name: ActionLogOrder,
		Args: json.RawMessage(`{"items":[{"name":"samosa","quantity":2},{"name":"pyaaz kachori"}]}`),
	}})
	if len(resps) != 1 {
		t.Fatalf("got %d responses, want 1", len(resps))
	}
	if resps[0].ID != "c1" || resps[0].Response["status"] != "ok" {
		t.Fatalf("response = %+v", resps[0])
	}

	orders := store.Orders()
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	o := orders[0]
	if o.Items[0].Name != "Samosa" || o.Items[0].UnitPrice != 20 {
		t.Errorf("item 0 = %+v, want catalog-resolved Samosa @20", o.Items[0])
	}
	if o.Items[1].Name != "Kachori" {
		t.Errorf("item 1 = %+v, want alias-resolved Kachori", o.Items[1])
	}
	if o.Total != 2*20+25 {
		t.Errorf("total = %d, want 65", o.Total)
	}
	if resps[0].Response["total"] != o.Total {
		t.Errorf("response total = %v, want %d", resps[0].Response["total"], o.Total)
	}
}

func TestDispatchUnmatchedItemKeptAtZero(t *testing.T) {
	d, store, _ := testDispatcher(t, nil)

	d.Dispatch([]*FunctionCall{{
		Name: ActionLogOrder,
		Args: json.RawMessage(`{"items":[{"name":"mystery dish"}]}`),
	}})

	orders := store.Orders()
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	it := orders[0].Items[0]
	if it.Name != "mystery dish" || it.UnitPrice != 0 {
		t.Errorf("item = %+v, want verbatim name and zero price", it)
	}
	if orders[0].Total != 0 {
		t.Errorf("total = %d, want 0", orders[0].Total)
	}
}

func TestDispatchBatchErrorIsolation(t *testing.T) {
	d, store, _ := testDispatcher(t, nil)

	resps := d.Dispatch([]*FunctionCall{
		{ID: "a", Name: ActionLogOrder, Args: json.RawMessage(`"scalar"`)},
		{ID: "b", Name: ActionSaveInsight, Args: json.RawMessage(`{"category":"inventory","content":"potatoes low","severity":"high"}`)},
		{ID: "c", Name: "no_such_action"},
	})
	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3", len(resps))
	}
	if resps[0].Response["status"] != "error" {
		t.Errorf("call a: %+v, want error", resps[0].Response)
	}
	if resps[1].Response["status"] != "ok" {
		t.Errorf("call b: %+v, want ok", resps[1].Response)
	}
	if resps[2].Response["status"] != "error" {
		t.Errorf("call c: %+v, want error for unknown action", resps[2].Response)
	}

	if _, insights := store.Counts(); insights != 1 {
		t.Errorf("insights = %d, want 1 despite sibling failures", insights)
	}
}

func TestDispatchSuggestPromptTotalRecomputed(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	d, _, transients := testDispatcher(t, clock)

	d.Dispatch([]*FunctionCall{{
		Name: ActionLogOrder,
		Args: json.RawMessage(`{"items":[{"name":"jalebi"}]}`),
	}})

	// The model's figure is wrong on purpose; the local store wins.
	resps := d.Dispatch([]*FunctionCall{{
		Name: ActionSuggestPrompt,
		Args: json.RawMessage(`{"text":"Your total is 999","reason":"customer asked for the total"}`),
	}})
	if resps[0].Response["status"] != "ok" {
		t.Fatalf("response = %+v", resps[0].Response)
	}
	want := "Running total: 50"
	if got := transients.Prompt(); got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}

func TestDispatchSuggestPromptPlain(t *testing.T) {
	d, _, transients := testDispatcher(t, nil)

	d.Dispatch([]*FunctionCall{{
		Name: ActionSuggestPrompt,
		Args: json.RawMessage(`{"text":"Ask about the lassi special","reason":"upsell"}`),
	}})
	if got := transients.Prompt(); got != "Ask about the lassi special" {
		t.Errorf("prompt = %q", got)
	}
}

func TestDispatchLogSentiment(t *testing.T) {
	d, _, transients := testDispatcher(t, nil)

	resps := d.Dispatch([]*FunctionCall{{
		Name: ActionLogSentiment,
		Args: json.RawMessage(`{"sentiment":"happy"}`),
	}})
	if resps[0].Response["status"] != "ok" {
		t.Fatalf("response = %+v", resps[0].Response)
	}
	if got := transients.Sentiment(); got != "happy" {
		t.Errorf("sentiment = %q", got)
	}
}

func TestDispatchTalkback(t *testing.T) {
	d, _, _ := testDispatcher(t, nil)

	resps := d.Dispatch([]*FunctionCall{{
		Name: ActionTalkback,
		Args: json.RawMessage(`{"text":"Welcome!"}`),
	}})
	if resps[0].Response["status"] != "ok" {
		t.Fatalf("response = %+v", resps[0].Response)
	}
}

func TestDeclarationsCoverAllActions(t *testing.T) {
	d, _, _ := testDispatcher(t, nil)

	decls := d.Declarations()
	want := map[string]bool{
		ActionLogOrder:      false,
		ActionSaveInsight:   false,
		ActionSuggestPrompt: false,
		ActionLogSentiment:  false,
		ActionTalkback:      false,
	}
	for _, decl := range decls {
		if _, ok := want[decl.Name]; !ok {
			t.Errorf("unexpected declaration %q", decl.Name)
			continue
		}
		want[decl.Name] = true
		if decl.Parameters == nil {
			t.Errorf("declaration %q has no schema", decl.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("declaration %q missing", name)
		}
	}
}
