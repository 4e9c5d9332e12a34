package jsontime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMilliJSONRoundtrip(t *testing.T) {
	want := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	data, err := json.Marshal(Milli(want))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "1787562000000" {
		t.Errorf("Marshal = %s, want unix millis", data)
	}

	var got Milli
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Time().Equal(want) {
		t.Errorf("round-trip = %v, want %v", got.Time(), want)
	}
}

func TestMilliMsgpackRoundtrip(t *testing.T) {
	want := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	data, err := msgpack.Marshal(Milli(want))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Milli
	if err := msgpack.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Time().Equal(want) {
		t.Errorf("round-trip = %v, want %v", got.Time(), want)
	}
}

func TestMilliMsgpackStructField(t *testing.T) {
	type rec struct {
		At Milli `msgpack:"at"`
	}
	want := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	data, err := msgpack.Marshal(&rec{At: Milli(want)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got rec
	if err := msgpack.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.At.Time().Equal(want) {
		t.Errorf("field round-trip = %v, want %v", got.At.Time(), want)
	}
}
