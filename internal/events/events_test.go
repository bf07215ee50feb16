package events

import (
	"context"
	"encoding/json"
	"testing"
)

type capture struct {
	key   string
	value any
}

func (c *capture) Publish(_ context.Context, key string, value any) error {
	c.key, c.value = key, value
	return nil
}

func TestIndexCompleteRoundTrip(t *testing.T) {
	var pub capture
	err := PublishIndexComplete(context.Background(), &pub, IndexComplete{
		IndexPath: "final_index/final_index.txt",
		Documents: 3,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.key != "final_index/final_index.txt" {
		t.Errorf("key = %q", pub.key)
	}
	raw, err := json.Marshal(pub.value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got IndexComplete
	handler := IndexCompleteHandler(func(_ context.Context, ev IndexComplete) error {
		got = ev
		return nil
	})
	if err := handler(context.Background(), nil, raw); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got.Type != EventIndexComplete || got.Documents != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestHandlerIgnoresOtherTypes(t *testing.T) {
	called := false
	handler := IndexCompleteHandler(func(context.Context, IndexComplete) error {
		called = true
		return nil
	})
	if err := handler(context.Background(), nil, []byte(`{"type":"something_else"}`)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if called {
		t.Error("handler invoked for foreign event")
	}
	if err := handler(context.Background(), nil, []byte(`garbage`)); err == nil {
		t.Error("expected decode error")
	}
}
