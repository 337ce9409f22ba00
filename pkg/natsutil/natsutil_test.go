package natsutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
)

type testMsg struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	carrier.Set("traceparent", "00-abc-def-01")
	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("expected traceparent, got %q", got)
	}

	keys := carrier.Keys()
	if len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestNatsHeaderCarrierNilHeader(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	if got := carrier.Get("missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if keys := carrier.Keys(); keys != nil {
		t.Fatalf("expected nil keys, got %v", keys)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg, err := encode(context.Background(), "vin.scanned", testMsg{Name: "scan", Value: 42})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "vin.scanned" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}

	ctx, decoded, err := decode[testMsg](msg)
	if err != nil {
		t.Fatal(err)
	}
	if ctx == nil {
		t.Fatal("expected a context")
	}
	if decoded.Name != "scan" || decoded.Value != 42 {
		t.Fatalf("unexpected: %+v", decoded)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := encode(context.Background(), "x", func() {}); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestMessageHandlerDropsMalformed(t *testing.T) {
	called := false
	var dropped string
	h := messageHandler(func(context.Context, testMsg) { called = true }, func(subject string, err error) {
		dropped = subject
	})

	h(&nats.Msg{Subject: "vin.scanned", Data: []byte("{invalid json")})
	if called {
		t.Fatal("handler should not have been called for malformed message")
	}
	if dropped != "vin.scanned" {
		t.Fatalf("expected drop callback, got %q", dropped)
	}

	data, _ := json.Marshal(testMsg{Name: "ok"})
	h(&nats.Msg{Subject: "vin.scanned", Data: data})
	if !called {
		t.Fatal("handler should have been called")
	}
}

func TestMessageHandlerNilDrop(t *testing.T) {
	h := messageHandler(func(context.Context, testMsg) {}, nil)
	h(&nats.Msg{Subject: "vin.scanned", Data: []byte("nope")})
}
