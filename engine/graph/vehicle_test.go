package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/WessleyAI/wessley-vin/engine/vin"
)

func decoded(t *testing.T, raw string) vin.Result {
	t.Helper()
	r, err := vin.Decode(raw, vin.WithCurrentYear(2024))
	if err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return r
}

func TestSaveVehicle(t *testing.T) {
	sess := newMockSession()
	gs := newMockStore(sess)

	if err := gs.SaveVehicle(context.Background(), decoded(t, "1HGCM82633A004352")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sess.queries) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(sess.queries))
	}
	if !strings.Contains(sess.queries[0], "MERGE (m:Manufacturer {wmi: $wmi})") {
		t.Fatalf("unexpected manufacturer cypher: %s", sess.queries[0])
	}
	if sess.params[0]["name"] != "Honda" {
		t.Fatalf("unexpected manufacturer params: %v", sess.params[0])
	}
	if !strings.Contains(sess.queries[1], "MERGE (v)-[:MADE_BY]->(m)") {
		t.Fatalf("unexpected vehicle cypher: %s", sess.queries[1])
	}
	props := sess.params[1]["props"].(map[string]any)
	if props["vin"] != "1HGCM82633A004352" || props["model_year"] != 2003 {
		t.Fatalf("unexpected vehicle props: %v", props)
	}
	if props["decoded_at"] != "2024-03-01T12:00:00Z" {
		t.Fatalf("unexpected decoded_at: %v", props["decoded_at"])
	}
	if !sess.closed {
		t.Fatal("session not closed")
	}
}

func TestSaveVehicle_Error(t *testing.T) {
	sess := newMockSession()
	sess.failAt = 1
	gs := newMockStore(sess)

	err := gs.SaveVehicle(context.Background(), decoded(t, "1HGCM82633A004352"))
	if err == nil || !strings.Contains(err.Error(), "1HGCM82633A004352") {
		t.Fatalf("expected wrapped error naming the VIN, got %v", err)
	}
}

func TestFindVehicle(t *testing.T) {
	sess := newMockSession(nodeRecord(map[string]any{
		"vin": "1HGCM82633A004352", "wmi": "1HG", "manufacturer": "Honda", "model_year": int64(2003),
	}))
	gs := newMockStore(sess)

	v, err := gs.FindVehicle(context.Background(), " 1hgcm82633a004352 ")
	if err != nil {
		t.Fatal(err)
	}
	if v.Manufacturer != "Honda" || v.ModelYear != 2003 {
		t.Fatalf("unexpected vehicle: %+v", v)
	}
	if sess.params[0]["id"] != "1HGCM82633A004352" {
		t.Fatalf("lookup should use the normalized VIN, got %v", sess.params[0]["id"])
	}
}

func TestFindVehicle_NotFound(t *testing.T) {
	gs := newMockStore(newMockSession())
	_, err := gs.FindVehicle(context.Background(), "1HGCM82633A004352")
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestDeleteVehicle(t *testing.T) {
	sess := newMockSession()
	if err := newMockStore(sess).DeleteVehicle(context.Background(), "1hgcm82633a004352"); err != nil {
		t.Fatal(err)
	}
	if sess.params[0]["id"] != "1HGCM82633A004352" {
		t.Fatalf("unexpected id: %v", sess.params[0]["id"])
	}
}

func TestVehiclesByManufacturer(t *testing.T) {
	sess := newMockSession(
		nodeRecord(map[string]any{"vin": "1HGCM82633A004352", "wmi": "1HG"}),
		nodeRecord(map[string]any{"vin": "1HGCM82633A004353", "wmi": "1HG"}),
	)
	gs := newMockStore(sess)

	items, err := gs.VehiclesByManufacturer(context.Background(), "1hg", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2, got %d", len(items))
	}
	if sess.params[0]["wmi"] != "1HG" || sess.params[0]["limit"] != 100 {
		t.Fatalf("unexpected params: %v", sess.params[0])
	}
}

func TestVehiclesByManufacturer_Error(t *testing.T) {
	sess := newMockSession()
	sess.failAt = 0
	if _, err := newMockStore(sess).VehiclesByManufacturer(context.Background(), "1HG", 5); err == nil {
		t.Fatal("expected error")
	}
}
