package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/WessleyAI/wessley-vin/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// --- Helper mocks ---

type mockResult struct {
	records []*neo4j.Record
	pos     int
}

func newMockResult(records ...*neo4j.Record) *mockResult {
	return &mockResult{records: records}
}

func (r *mockResult) Next(_ context.Context) bool {
	if r.pos >= len(r.records) {
		return false
	}
	r.pos++
	return true
}

func (r *mockResult) Record() *neo4j.Record { return r.records[r.pos-1] }

// mockSession records every statement, including those run inside
// ExecuteWrite, and fails the statement at index failAt (when >= 0).
type mockSession struct {
	queries []string
	params  []map[string]any
	records []*neo4j.Record
	failAt  int
	closed  bool
}

func newMockSession(records ...*neo4j.Record) *mockSession {
	return &mockSession{records: records, failAt: -1}
}

func (s *mockSession) Run(_ context.Context, cypher string, params map[string]any) (repo.Result, error) {
	idx := len(s.queries)
	s.queries = append(s.queries, cypher)
	s.params = append(s.params, params)
	if idx == s.failAt {
		return nil, errors.New("run failed")
	}
	return newMockResult(s.records...), nil
}

func (s *mockSession) Close(_ context.Context) error {
	s.closed = true
	return nil
}

func (s *mockSession) ExecuteWrite(_ context.Context, work func(tx repo.Runner) (any, error)) (any, error) {
	return work(s)
}

type mockOpener struct {
	session *mockSession
}

func (o *mockOpener) OpenSession(_ context.Context) repo.Session {
	return o.session
}

func newMockStore(sess *mockSession) *GraphStore {
	gs := NewWithOpener(&mockOpener{session: sess})
	gs.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return gs
}

func nodeRecord(props map[string]any) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"n"}, Values: []any{dbtype.Node{Props: props}}}
}

func TestNewGraphStore(t *testing.T) {
	// Construction with a nil driver must not touch the network.
	gs := New(nil)
	if gs == nil {
		t.Fatal("expected non-nil GraphStore")
	}
}

func TestEnsureSchema(t *testing.T) {
	sess := newMockSession()
	gs := newMockStore(sess)

	if err := gs.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sess.queries) != 2 {
		t.Fatalf("expected 2 constraint statements, got %d", len(sess.queries))
	}
	if !strings.Contains(sess.queries[0], "v.vin IS UNIQUE") {
		t.Fatalf("unexpected cypher: %s", sess.queries[0])
	}
	if !sess.closed {
		t.Fatal("session not closed")
	}
}

func TestEnsureSchemaError(t *testing.T) {
	sess := newMockSession()
	sess.failAt = 1
	if err := newMockStore(sess).EnsureSchema(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestVehiclePropsRoundTrip(t *testing.T) {
	v := Vehicle{
		VIN: "1HGCM82633A004352", WMI: "1HG", VDS: "CM8263", VIS: "3A004352",
		Region: "North America", Country: "United States", Manufacturer: "Honda",
		ModelYear: 2003, PlantCode: "A", SerialNumber: "004352", CheckDigitValid: true,
	}
	props := vehicleToMap(v)
	props["model_year"] = int64(2003) // the driver hands back int64
	if got := vehicleFromProps(props); got != v {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, v)
	}
}

func TestVehicleToMapOmitsUnresolvedYear(t *testing.T) {
	m := vehicleToMap(Vehicle{VIN: "X"})
	if _, ok := m["model_year"]; ok {
		t.Fatal("model_year should be absent when unresolved")
	}
}

func TestIntProp(t *testing.T) {
	props := map[string]any{"a": 1, "b": int64(2), "c": 3.0, "d": "4"}
	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3, "d": 0, "missing": 0} {
		if got := intProp(props, key); got != want {
			t.Errorf("intProp(%q) = %d, want %d", key, got, want)
		}
	}
}
