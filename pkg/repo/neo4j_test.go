package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

type fakeResult struct {
	records []*neo4j.Record
	pos     int
}

func (r *fakeResult) Next(_ context.Context) bool {
	if r.pos >= len(r.records) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeResult) Record() *neo4j.Record { return r.records[r.pos-1] }

type fakeSession struct {
	queries []string
	params  []map[string]any
	records []*neo4j.Record
	runErr  error
	closed  bool
}

func (s *fakeSession) Run(_ context.Context, cypher string, params map[string]any) (Result, error) {
	s.queries = append(s.queries, cypher)
	s.params = append(s.params, params)
	if s.runErr != nil {
		return nil, s.runErr
	}
	return &fakeResult{records: s.records}, nil
}

func (s *fakeSession) Close(_ context.Context) error {
	s.closed = true
	return nil
}

func (s *fakeSession) ExecuteWrite(_ context.Context, work func(tx Runner) (any, error)) (any, error) {
	return work(s)
}

type fakeOpener struct{ sess *fakeSession }

func (o fakeOpener) OpenSession(_ context.Context) Session { return o.sess }

type item struct {
	ID   string
	Name string
}

func itemRecord(id, name string) *neo4j.Record {
	return &neo4j.Record{
		Keys:   []string{"n"},
		Values: []any{dbtype.Node{Props: map[string]any{"code": id, "name": name}}},
	}
}

func newItemRepo(sess *fakeSession) *Neo4jRepo[item, string] {
	return NewNeo4jRepo[item, string](
		fakeOpener{sess: sess},
		"Item",
		func(i item) map[string]any { return map[string]any{"code": i.ID, "name": i.Name} },
		func(rec *neo4j.Record) (item, error) {
			node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
			if err != nil {
				return item{}, err
			}
			return item{ID: node.Props["code"].(string), Name: node.Props["name"].(string)}, nil
		},
		WithIDKey[item, string]("code"),
	)
}

func TestNewNeo4jRepoDefaults(t *testing.T) {
	r := NewNeo4jRepo[map[string]any, string](
		nil,
		"TestNode",
		func(m map[string]any) map[string]any { return m },
		nil,
		WithIDKey[map[string]any, string]("uuid"),
	)
	if r.idKey != "uuid" {
		t.Fatalf("expected idKey=uuid, got %s", r.idKey)
	}
	if r.Label() != "TestNode" {
		t.Fatalf("expected label=TestNode, got %s", r.Label())
	}
}

func TestNewNeo4jRepoDefaultIDKey(t *testing.T) {
	r := NewNeo4jRepo[map[string]any, string](nil, "Node", nil, nil)
	if r.idKey != "id" {
		t.Fatalf("expected default idKey=id, got %s", r.idKey)
	}
}

func TestGet(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{itemRecord("1HG", "Honda")}}
	r := newItemRepo(sess)

	got, err := r.Get(context.Background(), "1HG")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Honda" {
		t.Fatalf("unexpected item: %+v", got)
	}
	if !strings.Contains(sess.queries[0], "MATCH (n:Item {code: $id})") {
		t.Fatalf("unexpected cypher: %s", sess.queries[0])
	}
	if !sess.closed {
		t.Fatal("session not closed")
	}
}

func TestGetNotFound(t *testing.T) {
	r := newItemRepo(&fakeSession{})
	_, err := r.Get(context.Background(), "ZZZ")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRunError(t *testing.T) {
	r := newItemRepo(&fakeSession{runErr: errors.New("boom")})
	if _, err := r.Get(context.Background(), "1HG"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected run error, got %v", err)
	}
}

func TestListWithFilter(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{itemRecord("1HG", "Honda"), itemRecord("JHM", "Honda")}}
	r := newItemRepo(sess)

	items, err := r.List(context.Background(), ListOpts{Filter: map[string]any{"name": "Honda", "country": "Japan"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	q := sess.queries[0]
	if !strings.Contains(q, "WHERE n.country = $f_country AND n.name = $f_name") {
		t.Fatalf("unexpected cypher: %s", q)
	}
	p := sess.params[0]
	if p["limit"] != 100 || p["offset"] != 0 || p["f_name"] != "Honda" {
		t.Fatalf("unexpected params: %v", p)
	}
}

func TestListRejectsBadFilterKey(t *testing.T) {
	r := newItemRepo(&fakeSession{})
	_, err := r.List(context.Background(), ListOpts{Filter: map[string]any{"name}) DETACH DELETE n //": 1}})
	if err == nil {
		t.Fatal("expected error for invalid filter key")
	}
}

func TestCreateAndUpdate(t *testing.T) {
	sess := &fakeSession{records: []*neo4j.Record{itemRecord("WBA", "BMW")}}
	r := newItemRepo(sess)

	if _, err := r.Create(context.Background(), item{ID: "WBA", Name: "BMW"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Update(context.Background(), item{ID: "WBA", Name: "BMW"}); err != nil {
		t.Fatal(err)
	}
	if sess.params[1]["id"] != "WBA" {
		t.Fatalf("update should key on code, got %v", sess.params[1])
	}
}

func TestUpdateNotFound(t *testing.T) {
	r := newItemRepo(&fakeSession{})
	_, err := r.Update(context.Background(), item{ID: "WBA"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertAndDelete(t *testing.T) {
	sess := &fakeSession{}
	r := newItemRepo(sess)

	if err := r.Upsert(context.Background(), item{ID: "5YJ", Name: "Tesla"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sess.queries[0], "MERGE (n:Item {code: $id})") {
		t.Fatalf("unexpected cypher: %s", sess.queries[0])
	}
	if err := r.Delete(context.Background(), "5YJ"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sess.queries[1], "DETACH DELETE") {
		t.Fatalf("unexpected cypher: %s", sess.queries[1])
	}
}
