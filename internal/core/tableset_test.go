package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// pathFetcher answers by data path.
type pathFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (p *pathFetcher) Fetch(_ context.Context, path string, q Query) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[path]++
	if err := p.fail[path]; err != nil {
		return nil, err
	}
	return &Response{Data: []Record{NewRecord("path", path, "limit", q.PerPage)}, Count: 1}, nil
}

func TestTableSet_MountsDefinitions(t *testing.T) {
	defs := []TableDefinition{
		{Key: "services", DataPath: "/services", PageSize: 20},
		{Key: "deploys", DataPath: "/deploys"},
	}
	f := &pathFetcher{}
	set := NewTableSet(defs, f, nil, nil, TableOptions{PageSize: 50})

	if diff := cmp.Diff([]string{"services", "deploys"}, set.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	svc, def, ok := set.Table("services")
	if !ok || def.Key != "services" {
		t.Fatalf("Table(services) = %v, %+v, %v", svc, def, ok)
	}
	if svc.PageSize() != 20 {
		t.Errorf("services page size = %d, want 20", svc.PageSize())
	}
	dep, _, _ := set.Table("deploys")
	if dep.PageSize() != 50 {
		t.Errorf("deploys page size = %d, want 50", dep.PageSize())
	}

	if _, _, ok := set.Table("missing"); ok {
		t.Error("Table(missing) should not be found")
	}
}

func TestTableSet_SyncFiltersFetchesEveryTable(t *testing.T) {
	defs := []TableDefinition{
		{Key: "a", DataPath: "/a"},
		{Key: "b", DataPath: "/b"},
		{Key: "c", DataPath: "/c"},
	}
	f := &pathFetcher{fail: map[string]error{"/b": errors.New("boom")}}
	set := NewTableSet(defs, f, nil, nil, TableOptions{})

	err := set.SyncFilters(context.Background())
	if err == nil || err.Error() != "boom" {
		t.Errorf("SyncFilters() error = %v, want boom", err)
	}
	for _, p := range []string{"/a", "/b", "/c"} {
		if f.calls[p] != 1 {
			t.Errorf("calls[%s] = %d, want 1", p, f.calls[p])
		}
	}

	a, _, _ := set.Table("a")
	if len(a.Rows()) != 1 {
		t.Errorf("table a rows = %d, want 1", len(a.Rows()))
	}

	// Unchanged filters: no table refetches, including the one that failed.
	if err := set.SyncFilters(context.Background()); err != nil {
		t.Errorf("second SyncFilters() error = %v", err)
	}
	if f.calls["/a"] != 1 {
		t.Errorf("calls[/a] = %d, want 1", f.calls["/a"])
	}

	if err := set.RefreshAll(context.Background()); err == nil {
		t.Error("RefreshAll() expected error from /b")
	}
	if f.calls["/a"] != 2 {
		t.Errorf("calls[/a] after RefreshAll = %d, want 2", f.calls["/a"])
	}
}
