package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/changelog/internal/core"
)

func TestParsePage(t *testing.T) {
	v := url.Values{
		"offset":     {"20"},
		"limit":      {"10"},
		"service":    {"api"},
		"cluster":    {"prod"},
		"start_date": {"2024-01-01T00:00:00Z"},
	}

	p, err := ParsePage(v, 100)
	if err != nil {
		t.Fatalf("ParsePage() error = %v", err)
	}
	if p.Offset != 20 || p.Limit != 10 {
		t.Errorf("offset/limit = %d/%d", p.Offset, p.Limit)
	}
	want := []core.Filter{{Field: "cluster", Value: "prod"}, {Field: "service", Value: "api"}}
	if diff := cmp.Diff(want, p.Filters); diff != "" {
		t.Errorf("filters mismatch (-want +got):\n%s", diff)
	}
	if p.Start == nil || !p.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", p.Start)
	}
	if p.End != nil {
		t.Errorf("end = %v, want nil", p.End)
	}
}

func TestParsePage_Defaults(t *testing.T) {
	p, err := ParsePage(url.Values{}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if p.Offset != 0 || p.Limit != core.DefaultPageSize || len(p.Filters) != 0 {
		t.Errorf("page = %+v", p)
	}

	p, err = ParsePage(url.Values{"limit": {"1000"}}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if p.Limit != 100 {
		t.Errorf("limit = %d, want capped to 100", p.Limit)
	}
}

func TestParsePage_Errors(t *testing.T) {
	tests := []url.Values{
		{"offset": {"-1"}},
		{"offset": {"x"}},
		{"limit": {"0"}},
		{"start_date": {"2024-01-01"}},
		{"end_date": {"yesterday"}},
	}
	for _, v := range tests {
		if _, err := ParsePage(v, 100); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("ParsePage(%v) error = %v, want ErrInvalidParam", v, err)
		}
	}
}

func TestBuildQueries(t *testing.T) {
	ds := DefaultDatasets()[2] // deploys
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	countSQL, pageSQL, args, err := buildQueries(ds, Page{
		Offset:  10,
		Limit:   5,
		Filters: []core.Filter{{Field: "cluster", Value: "prod"}},
		Start:   &start,
		End:     &end,
	})
	if err != nil {
		t.Fatalf("buildQueries() error = %v", err)
	}

	wantWhere := ` WHERE "cluster"::text = $1 AND "timestamp" >= $2 AND "timestamp" <= $3`
	if want := `SELECT COUNT(*) FROM "deploys"` + wantWhere; countSQL != want {
		t.Errorf("countSQL =\n%s\nwant\n%s", countSQL, want)
	}
	wantPage := `SELECT row_to_json(t)::text FROM (SELECT * FROM "deploys"` + wantWhere +
		` ORDER BY "timestamp" DESC LIMIT $4 OFFSET $5) AS t`
	if pageSQL != wantPage {
		t.Errorf("pageSQL =\n%s\nwant\n%s", pageSQL, wantPage)
	}
	if diff := cmp.Diff([]any{"prod", start, end}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildQueries_NoConditions(t *testing.T) {
	ds := Dataset{Name: "x", Relation: "public.changes"}
	countSQL, pageSQL, args, err := buildQueries(ds, Page{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if countSQL != `SELECT COUNT(*) FROM "public"."changes"` {
		t.Errorf("countSQL = %s", countSQL)
	}
	if pageSQL != `SELECT row_to_json(t)::text FROM (SELECT * FROM "public"."changes" LIMIT $1 OFFSET $2) AS t` {
		t.Errorf("pageSQL = %s", pageSQL)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildQueries_RejectsUnknownFilter(t *testing.T) {
	ds := DefaultDatasets()[0]
	_, _, _, err := buildQueries(ds, Page{Filters: []core.Filter{{Field: "password\"--", Value: "x"}}})
	if !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("error = %v, want ErrUnknownFilter", err)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := map[string]string{
		"services":        `"services"`,
		`we"ird`:          `"we""ird"`,
		"public.services": `"public"."services"`,
	}
	for in, want := range tests {
		if got := quoteIdentifier(in); got != want {
			t.Errorf("quoteIdentifier(%q) = %s, want %s", in, got, want)
		}
	}
}

// fakeDB answers the count and page queries with canned values.
type fakeDB struct {
	count    int64
	rows     []string
	countErr error
	lastSQL  []string
	lastArgs [][]any
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = append(f.lastSQL, sql)
	f.lastArgs = append(f.lastArgs, args)
	return fakeRow{count: f.count, err: f.countErr}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL = append(f.lastSQL, sql)
	f.lastArgs = append(f.lastArgs, args)
	return &fakeRows{values: f.rows, pos: -1}, nil
}

type fakeRow struct {
	count int64
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.count
	return nil
}

type fakeRows struct {
	values []string
	pos    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.values[r.pos]
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return []any{r.values[r.pos]}, nil
}

func TestStore_Query(t *testing.T) {
	db := &fakeDB{
		count: 42,
		rows: []string{
			`{"id":1,"name":"api","latest_deploy":{"id":7,"timestamp":"2024-03-01"}}`,
			`{"id":2,"name":"web","latest_deploy":null}`,
		},
	}
	s, err := New(db, DefaultDatasets(), nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := s.Query(context.Background(), "services", Page{Offset: 10, Limit: 2})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if resp.Count != 42 || len(resp.Data) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if diff := cmp.Diff([]string{"id", "name", "latest_deploy"}, resp.Data[0].Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{2, 10}, db.lastArgs[1]); diff != "" {
		t.Errorf("page args mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_QueryErrors(t *testing.T) {
	s, err := New(&fakeDB{countErr: fmt.Errorf("connection refused")}, DefaultDatasets(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Query(context.Background(), "releases", Page{Limit: 1}); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("unknown dataset error = %v", err)
	}
	if got := core.MapError(fmt.Errorf("%w: releases", ErrUnknownDataset)).Code; got != "TBL002" {
		t.Errorf("MapError code = %q, want TBL002", got)
	}
	if _, err := s.Query(context.Background(), "services", Page{Limit: 1}); err == nil {
		t.Error("expected count error")
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	ds := []Dataset{{Name: "a", Relation: "a"}, {Name: "a", Relation: "b"}}
	if _, err := New(&fakeDB{}, ds, nil); err == nil {
		t.Error("expected duplicate error")
	}
	if _, err := New(&fakeDB{}, []Dataset{{Name: "a"}}, nil); err == nil {
		t.Error("expected missing relation error")
	}

	s, err := New(&fakeDB{}, DefaultDatasets(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"commits", "deploys", "services"}, s.Datasets()); diff != "" {
		t.Errorf("Datasets() mismatch (-want +got):\n%s", diff)
	}
}
