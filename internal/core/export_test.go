package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestConvertToCSV_LatestColumns(t *testing.T) {
	columns := []string{"name", ColumnLatestCommit, ColumnLatestDeploy}

	tests := []struct {
		name string
		cell any
		want any
	}{
		{"null cell", nil, ""},
		{"zero id sentinel", NewRecord("id", json.Number("0")), ""},
		{"zero id with timestamp", NewRecord("id", 0, "timestamp", "2024-01-01T00:00:00Z"), ""},
		{"real id", NewRecord("id", json.Number("5"), "timestamp", "2024-01-01T00:00:00Z"), "2024-01-01T00:00:00Z"},
		{"missing timestamp", NewRecord("id", 5), ""},
		{"not an object", "oops", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []Row{{"api", tt.cell, tt.cell}}
			got := ConvertToCSV(rows, columns, DefaultFormatters())

			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if got[1][1] != tt.want || got[1][2] != tt.want {
				t.Errorf("row = %v, want %v in commit and deploy positions", got[1], tt.want)
			}
		})
	}
}

func TestConvertToCSV_EndToEnd(t *testing.T) {
	body := `{"data":[{"id":1,"latest_deploy":null},{"id":2,"latest_deploy":{"id":7,"timestamp":"2024-03-01"}}],"count":2}`
	resp, err := DecodeResponse(stringsReader(body))
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	columns, rows, _ := Normalize(*resp)

	got := ConvertToCSV(rows, columns, DefaultFormatters())
	want := [][]any{
		{"id", "latest_deploy"},
		{json.Number("1"), ""},
		{json.Number("2"), "2024-03-01"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ConvertToCSV mismatch (-want +got):\n%s", diff)
	}

	records := StringRecords(got)
	wantRecords := [][]string{{"id", "latest_deploy"}, {"1", ""}, {"2", "2024-03-01"}}
	if diff := cmp.Diff(wantRecords, records); diff != "" {
		t.Errorf("StringRecords mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertToCSV_DoesNotMutateRows(t *testing.T) {
	deploy := NewRecord("id", 7, "timestamp", "2024-03-01")
	rows := []Row{{1, deploy}}

	_ = ConvertToCSV(rows, []string{"id", ColumnLatestDeploy}, DefaultFormatters())

	if _, ok := rows[0][1].(Record); !ok {
		t.Errorf("input row was modified: %v", rows[0])
	}
}

func TestConvertToCSV_OtherColumnsPassThrough(t *testing.T) {
	nested := NewRecord("k", "v")
	rows := []Row{{nested, true, nil}}

	got := ConvertToCSV(rows, []string{"meta", "active", "note"}, DefaultFormatters())

	if diff := cmp.Diff([]any{nested, true, nil}, got[1], cmp.AllowUnexported(Record{})); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`{"k":"v"}`, "true", ""}, StringRecords(got)[1]); diff != "" {
		t.Errorf("string record mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertToCSV_EmptyRows(t *testing.T) {
	got := ConvertToCSV(nil, []string{"a", "b"}, nil)
	if diff := cmp.Diff([][]any{{"a", "b"}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		now  time.Time
		ext  string
		want string
	}{
		{time.Date(2024, time.January, 5, 12, 0, 0, 0, time.Local), "csv", "changelog-1-5-2024.csv"},
		{time.Date(2023, time.December, 31, 23, 0, 0, 0, time.Local), "csv", "changelog-12-31-2023.csv"},
		{time.Date(2025, time.July, 14, 8, 0, 0, 0, time.Local), "xlsx", "changelog-7-14-2025.xlsx"},
	}

	for _, tt := range tests {
		if got := ExportFilename(tt.now, tt.ext); got != tt.want {
			t.Errorf("ExportFilename(%v) = %q, want %q", tt.now, got, tt.want)
		}
	}
}
