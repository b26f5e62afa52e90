package store

import "fmt"

// Dataset maps a public dataset name to a table or view.
type Dataset struct {
	// Name is the URL segment, e.g. "services".
	Name string
	// Relation is the SQL table or view the rows come from.
	Relation string
	// DateColumn is compared against start_date and end_date.
	// Empty means the dataset ignores date filters.
	DateColumn string
	// OrderBy is the column rows are ordered by, newest first.
	OrderBy string
	// Filters are the columns a client may filter on by equality.
	Filters []string
}

// DefaultDatasets are the datasets served by the changelog schema.
//
// services_overview is a view that joins each service with its latest
// commit and latest deploy as JSON objects.
func DefaultDatasets() []Dataset {
	return []Dataset{
		{
			Name:       "services",
			Relation:   "services_overview",
			DateColumn: "updated_at",
			OrderBy:    "updated_at",
			Filters:    []string{"name", "owner", "tier"},
		},
		{
			Name:       "commits",
			Relation:   "commits",
			DateColumn: "timestamp",
			OrderBy:    "timestamp",
			Filters:    []string{"service", "author", "ref"},
		},
		{
			Name:       "deploys",
			Relation:   "deploys",
			DateColumn: "timestamp",
			OrderBy:    "timestamp",
			Filters:    []string{"service", "cluster", "image", "ref"},
		},
	}
}

func (d Dataset) allows(field string) bool {
	for _, f := range d.Filters {
		if f == field {
			return true
		}
	}
	return false
}

func (d Dataset) validate() error {
	if d.Name == "" || d.Relation == "" {
		return fmt.Errorf("dataset %q: name and relation are required", d.Name)
	}
	return nil
}
