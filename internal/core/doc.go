// Package core provides the headless table pipeline behind the changelog
// views.
//
// This package has no UI dependencies. The web handlers, the terminal
// browser and the CLI export command all drive the same [Table].
//
// # Pipeline
//
//  1. A filter or page change builds a [Query] (offset/limit plus filter
//     pairs and an optional date range).
//  2. A [Fetcher] returns a [Response] of ordered [Record] values.
//  3. [Normalize] splits it into columns (keys of the first record) and
//     positional rows.
//  4. [SortRows] reorders the current page in place on user request.
//  5. [Expansion] remembers the single expanded cell per row.
//  6. [ConvertToCSV] derives the export matrix from the current rows.
//
// # Table Registry
//
// Mounted tables are registered by key with [Register]. Each
// [TableDefinition] names its data path and presentation options:
//
//	core.Register(core.TableDefinition{
//	    Key:           "services",
//	    Label:         "Services",
//	    DataPath:      "/services",
//	    IncludeExport: true,
//	})
//
// # Collaborators
//
// A [Table] never looks anything up globally. The fetcher, the [Notifier]
// that surfaces errors and the [FilterSource] holding the shared filter
// selection are passed to [NewTable].
//
// # Error Handling
//
// Fetch failures leave the previous rows on screen and are reported through
// the notifier. [MapError] turns technical errors into user messages with a
// support code.
package core
