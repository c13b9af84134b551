// pkg/model/cleaning.go
package model

import (
	"time"
)

// Cleaning operation kinds and reasons recorded in the audit trail
const (
	OpNullFill     = "null_fill"
	OpDateCoercion = "date_coercion"

	ReasonMissingValue   = "missing_value"
	ReasonUnparsableDate = "unparsable_date"
)

// CleaningOperation represents a single cell changed by a cleaning stage
type CleaningOperation struct {
	RunID             string    // Pipeline run that performed the change
	TableName         string    // Logical table name
	ColumnName        string    // Column that was cleaned
	RowIndex          int       // Zero-based row position
	RowIdentifier     string    // Order number of the row when known, else the row index
	OriginalValue     any       // Original value (may be nil)
	NewValue          string    // New value after cleaning, empty for nulled cells
	CleaningOperation string    // Type of cleaning performed (e.g., "null_fill")
	CleaningReason    string    // Reason for cleaning (e.g., "missing_value")
	CleanedAt         time.Time // When the cleaning occurred
}
