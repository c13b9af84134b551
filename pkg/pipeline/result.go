// pkg/pipeline/result.go
package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StageTiming is the wall time spent in one pipeline stage
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// RunResult represents the result of one pipeline run
type RunResult struct {
	RunID              string
	Table              string
	RowsIn             int
	RowsOut            int
	ColumnsOut         []string
	DuplicatedRows     int
	KeyDuplicates      int
	NullsFilled        int
	UnparsableDates    int
	CleaningOperations int
	ArtifactPath       string
	Stages             []StageTiming
	Warnings           []string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewRunResult initializes a run result
func NewRunResult(runID, table string, rowsIn int) *RunResult {
	return &RunResult{
		RunID:     runID,
		Table:     table,
		RowsIn:    rowsIn,
		StartTime: time.Now(),
		Stages:    make([]StageTiming, 0, 7),
		Warnings:  make([]string, 0),
	}
}

// AddStage records the duration of a finished stage
func (r *RunResult) AddStage(stage string, d time.Duration) {
	r.Stages = append(r.Stages, StageTiming{Stage: stage, Duration: d})
}

// AddWarning adds a warning to the result
func (r *RunResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// Complete marks the run as complete and calculates duration
func (r *RunResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// StageDuration returns the recorded duration of stage
func (r *RunResult) StageDuration(stage string) (time.Duration, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Duration, true
		}
	}
	return 0, false
}

// Fields returns the result as zap fields for the run summary log line
func (r *RunResult) Fields() []zap.Field {
	return []zap.Field{
		zap.String("runID", r.RunID),
		zap.Int("rowsIn", r.RowsIn),
		zap.Int("rowsOut", r.RowsOut),
		zap.Int("duplicatedRows", r.DuplicatedRows),
		zap.Int("keyDuplicates", r.KeyDuplicates),
		zap.Int("nullsFilled", r.NullsFilled),
		zap.Int("unparsableDates", r.UnparsableDates),
		zap.String("artifactPath", r.ArtifactPath),
		zap.Duration("duration", r.Duration),
	}
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

// Report creates a detailed run report
func (r *RunResult) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, `
Cleaning Run Report
===================
Run ID:                  %s
Table:                   %s
Duration:                %s
Start Time:              %s
End Time:                %s

Data Summary
------------
Rows In:                 %d
Rows Out:                %d
Columns Out:             %d
Duplicated Rows:         %d (%.1f%%)
Rows With Duplicate Key: %d (%.1f%%)
Nulls Filled:            %d
Unparsable Dates:        %d (%.1f%%)
Cleaning Ops:            %d
Artifact:                %s
`,
		r.RunID,
		r.Table,
		formatDuration(r.Duration),
		r.StartTime.Format(time.RFC3339),
		r.EndTime.Format(time.RFC3339),

		r.RowsIn,
		r.RowsOut,
		len(r.ColumnsOut),
		r.DuplicatedRows, getPercentage(float64(r.DuplicatedRows), float64(r.RowsIn)),
		r.KeyDuplicates, getPercentage(float64(r.KeyDuplicates), float64(r.RowsIn)),
		r.NullsFilled,
		r.UnparsableDates, getPercentage(float64(r.UnparsableDates), float64(r.RowsIn)),
		r.CleaningOperations,
		r.ArtifactPath,
	)

	b.WriteString("\nStage Timings\n-------------\n")
	for _, s := range r.Stages {
		fmt.Fprintf(&b, "- %-14s %s (%.1f%%)\n", s.Stage+":", formatDuration(s.Duration),
			getPercentage(float64(s.Duration), float64(r.Duration)))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nWarnings\n--------\n")
		warnings := append([]string(nil), r.Warnings...)
		sort.Strings(warnings)
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
