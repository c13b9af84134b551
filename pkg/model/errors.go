// pkg/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is
var (
	ErrSchema         = errors.New("schema error")
	ErrTransformation = errors.New("transformation error")
	ErrLoad           = errors.New("load error")
)

// SchemaError reports a required column that is missing, or a drop target
// that is already absent
type SchemaError struct {
	Op     string // Operation that detected the mismatch (e.g., "normalize")
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: column %q: %s", e.Op, e.Column, e.Reason)
}

// Is makes errors.Is(err, ErrSchema) hold
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// MissingColumn returns a SchemaError for a column that must exist
func MissingColumn(op, column string) *SchemaError {
	return &SchemaError{Op: op, Column: column, Reason: "column not found"}
}

// TransformationError wraps an unexpected failure inside a pipeline stage
type TransformationError struct {
	Stage string
	Err   error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("transformation failed in stage %s: %v", e.Stage, e.Err)
}

func (e *TransformationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransformation) hold
func (e *TransformationError) Is(target error) bool {
	return target == ErrTransformation
}

// NewTransformationError wraps err for stage
func NewTransformationError(stage string, err error) *TransformationError {
	return &TransformationError{Stage: stage, Err: err}
}

// LoadError reports a failure to load the input dataset
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrLoad) hold
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// ErrorCategory classifies errors for logging
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryDiagnostic
	ErrorCategorySchema
	ErrorCategoryTransformation
	ErrorCategoryLoad
	ErrorCategoryUnknown
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryDiagnostic:
		return "Diagnostic"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryTransformation:
		return "Transformation"
	case ErrorCategoryLoad:
		return "Load"
	default:
		return fmt.Sprintf("Unknown(%d)", int(ec))
	}
}

// ErrDiagnostic marks failures of best-effort diagnostic exports
var ErrDiagnostic = errors.New("diagnostic export failed")

// CategorizeError maps an error to its category
func CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, ErrSchema):
		return ErrorCategorySchema
	case errors.Is(err, ErrLoad):
		return ErrorCategoryLoad
	case errors.Is(err, ErrTransformation):
		return ErrorCategoryTransformation
	case errors.Is(err, ErrDiagnostic):
		return ErrorCategoryDiagnostic
	default:
		return ErrorCategoryUnknown
	}
}

// Pipeline stage names carried by TransformationError
const (
	StageAudit        = "audit"
	StageResolveNulls = "resolve-nulls"
	StageNormalize    = "normalize"
	StageAugment      = "augment"
	StageVerify       = "verify"
	StageRecord       = "record"
	StagePersist      = "persist"
)
