package barcard

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the engine.
var (
	// ErrBarNotFound is returned when a render names a bar the card lacks.
	ErrBarNotFound = errors.New("bar not found")
	// ErrNotWatchable is returned by Watch for engines not loaded from a file.
	ErrNotWatchable = errors.New("config source cannot be watched")
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine closed")
	// ErrInvalidFormat is returned for unknown config formats.
	ErrInvalidFormat = errors.New("invalid config format")
	// ErrNoWindow is returned by RunWindow in builds without a window backend.
	ErrNoWindow = errors.New("window preview not available in this build")
)

// ErrorCategory classifies errors for logging and alerting.
type ErrorCategory int

const (
	// ErrorCategoryUnknown is the default category for uncategorized errors.
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategoryConfig is for configuration parsing and validation errors.
	ErrorCategoryConfig
	// ErrorCategoryColor is for color references that fell back to gray.
	ErrorCategoryColor
	// ErrorCategoryState is for entity state and template evaluation errors.
	ErrorCategoryState
	// ErrorCategoryRender is for window and preview errors.
	ErrorCategoryRender
	// ErrorCategoryIO is for file and watcher errors.
	ErrorCategoryIO
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryConfig:
		return "config"
	case ErrorCategoryColor:
		return "color"
	case ErrorCategoryState:
		return "state"
	case ErrorCategoryRender:
		return "render"
	case ErrorCategoryIO:
		return "io"
	default:
		return "unknown"
	}
}

// ErrorSeverity indicates the severity level of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for degraded output that needs no action.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for non-critical issues that should be investigated.
	SeverityWarning
	// SeverityError is for errors that affect functionality but allow continued operation.
	SeverityError
	// SeverityCritical is for errors that stop the engine.
	SeverityCritical
)

// String returns a human-readable name for the severity level.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with tracking metadata.
type CategorizedError struct {
	Err       error
	Category  ErrorCategory
	Severity  ErrorSeverity
	Timestamp time.Time
	// Context holds key-value metadata such as the bar name.
	Context map[string]string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s/%s] (no error)", e.Severity, e.Category)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Severity, e.Category, e.Err.Error())
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorizedError creates a new CategorizedError with the given parameters.
func NewCategorizedError(err error, category ErrorCategory, severity ErrorSeverity) *CategorizedError {
	return &CategorizedError{
		Err:       err,
		Category:  category,
		Severity:  severity,
		Timestamp: time.Now(),
		Context:   make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context and returns the error.
func (e *CategorizedError) WithContext(key, value string) *CategorizedError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// CategoryOf returns the category of the first CategorizedError in err's
// chain, or ErrorCategoryUnknown.
func CategoryOf(err error) ErrorCategory {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorCategoryUnknown
}
