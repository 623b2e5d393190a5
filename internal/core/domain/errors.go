package domain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Wrap these with errors.Wrap to add context while
// preserving the type for errors.Is checks.
var (
	// ErrMalformedDocument indicates structurally invalid input for the
	// chosen wire format. Parsing aborts; no partial result is kept.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrUnsupportedFormatVersion indicates a recognised but
	// unsupported prior structural-metadata generation (SDMX 2.0).
	ErrUnsupportedFormatVersion = errors.New("unsupported format version")

	// ErrStructureRequired indicates structure-specific data was read
	// without a pre-supplied data structure definition.
	ErrStructureRequired = errors.New("structure-specific data requires a data structure definition")

	// ErrDuplicateItem indicates an id collision within a scheme or
	// descriptor.
	ErrDuplicateItem = errors.New("duplicate item id")

	// ErrUnknownDimension indicates a selection named a dimension the
	// DSD does not declare.
	ErrUnknownDimension = errors.New("unknown dimension")

	// ErrProviderNotFound indicates an unconfigured data provider id.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrNotFound indicates a requested entity (cache entry, artefact)
	// does not exist.
	ErrNotFound = errors.New("not found")
)

// UnresolvedReferenceWarning reports a reference that was never
// resolved to a full definition by session end. Non-fatal: the stub
// artefact remains and is legal (defined elsewhere).
type UnresolvedReferenceWarning struct {
	Ref Reference
}

// String renders the warning for logs.
func (w UnresolvedReferenceWarning) String() string {
	return fmt.Sprintf("unresolved reference %s", w.Ref)
}

// KeyValidationError reports one offending dimension/value pair.
// Validation collects one error per pair so callers can correct all
// problems in a single pass.
type KeyValidationError struct {
	Dimension string
	Value     string
	Reason    string
}

// Error implements the error interface.
func (e KeyValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for dimension %s: %s", e.Value, e.Dimension, e.Reason)
}

// ValidationErrors aggregates per-value key validation failures.
type ValidationErrors []KeyValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "key validation failed"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("key validation failed: %s", strings.Join(msgs, "; "))
}

// IncompatibleFrequencyError reports series whose frequencies cannot be
// combined into one chronologically indexed table.
type IncompatibleFrequencyError struct {
	Want      string
	Got       string
	SeriesKey string
}

// Error implements the error interface.
func (e IncompatibleFrequencyError) Error() string {
	return fmt.Sprintf("incompatible frequency %q for series %s (table frequency %q)",
		e.Got, e.SeriesKey, e.Want)
}

// RetrievalError surfaces a transport failure to callers as an opaque
// retrieval failure with status information attached. The core never
// interprets it beyond the status code.
type RetrievalError struct {
	StatusCode int
	URL        string
	Body       string
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval of %s failed with status %d", e.URL, e.StatusCode)
}
