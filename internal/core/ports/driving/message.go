package driving

import (
	"context"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

// MessageService decodes raw wire messages into the information model.
type MessageService interface {
	// Parse selects a reader for the raw message's content type (or
	// file extension) and decodes it. Returns
	// domain.ErrMalformedDocument wrapped with detail on structurally
	// invalid input.
	Parse(ctx context.Context, raw *driven.RawMessage, opts driven.ReadOptions) (*domain.Message, error)

	// Readers returns the registered readers in priority order.
	Readers() []driven.Reader
}

// KeyValidator canonicalizes and validates data-query selections
// against a DSD and optional content constraints.
type KeyValidator interface {
	// ValidateSelection checks every candidate value of the selection
	// (dimension id -> one or more values) and returns the canonical
	// positional key string. Failures are returned as
	// domain.ValidationErrors, one entry per offending value.
	ValidateSelection(selection map[string][]string) (string, error)

	// ValidateKeyString parses a positional key string
	// ("."-separated slots, "+" OR-lists, empty slot wildcards),
	// validates it and returns its canonical form.
	ValidateKeyString(key string) (string, error)

	// Permitted reports whether a value is acceptable for a dimension
	// under the DSD's codelists and the supplied constraints.
	Permitted(dimensionID, value string) bool
}
