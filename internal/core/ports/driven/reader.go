package driven

import (
	"context"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// RawMessage is the undecoded wire message handed to a reader: bytes
// plus the content type the transport reported. Origin (file, archive
// member, network body) is irrelevant to readers.
type RawMessage struct {
	// URL is the request or file location the bytes came from.
	// Informational; used for cache keys and diagnostics.
	URL string

	// ContentType is the media type, possibly with parameters
	// (e.g. "application/vnd.sdmx.genericdata+xml;version=2.1").
	ContentType string

	// Body is the complete message payload.
	Body []byte
}

// ReadOptions tunes a single parse.
type ReadOptions struct {
	// Structure is a pre-supplied data structure definition. Required
	// for structure-specific datasets, which cannot distinguish
	// dimensions from attributes without it.
	Structure *domain.DataStructureDefinition

	// DimensionAtObservation overrides the header-declared dimension
	// at observation. Empty keeps the document's declaration.
	DimensionAtObservation string
}

// Reader decodes one wire format into the information model.
// Each reader handles specific content types (SDMX-ML, SDMX-JSON).
type Reader interface {
	// SupportedContentTypes returns the media types this reader
	// handles, without parameters.
	SupportedContentTypes() []string

	// SupportedExtensions returns the file extensions (with leading
	// dot) this reader handles when no content type is known.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred)
	// when several readers claim a content type.
	Priority() int

	// Read decodes a complete message. Parsing failures abort the
	// document; a partial model is never returned.
	Read(ctx context.Context, raw *RawMessage, opts ReadOptions) (*domain.Message, error)
}
