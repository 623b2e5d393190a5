package domain

// DataContentType selects the wire encoding a provider serves data in.
type DataContentType string

// Data content types.
const (
	ContentSDMXML   DataContentType = "sdmx-ml"
	ContentSDMXJSON DataContentType = "sdmx-json"
)

// IsValid returns true if the content type is recognised.
func (c DataContentType) IsValid() bool {
	return c == ContentSDMXML || c == ContentSDMXJSON
}

// Provider is a configured SDMX web service: the endpoint the transport
// collaborator fetches from. Per-provider header quirks stay with the
// transport layer; the core only carries identity and addressing.
type Provider struct {
	// ID is the short registry key, e.g. "ECB".
	ID string

	// Name is the human-readable provider name.
	Name string

	// URL is the REST entry point, without a trailing slash.
	URL string

	// AgencyID is the default maintaining agency for this provider's
	// artefacts.
	AgencyID string

	// DataContentType is the encoding the provider serves data
	// messages in. Defaults to SDMX-ML.
	DataContentType DataContentType
}

// Validate checks the provider definition for the fields the core
// requires.
func (p Provider) Validate() error {
	if p.ID == "" {
		return KeyValidationError{Dimension: "id", Reason: "provider id is required"}
	}
	if p.URL == "" {
		return KeyValidationError{Dimension: "url", Reason: "provider url is required"}
	}
	if p.DataContentType != "" && !p.DataContentType.IsValid() {
		return KeyValidationError{
			Dimension: "data_content_type",
			Value:     string(p.DataContentType),
			Reason:    "unknown data content type",
		}
	}
	return nil
}
