package domain

import (
	"strings"
	"time"
)

// Party identifies a message sender or receiver.
type Party struct {
	ID   string
	Name InternationalString
}

// PayloadStructure describes, in a message header, which structure a
// dataset payload uses and which dimension varies at observation level.
type PayloadStructure struct {
	StructureID            string
	DimensionAtObservation string
	Structure              Reference
}

// Header carries message identity and provenance.
type Header struct {
	ID       string
	Test     bool
	Prepared time.Time
	Sender   Party
	Receiver Party

	// Structures lists the payload structures declared for the
	// message's datasets, keyed by structure id in document order.
	Structures []PayloadStructure
}

// StructureFor returns the payload structure with the given id.
func (h *Header) StructureFor(id string) (PayloadStructure, bool) {
	for _, ps := range h.Structures {
		if ps.StructureID == id {
			return ps, true
		}
	}
	return PayloadStructure{}, false
}

// FooterSeverity tags footer diagnostic text.
type FooterSeverity string

// Footer severities.
const (
	SeverityError       FooterSeverity = "Error"
	SeverityWarning     FooterSeverity = "Warning"
	SeverityInformation FooterSeverity = "Information"
)

// FooterMessage is one severity-coded block of diagnostic text lines.
// The text is exposed verbatim to callers, never interpreted.
type FooterMessage struct {
	Code     int
	Severity FooterSeverity
	Lines    []string
}

// Footer carries diagnostic text and, for deferred large results, a
// follow-up retrieval link. Polling policy lives with the caller.
type Footer struct {
	Messages []FooterMessage
}

// RetrievalURL returns the first footer text line that is an http(s)
// link, or "" when the footer carries none.
func (f *Footer) RetrievalURL() string {
	for _, m := range f.Messages {
		for _, line := range m.Lines {
			l := strings.TrimSpace(line)
			if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
				return l
			}
		}
	}
	return ""
}

// StructureSet holds the structural-metadata payload of a message: for
// each artefact kind, the artefacts keyed by id in document order.
type StructureSet struct {
	codelists       itemList[*Codelist]
	conceptSchemes  itemList[*ConceptScheme]
	categorySchemes itemList[*CategoryScheme]
	agencySchemes   itemList[*AgencyScheme]
	dataStructures  itemList[*DataStructureDefinition]
	dataflows       itemList[*DataflowDefinition]
	constraints     itemList[*ContentConstraint]
	categorisations itemList[*Categorisation]
}

// Add files an artefact under its kind. Artefacts sharing an id within
// one kind collide with ErrDuplicateItem.
func (s *StructureSet) Add(a Maintainable) error {
	ok := false
	switch v := a.(type) {
	case *Codelist:
		ok = s.codelists.add(v.ID, v)
	case *ConceptScheme:
		ok = s.conceptSchemes.add(v.ID, v)
	case *CategoryScheme:
		ok = s.categorySchemes.add(v.ID, v)
	case *AgencyScheme:
		ok = s.agencySchemes.add(v.ID, v)
	case *DataStructureDefinition:
		ok = s.dataStructures.add(v.ID, v)
	case *DataflowDefinition:
		ok = s.dataflows.add(v.ID, v)
	case *ContentConstraint:
		ok = s.constraints.add(v.ID, v)
	case *Categorisation:
		ok = s.categorisations.add(v.ID, v)
	default:
		return ErrNotFound
	}
	if !ok {
		return ErrDuplicateItem
	}
	return nil
}

// Codelists returns the codelists in document order.
func (s *StructureSet) Codelists() []*Codelist { return s.codelists.list() }

// Codelist returns the codelist with the given id.
func (s *StructureSet) Codelist(id string) (*Codelist, bool) { return s.codelists.get(id) }

// ConceptSchemes returns the concept schemes in document order.
func (s *StructureSet) ConceptSchemes() []*ConceptScheme { return s.conceptSchemes.list() }

// ConceptScheme returns the concept scheme with the given id.
func (s *StructureSet) ConceptScheme(id string) (*ConceptScheme, bool) {
	return s.conceptSchemes.get(id)
}

// CategorySchemes returns the category schemes in document order.
func (s *StructureSet) CategorySchemes() []*CategoryScheme { return s.categorySchemes.list() }

// CategoryScheme returns the category scheme with the given id.
func (s *StructureSet) CategoryScheme(id string) (*CategoryScheme, bool) {
	return s.categorySchemes.get(id)
}

// AgencySchemes returns the agency schemes in document order.
func (s *StructureSet) AgencySchemes() []*AgencyScheme { return s.agencySchemes.list() }

// DataStructures returns the DSDs in document order.
func (s *StructureSet) DataStructures() []*DataStructureDefinition {
	return s.dataStructures.list()
}

// DataStructure returns the DSD with the given id.
func (s *StructureSet) DataStructure(id string) (*DataStructureDefinition, bool) {
	return s.dataStructures.get(id)
}

// Dataflows returns the dataflows in document order.
func (s *StructureSet) Dataflows() []*DataflowDefinition { return s.dataflows.list() }

// Dataflow returns the dataflow with the given id.
func (s *StructureSet) Dataflow(id string) (*DataflowDefinition, bool) { return s.dataflows.get(id) }

// Constraints returns the content constraints in document order.
func (s *StructureSet) Constraints() []*ContentConstraint { return s.constraints.list() }

// Categorisations returns the categorisations in document order.
func (s *StructureSet) Categorisations() []*Categorisation { return s.categorisations.list() }

// IsEmpty reports whether the set holds no artefacts.
func (s *StructureSet) IsEmpty() bool {
	return s.codelists.len() == 0 && s.conceptSchemes.len() == 0 &&
		s.categorySchemes.len() == 0 && s.agencySchemes.len() == 0 &&
		s.dataStructures.len() == 0 && s.dataflows.len() == 0 &&
		s.constraints.len() == 0 && s.categorisations.len() == 0
}

// Message is the result of one parse: header, structural-metadata
// payload, datasets and the optional footer, plus any unresolved
// reference warnings collected at session end.
type Message struct {
	Header     Header
	Structures StructureSet
	DataSets   []*DataSet
	Footer     *Footer

	Warnings []UnresolvedReferenceWarning
}

// CodelistByRef resolves a codelist reference against this message's
// payload. Used by the key validator for enumerated representations.
func (m *Message) CodelistByRef(ref Reference) (*Codelist, bool) {
	cl, ok := m.Structures.Codelist(ref.ID)
	if !ok {
		return nil, false
	}
	if ref.AgencyID != "" && cl.AgencyID != "" && ref.AgencyID != cl.AgencyID {
		return nil, false
	}
	if ref.Version != "" && cl.Version != "" && CompareVersions(ref.Version, cl.Version) != 0 {
		return nil, false
	}
	return cl, true
}

// ConceptByRef resolves a component's concept identity (a concept
// scheme reference carrying the concept as item) against this
// message's payload.
func (m *Message) ConceptByRef(ref Reference) (*Concept, bool) {
	if ref.ItemID == "" {
		return nil, false
	}
	cs, ok := m.Structures.ConceptScheme(ref.ID)
	if !ok {
		return nil, false
	}
	if ref.AgencyID != "" && cs.AgencyID != "" && ref.AgencyID != cs.AgencyID {
		return nil, false
	}
	if ref.Version != "" && cs.Version != "" && CompareVersions(ref.Version, cs.Version) != 0 {
		return nil, false
	}
	return cs.Get(ref.ItemID)
}
