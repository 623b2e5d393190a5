package domain

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is assumed when a reference or definition carries no
// explicit version, per SDMX convention.
const DefaultVersion = "1.0"

// Annotation is a free-form note attached to an artefact.
type Annotation struct {
	ID    string
	Title string
	Type  string
	URL   string
	Text  InternationalString
}

// AnnotableArtefact is the base capability: every artefact carries
// zero or more annotations.
type AnnotableArtefact struct {
	Annotations []Annotation
}

// IdentifiableArtefact adds a stable id, an optional URI and a
// globally-unique URN.
type IdentifiableArtefact struct {
	AnnotableArtefact

	ID  string
	URI string
	URN string
}

// NameableArtefact adds a localised name and description.
type NameableArtefact struct {
	IdentifiableArtefact

	Name        InternationalString
	Description InternationalString
}

// VersionableArtefact adds a version number and a validity interval.
type VersionableArtefact struct {
	NameableArtefact

	Version   string
	ValidFrom *time.Time
	ValidTo   *time.Time
}

// MaintainableArtefact adds the owning agency. A maintainable artefact
// may appear in a message as a stub (IsExternalReference true) carrying
// a location hint instead of a full body.
type MaintainableArtefact struct {
	VersionableArtefact

	AgencyID            string
	IsExternalReference bool
	IsFinal             bool
	ServiceURL          string
	StructureURL        string
}

// Maintained gives generic access to the maintainable core of a
// concrete artefact type. Implemented by every maintainable artefact.
type Maintainable interface {
	Maintained() *MaintainableArtefact
	Kind() ArtefactKind
}

// Maintained implements Maintainable.
func (m *MaintainableArtefact) Maintained() *MaintainableArtefact { return m }

// Ref returns the reference identifying this artefact under the given
// kind.
func (m *MaintainableArtefact) Ref(kind ArtefactKind) Reference {
	return Reference{Kind: kind, AgencyID: m.AgencyID, ID: m.ID, Version: NormalizeVersion(m.Version)}
}

// NormalizeVersion maps the empty and "latest" version markers to a
// canonical form: "" and "latest" stay distinct from concrete versions,
// any other value is returned unchanged except that a missing version
// on a definition defaults to DefaultVersion.
func NormalizeVersion(v string) string {
	if v == "" {
		return DefaultVersion
	}
	return v
}

// CompareVersions orders two SDMX version strings. SDMX versions are
// commonly two-part ("1.0"); semver coercion handles both two- and
// three-part forms. Unparseable versions order lexically as a fallback.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ArtefactKind discriminates maintainable artefact types in references
// and in the resolver index.
type ArtefactKind string

// Maintainable artefact kinds.
const (
	KindCodelist          ArtefactKind = "Codelist"
	KindConceptScheme     ArtefactKind = "ConceptScheme"
	KindCategoryScheme    ArtefactKind = "CategoryScheme"
	KindAgencyScheme      ArtefactKind = "AgencyScheme"
	KindDataStructure     ArtefactKind = "DataStructure"
	KindDataflow          ArtefactKind = "Dataflow"
	KindContentConstraint ArtefactKind = "ContentConstraint"
	KindCategorisation    ArtefactKind = "Categorisation"
)

// IsValid returns true if the kind is recognised.
func (k ArtefactKind) IsValid() bool {
	switch k {
	case KindCodelist, KindConceptScheme, KindCategoryScheme, KindAgencyScheme,
		KindDataStructure, KindDataflow, KindContentConstraint, KindCategorisation:
		return true
	default:
		return false
	}
}

// Reference identifies a maintainable artefact by (kind, agency, id,
// version). Cross-artefact links in the model are always by Reference,
// resolved through the session resolver, never by owning pointer.
type Reference struct {
	Kind     ArtefactKind
	AgencyID string
	ID       string
	Version  string

	// ItemID addresses an item within the referenced scheme (a
	// concept, a category). Empty for references to the maintainable
	// itself.
	ItemID string
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r == Reference{}
}

// Parent returns the reference without its item part: the maintainable
// artefact containing the referenced item.
func (r Reference) Parent() Reference {
	r.ItemID = ""
	return r
}

// String renders the reference in the conventional
// "Kind=AGENCY:ID(VERSION)" form, with the item id appended after a
// dot when present.
func (r Reference) String() string {
	s := fmt.Sprintf("%s=%s:%s(%s)", r.Kind, r.AgencyID, r.ID, r.Version)
	if r.ItemID != "" {
		s += "." + r.ItemID
	}
	return s
}
