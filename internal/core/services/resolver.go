package services

import (
	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// Resolver is the per-parse-session artefact registry. It gives every
// maintainable artefact a single canonical instance keyed by
// (kind, agency, id, version): the first reference allocates an
// external-reference stub, and the full definition later fills the same
// instance in place so all prior handles observe the completed
// artefact. References frequently precede definitions in SDMX-ML
// documents.
//
// A Resolver is never shared across parse sessions and is not safe for
// concurrent use.
type Resolver struct {
	entries map[domain.Reference]domain.Maintainable
	order   []domain.Reference
}

// NewResolver creates an empty session registry.
func NewResolver() *Resolver {
	return &Resolver{entries: make(map[domain.Reference]domain.Maintainable)}
}

// newArtefact allocates a zero artefact of the given kind.
func newArtefact(kind domain.ArtefactKind) (domain.Maintainable, error) {
	switch kind {
	case domain.KindCodelist:
		return &domain.Codelist{}, nil
	case domain.KindConceptScheme:
		return &domain.ConceptScheme{}, nil
	case domain.KindCategoryScheme:
		return &domain.CategoryScheme{}, nil
	case domain.KindAgencyScheme:
		return &domain.AgencyScheme{}, nil
	case domain.KindDataStructure:
		return &domain.DataStructureDefinition{}, nil
	case domain.KindDataflow:
		return &domain.DataflowDefinition{}, nil
	case domain.KindContentConstraint:
		return &domain.ContentConstraint{}, nil
	case domain.KindCategorisation:
		return &domain.Categorisation{}, nil
	default:
		return nil, errors.Newf("unknown artefact kind %q", kind)
	}
}

// Resolve returns the canonical instance for the reference, allocating
// a stub (IsExternalReference true) on first sight.
func (r *Resolver) Resolve(kind domain.ArtefactKind, agency, id, version string) (domain.Maintainable, error) {
	ref := domain.Reference{
		Kind:     kind,
		AgencyID: agency,
		ID:       id,
		Version:  domain.NormalizeVersion(version),
	}
	if a, ok := r.entries[ref]; ok {
		return a, nil
	}
	a, err := newArtefact(kind)
	if err != nil {
		return nil, err
	}
	m := a.Maintained()
	m.ID = id
	m.AgencyID = agency
	m.Version = ref.Version
	m.IsExternalReference = true
	r.entries[ref] = a
	r.order = append(r.order, ref)
	return a, nil
}

// Define returns the canonical instance for a full definition, marking
// it resolved. The returned instance is the same one earlier Resolve
// calls handed out, so the reader fills it in place.
func (r *Resolver) Define(kind domain.ArtefactKind, agency, id, version string) (domain.Maintainable, error) {
	a, err := r.Resolve(kind, agency, id, version)
	if err != nil {
		return nil, err
	}
	a.Maintained().IsExternalReference = false
	return a, nil
}

// Latest returns the registered artefact with the highest version for
// (kind, agency, id), comparing versions semantically.
func (r *Resolver) Latest(kind domain.ArtefactKind, agency, id string) (domain.Maintainable, bool) {
	var best domain.Maintainable
	bestVersion := ""
	for ref, a := range r.entries {
		if ref.Kind != kind || ref.AgencyID != agency || ref.ID != id {
			continue
		}
		if best == nil || domain.CompareVersions(ref.Version, bestVersion) > 0 {
			best = a
			bestVersion = ref.Version
		}
	}
	return best, best != nil
}

// Unresolved returns a warning for every reference that never received
// a full definition, in first-reference order. External references are
// legal ("defined elsewhere"), so these are warnings, not failures.
func (r *Resolver) Unresolved() []domain.UnresolvedReferenceWarning {
	var out []domain.UnresolvedReferenceWarning
	for _, ref := range r.order {
		if r.entries[ref].Maintained().IsExternalReference {
			out = append(out, domain.UnresolvedReferenceWarning{Ref: ref})
		}
	}
	return out
}

// Len returns the number of registered artefacts.
func (r *Resolver) Len() int { return len(r.entries) }
