package services

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driving"
)

// Ensure KeyValidator implements the interface.
var _ driving.KeyValidator = (*KeyValidator)(nil)

// CodelistLookup resolves an enumerated representation's codelist
// reference to its parsed codelist, when the surrounding message
// carries it. A miss (external reference) disables enumerated
// validation for that dimension.
type CodelistLookup func(ref domain.Reference) (*domain.Codelist, bool)

// ConceptLookup resolves a component's concept identity to its parsed
// concept, so dimensions without a local representation can fall back
// to the concept's core representation.
type ConceptLookup func(ref domain.Reference) (*domain.Concept, bool)

// KeyValidator validates and canonicalizes data-query selections
// against a DSD, its codelists and optional content constraints.
type KeyValidator struct {
	dsd         *domain.DataStructureDefinition
	lookup      CodelistLookup
	concepts    ConceptLookup
	constraints []*domain.ContentConstraint
}

// NewKeyValidator creates a validator for the DSD. lookup may be nil
// when no codelists are available; constraints may be empty.
func NewKeyValidator(dsd *domain.DataStructureDefinition, lookup CodelistLookup, constraints ...*domain.ContentConstraint) *KeyValidator {
	return &KeyValidator{dsd: dsd, lookup: lookup, constraints: constraints}
}

// WithConceptLookup enables core-representation fallback for
// dimensions that declare no local representation.
func (v *KeyValidator) WithConceptLookup(lookup ConceptLookup) *KeyValidator {
	v.concepts = lookup
	return v
}

// ValidateSelection validates every candidate value and returns the
// canonical positional key string in DimensionDescriptor order:
// "."-separated slots, multi-valued slots joined with "+", empty slots
// for unselected dimensions. All failures are collected into one
// domain.ValidationErrors batch.
func (v *KeyValidator) ValidateSelection(selection map[string][]string) (string, error) {
	var errs domain.ValidationErrors

	slots := make([][]string, v.dsd.Dimensions.Len())
	for dimID, values := range selection {
		pos, ok := v.dsd.Dimensions.Position(dimID)
		if !ok {
			errs = append(errs, domain.KeyValidationError{
				Dimension: dimID,
				Reason:    "not a dimension of " + v.dsd.ID,
			})
			continue
		}
		for _, value := range values {
			if ve, ok := v.check(dimID, value); !ok {
				errs = append(errs, ve)
				continue
			}
			slots[pos] = append(slots[pos], value)
		}
	}

	if len(errs) > 0 {
		return "", errs
	}

	parts := make([]string, len(slots))
	for i, values := range slots {
		parts[i] = strings.Join(values, "+")
	}
	return strings.Join(parts, "."), nil
}

// ValidateKeyString parses a positional key string, validates it and
// returns its canonical form. The string may use fewer slots than the
// DSD has dimensions; missing trailing slots are wildcards. More slots
// than dimensions is an error.
func (v *KeyValidator) ValidateKeyString(key string) (string, error) {
	selection, err := v.ParseKeyString(key)
	if err != nil {
		return "", err
	}
	return v.ValidateSelection(selection)
}

// ParseKeyString maps a positional key string onto dimension ids.
func (v *KeyValidator) ParseKeyString(key string) (map[string][]string, error) {
	ids := v.dsd.Dimensions.IDs()
	slots := strings.Split(key, ".")
	if len(slots) > len(ids) {
		return nil, errors.Wrapf(domain.ErrUnknownDimension,
			"key %q has %d slots but %s has %d dimensions", key, len(slots), v.dsd.ID, len(ids))
	}

	selection := make(map[string][]string)
	for i, slot := range slots {
		if slot == "" {
			continue
		}
		selection[ids[i]] = strings.Split(slot, "+")
	}
	return selection, nil
}

// Permitted reports whether the value passes both the dimension's
// enumerated representation and the effective constraint region set.
func (v *KeyValidator) Permitted(dimensionID, value string) bool {
	if _, ok := v.dsd.Dimensions.Get(dimensionID); !ok {
		return false
	}
	_, ok := v.check(dimensionID, value)
	return ok
}

// check validates one dimension/value pair. Returns the validation
// error and false on failure.
func (v *KeyValidator) check(dimensionID, value string) (domain.KeyValidationError, bool) {
	dim, _ := v.dsd.Dimensions.Get(dimensionID)

	rep := dim.Representation()
	if rep == nil && v.concepts != nil {
		if concept, ok := v.concepts(dim.ConceptIdentity); ok {
			rep = dim.EffectiveRepresentation(concept)
		}
	}

	// Enumerated representation: the value must be a code of the
	// referenced codelist, when that codelist is present in full.
	if rep.IsEnumerated() && v.lookup != nil {
		if cl, ok := v.lookup(rep.Enumeration); ok && !cl.IsExternalReference {
			if _, ok := cl.Get(value); !ok {
				return domain.KeyValidationError{
					Dimension: dimensionID,
					Value:     value,
					Reason:    "not a code of " + cl.ID,
				}, false
			}
		}
	}

	// Content constraints: the value must be in the effective
	// permitted set of every constraint that restricts the dimension.
	for _, cc := range v.constraints {
		permitted, constrained := cc.PermittedValues(dimensionID)
		if !constrained {
			continue
		}
		if !permitted[value] {
			return domain.KeyValidationError{
				Dimension: dimensionID,
				Value:     value,
				Reason:    "not permitted by constraint " + cc.ID,
			}, false
		}
	}

	return domain.KeyValidationError{}, true
}
