package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// exrDSD builds the ECB exchange-rate structure used across validator
// tests: [FREQ, CURRENCY, CURRENCY_DENOM, EXR_TYPE, EXR_SUFFIX,
// TIME_PERIOD] with CURRENCY enumerated by CL_CURRENCY.
func exrDSD(t *testing.T) (*domain.DataStructureDefinition, CodelistLookup) {
	t.Helper()

	dsd := &domain.DataStructureDefinition{}
	dsd.ID = "ECB_EXR1"
	dsd.AgencyID = "ECB"

	clRef := domain.Reference{
		Kind: domain.KindCodelist, AgencyID: "ECB", ID: "CL_CURRENCY", Version: "1.0",
	}
	for _, id := range []string{"FREQ", "CURRENCY", "CURRENCY_DENOM", "EXR_TYPE", "EXR_SUFFIX", "TIME_PERIOD"} {
		dim := &domain.Dimension{}
		dim.ID = id
		if id == "TIME_PERIOD" {
			dim.IsTime = true
		}
		if id == "CURRENCY" {
			dim.LocalRepresentation = &domain.Representation{Enumeration: clRef}
		}
		require.NoError(t, dsd.Dimensions.Append(dim))
	}

	cl := &domain.Codelist{}
	cl.ID = "CL_CURRENCY"
	cl.AgencyID = "ECB"
	for _, code := range []string{"USD", "JPY", "EUR", "NZD", "RUB", "CDF"} {
		c := &domain.Code{}
		c.ID = code
		require.NoError(t, cl.Add(c))
	}

	lookup := func(ref domain.Reference) (*domain.Codelist, bool) {
		if ref.ID == cl.ID {
			return cl, true
		}
		return nil, false
	}
	return dsd, lookup
}

func TestKeyValidator_CoreRepresentationFallback(t *testing.T) {
	dsd, lookup := exrDSD(t)

	// FREQ declares no local representation; its concept enumerates
	// CL_FREQ.
	freqCL := &domain.Codelist{}
	freqCL.ID = "CL_FREQ"
	c := &domain.Code{}
	c.ID = "M"
	require.NoError(t, freqCL.Add(c))

	concept := &domain.Concept{}
	concept.ID = "FREQ"
	concept.CoreRepresentation = &domain.Representation{
		Enumeration: domain.Reference{Kind: domain.KindCodelist, AgencyID: "ECB", ID: "CL_FREQ"},
	}

	freq, ok := dsd.Dimensions.Get("FREQ")
	require.True(t, ok)
	freq.ConceptIdentity = domain.Reference{
		Kind: domain.KindConceptScheme, AgencyID: "ECB", ID: "ECB_CONCEPTS", ItemID: "FREQ",
	}

	codelists := func(ref domain.Reference) (*domain.Codelist, bool) {
		if ref.ID == freqCL.ID {
			return freqCL, true
		}
		return lookup(ref)
	}
	concepts := func(ref domain.Reference) (*domain.Concept, bool) {
		if ref.ItemID == concept.ID {
			return concept, true
		}
		return nil, false
	}

	v := NewKeyValidator(dsd, codelists).WithConceptLookup(concepts)
	assert.True(t, v.Permitted("FREQ", "M"))
	assert.False(t, v.Permitted("FREQ", "X"))

	// Without the concept lookup the dimension has no effective
	// representation, so any value passes.
	assert.True(t, NewKeyValidator(dsd, codelists).Permitted("FREQ", "X"))
}

func TestKeyValidator_CanonicalKeyString(t *testing.T) {
	dsd, lookup := exrDSD(t)
	v := NewKeyValidator(dsd, lookup)

	key, err := v.ValidateSelection(map[string][]string{
		"CURRENCY": {"USD", "JPY"},
	})
	require.NoError(t, err)
	assert.Equal(t, ".USD+JPY....", key)
}

func TestKeyValidator_UnknownDimension(t *testing.T) {
	dsd, lookup := exrDSD(t)
	v := NewKeyValidator(dsd, lookup)

	_, err := v.ValidateSelection(map[string][]string{
		"COUNTRY": {"NZ"},
	})
	require.Error(t, err)

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "COUNTRY", errs[0].Dimension)
}

func TestKeyValidator_CodelistMembership(t *testing.T) {
	dsd, lookup := exrDSD(t)
	v := NewKeyValidator(dsd, lookup)

	_, err := v.ValidateSelection(map[string][]string{
		"CURRENCY": {"USD", "XXX", "ZZZ"},
	})
	require.Error(t, err)

	// One error per offending value, so the caller can correct all
	// problems in one pass.
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	values := []string{errs[0].Value, errs[1].Value}
	assert.Contains(t, values, "XXX")
	assert.Contains(t, values, "ZZZ")
}

func TestKeyValidator_ConstraintValidation(t *testing.T) {
	dsd, lookup := exrDSD(t)

	cc := &domain.ContentConstraint{}
	cc.ID = "EXR_CONSTRAINTS"
	cc.Regions = []domain.CubeRegion{
		{Members: []domain.MemberSelection{
			{DimensionID: "CURRENCY", Values: []string{"USD", "JPY", "EUR"}},
		}},
	}
	v := NewKeyValidator(dsd, lookup, cc)

	// CDF is a valid code but outside the constrained region.
	_, err := v.ValidateSelection(map[string][]string{"CURRENCY": {"CDF"}})
	require.Error(t, err)
	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "CURRENCY", errs[0].Dimension)
	assert.Equal(t, "CDF", errs[0].Value)

	key, err := v.ValidateSelection(map[string][]string{"CURRENCY": {"USD"}})
	require.NoError(t, err)
	assert.Equal(t, ".USD....", key)

	assert.True(t, v.Permitted("CURRENCY", "USD"))
	assert.False(t, v.Permitted("CURRENCY", "CDF"))
}

func TestKeyValidator_KeyStringRoundTrip(t *testing.T) {
	dsd, lookup := exrDSD(t)
	v := NewKeyValidator(dsd, lookup)

	canonical, err := v.ValidateKeyString("D.USD+JPY")
	require.NoError(t, err)
	assert.Equal(t, "D.USD+JPY....", canonical)

	_, err = v.ValidateKeyString("D.USD.EUR.SP00.A.2013.EXTRA")
	assert.ErrorIs(t, err, domain.ErrUnknownDimension)
}
