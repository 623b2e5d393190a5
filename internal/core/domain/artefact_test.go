package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternationalString_Localised(t *testing.T) {
	s := InternationalString{"en": "Currency", "fr": "Devise"}

	assert.Equal(t, "Devise", s.Localised("fr"))
	assert.Equal(t, "Currency", s.Localised("de"))

	noEnglish := InternationalString{"fr": "Devise", "de": "Währung"}
	// Deterministic fallback: sorted locale order.
	assert.Equal(t, "Währung", noEnglish.Localised())

	var empty InternationalString
	assert.Equal(t, "", empty.Localised())
}

func TestInternationalString_SetThroughNil(t *testing.T) {
	var s InternationalString
	s = s.Set("", "Exchange Rates")
	assert.Equal(t, "Exchange Rates", s.Localised("en"))
}

func TestCompareVersions(t *testing.T) {
	assert.Negative(t, CompareVersions("1.0", "1.1"))
	assert.Positive(t, CompareVersions("2.0", "1.9"))
	assert.Zero(t, CompareVersions("1.0", "1.0"))
	// Two-part SDMX versions compare against three-part ones.
	assert.Negative(t, CompareVersions("1.0", "1.0.1"))
}

func TestMaintainableArtefact_Ref(t *testing.T) {
	cl := &Codelist{}
	cl.ID = "CL_CURRENCY"
	cl.AgencyID = "ECB"
	cl.Version = ""

	ref := cl.Maintained().Ref(KindCodelist)
	assert.Equal(t, Reference{
		Kind:     KindCodelist,
		AgencyID: "ECB",
		ID:       "CL_CURRENCY",
		Version:  DefaultVersion,
	}, ref)
	assert.Equal(t, "Codelist=ECB:CL_CURRENCY(1.0)", ref.String())
}

func TestCodelist_AddAndOrder(t *testing.T) {
	cl := &Codelist{}

	for _, id := range []string{"USD", "JPY", "EUR"} {
		c := &Code{}
		c.ID = id
		require.NoError(t, cl.Add(c))
	}

	dup := &Code{}
	dup.ID = "USD"
	assert.ErrorIs(t, cl.Add(dup), ErrDuplicateItem)

	ids := make([]string, 0, cl.Len())
	for _, c := range cl.Codes() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"USD", "JPY", "EUR"}, ids)

	found, ok := cl.Find(func(c *Code) bool { return c.ID == "JPY" })
	require.True(t, ok)
	assert.Equal(t, "JPY", found.ID)
}

func TestCategoryScheme_Lookup(t *testing.T) {
	cs := &CategoryScheme{}
	top := &Category{}
	top.ID = "ECONOMY"
	child := &Category{}
	child.ID = "EXR"
	top.Children = append(top.Children, child)
	require.NoError(t, cs.Add(top))

	got, ok := cs.Lookup("ECONOMY", "EXR")
	require.True(t, ok)
	assert.Equal(t, "EXR", got.ID)

	_, ok = cs.Lookup("ECONOMY", "PRICES")
	assert.False(t, ok)
}

func TestDimensionDescriptor_Ordering(t *testing.T) {
	var dd DimensionDescriptor
	for _, id := range []string{"FREQ", "CURRENCY", "TIME_PERIOD"} {
		dim := &Dimension{}
		dim.ID = id
		require.NoError(t, dd.Append(dim))
	}

	assert.Equal(t, []string{"FREQ", "CURRENCY", "TIME_PERIOD"}, dd.IDs())

	pos, ok := dd.Position("CURRENCY")
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	dim, ok := dd.Get("FREQ")
	require.True(t, ok)
	assert.Equal(t, 1, dim.Position)

	_, ok = dd.Position("EXR_TYPE")
	assert.False(t, ok)
}
