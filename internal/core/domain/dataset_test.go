package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obsAt(period, value string) *Observation {
	return &Observation{
		Dimension: NewKey(KeyValue{ID: "TIME_PERIOD", Value: period}),
		Value:     value,
	}
}

func TestDataSet_FlatClassification(t *testing.T) {
	ds := NewDataSet(AllDimensions)
	require.True(t, ds.IsFlat())

	ds.AddObservation(nil, &Observation{
		Dimension: NewKey(
			KeyValue{ID: "FREQ", Value: "D"},
			KeyValue{ID: "CURRENCY", Value: "NZD"},
			KeyValue{ID: "TIME_PERIOD", Value: "2013-01-18"},
		),
		Value: "1.5931",
	})

	// Flat datasets expose zero series keys and all observations via
	// the flat accessor.
	assert.Empty(t, ds.Series())
	assert.Len(t, ds.Observations(), 1)
	assert.Equal(t, 1, ds.Len())
}

func TestDataSet_SeriesClassification(t *testing.T) {
	ds := NewDataSet("TIME_PERIOD")
	require.False(t, ds.IsFlat())

	s := ds.AddSeries(NewSeriesKey(
		KeyValue{ID: "FREQ", Value: "D"},
		KeyValue{ID: "CURRENCY", Value: "NZD"},
	))
	ds.AddObservation(s, obsAt("2013-01-18", "1.5931"))
	ds.AddObservation(s, obsAt("2013-01-21", "1.5925"))

	// Series-structured datasets expose series keys and an empty flat
	// accessor.
	assert.Len(t, ds.Series(), 1)
	assert.Empty(t, ds.Observations())
	assert.Equal(t, 2, ds.Len())
}

func TestDataSet_AddSeriesReusesEqualKey(t *testing.T) {
	ds := NewDataSet("TIME_PERIOD")
	key := NewSeriesKey(KeyValue{ID: "CURRENCY", Value: "NZD"})

	first := ds.AddSeries(key)
	second := ds.AddSeries(NewSeriesKey(KeyValue{ID: "CURRENCY", Value: "NZD"}))

	assert.Same(t, first, second)
	assert.Len(t, ds.Series(), 1)
}

func TestDataSet_GroupObservations(t *testing.T) {
	ds := NewDataSet("TIME_PERIOD")

	nzd := ds.AddSeries(NewSeriesKey(
		KeyValue{ID: "FREQ", Value: "D"},
		KeyValue{ID: "CURRENCY", Value: "NZD"},
		KeyValue{ID: "CURRENCY_DENOM", Value: "EUR"},
	))
	rub := ds.AddSeries(NewSeriesKey(
		KeyValue{ID: "FREQ", Value: "D"},
		KeyValue{ID: "CURRENCY", Value: "RUB"},
		KeyValue{ID: "CURRENCY_DENOM", Value: "EUR"},
	))
	ds.AddObservation(nzd, obsAt("2013-01-18", "1.5931"))
	ds.AddObservation(nzd, obsAt("2013-01-21", "1.5925"))
	ds.AddObservation(rub, obsAt("2013-01-18", "40.3225"))

	gk, err := NewGroupKey("Sibling", 4, "TIME_PERIOD",
		KeyValue{ID: "CURRENCY", Value: "NZD"})
	require.NoError(t, err)
	require.NoError(t, ds.AddGroup(gk))

	// Membership is by dimension-value matching, not explicit linkage.
	covered := ds.GroupObservations(gk)
	require.Len(t, covered, 2)
	assert.Equal(t, "1.5931", covered[0].Value)
	assert.Equal(t, "1.5925", covered[1].Value)

	groups := ds.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Sibling", groups[0].GroupID)
}

func TestObservation_Float64(t *testing.T) {
	obs := obsAt("2013-01-18", "1.5931")
	v, err := obs.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 1.5931, v, 1e-9)

	obs.Value = "not-a-number"
	_, err = obs.Float64()
	assert.Error(t, err)
}
