package table

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// dailyRates builds a two-series daily dataset over 2013-01-18 and
// 2013-01-21 (a Friday and the following Monday).
func dailyRates(t *testing.T) *domain.DataSet {
	t.Helper()
	ds := domain.NewDataSet("TIME_PERIOD")

	for _, c := range []struct {
		currency string
		values   map[string]string
	}{
		{"NZD", map[string]string{"2013-01-18": "1.5931", "2013-01-21": "1.5925"}},
		{"RUB", map[string]string{"2013-01-18": "40.3604", "2013-01-21": "40.3185"}},
	} {
		key := domain.NewSeriesKey(
			domain.KeyValue{ID: "FREQ", Value: "D"},
			domain.KeyValue{ID: "CURRENCY", Value: c.currency},
		)
		s := ds.AddSeries(key)
		for period, value := range c.values {
			ds.AddObservation(s, &domain.Observation{
				Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: period}),
				Value:     value,
			})
		}
	}
	return ds
}

func TestWriteDataSet_Empty(t *testing.T) {
	tab, err := WriteDataSet(domain.NewDataSet("TIME_PERIOD"), Options{})
	require.NoError(t, err)
	assert.True(t, tab.IsEmpty())
}

func TestWriteDataSet_CombinedGrid(t *testing.T) {
	tab, err := WriteDataSet(dailyRates(t), Options{})
	require.NoError(t, err)

	assert.Equal(t, "TIME_PERIOD", tab.RowLevel)
	assert.Equal(t, []string{"2013-01-18", "2013-01-21"}, tab.Rows)
	require.Len(t, tab.Columns, 2)
	// Lexicographic by key: D.NZD before D.RUB.
	assert.Equal(t, "D.NZD", tab.Columns[0].Label())
	assert.Equal(t, "D.RUB", tab.Columns[1].Label())

	assert.InDelta(t, 1.5931, tab.Value(0, 0), 1e-9)
	assert.InDelta(t, 40.3185, tab.Value(1, 1), 1e-9)
}

func TestWriteDataSet_TimeAxisFromDailyPeriods(t *testing.T) {
	tab, err := WriteDataSet(dailyRates(t), Options{TimeAxis: true})
	require.NoError(t, err)

	require.Len(t, tab.Times, 2)
	// The Friday and the Monday keep their true dates; the weekend is
	// not interpolated.
	assert.Equal(t, time.Date(2013, time.January, 18, 0, 0, 0, 0, time.UTC), tab.Times[0])
	assert.Equal(t, time.Date(2013, time.January, 21, 0, 0, 0, 0, time.UTC), tab.Times[1])
}

func TestWriteDataSet_FromFreqExtrapolation(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	s := ds.AddSeries(domain.NewSeriesKey(domain.KeyValue{ID: "FREQ", Value: "M"}))
	for _, period := range []string{"2013-01", "2013-02", "2013-03"} {
		ds.AddObservation(s, &domain.Observation{
			Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: period}),
			Value:     "1",
		})
	}

	tab, err := WriteDataSet(ds, Options{FromFreq: true})
	require.NoError(t, err)
	require.Len(t, tab.Times, 3)
	assert.Equal(t, time.Date(2013, time.February, 1, 0, 0, 0, 0, time.UTC), tab.Times[1])
	assert.Equal(t, time.Date(2013, time.March, 1, 0, 0, 0, 0, time.UTC), tab.Times[2])
}

func TestWriteDataSet_FromFreqReversed(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	s := ds.AddSeries(domain.NewSeriesKey(domain.KeyValue{ID: "FREQ", Value: "M"}))
	for _, period := range []string{"2013-03", "2013-02", "2013-01"} {
		ds.AddObservation(s, &domain.Observation{
			Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: period}),
			Value:     "1",
		})
	}

	tab, err := WriteDataSet(ds, Options{FromFreq: true, Reversed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"2013-01", "2013-02", "2013-03"}, tab.Rows)
	assert.Equal(t, time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC), tab.Times[0])
}

func TestWriteDataSet_IncompatibleFrequencies(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	for _, freq := range []string{"M", "A"} {
		s := ds.AddSeries(domain.NewSeriesKey(domain.KeyValue{ID: "FREQ", Value: freq}))
		ds.AddObservation(s, &domain.Observation{
			Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: "2013"}),
			Value:     "1",
		})
	}

	_, err := WriteDataSet(ds, Options{TimeAxis: true})
	require.Error(t, err)
	var fe domain.IncompatibleFrequencyError
	assert.True(t, errors.As(err, &fe))
}

func TestWriteDataSet_MixedGranularityWithoutFreqMetadata(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	for currency, period := range map[string]string{"NZD": "2012", "RUB": "2013-01"} {
		s := ds.AddSeries(domain.NewSeriesKey(domain.KeyValue{ID: "CURRENCY", Value: currency}))
		ds.AddObservation(s, &domain.Observation{
			Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: period}),
			Value:     "1",
		})
	}

	_, err := WriteDataSet(ds, Options{TimeAxis: true})
	require.Error(t, err)
	var fe domain.IncompatibleFrequencyError
	assert.True(t, errors.As(err, &fe))
}

func TestWriteDataSet_NaNFillsGaps(t *testing.T) {
	ds := dailyRates(t)
	s := ds.AddSeries(domain.NewSeriesKey(
		domain.KeyValue{ID: "FREQ", Value: "D"},
		domain.KeyValue{ID: "CURRENCY", Value: "USD"},
	))
	ds.AddObservation(s, &domain.Observation{
		Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: "2013-01-18"}),
		Value:     "1.3294",
	})

	tab, err := WriteDataSet(ds, Options{})
	require.NoError(t, err)
	require.Len(t, tab.Columns, 3)
	// USD has no Monday observation.
	assert.True(t, math.IsNaN(tab.Value(1, 2)))
}

func TestWriteDataSet_AttributeFold(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	key := domain.NewSeriesKey(domain.KeyValue{ID: "CURRENCY", Value: "NZD"})
	key.Attributes = []domain.AttributeValue{{ID: "UNIT", Value: "NZD"}}
	s := ds.AddSeries(key)
	ds.AddObservation(s, &domain.Observation{
		Dimension: domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: "2013-01-18"}),
		Value:     "1.5931",
	})

	tab, err := WriteDataSet(ds, Options{Attributes: AttributesFold})
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENCY", "UNIT"}, tab.ColumnLevels)
	assert.Equal(t, []string{"NZD", "NZD"}, tab.Columns[0].Key)
}

func TestWriteDataSet_AttributeSeparate(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	key := domain.NewSeriesKey(domain.KeyValue{ID: "CURRENCY", Value: "NZD"})
	key.Attributes = []domain.AttributeValue{{ID: "UNIT", Value: "NZD"}}
	s := ds.AddSeries(key)
	ds.AddObservation(s, &domain.Observation{
		Dimension:  domain.NewKey(domain.KeyValue{ID: "TIME_PERIOD", Value: "2013-01-18"}),
		Value:      "1.5931",
		Attributes: []domain.AttributeValue{{ID: "OBS_STATUS", Value: "A"}},
	})

	tab, err := WriteDataSet(ds, Options{Attributes: AttributesSeparate})
	require.NoError(t, err)
	require.Len(t, tab.Columns, 1)
	assert.Equal(t, []string{"CURRENCY"}, tab.ColumnLevels)
	assert.Equal(t, []domain.AttributeValue{{ID: "UNIT", Value: "NZD"}}, tab.Columns[0].Attributes)
	require.Len(t, tab.Columns[0].ObsAttributes, 1)
	assert.Equal(t, "OBS_STATUS", tab.Columns[0].ObsAttributes[0][0].ID)
}

func TestWriteSeries_SplitsColumns(t *testing.T) {
	tables, err := WriteSeries(dailyRates(t), Options{})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	for _, st := range tables {
		require.Len(t, st.Columns, 1)
		assert.Len(t, st.Rows, 2)
		for i := range st.Rows {
			assert.False(t, math.IsNaN(st.Value(i, 0)))
		}
	}
}

func TestWriteDataSet_FlatPivotsOnTimePeriod(t *testing.T) {
	ds := domain.NewDataSet("")
	for _, obs := range []struct{ currency, period, value string }{
		{"NZD", "2013-01-18", "1.5931"},
		{"NZD", "2013-01-21", "1.5925"},
		{"RUB", "2013-01-18", "40.3604"},
	} {
		ds.AddObservation(nil, &domain.Observation{
			Dimension: domain.NewKey(
				domain.KeyValue{ID: "CURRENCY", Value: obs.currency},
				domain.KeyValue{ID: "TIME_PERIOD", Value: obs.period},
			),
			Value: obs.value,
		})
	}
	require.True(t, ds.IsFlat())

	tab, err := WriteDataSet(ds, Options{})
	require.NoError(t, err)
	assert.Equal(t, "TIME_PERIOD", tab.RowLevel)
	assert.Equal(t, []string{"2013-01-18", "2013-01-21"}, tab.Rows)
	require.Len(t, tab.Columns, 2)
	assert.True(t, math.IsNaN(tab.Value(1, 1)))
}

func TestWriteCodelist(t *testing.T) {
	cl := &domain.Codelist{}
	cl.ID = "CL_FREQ"
	cl.Name = cl.Name.Set("en", "Frequency code list")
	for _, id := range []string{"A", "M", "D"} {
		c := &domain.Code{}
		c.ID = id
		require.NoError(t, cl.Add(c))
	}

	l := WriteCodelist(cl)
	assert.Equal(t, "Frequency code list", l.Title)
	require.Len(t, l.Rows, 3)
	assert.Equal(t, "A", l.Rows[0][0])
}

func TestWriteDimensions(t *testing.T) {
	dsd := &domain.DataStructureDefinition{}
	dim := &domain.Dimension{}
	dim.ID = "FREQ"
	dim.LocalRepresentation = &domain.Representation{
		Enumeration: domain.Reference{Kind: domain.KindCodelist, ID: "CL_FREQ"},
	}
	require.NoError(t, dsd.Dimensions.Append(dim))
	timeDim := &domain.Dimension{IsTime: true}
	timeDim.ID = "TIME_PERIOD"
	require.NoError(t, dsd.Dimensions.Append(timeDim))

	l := WriteDimensions(dsd)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, []string{"1", "FREQ", "CL_FREQ", ""}, l.Rows[0])
	assert.Equal(t, []string{"2", "TIME_PERIOD", "", "yes"}, l.Rows[1])
}
