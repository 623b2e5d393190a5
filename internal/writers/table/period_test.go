package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		freq Frequency
	}{
		{"2013", time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), FreqAnnual},
		{"2013-S2", time.Date(2013, 7, 1, 0, 0, 0, 0, time.UTC), FreqHalfYearly},
		{"2013-Q3", time.Date(2013, 7, 1, 0, 0, 0, 0, time.UTC), FreqQuarterly},
		{"2013-02", time.Date(2013, 2, 1, 0, 0, 0, 0, time.UTC), FreqMonthly},
		{"2013-W02", time.Date(2013, 1, 8, 0, 0, 0, 0, time.UTC), FreqWeekly},
		{"2013-01-18", time.Date(2013, 1, 18, 0, 0, 0, 0, time.UTC), FreqDaily},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, freq, err := ParsePeriod(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.freq, freq)
		})
	}
}

func TestParsePeriod_Malformed(t *testing.T) {
	for _, in := range []string{"", "13", "2013-Q5", "2013-13", "yesterday"} {
		_, _, err := ParsePeriod(in)
		assert.Error(t, err, in)
	}
}

func TestFrequency_NextBusinessDaySkipsWeekend(t *testing.T) {
	friday := time.Date(2013, time.January, 18, 0, 0, 0, 0, time.UTC)
	monday := FreqBusiness.Next(friday)
	assert.Equal(t, time.Weekday(time.Monday), monday.Weekday())
	assert.Equal(t, time.Date(2013, time.January, 21, 0, 0, 0, 0, time.UTC), monday)
	assert.Equal(t, friday, FreqBusiness.Prev(monday))
}

func TestInferFrequency(t *testing.T) {
	ds := domain.NewDataSet("TIME_PERIOD")
	ds.Attributes = []domain.AttributeValue{{ID: "FREQ", Value: "A"}}

	withDim := domain.NewSeriesKey(domain.KeyValue{ID: "FREQ", Value: "M"})
	assert.Equal(t, FreqMonthly, InferFrequency(ds, withDim))

	withAttr := domain.NewSeriesKey()
	withAttr.Attributes = []domain.AttributeValue{{ID: "FREQ", Value: "Q"}}
	assert.Equal(t, FreqQuarterly, InferFrequency(ds, withAttr))

	assert.Equal(t, FreqAnnual, InferFrequency(ds, domain.NewSeriesKey()))
	assert.Equal(t, Frequency(""), InferFrequency(nil, domain.NewSeriesKey()))
}
