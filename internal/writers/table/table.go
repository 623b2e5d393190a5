// Package table projects datasets and structural artefacts into
// indexed tables: rows keyed by the observation dimension, one column
// per series, values as float64 with NaN for gaps.
package table

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// AttributeMode selects how data attributes appear in the projection.
type AttributeMode string

// Attribute handling modes.
const (
	// AttributesOmit drops attributes from the projection.
	AttributesOmit AttributeMode = "omit"
	// AttributesSeparate carries attributes alongside the values, on
	// the column for series-level and per cell for observation-level.
	AttributesSeparate AttributeMode = "separate"
	// AttributesFold appends series attribute values to column labels.
	AttributesFold AttributeMode = "fold"
)

// Options controls a dataset projection.
type Options struct {
	// Attributes selects the attribute handling mode; omit by default.
	Attributes AttributeMode

	// TimeAxis orders rows chronologically and derives an instant per
	// row by parsing each period.
	TimeAxis bool

	// FromFreq derives the time axis by extrapolating from the first
	// period at the series frequency instead of parsing every period.
	FromFreq bool

	// Reversed marks the input as reverse-chronological, for FromFreq.
	Reversed bool

	// Frequency overrides frequency inference. With TimeAxis set,
	// series whose inferred frequency disagrees are rejected.
	Frequency Frequency
}

// Column is one series of the projection.
type Column struct {
	// Key holds the column's dimension values, one per ColumnLevels
	// entry.
	Key []string

	// Attributes carries series-level attribute values in separate
	// mode.
	Attributes []domain.AttributeValue

	// ObsAttributes carries observation-level attribute values per
	// row in separate mode.
	ObsAttributes [][]domain.AttributeValue
}

// Label is the column's display label.
func (c Column) Label() string {
	return strings.Join(c.Key, ".")
}

// Table is a dataset projected onto a row-by-column value grid.
type Table struct {
	// ColumnLevels names the key levels of every column.
	ColumnLevels []string

	// Columns are the series, ordered lexicographically by key.
	Columns []Column

	// RowLevel names the row index, normally the observation
	// dimension.
	RowLevel string

	// Rows holds the row labels in output order.
	Rows []string

	// Times holds one instant per row when a time axis was derived.
	Times []time.Time

	// Values is indexed row first, column second; gaps are NaN.
	Values [][]float64
}

// IsEmpty reports whether the table has no cells.
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0 || len(t.Columns) == 0
}

// Value returns the cell at the given row and column.
func (t *Table) Value(row, col int) float64 {
	return t.Values[row][col]
}

// WriteDataSet projects a dataset into a single combined table. An
// empty dataset yields an empty table, never an error.
func WriteDataSet(ds *domain.DataSet, opts Options) (*Table, error) {
	if opts.Attributes == "" {
		opts.Attributes = AttributesOmit
	}
	series := collectSeries(ds)
	if len(series) == 0 {
		return &Table{RowLevel: rowLevel(ds)}, nil
	}
	sortSeries(series, ds)

	freq, err := commonFrequency(ds, series, opts)
	if err != nil {
		return nil, err
	}

	rows, times, err := buildRows(series, rowLevel(ds), freq, opts)
	if err != nil {
		return nil, err
	}
	rowIndex := make(map[string]int, len(rows))
	for i, r := range rows {
		rowIndex[r] = i
	}

	t := &Table{
		ColumnLevels: columnLevels(ds, series, opts),
		RowLevel:     rowLevel(ds),
		Rows:         rows,
		Times:        times,
	}
	t.Values = make([][]float64, len(rows))
	for i := range t.Values {
		t.Values[i] = make([]float64, len(series))
		for j := range t.Values[i] {
			t.Values[i][j] = math.NaN()
		}
	}

	for j, s := range series {
		col := buildColumn(ds, s, t.ColumnLevels, opts)
		if opts.Attributes == AttributesSeparate {
			col.ObsAttributes = make([][]domain.AttributeValue, len(rows))
		}
		for _, obs := range s.observations {
			i, ok := rowIndex[rowValue(obs, t.RowLevel)]
			if !ok {
				continue
			}
			if v, err := obs.Float64(); err == nil {
				t.Values[i][j] = v
			}
			if opts.Attributes == AttributesSeparate && len(obs.Attributes) > 0 {
				col.ObsAttributes[i] = obs.Attributes
			}
		}
		t.Columns = append(t.Columns, col)
	}
	return t, nil
}

// WriteSeries projects a dataset into one single-column table per
// series, in the combined table's column order.
func WriteSeries(ds *domain.DataSet, opts Options) ([]*Table, error) {
	combined, err := WriteDataSet(ds, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*Table, len(combined.Columns))
	for j, col := range combined.Columns {
		st := &Table{
			ColumnLevels: combined.ColumnLevels,
			Columns:      []Column{col},
			RowLevel:     combined.RowLevel,
		}
		for i, row := range combined.Rows {
			if math.IsNaN(combined.Values[i][j]) {
				continue
			}
			st.Rows = append(st.Rows, row)
			if combined.Times != nil {
				st.Times = append(st.Times, combined.Times[i])
			}
			st.Values = append(st.Values, []float64{combined.Values[i][j]})
		}
		out[j] = st
	}
	return out, nil
}

// projectedSeries is a series normalised for projection: flat datasets
// are regrouped by their key without the row dimension.
type projectedSeries struct {
	key          domain.SeriesKey
	observations []*domain.Observation
}

func rowLevel(ds *domain.DataSet) string {
	if !ds.IsFlat() {
		return ds.DimensionAtObservation
	}
	// Flat observations usually still carry a time period worth
	// pivoting on.
	for _, obs := range ds.AllObservations() {
		if obs.Dimension.Has("TIME_PERIOD") {
			return "TIME_PERIOD"
		}
		break
	}
	return ""
}

func rowValue(obs *domain.Observation, level string) string {
	if level == "" {
		return obs.Dimension.String()
	}
	v, _ := obs.Dimension.Get(level)
	return v
}

func collectSeries(ds *domain.DataSet) []projectedSeries {
	if !ds.IsFlat() {
		series := ds.Series()
		out := make([]projectedSeries, 0, len(series))
		for _, s := range series {
			out = append(out, projectedSeries{key: s.Key, observations: s.Observations})
		}
		return out
	}

	level := rowLevel(ds)
	grouped := make(map[string]*projectedSeries)
	var order []string
	for _, obs := range ds.Observations() {
		key := obs.Dimension
		if level != "" {
			key = key.Without(level)
		}
		id := key.String()
		ps, ok := grouped[id]
		if !ok {
			ps = &projectedSeries{key: domain.SeriesKey{Key: key}}
			grouped[id] = ps
			order = append(order, id)
		}
		ps.observations = append(ps.observations, obs)
	}
	out := make([]projectedSeries, 0, len(order))
	for _, id := range order {
		out = append(out, *grouped[id])
	}
	return out
}

// sortSeries orders series lexicographically by their key values in
// structure dimension order when the structure is known.
func sortSeries(series []projectedSeries, ds *domain.DataSet) {
	var order []string
	if ds.Structure != nil {
		order = ds.Structure.Dimensions.IDs()
	}
	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i].key.Key, series[j].key.Key
		if order != nil {
			a, b = a.Ordered(order), b.Ordered(order)
		}
		return a.String() < b.String()
	})
}

func columnLevels(ds *domain.DataSet, series []projectedSeries, opts Options) []string {
	var levels []string
	seen := map[string]bool{}
	if ds.Structure != nil {
		for _, id := range ds.Structure.Dimensions.IDs() {
			if id == ds.DimensionAtObservation || id == rowLevel(ds) {
				continue
			}
			levels = append(levels, id)
			seen[id] = true
		}
	}
	for _, s := range series {
		for _, kv := range s.key.Values() {
			if !seen[kv.ID] {
				levels = append(levels, kv.ID)
				seen[kv.ID] = true
			}
		}
	}
	if opts.Attributes == AttributesFold {
		attrSeen := map[string]bool{}
		for _, s := range series {
			for _, a := range s.key.Attributes {
				if !attrSeen[a.ID] {
					levels = append(levels, a.ID)
					attrSeen[a.ID] = true
				}
			}
		}
	}
	return levels
}

func buildColumn(ds *domain.DataSet, s projectedSeries, levels []string, opts Options) Column {
	col := Column{Key: make([]string, len(levels))}
	for i, level := range levels {
		if v, ok := s.key.Get(level); ok {
			col.Key[i] = v
			continue
		}
		if opts.Attributes == AttributesFold {
			for _, a := range s.key.Attributes {
				if a.ID == level {
					col.Key[i] = a.Value
					break
				}
			}
		}
	}
	if opts.Attributes == AttributesSeparate {
		col.Attributes = s.key.Attributes
	}
	return col
}

// commonFrequency settles the frequency used for time-axis derivation
// and rejects datasets mixing incompatible series frequencies.
func commonFrequency(ds *domain.DataSet, series []projectedSeries, opts Options) (Frequency, error) {
	if !opts.TimeAxis && !opts.FromFreq {
		return "", nil
	}
	level := rowLevel(ds)
	freq := opts.Frequency
	freqFromPeriods := false
	for _, s := range series {
		inferred := InferFrequency(ds, s.key)
		fromPeriods := false
		if inferred == "" {
			inferred = periodFrequency(s, level)
			fromPeriods = true
		}
		if inferred == "" {
			continue
		}
		if freq == "" {
			freq, freqFromPeriods = inferred, fromPeriods
			continue
		}
		if inferred == freq {
			continue
		}
		// Daily periods cannot reveal business-day coverage, so a
		// period-derived daily frequency is compatible with B.
		if (fromPeriods || freqFromPeriods) && dailyLike(freq) && dailyLike(inferred) {
			if inferred == FreqBusiness {
				freq, freqFromPeriods = FreqBusiness, false
			}
			continue
		}
		return "", domain.IncompatibleFrequencyError{
			Want:      string(freq),
			Got:       string(inferred),
			SeriesKey: s.key.String(),
		}
	}
	return freq, nil
}

func dailyLike(f Frequency) bool {
	return f == FreqDaily || f == FreqBusiness
}

// periodFrequency derives a frequency from the granularity of the
// series' first period, for series without FREQ metadata.
func periodFrequency(s projectedSeries, level string) Frequency {
	for _, obs := range s.observations {
		v := rowValue(obs, level)
		if v == "" {
			return ""
		}
		_, f, err := ParsePeriod(v)
		if err != nil {
			return ""
		}
		return f
	}
	return ""
}

// buildRows derives the row index: the union of observed periods, and
// in time-axis mode their chronological order plus instants. FromFreq
// extrapolates instants from the first period at the settled frequency
// instead of parsing each one.
func buildRows(series []projectedSeries, level string, freq Frequency, opts Options) ([]string, []time.Time, error) {
	var labels []string
	seen := map[string]bool{}
	for _, s := range series {
		for _, obs := range s.observations {
			v := rowValue(obs, level)
			if !seen[v] {
				seen[v] = true
				labels = append(labels, v)
			}
		}
	}
	if !opts.TimeAxis && !opts.FromFreq {
		sort.Strings(labels)
		return labels, nil, nil
	}

	if opts.FromFreq {
		if len(labels) == 0 {
			return labels, nil, nil
		}
		first := labels[0]
		if opts.Reversed {
			first = labels[len(labels)-1]
			reverse(labels)
		}
		start, parsed, err := ParsePeriod(first)
		if err != nil {
			return nil, nil, err
		}
		if freq == "" {
			freq = parsed
		}
		times := make([]time.Time, len(labels))
		t := start
		for i := range labels {
			times[i] = t
			t = freq.Next(t)
		}
		return labels, times, nil
	}

	type stamped struct {
		label string
		t     time.Time
	}
	rows := make([]stamped, 0, len(labels))
	for _, label := range labels {
		t, _, err := ParsePeriod(label)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, stamped{label, t})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })
	out := make([]string, len(rows))
	times := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.label
		times[i] = r.t
	}
	return out, times, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
