package domain

import (
	"strconv"
	"time"
)

// AllDimensions is the dimension-at-observation sentinel signalling a
// flat dataset: every dimension, time included, varies at observation
// level.
const AllDimensions = "AllDimensions"

// DataSetAction describes how a dataset's content relates to previously
// exchanged data.
type DataSetAction string

// Dataset actions.
const (
	ActionInformation DataSetAction = "Information"
	ActionAppend      DataSetAction = "Append"
	ActionReplace     DataSetAction = "Replace"
	ActionDelete      DataSetAction = "Delete"
)

// Observation is one measured value: the key of the dimensions varying
// at observation level, the raw measure value, and any attached
// attribute values.
type Observation struct {
	Dimension  Key
	Value      string
	Attributes []AttributeValue
}

// Float64 converts the measure value to float64. Type inference beyond
// float64 is a documented limitation, not a defect.
func (o *Observation) Float64() (float64, error) {
	return strconv.ParseFloat(o.Value, 64)
}

// Attribute returns the observation-level attribute value with the
// given id.
func (o *Observation) Attribute(id string) (string, bool) {
	for _, av := range o.Attributes {
		if av.ID == id {
			return av.Value, true
		}
	}
	return "", false
}

// Series is one series of a series-structured dataset: its key plus its
// observations in document order.
type Series struct {
	Key          SeriesKey
	Observations []*Observation
}

// DataSet owns all observations of one dataset, the series and group
// structure over them, and dataset-level attribute values.
type DataSet struct {
	AnnotableArtefact

	Action         DataSetAction
	ValidFrom      *time.Time
	ReportingBegin string
	ReportingEnd   string

	// StructureRef references the DSD (or dataflow) describing this
	// dataset; Structure is the resolved definition when available.
	StructureRef Reference
	Structure    *DataStructureDefinition

	// DimensionAtObservation is the id of the dimension varying per
	// observation within a series, or AllDimensions for flat datasets.
	DimensionAtObservation string

	Attributes []AttributeValue

	series      []*Series
	seriesIndex map[string]*Series
	groups      []GroupKey
	flat        []*Observation
}

// NewDataSet builds an empty dataset with the given
// dimension-at-observation (AllDimensions when empty).
func NewDataSet(dimAtObs string) *DataSet {
	if dimAtObs == "" {
		dimAtObs = AllDimensions
	}
	return &DataSet{
		DimensionAtObservation: dimAtObs,
		seriesIndex:            make(map[string]*Series),
	}
}

// IsFlat reports whether every dimension varies at observation level.
func (d *DataSet) IsFlat() bool {
	return d.DimensionAtObservation == AllDimensions
}

// IsTimeSeries reports whether the dataset is series-structured with a
// time-like dimension at observation. Cross-sectional datasets are
// series-structured with a non-time dimension at observation.
func (d *DataSet) IsTimeSeries() bool {
	if d.IsFlat() {
		return false
	}
	if d.Structure != nil {
		if dim, ok := d.Structure.Dimensions.Get(d.DimensionAtObservation); ok {
			return dim.IsTime
		}
	}
	return d.DimensionAtObservation == "TIME_PERIOD"
}

// AddSeries registers a series key and returns its Series, reusing an
// existing one for an equal key.
func (d *DataSet) AddSeries(key SeriesKey) *Series {
	if d.seriesIndex == nil {
		d.seriesIndex = make(map[string]*Series)
	}
	id := key.String()
	if s, ok := d.seriesIndex[id]; ok {
		return s
	}
	s := &Series{Key: key}
	d.seriesIndex[id] = s
	d.series = append(d.series, s)
	return s
}

// AddObservation appends an observation to the given series, or to the
// flat collection when series is nil.
func (d *DataSet) AddObservation(series *Series, obs *Observation) {
	if series == nil {
		d.flat = append(d.flat, obs)
		return
	}
	series.Observations = append(series.Observations, obs)
}

// AddGroup registers a group key. The free-dimension invariant is
// enforced at construction by NewGroupKey; AddGroup re-checks it when
// the structure is known.
func (d *DataSet) AddGroup(gk GroupKey) error {
	if d.Structure != nil {
		total := d.Structure.Dimensions.Len()
		if free := total - gk.Len(); free < 2 {
			return KeyValidationError{
				Dimension: d.DimensionAtObservation,
				Reason:    "group keys must leave the dimension at observation and at least one other dimension free",
			}
		}
	}
	d.groups = append(d.groups, gk)
	return nil
}

// Series returns the series in document order. Writers impose their
// own deterministic ordering.
func (d *DataSet) Series() []*Series {
	out := make([]*Series, len(d.series))
	copy(out, d.series)
	return out
}

// SeriesFor returns the series with an equal key.
func (d *DataSet) SeriesFor(key SeriesKey) (*Series, bool) {
	s, ok := d.seriesIndex[key.String()]
	return s, ok
}

// Groups returns the registered group keys.
func (d *DataSet) Groups() []GroupKey {
	out := make([]GroupKey, len(d.groups))
	copy(out, d.groups)
	return out
}

// GroupObservations returns the observations covered by the group key.
// Membership is determined by dimension-value matching against the full
// key of each observation, not by explicit linkage.
func (d *DataSet) GroupObservations(gk GroupKey) []*Observation {
	var out []*Observation
	for _, s := range d.series {
		if !gk.Key.Matches(s.Key.Key) {
			continue
		}
		out = append(out, s.Observations...)
	}
	for _, obs := range d.flat {
		if gk.Key.Matches(obs.Dimension) {
			out = append(out, obs)
		}
	}
	return out
}

// Observations is the flat accessor: the observations not grouped into
// series. For a series-structured dataset it is empty.
func (d *DataSet) Observations() []*Observation {
	out := make([]*Observation, len(d.flat))
	copy(out, d.flat)
	return out
}

// AllObservations returns every observation of the dataset, series
// observations first in document order, then flat observations.
func (d *DataSet) AllObservations() []*Observation {
	var out []*Observation
	for _, s := range d.series {
		out = append(out, s.Observations...)
	}
	out = append(out, d.flat...)
	return out
}

// Len returns the total number of observations.
func (d *DataSet) Len() int {
	n := len(d.flat)
	for _, s := range d.series {
		n += len(s.Observations)
	}
	return n
}
