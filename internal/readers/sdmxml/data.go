package sdmxml

import (
	"encoding/xml"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// wellKnownDataSetAttrs are DataSet element attributes with message
// semantics; anything else on a structure-specific DataSet is a
// dataset-level data attribute.
var wellKnownDataSetAttrs = map[string]bool{
	"structureRef":              true,
	"action":                    true,
	"validFromDate":             true,
	"reportingBeginDate":        true,
	"reportingEndDate":          true,
	"dataScope":                 true,
	"setID":                     true,
	"type":                      true,
	"schemaLocation":            true,
	"noNamespaceSchemaLocation": true,
}

// parseDataSet decodes a DataSet element in either dialect. The
// structure-specific dialect names dimensions only through the data
// structure definition, so reading it without one fails.
func (p *parser) parseDataSet(el xml.StartElement) error {
	ds := domain.NewDataSet(p.dimensionAtObservation(el))
	ds.Action = domain.DataSetAction(attr(el, "action"))
	ds.ReportingBegin = attr(el, "reportingBeginDate")
	ds.ReportingEnd = attr(el, "reportingEndDate")
	if v := attr(el, "validFromDate"); v != "" {
		t := parseTime(v)
		ds.ValidFrom = &t
	}
	if ref := attr(el, "structureRef"); ref != "" {
		if ps, ok := p.msg.Header.StructureFor(ref); ok {
			ds.StructureRef = ps.Structure
		}
	}
	ds.Structure = p.opts.Structure

	var err error
	if p.structureSpecific {
		if ds.Structure == nil {
			return errors.Wrap(domain.ErrStructureRequired,
				"structure-specific data carries no component names of its own")
		}
		err = p.parseSpecificDataSet(el, ds)
	} else {
		err = p.parseGenericDataSet(el, ds)
	}
	if err != nil {
		return err
	}
	p.msg.DataSets = append(p.msg.DataSets, ds)
	return nil
}

// dimensionAtObservation resolves the observation dimension for a
// dataset: an explicit read option wins, then the payload structure
// declared in the header, then the flat default.
func (p *parser) dimensionAtObservation(el xml.StartElement) string {
	if p.opts.DimensionAtObservation != "" {
		return p.opts.DimensionAtObservation
	}
	if ps, ok := p.msg.Header.StructureFor(attr(el, "structureRef")); ok {
		return ps.DimensionAtObservation
	}
	return domain.AllDimensions
}

// totalDimensions is the dimension count used to check group keys.
// Without a structure the document is trusted to be well formed.
func (p *parser) totalDimensions(ds *domain.DataSet, keyLen int) int {
	if ds.Structure != nil {
		return ds.Structure.Dimensions.Len()
	}
	return keyLen + 2
}

func (p *parser) parseGenericDataSet(el xml.StartElement, ds *domain.DataSet) error {
	return p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "Attributes":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			ds.Attributes = append(ds.Attributes, toAttributes(values)...)
			return nil
		case "Group":
			return p.parseGenericGroup(child, ds)
		case "Series":
			return p.parseGenericSeries(child, ds)
		case "Obs":
			obs, err := p.parseGenericObs(child, ds, true)
			if err != nil {
				return err
			}
			ds.AddObservation(nil, obs)
			return nil
		default:
			return p.skip()
		}
	})
}

func (p *parser) parseGenericSeries(el xml.StartElement, ds *domain.DataSet) error {
	var series *domain.Series
	return p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "SeriesKey":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			series = ds.AddSeries(domain.NewSeriesKey(values...))
			return nil
		case "Attributes":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			if series == nil {
				return errors.Wrap(domain.ErrMalformedDocument, "series attributes before SeriesKey")
			}
			series.Key.Attributes = append(series.Key.Attributes, toAttributes(values)...)
			return nil
		case "Obs":
			if series == nil {
				return errors.Wrap(domain.ErrMalformedDocument, "observation before SeriesKey")
			}
			obs, err := p.parseGenericObs(child, ds, false)
			if err != nil {
				return err
			}
			ds.AddObservation(series, obs)
			return nil
		default:
			return p.skip()
		}
	})
}

func (p *parser) parseGenericGroup(el xml.StartElement, ds *domain.DataSet) error {
	groupID := attr(el, "type")
	var keyValues []domain.KeyValue
	var attrValues []domain.AttributeValue
	err := p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "GroupKey":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			keyValues = values
			return nil
		case "Attributes":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			attrValues = toAttributes(values)
			return nil
		default:
			return p.skip()
		}
	})
	if err != nil {
		return err
	}
	gk, err := domain.NewGroupKey(groupID, p.totalDimensions(ds, len(keyValues)),
		ds.DimensionAtObservation, keyValues...)
	if err != nil {
		return err
	}
	gk.Attributes = attrValues
	return ds.AddGroup(gk)
}

// parseGenericObs reads one generic observation. Flat observations key
// every dimension through ObsKey; series observations carry a single
// ObsDimension value, labelled by the dataset's dimension at
// observation when the element omits an id.
func (p *parser) parseGenericObs(el xml.StartElement, ds *domain.DataSet, flat bool) (*domain.Observation, error) {
	obs := &domain.Observation{}
	err := p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "ObsKey":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			obs.Dimension = domain.NewKey(values...)
			return nil
		case "ObsDimension":
			if flat {
				return errors.Wrap(domain.ErrMalformedDocument, "ObsDimension in a flat dataset")
			}
			id := attr(child, "id")
			if id == "" {
				id = ds.DimensionAtObservation
			}
			if id == "" || id == domain.AllDimensions {
				id = "TIME_PERIOD"
			}
			obs.Dimension = obs.Dimension.WithValue(id, attr(child, "value"))
			return p.skip()
		case "ObsValue":
			obs.Value = attr(child, "value")
			return p.skip()
		case "Attributes":
			values, err := p.parseValueList(child)
			if err != nil {
				return err
			}
			obs.Attributes = append(obs.Attributes, toAttributes(values)...)
			return nil
		default:
			return p.skip()
		}
	})
	return obs, err
}

// parseValueList reads a run of Value elements with id/value attributes.
func (p *parser) parseValueList(el xml.StartElement) ([]domain.KeyValue, error) {
	var values []domain.KeyValue
	err := p.children(el, func(child xml.StartElement) error {
		if child.Name.Local != "Value" {
			return p.skip()
		}
		values = append(values, domain.KeyValue{
			ID:    attr(child, "id"),
			Value: attr(child, "value"),
		})
		return p.skip()
	})
	return values, err
}

func toAttributes(values []domain.KeyValue) []domain.AttributeValue {
	attrs := make([]domain.AttributeValue, len(values))
	for i, v := range values {
		attrs[i] = domain.AttributeValue{ID: v.ID, Value: v.Value}
	}
	return attrs
}

func (p *parser) parseSpecificDataSet(el xml.StartElement, ds *domain.DataSet) error {
	for _, a := range el.Attr {
		if wellKnownDataSetAttrs[a.Name.Local] || isNamespaceAttr(a) {
			continue
		}
		if ds.Structure.IsAttribute(a.Name.Local) {
			ds.Attributes = append(ds.Attributes,
				domain.AttributeValue{ID: a.Name.Local, Value: a.Value})
		}
	}
	return p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "Group":
			return p.parseSpecificGroup(child, ds)
		case "Series":
			return p.parseSpecificSeries(child, ds)
		case "Obs":
			obs, err := p.parseSpecificObs(child, ds)
			if err != nil {
				return err
			}
			ds.AddObservation(nil, obs)
			return nil
		default:
			return p.skip()
		}
	})
}

// splitComponents sorts an element's attributes into dimension values
// and attribute values according to the data structure definition.
func splitComponents(el xml.StartElement, dsd *domain.DataStructureDefinition) ([]domain.KeyValue, []domain.AttributeValue) {
	var dims []domain.KeyValue
	var attrs []domain.AttributeValue
	for _, a := range el.Attr {
		if isNamespaceAttr(a) || a.Name.Local == "type" {
			continue
		}
		switch {
		case dsd.IsDimension(a.Name.Local):
			dims = append(dims, domain.KeyValue{ID: a.Name.Local, Value: a.Value})
		case dsd.IsAttribute(a.Name.Local):
			attrs = append(attrs, domain.AttributeValue{ID: a.Name.Local, Value: a.Value})
		}
	}
	return dims, attrs
}

func isNamespaceAttr(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || a.Name.Local == "xmlns" ||
		strings.Contains(a.Name.Space, "XMLSchema-instance")
}

// orderByStructure sorts key values into the data structure's
// dimension order. XML attribute order is not significant.
func orderByStructure(values []domain.KeyValue, dsd *domain.DataStructureDefinition) []domain.KeyValue {
	sort.SliceStable(values, func(i, j int) bool {
		pi, _ := dsd.Dimensions.Position(values[i].ID)
		pj, _ := dsd.Dimensions.Position(values[j].ID)
		return pi < pj
	})
	return values
}

func (p *parser) parseSpecificSeries(el xml.StartElement, ds *domain.DataSet) error {
	dims, attrs := splitComponents(el, ds.Structure)
	key := domain.NewSeriesKey(orderByStructure(dims, ds.Structure)...)
	key.Attributes = attrs
	series := ds.AddSeries(key)
	return p.children(el, func(child xml.StartElement) error {
		if child.Name.Local != "Obs" {
			return p.skip()
		}
		obs, err := p.parseSpecificObs(child, ds)
		if err != nil {
			return err
		}
		ds.AddObservation(series, obs)
		return nil
	})
}

func (p *parser) parseSpecificGroup(el xml.StartElement, ds *domain.DataSet) error {
	dims, attrs := splitComponents(el, ds.Structure)
	gk, err := domain.NewGroupKey(attr(el, "type"), p.totalDimensions(ds, len(dims)),
		ds.DimensionAtObservation, orderByStructure(dims, ds.Structure)...)
	if err != nil {
		return err
	}
	gk.Attributes = attrs
	if err := ds.AddGroup(gk); err != nil {
		return err
	}
	return p.skip()
}

// parseSpecificObs reads one structure-specific observation: the
// measure attribute carries the value, dimension attributes key the
// observation, and the rest are data attributes.
func (p *parser) parseSpecificObs(el xml.StartElement, ds *domain.DataSet) (*domain.Observation, error) {
	measureID := "OBS_VALUE"
	if ds.Structure.Measure != nil && ds.Structure.Measure.ID != "" {
		measureID = ds.Structure.Measure.ID
	}
	obs := &domain.Observation{}
	for _, a := range el.Attr {
		if isNamespaceAttr(a) || a.Name.Local == "type" {
			continue
		}
		switch {
		case a.Name.Local == measureID:
			obs.Value = a.Value
		case ds.Structure.IsDimension(a.Name.Local):
			obs.Dimension = obs.Dimension.WithValue(a.Name.Local, a.Value)
		case ds.Structure.IsAttribute(a.Name.Local):
			obs.Attributes = append(obs.Attributes,
				domain.AttributeValue{ID: a.Name.Local, Value: a.Value})
		}
	}
	return obs, p.skip()
}
