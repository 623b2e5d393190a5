package domain

// FacetType is the primitive value type of a free-form representation.
type FacetType string

// Facet value types.
const (
	FacetString                  FacetType = "String"
	FacetAlphaNumeric            FacetType = "AlphaNumeric"
	FacetInteger                 FacetType = "Integer"
	FacetBigInteger              FacetType = "BigInteger"
	FacetFloat                   FacetType = "Float"
	FacetDouble                  FacetType = "Double"
	FacetBoolean                 FacetType = "Boolean"
	FacetDateTime                FacetType = "DateTime"
	FacetObservationalTimePeriod FacetType = "ObservationalTimePeriod"
)

// Facet constrains a free-form representation: a primitive type plus
// optional length and pattern restrictions.
type Facet struct {
	Type      FacetType
	MinLength int
	MaxLength int
	Pattern   string
}

// Representation is either enumerated (a reference to a Codelist) or
// free-form (a facet). Exactly one side is set.
type Representation struct {
	Enumeration Reference
	Facet       *Facet
}

// IsEnumerated reports whether the representation references a
// codelist.
func (r *Representation) IsEnumerated() bool {
	return r != nil && !r.Enumeration.IsZero()
}

// AttachmentLevel is where a data attribute's values attach.
type AttachmentLevel string

// Attribute attachment levels.
const (
	AttachDataSet     AttachmentLevel = "DataSet"
	AttachSeries      AttachmentLevel = "Series"
	AttachGroup       AttachmentLevel = "Group"
	AttachObservation AttachmentLevel = "Observation"
)

// IsValid returns true if the attachment level is recognised.
func (a AttachmentLevel) IsValid() bool {
	switch a {
	case AttachDataSet, AttachSeries, AttachGroup, AttachObservation:
		return true
	default:
		return false
	}
}

// Component binds a concept to a representation. Dimension and
// DataAttribute embed it.
type Component struct {
	IdentifiableArtefact

	// ConceptIdentity references the concept this component carries.
	ConceptIdentity Reference

	// LocalRepresentation overrides the concept's core representation
	// when set.
	LocalRepresentation *Representation
}

// Representation returns the component's local representation, nil
// when the component inherits its concept's core representation.
// EffectiveRepresentation applies that fallback.
func (c *Component) Representation() *Representation {
	return c.LocalRepresentation
}

// EffectiveRepresentation returns the local representation, falling
// back to the concept's core representation when none is declared.
// concept may be nil when the concept scheme is not at hand.
func (c *Component) EffectiveRepresentation(concept *Concept) *Representation {
	if c.LocalRepresentation != nil {
		return c.LocalRepresentation
	}
	if concept != nil {
		return concept.CoreRepresentation
	}
	return nil
}

// Dimension is an ordered component of a DSD key. Position is 1-based
// and fixes key-string and index ordering.
type Dimension struct {
	Component

	Position int
	IsTime   bool
}

// DataAttribute is a descriptive component attached at a declared
// level.
type DataAttribute struct {
	Component

	AttachmentLevel AttachmentLevel
	Required        bool
}

// PrimaryMeasure is the component holding the observation value.
type PrimaryMeasure struct {
	Component
}

// DimensionDescriptor is the ordered list of dimensions of a DSD.
// Order is significant: it fixes the positional key-string layout and
// the axis ordering of tabular projections.
type DimensionDescriptor struct {
	dims  []*Dimension
	index map[string]int
}

// Append adds a dimension at the next position. A dimension carrying an
// explicit Position keeps it; otherwise the insertion order assigns it.
// Duplicate ids are rejected with ErrDuplicateItem.
func (d *DimensionDescriptor) Append(dim *Dimension) error {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if _, dup := d.index[dim.ID]; dup {
		return ErrDuplicateItem
	}
	if dim.Position == 0 {
		dim.Position = len(d.dims) + 1
	}
	d.index[dim.ID] = len(d.dims)
	d.dims = append(d.dims, dim)
	return nil
}

// Get returns the dimension with the given id.
func (d *DimensionDescriptor) Get(id string) (*Dimension, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.dims[i], true
}

// Position returns the 0-based slot of the dimension id in the key
// layout.
func (d *DimensionDescriptor) Position(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// Dimensions returns the dimensions in declared order.
func (d *DimensionDescriptor) Dimensions() []*Dimension {
	out := make([]*Dimension, len(d.dims))
	copy(out, d.dims)
	return out
}

// IDs returns the dimension ids in declared order.
func (d *DimensionDescriptor) IDs() []string {
	out := make([]string, len(d.dims))
	for i, dim := range d.dims {
		out[i] = dim.ID
	}
	return out
}

// TimeDimension returns the time dimension, if the DSD declares one.
func (d *DimensionDescriptor) TimeDimension() (*Dimension, bool) {
	for _, dim := range d.dims {
		if dim.IsTime {
			return dim, true
		}
	}
	return nil, false
}

// Len returns the number of dimensions.
func (d *DimensionDescriptor) Len() int { return len(d.dims) }

// AttributeDescriptor is the unordered set of data attributes of a DSD,
// held in declared order for deterministic output.
type AttributeDescriptor struct {
	attrs itemList[*DataAttribute]
}

// Append adds an attribute, rejecting duplicate ids.
func (a *AttributeDescriptor) Append(attr *DataAttribute) error {
	if !a.attrs.add(attr.ID, attr) {
		return ErrDuplicateItem
	}
	return nil
}

// Get returns the attribute with the given id.
func (a *AttributeDescriptor) Get(id string) (*DataAttribute, bool) { return a.attrs.get(id) }

// Attributes returns the attributes in declared order.
func (a *AttributeDescriptor) Attributes() []*DataAttribute { return a.attrs.list() }

// AtLevel returns the attributes declared at the given attachment
// level, in declared order.
func (a *AttributeDescriptor) AtLevel(level AttachmentLevel) []*DataAttribute {
	var out []*DataAttribute
	for _, attr := range a.attrs.list() {
		if attr.AttachmentLevel == level {
			out = append(out, attr)
		}
	}
	return out
}

// Len returns the number of attributes.
func (a *AttributeDescriptor) Len() int { return a.attrs.len() }

// DataStructureDefinition (DSD) is the schema for a family of datasets:
// ordered dimensions, attributes with attachment levels and a primary
// measure.
type DataStructureDefinition struct {
	MaintainableArtefact

	Dimensions DimensionDescriptor
	Attributes AttributeDescriptor
	Measure    *PrimaryMeasure
}

// Kind implements Maintainable.
func (d *DataStructureDefinition) Kind() ArtefactKind { return KindDataStructure }

// IsDimension reports whether id names a dimension of this DSD.
func (d *DataStructureDefinition) IsDimension(id string) bool {
	_, ok := d.Dimensions.Get(id)
	return ok
}

// IsAttribute reports whether id names a data attribute of this DSD.
func (d *DataStructureDefinition) IsAttribute(id string) bool {
	_, ok := d.Attributes.Get(id)
	return ok
}

// DataflowDefinition references exactly one DSD and is the externally
// queryable identifier for a family of datasets.
type DataflowDefinition struct {
	MaintainableArtefact

	Structure Reference
}

// Kind implements Maintainable.
func (d *DataflowDefinition) Kind() ArtefactKind { return KindDataflow }

// Categorisation links a categorised artefact (Source) to a Category
// (Target).
type Categorisation struct {
	MaintainableArtefact

	Source Reference
	Target Reference
}

// Kind implements Maintainable.
func (c *Categorisation) Kind() ArtefactKind { return KindCategorisation }
