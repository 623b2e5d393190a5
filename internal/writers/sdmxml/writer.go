// Package sdmxml serialises structural metadata back to SDMX-ML 2.1,
// sufficient for a written message to parse back into an equivalent
// structure set.
package sdmxml

import (
	"bytes"
	"encoding/xml"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// namespace declarations carried on the document root.
const (
	nsMessage   = "http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
	nsStructure = "http://www.sdmx.org/resources/sdmxml/schemas/v2_1/structure"
	nsCommon    = "http://www.sdmx.org/resources/sdmxml/schemas/v2_1/common"
)

// Writer serialises structure messages.
type Writer struct {
	// Now supplies the header preparation time; overridable in tests.
	Now func() time.Time
}

// New creates a structure writer.
func New() *Writer {
	return &Writer{Now: time.Now}
}

// WriteMessage serialises the structural artefacts of a message. The
// header identity is preserved when present and generated otherwise.
func (w *Writer) WriteMessage(msg *domain.Message) ([]byte, error) {
	if msg.Structures.IsEmpty() {
		return nil, errors.New("message carries no structural artefacts")
	}

	doc := document{
		NSMessage:   nsMessage,
		NSStructure: nsStructure,
		NSCommon:    nsCommon,
		Header: headerXML{
			ID:       msg.Header.ID,
			Test:     msg.Header.Test,
			Prepared: w.Now().UTC().Format("2006-01-02T15:04:05"),
			Sender:   partyXML{ID: msg.Header.Sender.ID},
		},
	}
	if doc.Header.ID == "" {
		doc.Header.ID = "IDREF-" + uuid.NewString()
	}
	if doc.Header.Sender.ID == "" {
		doc.Header.Sender.ID = "Unknown"
	}

	s := &doc.Structures
	for _, cl := range msg.Structures.Codelists() {
		s.Codelists = append(s.Codelists, codelistXML(cl))
	}
	for _, cs := range msg.Structures.ConceptSchemes() {
		s.ConceptSchemes = append(s.ConceptSchemes, conceptSchemeXML(cs))
	}
	for _, cs := range msg.Structures.CategorySchemes() {
		s.CategorySchemes = append(s.CategorySchemes, categorySchemeXML(cs))
	}
	for _, as := range msg.Structures.AgencySchemes() {
		s.AgencySchemes = append(s.AgencySchemes, agencySchemeXML(as))
	}
	for _, dsd := range msg.Structures.DataStructures() {
		s.DataStructures = append(s.DataStructures, dataStructureXML(dsd))
	}
	for _, flow := range msg.Structures.Dataflows() {
		s.Dataflows = append(s.Dataflows, dataflowXML(flow))
	}
	for _, cc := range msg.Structures.Constraints() {
		s.Constraints = append(s.Constraints, constraintXML(cc))
	}
	for _, cat := range msg.Structures.Categorisations() {
		s.Categorisations = append(s.Categorisations, categorisationXML(cat))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding structure message")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding structure message")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Wire shapes, element names carrying their conventional prefixes.

type document struct {
	XMLName     xml.Name `xml:"mes:Structure"`
	NSMessage   string   `xml:"xmlns:mes,attr"`
	NSStructure string   `xml:"xmlns:str,attr"`
	NSCommon    string   `xml:"xmlns:com,attr"`

	Header     headerXML     `xml:"mes:Header"`
	Structures structuresXML `xml:"mes:Structures"`
}

type headerXML struct {
	ID       string   `xml:"mes:ID"`
	Test     bool     `xml:"mes:Test"`
	Prepared string   `xml:"mes:Prepared"`
	Sender   partyXML `xml:"mes:Sender"`
}

type partyXML struct {
	ID string `xml:"id,attr"`
}

type structuresXML struct {
	Codelists       []maintainableXML `xml:"str:Codelists>str:Codelist,omitempty"`
	ConceptSchemes  []maintainableXML `xml:"str:Concepts>str:ConceptScheme,omitempty"`
	CategorySchemes []maintainableXML `xml:"str:CategorySchemes>str:CategoryScheme,omitempty"`
	AgencySchemes   []maintainableXML `xml:"str:OrganisationSchemes>str:AgencyScheme,omitempty"`
	DataStructures  []dsdXML          `xml:"str:DataStructures>str:DataStructure,omitempty"`
	Dataflows       []dataflowXMLT    `xml:"str:Dataflows>str:Dataflow,omitempty"`
	Constraints     []constraintXMLT  `xml:"str:Constraints>str:ContentConstraint,omitempty"`
	Categorisations []catXMLT         `xml:"str:Categorisations>str:Categorisation,omitempty"`
}

type textXML struct {
	Lang string `xml:"xml:lang,attr,omitempty"`
	Text string `xml:",chardata"`
}

type refXML struct {
	AgencyID      string `xml:"agencyID,attr,omitempty"`
	ID            string `xml:"id,attr"`
	Version       string `xml:"version,attr,omitempty"`
	Class         string `xml:"class,attr,omitempty"`
	ParentID      string `xml:"maintainableParentID,attr,omitempty"`
	ParentVersion string `xml:"maintainableParentVersion,attr,omitempty"`
}

type refHolderXML struct {
	Ref refXML `xml:"Ref"`
}

type maintainableXML struct {
	ID       string `xml:"id,attr"`
	AgencyID string `xml:"agencyID,attr,omitempty"`
	Version  string `xml:"version,attr,omitempty"`
	IsFinal  bool   `xml:"isFinal,attr,omitempty"`

	Names        []textXML `xml:"com:Name,omitempty"`
	Descriptions []textXML `xml:"com:Description,omitempty"`
	Items        []itemXML
}

type itemXML struct {
	XMLName xml.Name
	ID      string    `xml:"id,attr"`
	Names   []textXML `xml:"com:Name,omitempty"`

	Parent   *refHolderXML `xml:"str:Parent,omitempty"`
	Children []itemXML
}

func localisedTexts(s domain.InternationalString) []textXML {
	if len(s) == 0 {
		return nil
	}
	locales := make([]string, 0, len(s))
	for locale := range s {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	out := make([]textXML, len(locales))
	for i, locale := range locales {
		out[i] = textXML{Lang: locale, Text: s[locale]}
	}
	return out
}

func maintainableAttrs(m *domain.MaintainableArtefact) maintainableXML {
	return maintainableXML{
		ID:           m.ID,
		AgencyID:     m.AgencyID,
		Version:      m.Version,
		IsFinal:      m.IsFinal,
		Names:        localisedTexts(m.Name),
		Descriptions: localisedTexts(m.Description),
	}
}

func codelistXML(cl *domain.Codelist) maintainableXML {
	out := maintainableAttrs(&cl.MaintainableArtefact)
	for _, c := range cl.Codes() {
		item := itemXML{
			XMLName: xml.Name{Local: "str:Code"},
			ID:      c.ID,
			Names:   localisedTexts(c.Name),
		}
		if c.ParentID != "" {
			item.Parent = &refHolderXML{Ref: refXML{ID: c.ParentID}}
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func conceptSchemeXML(cs *domain.ConceptScheme) maintainableXML {
	out := maintainableAttrs(&cs.MaintainableArtefact)
	for _, c := range cs.Concepts() {
		out.Items = append(out.Items, itemXML{
			XMLName: xml.Name{Local: "str:Concept"},
			ID:      c.ID,
			Names:   localisedTexts(c.Name),
		})
	}
	return out
}

func categorySchemeXML(cs *domain.CategoryScheme) maintainableXML {
	out := maintainableAttrs(&cs.MaintainableArtefact)
	var convert func(c *domain.Category) itemXML
	convert = func(c *domain.Category) itemXML {
		item := itemXML{
			XMLName: xml.Name{Local: "str:Category"},
			ID:      c.ID,
			Names:   localisedTexts(c.Name),
		}
		for _, child := range c.Children {
			item.Children = append(item.Children, convert(child))
		}
		return item
	}
	for _, c := range cs.Categories() {
		out.Items = append(out.Items, convert(c))
	}
	return out
}

func agencySchemeXML(as *domain.AgencyScheme) maintainableXML {
	out := maintainableAttrs(&as.MaintainableArtefact)
	for _, a := range as.Agencies() {
		out.Items = append(out.Items, itemXML{
			XMLName: xml.Name{Local: "str:Agency"},
			ID:      a.ID,
			Names:   localisedTexts(a.Name),
		})
	}
	return out
}

type dsdXML struct {
	maintainableXML
	Components componentsXML `xml:"str:DataStructureComponents"`
}

type componentsXML struct {
	DimensionList dimensionListXML `xml:"str:DimensionList"`
	Attributes    []attributeXML   `xml:"str:AttributeList>str:Attribute,omitempty"`
	Measure       *measureXML      `xml:"str:MeasureList>str:PrimaryMeasure,omitempty"`
}

// dimensionListXML holds dimensions whose element names vary between
// Dimension and TimeDimension.
type dimensionListXML struct {
	Dimensions []dimensionXML
}

type dimensionXML struct {
	XMLName        xml.Name
	ID             string             `xml:"id,attr"`
	Position       int                `xml:"position,attr"`
	Concept        *refHolderXML      `xml:"str:ConceptIdentity,omitempty"`
	Representation *representationXML `xml:"str:LocalRepresentation,omitempty"`
}

type attributeXML struct {
	ID             string             `xml:"id,attr"`
	Assignment     string             `xml:"assignmentStatus,attr"`
	Concept        *refHolderXML      `xml:"str:ConceptIdentity,omitempty"`
	Representation *representationXML `xml:"str:LocalRepresentation,omitempty"`
	Relationship   relationshipXML    `xml:"str:AttributeRelationship"`
}

type measureXML struct {
	ID      string        `xml:"id,attr"`
	Concept *refHolderXML `xml:"str:ConceptIdentity,omitempty"`
}

type representationXML struct {
	Enumeration *refHolderXML  `xml:"str:Enumeration,omitempty"`
	TextFormat  *textFormatXML `xml:"str:TextFormat,omitempty"`
}

type textFormatXML struct {
	TextType  string `xml:"textType,attr,omitempty"`
	MinLength int    `xml:"minLength,attr,omitempty"`
	MaxLength int    `xml:"maxLength,attr,omitempty"`
	Pattern   string `xml:"pattern,attr,omitempty"`
}

type relationshipXML struct {
	None       *struct{}      `xml:"str:None,omitempty"`
	Measure    *refHolderXML  `xml:"str:PrimaryMeasure,omitempty"`
	Group      *refHolderXML  `xml:"str:Group,omitempty"`
	Dimensions []refHolderXML `xml:"str:Dimension,omitempty"`
}

func conceptRef(ref domain.Reference) *refHolderXML {
	if ref.IsZero() {
		return nil
	}
	parent := ref.Parent()
	return &refHolderXML{Ref: refXML{
		AgencyID:      parent.AgencyID,
		ID:            ref.ItemID,
		ParentID:      parent.ID,
		ParentVersion: parent.Version,
	}}
}

func representationRef(rep *domain.Representation) *representationXML {
	if rep == nil {
		return nil
	}
	out := &representationXML{}
	if rep.IsEnumerated() {
		out.Enumeration = &refHolderXML{Ref: refXML{
			AgencyID: rep.Enumeration.AgencyID,
			ID:       rep.Enumeration.ID,
			Version:  rep.Enumeration.Version,
			Class:    "Codelist",
		}}
	}
	if rep.Facet != nil {
		out.TextFormat = &textFormatXML{
			TextType:  string(rep.Facet.Type),
			MinLength: rep.Facet.MinLength,
			MaxLength: rep.Facet.MaxLength,
			Pattern:   rep.Facet.Pattern,
		}
	}
	return out
}

func dataStructureXML(dsd *domain.DataStructureDefinition) dsdXML {
	out := dsdXML{maintainableXML: maintainableAttrs(&dsd.MaintainableArtefact)}
	for _, d := range dsd.Dimensions.Dimensions() {
		name := "str:Dimension"
		if d.IsTime {
			name = "str:TimeDimension"
		}
		out.Components.DimensionList.Dimensions = append(out.Components.DimensionList.Dimensions, dimensionXML{
			XMLName:        xml.Name{Local: name},
			ID:             d.ID,
			Position:       d.Position,
			Concept:        conceptRef(d.ConceptIdentity),
			Representation: representationRef(d.LocalRepresentation),
		})
	}
	for _, a := range dsd.Attributes.Attributes() {
		assignment := "Conditional"
		if a.Required {
			assignment = "Mandatory"
		}
		out.Components.Attributes = append(out.Components.Attributes, attributeXML{
			ID:             a.ID,
			Assignment:     assignment,
			Concept:        conceptRef(a.ConceptIdentity),
			Representation: representationRef(a.LocalRepresentation),
			Relationship:   relationshipFor(a.AttachmentLevel),
		})
	}
	if dsd.Measure != nil {
		out.Components.Measure = &measureXML{
			ID:      dsd.Measure.ID,
			Concept: conceptRef(dsd.Measure.ConceptIdentity),
		}
	}
	return out
}

func relationshipFor(level domain.AttachmentLevel) relationshipXML {
	switch level {
	case domain.AttachObservation:
		return relationshipXML{Measure: &refHolderXML{Ref: refXML{ID: "OBS_VALUE"}}}
	case domain.AttachGroup:
		return relationshipXML{Group: &refHolderXML{Ref: refXML{ID: "Group"}}}
	case domain.AttachSeries:
		return relationshipXML{Dimensions: []refHolderXML{{Ref: refXML{ID: "Series"}}}}
	default:
		return relationshipXML{None: &struct{}{}}
	}
}

type dataflowXMLT struct {
	maintainableXML
	Structure *refHolderXML `xml:"str:Structure,omitempty"`
}

func dataflowXML(flow *domain.DataflowDefinition) dataflowXMLT {
	out := dataflowXMLT{maintainableXML: maintainableAttrs(&flow.MaintainableArtefact)}
	if !flow.Structure.IsZero() {
		out.Structure = &refHolderXML{Ref: refXML{
			AgencyID: flow.Structure.AgencyID,
			ID:       flow.Structure.ID,
			Version:  flow.Structure.Version,
			Class:    "DataStructure",
		}}
	}
	return out
}

type constraintXMLT struct {
	maintainableXML
	Type       string          `xml:"type,attr,omitempty"`
	Attachment *attachmentXML  `xml:"str:ConstraintAttachment,omitempty"`
	Regions    []cubeRegionXML `xml:"str:CubeRegion,omitempty"`
}

type attachmentXML struct {
	Dataflows      []refHolderXML `xml:"str:Dataflow,omitempty"`
	DataStructures []refHolderXML `xml:"str:DataStructure,omitempty"`
}

type cubeRegionXML struct {
	Include   bool          `xml:"include,attr"`
	KeyValues []keyValueXML `xml:"com:KeyValue,omitempty"`
}

type keyValueXML struct {
	ID     string   `xml:"id,attr"`
	Values []string `xml:"com:Value"`
}

func constraintXML(cc *domain.ContentConstraint) constraintXMLT {
	out := constraintXMLT{
		maintainableXML: maintainableAttrs(&cc.MaintainableArtefact),
		Type:            string(cc.Role),
	}
	for _, ref := range cc.Attachment {
		holder := refHolderXML{Ref: refXML{
			AgencyID: ref.AgencyID, ID: ref.ID, Version: ref.Version,
		}}
		if out.Attachment == nil {
			out.Attachment = &attachmentXML{}
		}
		if ref.Kind == domain.KindDataStructure {
			out.Attachment.DataStructures = append(out.Attachment.DataStructures, holder)
		} else {
			out.Attachment.Dataflows = append(out.Attachment.Dataflows, holder)
		}
	}
	for _, region := range cc.Regions {
		r := cubeRegionXML{Include: !region.Excluded}
		for _, m := range region.Members {
			r.KeyValues = append(r.KeyValues, keyValueXML{ID: m.DimensionID, Values: m.Values})
		}
		out.Regions = append(out.Regions, r)
	}
	return out
}

type catXMLT struct {
	maintainableXML
	Source *refHolderXML `xml:"str:Source,omitempty"`
	Target *refHolderXML `xml:"str:Target,omitempty"`
}

func categorisationXML(cat *domain.Categorisation) catXMLT {
	out := catXMLT{maintainableXML: maintainableAttrs(&cat.MaintainableArtefact)}
	if !cat.Source.IsZero() {
		out.Source = &refHolderXML{Ref: refXML{
			AgencyID: cat.Source.AgencyID, ID: cat.Source.ID,
			Version: cat.Source.Version, Class: "Dataflow",
		}}
	}
	if !cat.Target.IsZero() {
		parent := cat.Target.Parent()
		out.Target = &refHolderXML{Ref: refXML{
			AgencyID: parent.AgencyID, ID: cat.Target.ItemID,
			ParentID: parent.ID, ParentVersion: parent.Version,
			Class: "Category",
		}}
	}
	return out
}
