package sdmxml

import (
	"encoding/xml"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// parseStructures walks the Structures payload: one container element
// per artefact kind, each holding full definitions that fill the
// resolver's canonical instances in place.
func (p *parser) parseStructures(structures xml.StartElement) error {
	return p.children(structures, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "Codelists":
			return p.eachDefinition(el, "Codelist", p.parseCodelist)
		case "Concepts":
			return p.eachDefinition(el, "ConceptScheme", p.parseConceptScheme)
		case "CategorySchemes":
			return p.eachDefinition(el, "CategoryScheme", p.parseCategoryScheme)
		case "OrganisationSchemes":
			return p.eachDefinition(el, "AgencyScheme", p.parseAgencyScheme)
		case "DataStructures":
			return p.eachDefinition(el, "DataStructure", p.parseDataStructure)
		case "Dataflows":
			return p.eachDefinition(el, "Dataflow", p.parseDataflow)
		case "Constraints":
			return p.eachDefinition(el, "ContentConstraint", p.parseConstraint)
		case "Categorisations":
			return p.eachDefinition(el, "Categorisation", p.parseCategorisation)
		default:
			return p.skip()
		}
	})
}

// eachDefinition iterates the definitions of one kind container.
func (p *parser) eachDefinition(container xml.StartElement, local string, parse func(xml.StartElement) error) error {
	return p.children(container, func(el xml.StartElement) error {
		if el.Name.Local != local {
			return p.skip()
		}
		return parse(el)
	})
}

// define resolves the canonical instance for a definition element and
// fills its maintainable attributes. External-reference stubs keep
// their stub marker and are not filled further by the caller.
func (p *parser) define(el xml.StartElement, kind domain.ArtefactKind) (domain.Maintainable, bool, error) {
	agency := attr(el, "agencyID")
	id := attr(el, "id")
	version := attr(el, "version")
	if id == "" {
		return nil, false, errors.Wrapf(domain.ErrMalformedDocument, "%s without id", kind)
	}

	if boolAttr(el, "isExternalReference") {
		a, err := p.res.Resolve(kind, agency, id, version)
		if err != nil {
			return nil, false, err
		}
		m := a.Maintained()
		m.StructureURL = attr(el, "structureURL")
		m.ServiceURL = attr(el, "serviceURL")
		if err := p.msg.Structures.Add(a); err != nil {
			return nil, false, err
		}
		return a, true, nil
	}

	a, err := p.res.Define(kind, agency, id, version)
	if err != nil {
		return nil, false, err
	}
	fillMaintainable(el, a.Maintained())
	if err := p.msg.Structures.Add(a); err != nil {
		return nil, false, err
	}
	return a, false, nil
}

func (p *parser) parseCodelist(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindCodelist)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	cl := a.(*domain.Codelist)
	cl.IsPartial = boolAttr(el, "isPartial")

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &cl.NameableArtefact); done || err != nil {
			return err
		}
		if child.Name.Local != "Code" {
			return p.skip()
		}
		code := &domain.Code{}
		fillItem(child, &code.Item)
		err := p.children(child, func(field xml.StartElement) error {
			if done, err := p.nameable(field, &code.NameableArtefact); done || err != nil {
				return err
			}
			if field.Name.Local == "Parent" {
				ref, err := p.parseRefIn(field)
				if err != nil {
					return err
				}
				code.ParentID = ref.ID
				return nil
			}
			return p.skip()
		})
		if err != nil {
			return err
		}
		return cl.Add(code)
	})
}

func (p *parser) parseConceptScheme(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindConceptScheme)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	cs := a.(*domain.ConceptScheme)
	cs.IsPartial = boolAttr(el, "isPartial")

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &cs.NameableArtefact); done || err != nil {
			return err
		}
		if child.Name.Local != "Concept" {
			return p.skip()
		}
		concept := &domain.Concept{}
		fillItem(child, &concept.Item)
		err := p.children(child, func(field xml.StartElement) error {
			if done, err := p.nameable(field, &concept.NameableArtefact); done || err != nil {
				return err
			}
			switch field.Name.Local {
			case "CoreRepresentation":
				rep, err := p.parseRepresentation(field)
				if err != nil {
					return err
				}
				concept.CoreRepresentation = rep
				return nil
			case "Parent":
				ref, err := p.parseRefIn(field)
				if err != nil {
					return err
				}
				concept.ParentID = ref.ID
				return nil
			default:
				return p.skip()
			}
		})
		if err != nil {
			return err
		}
		return cs.Add(concept)
	})
}

func (p *parser) parseCategoryScheme(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindCategoryScheme)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	cs := a.(*domain.CategoryScheme)
	cs.IsPartial = boolAttr(el, "isPartial")

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &cs.NameableArtefact); done || err != nil {
			return err
		}
		if child.Name.Local != "Category" {
			return p.skip()
		}
		cat, err := p.parseCategory(child)
		if err != nil {
			return err
		}
		return cs.Add(cat)
	})
}

// parseCategory reads a category and its nested children recursively.
func (p *parser) parseCategory(el xml.StartElement) (*domain.Category, error) {
	cat := &domain.Category{}
	fillItem(el, &cat.Item)
	err := p.children(el, func(field xml.StartElement) error {
		if done, err := p.nameable(field, &cat.NameableArtefact); done || err != nil {
			return err
		}
		if field.Name.Local != "Category" {
			return p.skip()
		}
		child, err := p.parseCategory(field)
		if err != nil {
			return err
		}
		child.ParentID = cat.ID
		cat.Children = append(cat.Children, child)
		return nil
	})
	return cat, err
}

func (p *parser) parseAgencyScheme(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindAgencyScheme)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	as := a.(*domain.AgencyScheme)

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &as.NameableArtefact); done || err != nil {
			return err
		}
		if child.Name.Local != "Agency" {
			return p.skip()
		}
		agency := &domain.Agency{}
		fillItem(child, &agency.Item)
		err := p.children(child, func(field xml.StartElement) error {
			if done, err := p.nameable(field, &agency.NameableArtefact); done || err != nil {
				return err
			}
			return p.skip()
		})
		if err != nil {
			return err
		}
		return as.Add(agency)
	})
}

// parseRepresentation reads an Enumeration/TextFormat pair into a
// Representation. Enumerated representations register a codelist
// reference with the resolver so stubs exist for later validation.
func (p *parser) parseRepresentation(el xml.StartElement) (*domain.Representation, error) {
	rep := &domain.Representation{}
	err := p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "Enumeration":
			ref, err := p.parseRefIn(child)
			if err != nil {
				return err
			}
			rep.Enumeration = ref.reference(domain.KindCodelist)
			if _, err := p.res.Resolve(domain.KindCodelist, ref.AgencyID, ref.ID, ref.Version); err != nil {
				return err
			}
			return nil
		case "EnumerationFormat", "TextFormat":
			facet := &domain.Facet{
				Type:      domain.FacetType(attr(child, "textType")),
				MinLength: intAttr(child, "minLength"),
				MaxLength: intAttr(child, "maxLength"),
				Pattern:   attr(child, "pattern"),
			}
			if facet.Type == "" {
				facet.Type = domain.FacetString
			}
			if child.Name.Local == "TextFormat" {
				rep.Facet = facet
			}
			return p.skip()
		default:
			return p.skip()
		}
	})
	return rep, err
}

// parseComponentCommon reads the shared children of dimensions,
// attributes and measures: concept identity and local representation.
// Unconsumed elements are handed to extra, which may be nil.
func (p *parser) parseComponentCommon(el xml.StartElement, c *domain.Component, extra func(xml.StartElement) (bool, error)) error {
	c.ID = attr(el, "id")
	c.URN = attr(el, "urn")
	return p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "ConceptIdentity":
			ref, err := p.parseRefIn(child)
			if err != nil {
				return err
			}
			c.ConceptIdentity = ref.reference(domain.KindConceptScheme)
			if c.ID == "" {
				// Components default their id to the concept id.
				c.ID = ref.ID
			}
			_, err = p.res.Resolve(domain.KindConceptScheme, ref.AgencyID, ref.ParentID, ref.ParentVersion)
			return err
		case "LocalRepresentation":
			rep, err := p.parseRepresentation(child)
			if err != nil {
				return err
			}
			c.LocalRepresentation = rep
			return nil
		case "Annotations":
			return p.parseAnnotations(child, &c.AnnotableArtefact)
		default:
			if extra != nil {
				done, err := extra(child)
				if done || err != nil {
					return err
				}
			}
			return p.skip()
		}
	})
}

func (p *parser) parseDataStructure(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindDataStructure)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	dsd := a.(*domain.DataStructureDefinition)

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &dsd.NameableArtefact); done || err != nil {
			return err
		}
		if child.Name.Local != "DataStructureComponents" {
			return p.skip()
		}
		return p.children(child, func(list xml.StartElement) error {
			switch list.Name.Local {
			case "DimensionList":
				return p.parseDimensionList(list, dsd)
			case "AttributeList":
				return p.parseAttributeList(list, dsd)
			case "MeasureList":
				return p.parseMeasureList(list, dsd)
			default:
				return p.skip()
			}
		})
	})
}

func (p *parser) parseDimensionList(list xml.StartElement, dsd *domain.DataStructureDefinition) error {
	return p.children(list, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "Dimension", "TimeDimension", "MeasureDimension":
			dim := &domain.Dimension{
				Position: intAttr(el, "position"),
				IsTime:   el.Name.Local == "TimeDimension",
			}
			if err := p.parseComponentCommon(el, &dim.Component, nil); err != nil {
				return err
			}
			return dsd.Dimensions.Append(dim)
		default:
			return p.skip()
		}
	})
}

func (p *parser) parseAttributeList(list xml.StartElement, dsd *domain.DataStructureDefinition) error {
	return p.children(list, func(el xml.StartElement) error {
		if el.Name.Local != "Attribute" {
			return p.skip()
		}
		attrDef := &domain.DataAttribute{
			Required:        attr(el, "assignmentStatus") == "Mandatory",
			AttachmentLevel: domain.AttachDataSet,
		}
		err := p.parseComponentCommon(el, &attrDef.Component, func(child xml.StartElement) (bool, error) {
			if child.Name.Local != "AttributeRelationship" {
				return false, nil
			}
			level, err := p.parseAttributeRelationship(child)
			if err != nil {
				return true, err
			}
			attrDef.AttachmentLevel = level
			return true, nil
		})
		if err != nil {
			return err
		}
		return dsd.Attributes.Append(attrDef)
	})
}

// parseAttributeRelationship maps the relationship shape onto an
// attachment level: None means dataset, PrimaryMeasure means
// observation, Group means group, and one or more Dimension refs mean
// series.
func (p *parser) parseAttributeRelationship(el xml.StartElement) (domain.AttachmentLevel, error) {
	level := domain.AttachDataSet
	err := p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "None":
			level = domain.AttachDataSet
		case "PrimaryMeasure":
			level = domain.AttachObservation
		case "Group", "AttachmentGroup":
			level = domain.AttachGroup
		case "Dimension":
			level = domain.AttachSeries
		}
		return p.skip()
	})
	return level, err
}

func (p *parser) parseMeasureList(list xml.StartElement, dsd *domain.DataStructureDefinition) error {
	return p.children(list, func(el xml.StartElement) error {
		if el.Name.Local != "PrimaryMeasure" {
			return p.skip()
		}
		measure := &domain.PrimaryMeasure{}
		if err := p.parseComponentCommon(el, &measure.Component, nil); err != nil {
			return err
		}
		dsd.Measure = measure
		return nil
	})
}

func (p *parser) parseDataflow(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindDataflow)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	flow := a.(*domain.DataflowDefinition)

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &flow.NameableArtefact); done || err != nil {
			return err
		}
		if child.Name.Local != "Structure" {
			return p.skip()
		}
		ref, err := p.parseRefIn(child)
		if err != nil {
			return err
		}
		flow.Structure = ref.reference(domain.KindDataStructure)
		_, err = p.res.Resolve(domain.KindDataStructure, ref.AgencyID, ref.ID, ref.Version)
		return err
	})
}

func (p *parser) parseConstraint(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindContentConstraint)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	cc := a.(*domain.ContentConstraint)
	cc.Role = domain.ConstraintRole(attr(el, "type"))

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &cc.NameableArtefact); done || err != nil {
			return err
		}
		switch child.Name.Local {
		case "ConstraintAttachment":
			return p.children(child, func(target xml.StartElement) error {
				var kind domain.ArtefactKind
				switch target.Name.Local {
				case "Dataflow":
					kind = domain.KindDataflow
				case "DataStructure":
					kind = domain.KindDataStructure
				default:
					return p.skip()
				}
				ref, err := p.parseRefIn(target)
				if err != nil {
					return err
				}
				cc.Attachment = append(cc.Attachment, ref.reference(kind))
				return nil
			})
		case "CubeRegion":
			region := domain.CubeRegion{Excluded: attr(child, "include") == "false"}
			err := p.children(child, func(kv xml.StartElement) error {
				if kv.Name.Local != "KeyValue" {
					return p.skip()
				}
				sel := domain.MemberSelection{DimensionID: attr(kv, "id")}
				err := p.children(kv, func(val xml.StartElement) error {
					if val.Name.Local != "Value" {
						return p.skip()
					}
					v, err := p.text()
					if err != nil {
						return err
					}
					sel.Values = append(sel.Values, v)
					return nil
				})
				if err != nil {
					return err
				}
				region.Members = append(region.Members, sel)
				return nil
			})
			if err != nil {
				return err
			}
			cc.Regions = append(cc.Regions, region)
			return nil
		default:
			return p.skip()
		}
	})
}

func (p *parser) parseCategorisation(el xml.StartElement) error {
	a, stub, err := p.define(el, domain.KindCategorisation)
	if err != nil || stub {
		if stub {
			err = p.skip()
		}
		return err
	}
	cat := a.(*domain.Categorisation)

	return p.children(el, func(child xml.StartElement) error {
		if done, err := p.nameable(child, &cat.NameableArtefact); done || err != nil {
			return err
		}
		switch child.Name.Local {
		case "Source":
			ref, err := p.parseRefIn(child)
			if err != nil {
				return err
			}
			cat.Source = ref.reference(kindForClass(ref.Class, domain.KindDataflow))
			return nil
		case "Target":
			ref, err := p.parseRefIn(child)
			if err != nil {
				return err
			}
			cat.Target = ref.reference(domain.KindCategoryScheme)
			return nil
		default:
			return p.skip()
		}
	})
}

// kindForClass maps a Ref class attribute to an artefact kind, with a
// fallback for absent classes.
func kindForClass(class string, fallback domain.ArtefactKind) domain.ArtefactKind {
	switch class {
	case "Dataflow":
		return domain.KindDataflow
	case "DataStructure":
		return domain.KindDataStructure
	case "Codelist":
		return domain.KindCodelist
	case "ConceptScheme":
		return domain.KindConceptScheme
	case "CategoryScheme", "Category":
		return domain.KindCategoryScheme
	default:
		return fallback
	}
}
