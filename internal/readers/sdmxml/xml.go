package sdmxml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// children iterates the child elements of the element whose start tag
// was just consumed. fn must consume each child fully (parse it or call
// skip). Returns when the parent's end tag is reached.
func (p *parser) children(_ xml.StartElement, fn func(el xml.StartElement) error) error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return errors.Wrap(domain.ErrMalformedDocument, "unexpected end of document")
		}
		if err != nil {
			return errors.Wrap(domain.ErrMalformedDocument, err.Error())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// skip consumes the current element through its end tag.
func (p *parser) skip() error {
	if err := p.dec.Skip(); err != nil {
		return errors.Wrap(domain.ErrMalformedDocument, err.Error())
	}
	return nil
}

// text collects the character data of the current element up to its
// end tag. Nested elements are skipped.
func (p *parser) text() (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", errors.Wrap(domain.ErrMalformedDocument, "unterminated text element")
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := p.skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		}
	}
}

// localised reads a localised text element (xml:lang attribute plus
// character data) into the string, allocating as needed.
func (p *parser) localised(el xml.StartElement, s domain.InternationalString) (domain.InternationalString, error) {
	lang := attr(el, "lang")
	text, err := p.text()
	if err != nil {
		return s, err
	}
	return s.Set(lang, text), nil
}

// attr returns the value of the named attribute, matching on the local
// name so namespace prefixes are irrelevant.
func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func boolAttr(el xml.StartElement, name string) bool {
	return attr(el, name) == "true"
}

func intAttr(el xml.StartElement, name string) int {
	n, _ := strconv.Atoi(attr(el, name))
	return n
}

// timeLayouts are the timestamp shapes providers emit in headers.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// refTarget is a parsed Ref (or URN-less reference) element: the
// attribute set SDMX-ML uses to point at artefacts and items.
type refTarget struct {
	AgencyID string
	ID       string
	Version  string
	Class    string
	// Maintainable parent, set on item references (concepts,
	// categories).
	ParentID      string
	ParentVersion string
}

// parseRefIn scans the children of a wrapper element (Structure,
// ConceptIdentity, Enumeration, Source, Target...) for its Ref child
// and returns the parsed target.
func (p *parser) parseRefIn(wrapper xml.StartElement) (refTarget, error) {
	var ref refTarget
	err := p.children(wrapper, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "Ref":
			ref = refTarget{
				AgencyID:      attr(el, "agencyID"),
				ID:            attr(el, "id"),
				Version:       attr(el, "version"),
				Class:         attr(el, "class"),
				ParentID:      attr(el, "maintainableParentID"),
				ParentVersion: attr(el, "maintainableParentVersion"),
			}
			return p.skip()
		case "URN":
			// Location hints are ignored; the Ref carries identity.
			_, err := p.text()
			return err
		default:
			return p.skip()
		}
	})
	return ref, err
}

// reference converts a parsed Ref into a model Reference of the given
// kind. Item references (with a maintainable parent) address the
// parent scheme and carry the item id.
func (r refTarget) reference(kind domain.ArtefactKind) domain.Reference {
	if r.ParentID != "" {
		return domain.Reference{
			Kind:     kind,
			AgencyID: r.AgencyID,
			ID:       r.ParentID,
			Version:  domain.NormalizeVersion(r.ParentVersion),
			ItemID:   r.ID,
		}
	}
	return domain.Reference{
		Kind:     kind,
		AgencyID: r.AgencyID,
		ID:       r.ID,
		Version:  domain.NormalizeVersion(r.Version),
	}
}

// parseAnnotations reads an Annotations container.
func (p *parser) parseAnnotations(el xml.StartElement, target *domain.AnnotableArtefact) error {
	return p.children(el, func(child xml.StartElement) error {
		if child.Name.Local != "Annotation" {
			return p.skip()
		}
		ann := domain.Annotation{ID: attr(child, "id")}
		err := p.children(child, func(field xml.StartElement) error {
			var err error
			switch field.Name.Local {
			case "AnnotationTitle":
				ann.Title, err = p.text()
			case "AnnotationType":
				ann.Type, err = p.text()
			case "AnnotationURL":
				ann.URL, err = p.text()
			case "AnnotationText":
				ann.Text, err = p.localised(field, ann.Text)
			default:
				err = p.skip()
			}
			return err
		})
		if err != nil {
			return err
		}
		target.Annotations = append(target.Annotations, ann)
		return nil
	})
}

// nameable dispatches the common child elements of nameable artefacts.
// Returns true when the element was consumed.
func (p *parser) nameable(el xml.StartElement, target *domain.NameableArtefact) (bool, error) {
	var err error
	switch el.Name.Local {
	case "Name":
		target.Name, err = p.localised(el, target.Name)
	case "Description":
		target.Description, err = p.localised(el, target.Description)
	case "Annotations":
		err = p.parseAnnotations(el, &target.AnnotableArtefact)
	default:
		return false, nil
	}
	return true, err
}

// fillMaintainable copies the maintainable attribute set of a
// definition element onto the artefact.
func fillMaintainable(el xml.StartElement, m *domain.MaintainableArtefact) {
	m.ID = attr(el, "id")
	m.URN = attr(el, "urn")
	m.URI = attr(el, "uri")
	m.AgencyID = attr(el, "agencyID")
	m.Version = domain.NormalizeVersion(attr(el, "version"))
	m.IsFinal = boolAttr(el, "isFinal")
	m.ServiceURL = attr(el, "serviceURL")
	m.StructureURL = attr(el, "structureURL")
	if vf := attr(el, "validFrom"); vf != "" {
		t := parseTime(vf)
		m.ValidFrom = &t
	}
	if vt := attr(el, "validTo"); vt != "" {
		t := parseTime(vt)
		m.ValidTo = &t
	}
}

// fillItem copies the identifiable attribute set of an item element.
func fillItem(el xml.StartElement, item *domain.Item) {
	item.ID = attr(el, "id")
	item.URN = attr(el, "urn")
	item.URI = attr(el, "uri")
}
