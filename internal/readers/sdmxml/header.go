package sdmxml

import (
	"encoding/xml"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// parseHeader reads the message header: identity, provenance, and the
// payload structure declarations data parsing depends on.
func (p *parser) parseHeader(header xml.StartElement) error {
	h := &p.msg.Header
	return p.children(header, func(el xml.StartElement) error {
		var err error
		switch el.Name.Local {
		case "ID":
			h.ID, err = p.text()
		case "Test":
			var v string
			if v, err = p.text(); err == nil {
				h.Test = v == "true"
			}
		case "Prepared":
			var v string
			if v, err = p.text(); err == nil {
				h.Prepared = parseTime(v)
			}
		case "Sender":
			h.Sender, err = p.parseParty(el)
		case "Receiver":
			h.Receiver, err = p.parseParty(el)
		case "Structure":
			err = p.parsePayloadStructure(el)
		default:
			err = p.skip()
		}
		return err
	})
}

// parseParty reads a Sender/Receiver element.
func (p *parser) parseParty(party xml.StartElement) (domain.Party, error) {
	out := domain.Party{ID: attr(party, "id")}
	err := p.children(party, func(el xml.StartElement) error {
		if el.Name.Local == "Name" {
			var err error
			out.Name, err = p.localised(el, out.Name)
			return err
		}
		return p.skip()
	})
	return out, err
}

// parsePayloadStructure reads a header Structure declaration: the
// structure id datasets refer to, the dimension at observation, and
// the DSD reference.
func (p *parser) parsePayloadStructure(el xml.StartElement) error {
	ps := domain.PayloadStructure{
		StructureID:            attr(el, "structureID"),
		DimensionAtObservation: attr(el, "dimensionAtObservation"),
	}
	err := p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "Structure", "StructureUsage", "ProvisionAgreement":
			ref, err := p.parseRefIn(child)
			if err != nil {
				return err
			}
			kind := domain.KindDataStructure
			if child.Name.Local == "StructureUsage" {
				kind = domain.KindDataflow
			}
			ps.Structure = ref.reference(kind)
			return nil
		default:
			return p.skip()
		}
	})
	if err != nil {
		return err
	}
	p.msg.Header.Structures = append(p.msg.Header.Structures, ps)
	return nil
}

// parseFooter reads the footer's severity-coded diagnostic blocks.
// Text is kept verbatim; interpretation is the caller's business.
func (p *parser) parseFooter(footer xml.StartElement) error {
	f := &domain.Footer{}
	err := p.children(footer, func(el xml.StartElement) error {
		if el.Name.Local != "Message" {
			return p.skip()
		}
		fm := domain.FooterMessage{
			Code:     intAttr(el, "code"),
			Severity: domain.FooterSeverity(attr(el, "severity")),
		}
		err := p.children(el, func(child xml.StartElement) error {
			if child.Name.Local != "Text" {
				return p.skip()
			}
			line, err := p.text()
			if err != nil {
				return err
			}
			fm.Lines = append(fm.Lines, line)
			return nil
		})
		if err != nil {
			return err
		}
		f.Messages = append(f.Messages, fm)
		return nil
	})
	if err != nil {
		return err
	}
	p.msg.Footer = f
	return nil
}
