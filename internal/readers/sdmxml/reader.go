// Package sdmxml decodes SDMX-ML 2.1 messages: structural metadata,
// generic and structure-specific datasets, and footers. SDMX 2.0
// documents are recognised and rejected.
package sdmxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/core/services"
)

// Ensure Reader implements the interface.
var _ driven.Reader = (*Reader)(nil)

// Reader decodes the hierarchical-tag (SDMX-ML) wire format.
type Reader struct{}

// New creates a new SDMX-ML reader.
func New() *Reader {
	return &Reader{}
}

// SupportedContentTypes returns the media types this reader handles.
func (r *Reader) SupportedContentTypes() []string {
	return []string{
		"application/xml",
		"text/xml",
		"application/vnd.sdmx.structure+xml",
		"application/vnd.sdmx.genericdata+xml",
		"application/vnd.sdmx.structurespecificdata+xml",
		"application/vnd.sdmx.generictimeseriesdata+xml",
		"application/vnd.sdmx.structurespecifictimeseriesdata+xml",
	}
}

// SupportedExtensions returns the file extensions this reader handles.
func (r *Reader) SupportedExtensions() []string {
	return []string{".xml", ".sdmx"}
}

// Priority returns the selection priority.
func (r *Reader) Priority() int {
	return 50 // Generic content-type reader
}

// Read decodes a complete SDMX-ML message in one pass.
func (r *Reader) Read(_ context.Context, raw *driven.RawMessage, opts driven.ReadOptions) (*domain.Message, error) {
	p := &parser{
		dec:  xml.NewDecoder(bytes.NewReader(raw.Body)),
		res:  services.NewResolver(),
		msg:  &domain.Message{},
		opts: opts,
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	p.msg.Warnings = p.res.Unresolved()
	return p.msg, nil
}

// parser is one parse session: the token stream, the session resolver
// and the message under assembly.
type parser struct {
	dec  *xml.Decoder
	res  *services.Resolver
	msg  *domain.Message
	opts driven.ReadOptions

	// structureSpecific marks the dataset dialect of the document.
	structureSpecific bool
}

// run finds the document root, rejects unsupported generations, and
// dispatches on the message type.
func (p *parser) run() error {
	root, err := p.rootElement()
	if err != nil {
		return err
	}
	if err := rejectPriorVersion(root); err != nil {
		return err
	}

	switch root.Name.Local {
	case "Structure":
		return p.parseMessage(root, p.parseStructures)
	case "GenericData", "GenericTimeSeriesData":
		p.structureSpecific = false
		return p.parseMessage(root, nil)
	case "StructureSpecificData", "StructureSpecificTimeSeriesData":
		p.structureSpecific = true
		return p.parseMessage(root, nil)
	case "Error":
		return p.parseError(root)
	default:
		return errors.Wrapf(domain.ErrMalformedDocument,
			"unexpected document root %q", root.Name.Local)
	}
}

// rootElement scans to the first start element.
func (p *parser) rootElement() (xml.StartElement, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.Wrap(domain.ErrMalformedDocument, "empty document")
		}
		if err != nil {
			return xml.StartElement{}, errors.Wrap(domain.ErrMalformedDocument, err.Error())
		}
		if el, ok := tok.(xml.StartElement); ok {
			return el, nil
		}
	}
}

// rejectPriorVersion detects the superseded SDMX 2.0 encoding by
// namespace and by its distinctive root names.
func rejectPriorVersion(root xml.StartElement) error {
	if strings.Contains(root.Name.Space, "/v2_0/") {
		return errors.Wrap(domain.ErrUnsupportedFormatVersion, "SDMX-ML 2.0 document")
	}
	for _, a := range root.Attr {
		if strings.Contains(a.Value, "SDMXML/schemas/v2_0") {
			return errors.Wrap(domain.ErrUnsupportedFormatVersion, "SDMX-ML 2.0 document")
		}
	}
	switch root.Name.Local {
	case "CompactData", "UtilityData", "CrossSectionalData", "MessageGroup":
		return errors.Wrapf(domain.ErrUnsupportedFormatVersion,
			"SDMX-ML 2.0 document root %q", root.Name.Local)
	}
	return nil
}

// parseMessage walks the children of the message root: Header, the
// payload (Structures or DataSets), and the optional Footer.
// structures is non-nil only for structural-metadata messages.
func (p *parser) parseMessage(root xml.StartElement, structures func(xml.StartElement) error) error {
	return p.children(root, func(el xml.StartElement) error {
		switch el.Name.Local {
		case "Header":
			return p.parseHeader(el)
		case "Structures":
			if structures == nil {
				return p.skip()
			}
			return structures(el)
		case "DataSet":
			return p.parseDataSet(el)
		case "Footer":
			return p.parseFooter(el)
		default:
			return p.skip()
		}
	})
}

// parseError converts an Error message into a retrieval error carrying
// the provider's code and text.
func (p *parser) parseError(root xml.StartElement) error {
	code := 0
	var texts []string
	err := p.children(root, func(el xml.StartElement) error {
		if el.Name.Local != "ErrorMessage" {
			return p.skip()
		}
		code = intAttr(el, "code")
		return p.children(el, func(child xml.StartElement) error {
			if child.Name.Local == "Text" {
				text, err := p.text()
				if err != nil {
					return err
				}
				texts = append(texts, text)
				return nil
			}
			return p.skip()
		})
	})
	if err != nil {
		return err
	}
	return &domain.RetrievalError{StatusCode: code, Body: strings.Join(texts, "\n")}
}
