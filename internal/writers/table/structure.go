package table

import (
	"strconv"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// Listing is a structural artefact projected onto labelled text rows.
type Listing struct {
	Title  string
	Header []string
	Rows   [][]string
}

// WriteCodelist projects a codelist onto id, name and parent columns.
func WriteCodelist(cl *domain.Codelist) *Listing {
	l := &Listing{
		Title:  cl.Name.Localised(),
		Header: []string{"id", "name", "parent"},
	}
	for _, c := range cl.Codes() {
		l.Rows = append(l.Rows, []string{c.ID, c.Name.Localised(), c.ParentID})
	}
	return l
}

// WriteConceptScheme projects a concept scheme onto id, name and
// description columns.
func WriteConceptScheme(cs *domain.ConceptScheme) *Listing {
	l := &Listing{
		Title:  cs.Name.Localised(),
		Header: []string{"id", "name", "description"},
	}
	for _, c := range cs.Concepts() {
		l.Rows = append(l.Rows, []string{c.ID, c.Name.Localised(), c.Description.Localised()})
	}
	return l
}

// WriteCategoryScheme projects a category tree depth first, children
// under their parent.
func WriteCategoryScheme(cs *domain.CategoryScheme) *Listing {
	l := &Listing{
		Title:  cs.Name.Localised(),
		Header: []string{"id", "name", "parent"},
	}
	var walk func(cats []*domain.Category)
	walk = func(cats []*domain.Category) {
		for _, c := range cats {
			l.Rows = append(l.Rows, []string{c.ID, c.Name.Localised(), c.ParentID})
			walk(c.Children)
		}
	}
	walk(cs.Categories())
	return l
}

// WriteDataflows projects dataflow definitions onto identity columns.
func WriteDataflows(flows []*domain.DataflowDefinition) *Listing {
	l := &Listing{
		Header: []string{"agency", "id", "version", "name", "structure"},
	}
	for _, f := range flows {
		l.Rows = append(l.Rows, []string{
			f.AgencyID, f.ID, f.Version, f.Name.Localised(), f.Structure.ID,
		})
	}
	return l
}

// WriteDimensions projects a data structure's dimension list in
// declaration order.
func WriteDimensions(dsd *domain.DataStructureDefinition) *Listing {
	l := &Listing{
		Title:  dsd.Name.Localised(),
		Header: []string{"position", "id", "codelist", "time"},
	}
	for _, d := range dsd.Dimensions.Dimensions() {
		codelist := ""
		if rep := d.Representation(); rep != nil && rep.IsEnumerated() {
			codelist = rep.Enumeration.ID
		}
		isTime := ""
		if d.IsTime {
			isTime = "yes"
		}
		l.Rows = append(l.Rows, []string{strconv.Itoa(d.Position), d.ID, codelist, isTime})
	}
	return l
}

// WriteProviders projects a provider registry listing.
func WriteProviders(providers []domain.Provider) *Listing {
	l := &Listing{
		Header: []string{"id", "name", "agency", "format", "url"},
	}
	for _, p := range providers {
		l.Rows = append(l.Rows, []string{
			p.ID, p.Name, p.AgencyID, string(p.DataContentType), p.URL,
		})
	}
	return l
}
