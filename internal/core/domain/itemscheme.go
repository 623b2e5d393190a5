package domain

// Item is a nameable, identifiable unit within an item scheme. ParentID
// links to another item in the same scheme for hierarchical schemes.
type Item struct {
	NameableArtefact

	ParentID string
}

// itemList is an insertion-ordered, id-keyed collection. It backs every
// item scheme and the component descriptors: an ordered map exposing
// the declared order plus lookup and predicate search.
type itemList[T any] struct {
	order []string
	byID  map[string]T
}

func (l *itemList[T]) add(id string, v T) bool {
	if l.byID == nil {
		l.byID = make(map[string]T)
	}
	if _, dup := l.byID[id]; dup {
		return false
	}
	l.byID[id] = v
	l.order = append(l.order, id)
	return true
}

func (l *itemList[T]) get(id string) (T, bool) {
	v, ok := l.byID[id]
	return v, ok
}

func (l *itemList[T]) list() []T {
	out := make([]T, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *itemList[T]) find(pred func(T) bool) (T, bool) {
	for _, id := range l.order {
		if pred(l.byID[id]) {
			return l.byID[id], true
		}
	}
	var zero T
	return zero, false
}

func (l *itemList[T]) len() int { return len(l.order) }

// ItemSchemeDetails carries the fields shared by every item scheme.
type ItemSchemeDetails struct {
	MaintainableArtefact

	// IsPartial marks a scheme that enumerates only the items used by
	// the surrounding message rather than its full membership.
	IsPartial bool
}

// Code is an item of a Codelist.
type Code struct {
	Item
}

// Codelist is a maintainable, ordered collection of Codes keyed by
// code id.
type Codelist struct {
	ItemSchemeDetails

	codes itemList[*Code]
}

// Kind implements Maintainable.
func (cl *Codelist) Kind() ArtefactKind { return KindCodelist }

// Add appends a code, rejecting duplicate ids with ErrDuplicateItem.
func (cl *Codelist) Add(c *Code) error {
	if !cl.codes.add(c.ID, c) {
		return ErrDuplicateItem
	}
	return nil
}

// Get returns the code with the given id.
func (cl *Codelist) Get(id string) (*Code, bool) { return cl.codes.get(id) }

// Codes returns all codes in declared order.
func (cl *Codelist) Codes() []*Code { return cl.codes.list() }

// Find returns the first code matching the predicate in declared order.
func (cl *Codelist) Find(pred func(*Code) bool) (*Code, bool) { return cl.codes.find(pred) }

// Len returns the number of codes.
func (cl *Codelist) Len() int { return cl.codes.len() }

// Concept names a notion; components bind concepts to representations.
// CoreRepresentation, when set, is the default representation for
// components using this concept.
type Concept struct {
	Item

	CoreRepresentation *Representation
}

// ConceptScheme is a maintainable, ordered collection of Concepts.
type ConceptScheme struct {
	ItemSchemeDetails

	concepts itemList[*Concept]
}

// Kind implements Maintainable.
func (cs *ConceptScheme) Kind() ArtefactKind { return KindConceptScheme }

// Add appends a concept, rejecting duplicate ids with ErrDuplicateItem.
func (cs *ConceptScheme) Add(c *Concept) error {
	if !cs.concepts.add(c.ID, c) {
		return ErrDuplicateItem
	}
	return nil
}

// Get returns the concept with the given id.
func (cs *ConceptScheme) Get(id string) (*Concept, bool) { return cs.concepts.get(id) }

// Concepts returns all concepts in declared order.
func (cs *ConceptScheme) Concepts() []*Concept { return cs.concepts.list() }

// Len returns the number of concepts.
func (cs *ConceptScheme) Len() int { return cs.concepts.len() }

// Category is an item that may itself enumerate child categories and,
// through categorisations, the artefacts categorised under it.
type Category struct {
	Item

	Children []*Category
}

// CategoryScheme is a maintainable tree of Categories. Only top-level
// categories are held directly; nested categories hang off Children.
type CategoryScheme struct {
	ItemSchemeDetails

	categories itemList[*Category]
}

// Kind implements Maintainable.
func (cs *CategoryScheme) Kind() ArtefactKind { return KindCategoryScheme }

// Add appends a top-level category, rejecting duplicate ids.
func (cs *CategoryScheme) Add(c *Category) error {
	if !cs.categories.add(c.ID, c) {
		return ErrDuplicateItem
	}
	return nil
}

// Get returns the top-level category with the given id.
func (cs *CategoryScheme) Get(id string) (*Category, bool) { return cs.categories.get(id) }

// Categories returns the top-level categories in declared order.
func (cs *CategoryScheme) Categories() []*Category { return cs.categories.list() }

// Lookup walks the category tree along a "."-separated path of ids.
func (cs *CategoryScheme) Lookup(path ...string) (*Category, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur, ok := cs.Get(path[0])
	if !ok {
		return nil, false
	}
	for _, id := range path[1:] {
		var next *Category
		for _, child := range cur.Children {
			if child.ID == id {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Len returns the number of top-level categories.
func (cs *CategoryScheme) Len() int { return cs.categories.len() }

// Agency is an item of an AgencyScheme: a maintaining organisation.
type Agency struct {
	Item
}

// AgencyScheme is a maintainable collection of Agencies.
type AgencyScheme struct {
	ItemSchemeDetails

	agencies itemList[*Agency]
}

// Kind implements Maintainable.
func (as *AgencyScheme) Kind() ArtefactKind { return KindAgencyScheme }

// Add appends an agency, rejecting duplicate ids.
func (as *AgencyScheme) Add(a *Agency) error {
	if !as.agencies.add(a.ID, a) {
		return ErrDuplicateItem
	}
	return nil
}

// Get returns the agency with the given id.
func (as *AgencyScheme) Get(id string) (*Agency, bool) { return as.agencies.get(id) }

// Agencies returns all agencies in declared order.
func (as *AgencyScheme) Agencies() []*Agency { return as.agencies.list() }

// Len returns the number of agencies.
func (as *AgencyScheme) Len() int { return as.agencies.len() }
