package domain

// ConstraintRole distinguishes constraints describing what data is
// allowed from constraints describing what data is actually present.
type ConstraintRole string

// Constraint roles.
const (
	RoleAllowed ConstraintRole = "Allowed"
	RoleActual  ConstraintRole = "Actual"
)

// MemberSelection is the allowed-value set of one dimension within a
// cube region.
type MemberSelection struct {
	DimensionID string
	Values      []string
}

// CubeRegion maps dimension ids to allowed-value sets. A region marked
// Excluded subtracts its values from the permitted set instead of
// adding them.
type CubeRegion struct {
	Excluded bool
	Members  []MemberSelection
}

// Values returns the selection for the given dimension id within this
// region, or nil when the region does not mention the dimension.
func (r *CubeRegion) Values(dimensionID string) []string {
	for _, m := range r.Members {
		if m.DimensionID == dimensionID {
			return m.Values
		}
	}
	return nil
}

// ContentConstraint restricts the permitted dimension-value
// combinations of the artefacts it attaches to. Only cube regions
// participate in validation; key-set constraints are out of scope.
type ContentConstraint struct {
	MaintainableArtefact

	Role    ConstraintRole
	Regions []CubeRegion

	// Attachment lists the artefacts (dataflows, DSDs, provision
	// agreements) this constraint applies to.
	Attachment []Reference
}

// Kind implements Maintainable.
func (c *ContentConstraint) Kind() ArtefactKind { return KindContentConstraint }

// PermittedValues computes the effective permitted-value set for a
// dimension: the union of values from included regions minus the union
// from excluded regions. The second result is false when no region
// mentions the dimension, meaning the constraint does not restrict it.
func (c *ContentConstraint) PermittedValues(dimensionID string) (map[string]bool, bool) {
	permitted := make(map[string]bool)
	constrained := false
	for i := range c.Regions {
		r := &c.Regions[i]
		if r.Excluded {
			continue
		}
		for _, v := range r.Values(dimensionID) {
			permitted[v] = true
			constrained = true
		}
	}
	for i := range c.Regions {
		r := &c.Regions[i]
		if !r.Excluded {
			continue
		}
		for _, v := range r.Values(dimensionID) {
			delete(permitted, v)
			constrained = true
		}
	}
	return permitted, constrained
}
