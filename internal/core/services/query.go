package services

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

// ResourceKind is an SDMX REST resource segment.
type ResourceKind string

// Queryable resources.
const (
	ResourceData              ResourceKind = "data"
	ResourceDataStructure     ResourceKind = "datastructure"
	ResourceDataflow          ResourceKind = "dataflow"
	ResourceCodelist          ResourceKind = "codelist"
	ResourceConceptScheme     ResourceKind = "conceptscheme"
	ResourceCategoryScheme    ResourceKind = "categoryscheme"
	ResourceCategorisation    ResourceKind = "categorisation"
	ResourceContentConstraint ResourceKind = "contentconstraint"
	ResourceAgencyScheme      ResourceKind = "agencyscheme"
)

// IsValid returns true if the resource kind is recognised.
func (r ResourceKind) IsValid() bool {
	switch r {
	case ResourceData, ResourceDataStructure, ResourceDataflow, ResourceCodelist,
		ResourceConceptScheme, ResourceCategoryScheme, ResourceCategorisation,
		ResourceContentConstraint, ResourceAgencyScheme:
		return true
	default:
		return false
	}
}

// QueryParams are the optional parameters of a structure or data query.
type QueryParams struct {
	// StartPeriod and EndPeriod bound the observation time range of a
	// data query.
	StartPeriod string
	EndPeriod   string

	// References selects the breadth of related artefacts returned
	// with a structure query ("none", "parents", "children", "all",
	// "descendants", or a resource name).
	References string

	// Detail selects the completeness of the returned artefacts
	// ("full", "allstubs", "referencestubs", "dataonly",
	// "serieskeysonly", "nodata").
	Detail string

	// FirstNObservations and LastNObservations truncate each series of
	// a data query.
	FirstNObservations int
	LastNObservations  int
}

// encode renders the parameters into url.Values.
func (p QueryParams) encode() url.Values {
	v := url.Values{}
	if p.StartPeriod != "" {
		v.Set("startPeriod", p.StartPeriod)
	}
	if p.EndPeriod != "" {
		v.Set("endPeriod", p.EndPeriod)
	}
	if p.References != "" {
		v.Set("references", p.References)
	}
	if p.Detail != "" {
		v.Set("detail", p.Detail)
	}
	if p.FirstNObservations > 0 {
		v.Set("firstNObservations", strconv.Itoa(p.FirstNObservations))
	}
	if p.LastNObservations > 0 {
		v.Set("lastNObservations", strconv.Itoa(p.LastNObservations))
	}
	return v
}

// BuildStructureQuery constructs the provider-relative request for a
// structural-metadata resource. Pure; no I/O.
func BuildStructureQuery(kind ResourceKind, agency, id, version string, p QueryParams) (driven.RequestDescriptor, error) {
	if !kind.IsValid() || kind == ResourceData {
		return driven.RequestDescriptor{}, errors.Newf("not a structure resource: %q", kind)
	}
	if id == "" {
		id = "all"
	}
	if agency == "" {
		agency = "all"
	}
	if version == "" {
		version = "latest"
	}
	segments := []string{string(kind), agency, id, version}
	return driven.RequestDescriptor{
		Path:   strings.Join(segments, "/"),
		Params: p.encode(),
	}, nil
}

// BuildDataQuery constructs the provider-relative request for a data
// resource. flow identifies the dataflow; key is a validated positional
// key string (empty for all data); provider narrows to one data
// provider. Pure; no I/O.
func BuildDataQuery(flow domain.Reference, key, provider string, p QueryParams) (driven.RequestDescriptor, error) {
	if flow.ID == "" {
		return driven.RequestDescriptor{}, errors.New("data query requires a dataflow id")
	}
	flowRef := flow.ID
	if flow.AgencyID != "" {
		version := flow.Version
		if version == "" {
			version = "latest"
		}
		flowRef = strings.Join([]string{flow.AgencyID, flow.ID, version}, ",")
	}
	if key == "" {
		key = "all"
	}
	if provider == "" {
		provider = "all"
	}
	segments := []string{string(ResourceData), flowRef, key, provider}
	return driven.RequestDescriptor{
		Path:   strings.Join(segments, "/"),
		Params: p.encode(),
	}, nil
}
