package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

func TestBuildStructureQuery(t *testing.T) {
	req, err := BuildStructureQuery(ResourceCodelist, "ECB", "CL_CURRENCY", "1.0",
		QueryParams{References: "none", Detail: "full"})
	require.NoError(t, err)

	assert.Equal(t, "codelist/ECB/CL_CURRENCY/1.0", req.Path)
	assert.Equal(t, "none", req.Params.Get("references"))
	assert.Equal(t, "full", req.Params.Get("detail"))
	assert.Equal(t, "codelist/ECB/CL_CURRENCY/1.0?detail=full&references=none", req.Encode())
}

func TestBuildStructureQuery_Defaults(t *testing.T) {
	req, err := BuildStructureQuery(ResourceDataflow, "", "", "", QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, "dataflow/all/all/latest", req.Path)
	assert.Equal(t, "dataflow/all/all/latest", req.Encode())
}

func TestBuildStructureQuery_RejectsData(t *testing.T) {
	_, err := BuildStructureQuery(ResourceData, "ECB", "EXR", "", QueryParams{})
	assert.Error(t, err)

	_, err = BuildStructureQuery(ResourceKind("bogus"), "ECB", "EXR", "", QueryParams{})
	assert.Error(t, err)
}

func TestBuildDataQuery(t *testing.T) {
	flow := domain.Reference{Kind: domain.KindDataflow, AgencyID: "ECB", ID: "EXR", Version: "1.0"}
	req, err := BuildDataQuery(flow, ".USD+JPY....", "",
		QueryParams{StartPeriod: "2013-01", EndPeriod: "2013-02", LastNObservations: 10})
	require.NoError(t, err)

	assert.Equal(t, "data/ECB,EXR,1.0/.USD+JPY..../all", req.Path)
	assert.Equal(t, "2013-01", req.Params.Get("startPeriod"))
	assert.Equal(t, "2013-02", req.Params.Get("endPeriod"))
	assert.Equal(t, "10", req.Params.Get("lastNObservations"))
}

func TestBuildDataQuery_BareFlowID(t *testing.T) {
	req, err := BuildDataQuery(domain.Reference{ID: "EXR"}, "", "", QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, "data/EXR/all/all", req.Path)

	_, err = BuildDataQuery(domain.Reference{}, "", "", QueryParams{})
	assert.Error(t, err)
}
