package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exrMessage(t *testing.T) *Message {
	t.Helper()

	cl := &Codelist{}
	cl.ID = "CL_CURRENCY"
	cl.AgencyID = "ECB"
	cl.Version = "1.0"
	c := &Code{}
	c.ID = "USD"
	require.NoError(t, cl.Add(c))

	msg := &Message{}
	require.NoError(t, msg.Structures.Add(cl))
	return msg
}

func TestMessage_CodelistByRef(t *testing.T) {
	msg := exrMessage(t)

	cl, ok := msg.CodelistByRef(Reference{Kind: KindCodelist, AgencyID: "ECB", ID: "CL_CURRENCY", Version: "1.0"})
	require.True(t, ok)
	assert.Equal(t, "CL_CURRENCY", cl.ID)

	// Version-less references accept whatever generation the message
	// carries.
	_, ok = msg.CodelistByRef(Reference{Kind: KindCodelist, ID: "CL_CURRENCY"})
	assert.True(t, ok)
}

func TestMessage_ConceptByRef(t *testing.T) {
	cs := &ConceptScheme{}
	cs.ID = "ECB_CONCEPTS"
	cs.AgencyID = "ECB"
	c := &Concept{}
	c.ID = "FREQ"
	require.NoError(t, cs.Add(c))

	msg := &Message{}
	require.NoError(t, msg.Structures.Add(cs))

	got, ok := msg.ConceptByRef(Reference{Kind: KindConceptScheme, AgencyID: "ECB", ID: "ECB_CONCEPTS", ItemID: "FREQ"})
	require.True(t, ok)
	assert.Equal(t, "FREQ", got.ID)

	_, ok = msg.ConceptByRef(Reference{Kind: KindConceptScheme, ID: "ECB_CONCEPTS"})
	assert.False(t, ok)

	_, ok = msg.ConceptByRef(Reference{Kind: KindConceptScheme, ID: "ECB_CONCEPTS", ItemID: "CURRENCY"})
	assert.False(t, ok)
}

func TestMessage_CodelistByRef_Mismatches(t *testing.T) {
	msg := exrMessage(t)

	_, ok := msg.CodelistByRef(Reference{Kind: KindCodelist, ID: "CL_FREQ"})
	assert.False(t, ok)

	_, ok = msg.CodelistByRef(Reference{Kind: KindCodelist, AgencyID: "ESTAT", ID: "CL_CURRENCY"})
	assert.False(t, ok)

	_, ok = msg.CodelistByRef(Reference{Kind: KindCodelist, AgencyID: "ECB", ID: "CL_CURRENCY", Version: "2.0"})
	assert.False(t, ok)
}
