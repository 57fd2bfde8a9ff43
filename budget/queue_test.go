package budget_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantdesk/rebudget/budget"
	"github.com/grantdesk/rebudget/engine"
)

func TestQueue_OrderAndRemoval(t *testing.T) {
	q := budget.NewQueue()

	first := q.Enqueue("6001", "6300", 100000, engine.ModeDirectToDest)
	second := q.Enqueue("6002", "6400", 200000, engine.ModeBudgetTotal)
	third := q.Enqueue("6001", "6400", 300000, engine.ModeBudgetTotal)

	require.Equal(t, 3, q.Len())
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	// Removing the middle request preserves submission order
	assert.True(t, q.Remove(second.ID))
	assert.False(t, q.Remove(second.ID), "second removal is a no-op")

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, third.ID, items[1].ID)

	// Items returns a copy; mutating it does not touch the queue
	items[0].AmountCents = 1
	assert.Equal(t, int64(100000), q.Items()[0].AmountCents)

	q.Clear()
	assert.Equal(t, 0, q.Len())
}

// =============================================================================
// EXPORT
// =============================================================================

func TestWriteAuditCSV(t *testing.T) {
	log := []engine.MappingRow{
		{From: "6001", To: "6300", SourceOut: 1276000, DirectToDest: 1000000,
			IndirectAdded: 276000, Eligible: true, Mode: engine.ModeDirectToDest},
		{From: "6002", To: "7000", SourceOut: 500000, DirectToDest: 500000,
			Eligible: false, Mode: engine.ModeDirectToDest},
	}

	var buf bytes.Buffer
	require.NoError(t, budget.WriteAuditCSV(&buf, log))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "from,to,source_out,direct_to_dest,indirect_added,eligible,mode", lines[0])
	assert.Equal(t, "6001,6300,12760.00,10000.00,2760.00,true,direct_to_dest", lines[1])
	assert.Equal(t, "6002,7000,5000.00,5000.00,0.00,false,direct_to_dest", lines[2])
}

func TestWriteBudgetCSV(t *testing.T) {
	items := engine.LineItems{
		{Account: "6300", Description: "Travel", Current: 500000, Proposed: 650000, Change: 150000},
	}

	var buf bytes.Buffer
	require.NoError(t, budget.WriteBudgetCSV(&buf, items))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "6300,Travel,5000.00,6500.00,0.00,1500.00", lines[1])
}
