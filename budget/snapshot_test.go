package budget_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantdesk/rebudget/budget"
	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// JSON INGESTION
// =============================================================================

func TestParseSnapshotJSON_RowArray(t *testing.T) {
	doc := `[
		{"account": "6001", "description": "Senior Personnel", "current": "120,000.00", "encumbrance": 0},
		{"code": "6300", "name": "Travel", "current": 5000, "proposed": "6,500.00"},
		{"account": "SUMMARY", "description": "Total", "current": "125,000.00"}
	]`

	items, err := budget.ParseSnapshotJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, engine.AccountID("6001"), items[0].Account)
	assert.Equal(t, int64(12000000), items[0].Current)
	// Proposed defaults to current when omitted
	assert.Equal(t, int64(12000000), items[0].Proposed)
	assert.Equal(t, int64(0), items[0].Change)

	// Aliased fields and mixed number/string amounts
	assert.Equal(t, engine.AccountID("6300"), items[1].Account)
	assert.Equal(t, "Travel", items[1].Description)
	assert.Equal(t, int64(500000), items[1].Current)
	assert.Equal(t, int64(650000), items[1].Proposed)
	assert.Equal(t, int64(150000), items[1].Change)
}

func TestParseSnapshotJSON_WrappedDocument(t *testing.T) {
	doc := `{"line_items": [{"account": "6400", "current": "800.00"}]}`

	items, err := budget.ParseSnapshotJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(80000), items[0].Current)
}

func TestParseSnapshotJSON_DuplicateAccountRejected(t *testing.T) {
	doc := `[
		{"account": "6001", "current": 1},
		{"account": "6001", "current": 2}
	]`

	_, err := budget.ParseSnapshotJSON(strings.NewReader(doc))
	assert.ErrorContains(t, err, "duplicate account 6001")
}

// =============================================================================
// CSV INGESTION
// =============================================================================

func TestParseSnapshotCSV(t *testing.T) {
	doc := strings.Join([]string{
		"Account Code,Category,Current Budget,Revised,Committed",
		`6001,Senior Personnel,"120,000.00","115,000.00",0`,
		"6300,Travel,5000.00,,",
		",,,,",
		"7000,Equipment,25000.00,25000.00,20000.00",
	}, "\n")

	items, err := budget.ParseSnapshotCSV(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 3, "blank rows are skipped")

	assert.Equal(t, int64(12000000), items[0].Current)
	assert.Equal(t, int64(11500000), items[0].Proposed)
	assert.Equal(t, int64(-500000), items[0].Change)

	// Empty proposed falls back to current
	assert.Equal(t, int64(500000), items[1].Proposed)

	assert.Equal(t, int64(2000000), items[2].Encumbered)
}

func TestParseSnapshotCSV_MissingAccountColumn(t *testing.T) {
	doc := "Category,Current Budget\nTravel,5000.00\n"

	_, err := budget.ParseSnapshotCSV(strings.NewReader(doc))
	assert.ErrorContains(t, err, "account column")
}

// =============================================================================
// RATE DOCUMENT VARIANTS
// =============================================================================

func TestParseRateDocument_ModernShape(t *testing.T) {
	doc := `{"idc_rate": 0.276, "idc_account": "8000", "mtdc_accounts": ["6001", "6300"]}`

	policy, err := budget.ParseRateDocument(strings.NewReader(doc))
	require.NoError(t, err)

	assert.True(t, policy.Rate.Equal(decimal.RequireFromString("0.276")))
	assert.Equal(t, engine.AccountID("8000"), policy.Indirect())
	assert.True(t, policy.IsEligible("6001"))
	assert.False(t, policy.IsEligible("7000"))
}

func TestParseRateDocument_LegacyPercentAndMap(t *testing.T) {
	// Older documents: percent-valued rate, map-shaped eligible set,
	// no designated indirect account.
	doc := `{"indirect_rate": 27.6, "mtdc_eligible": {"6001": true, "7000": false}}`

	policy, err := budget.ParseRateDocument(strings.NewReader(doc))
	require.NoError(t, err)

	assert.True(t, policy.Rate.Equal(decimal.RequireFromString("0.276")), "percent normalized to fraction")
	assert.Equal(t, engine.DefaultIndirectAccount, policy.Indirect())
	assert.True(t, policy.IsEligible("6001"))
	assert.False(t, policy.IsEligible("7000"), "false map entries are ineligible")
}

func TestParseRateDocument_MissingRate(t *testing.T) {
	_, err := budget.ParseRateDocument(strings.NewReader(`{"idc_account": "8000"}`))
	assert.ErrorContains(t, err, "no recognizable rate")
}

func TestParseRateDocument_NegativeRate(t *testing.T) {
	_, err := budget.ParseRateDocument(strings.NewReader(`{"rate": -0.1}`))
	assert.ErrorContains(t, err, "negative")
}
