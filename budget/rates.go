/*
rates.go - Rate-policy document normalization

PURPOSE:
  Uploaded F&A rate documents come in several historical shapes: the
  rate appears under different names and sometimes as a percentage, the
  indirect account is frequently missing, and the eligible set is a list
  in some variants and an account->bool map in others. All of that
  fallback-chasing happens here, once, so the engine only ever sees a
  fully-resolved RatePolicy.

VARIANTS HANDLED:
  rate:     idc_rate | indirect_rate | fa_rate | rate
            value as fraction (0.276) or percent (27.6)
  account:  idc_account | indirect_account | fa_account
            missing -> engine.DefaultIndirectAccount
  eligible: mtdc_accounts | eligible_accounts | mtdc_eligible
            ["6001", ...] or {"6001": true, ...}
*/
package budget

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/grantdesk/rebudget/engine"
)

type rateDocJSON struct {
	IDCRate      *json.Number `json:"idc_rate"`
	IndirectRate *json.Number `json:"indirect_rate"`
	FARate       *json.Number `json:"fa_rate"`
	Rate         *json.Number `json:"rate"`

	IDCAccount      string `json:"idc_account"`
	IndirectAccount string `json:"indirect_account"`
	FAAccount       string `json:"fa_account"`

	MTDCAccounts     json.RawMessage `json:"mtdc_accounts"`
	EligibleAccounts json.RawMessage `json:"eligible_accounts"`
	MTDCEligible     json.RawMessage `json:"mtdc_eligible"`
}

// ParseRateDocument normalizes an uploaded rate document into a
// fully-resolved engine.RatePolicy.
func ParseRateDocument(r io.Reader) (*engine.RatePolicy, error) {
	var doc rateDocJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rate document: %w", err)
	}

	rate, err := resolveRate(doc)
	if err != nil {
		return nil, err
	}

	account := firstNonEmpty(doc.IDCAccount, doc.IndirectAccount, doc.FAAccount)
	if account == "" {
		log.Infof("rate document designates no indirect account, using %s", engine.DefaultIndirectAccount)
	}

	eligible, err := resolveEligible(doc)
	if err != nil {
		return nil, err
	}

	return engine.NewRatePolicy(rate, engine.AccountID(account), eligible), nil
}

func resolveRate(doc rateDocJSON) (decimal.Decimal, error) {
	var raw *json.Number
	for _, candidate := range []*json.Number{doc.IDCRate, doc.IndirectRate, doc.FARate, doc.Rate} {
		if candidate != nil {
			raw = candidate
			break
		}
	}
	if raw == nil {
		return decimal.Zero, fmt.Errorf("rate document has no recognizable rate field")
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing rate %q: %w", raw.String(), err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("rate %s is negative", rate)
	}

	// Older documents carry percentages (27.6), newer ones fractions
	// (0.276). Nobody has a 100%+ indirect rate.
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = rate.Div(decimal.NewFromInt(100))
	}
	return rate, nil
}

func resolveEligible(doc rateDocJSON) ([]engine.AccountID, error) {
	var raw json.RawMessage
	for _, candidate := range []json.RawMessage{doc.MTDCAccounts, doc.EligibleAccounts, doc.MTDCEligible} {
		if len(candidate) > 0 {
			raw = candidate
			break
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]engine.AccountID, 0, len(list))
		for _, a := range list {
			out = append(out, engine.AccountID(a))
		}
		return out, nil
	}

	var set map[string]bool
	if err := json.Unmarshal(raw, &set); err == nil {
		var out []engine.AccountID
		for a, ok := range set {
			if ok {
				out = append(out, engine.AccountID(a))
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("eligible accounts are neither a list nor a map")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
