package etl

import "github.com/radiusdt/vector-etl/internal/models"

// DerivedMetrics holds the four rate metrics computed from raw counters.
type DerivedMetrics struct {
	CTR  float64
	CPC  float64
	CPM  float64
	ROAS float64
}

// DeriveMetrics computes CTR, CPC, CPM and ROAS from raw counters.
// A zero denominator yields exactly 0 for that metric.
func DeriveMetrics(impressions, clicks int64, spend, purchaseValue float64) DerivedMetrics {
	var m DerivedMetrics
	if impressions > 0 {
		m.CTR = float64(clicks) / float64(impressions) * 100
		m.CPM = spend / float64(impressions) * 1000
	}
	if clicks > 0 {
		m.CPC = spend / float64(clicks)
	}
	if spend > 0 {
		m.ROAS = purchaseValue / spend
	}
	return m
}

const purchaseActionType = "purchase"

// ExtractPurchases returns the count of the "purchase" action type, or 0
// when no such entry exists.
func ExtractPurchases(actions []models.ActionEntry) int64 {
	for _, a := range actions {
		if a.ActionType == purchaseActionType {
			return ParseCount(a.Value)
		}
	}
	return 0
}

// ExtractPurchaseValue returns the monetary value of the "purchase" action
// type, or 0 when no such entry exists.
func ExtractPurchaseValue(values []models.ActionEntry) float64 {
	for _, a := range values {
		if a.ActionType == purchaseActionType {
			return ParseAmount(a.Value)
		}
	}
	return 0
}
