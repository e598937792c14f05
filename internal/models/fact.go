package models

// AdFact is one row of ad-level performance, keyed by (Date, AdID).
// Re-ingesting the same day replaces every non-key column, so the row
// converges regardless of how many times a pull is repeated.
type AdFact struct {
	Date         string  `json:"date"` // reporting day, ISO YYYY-MM-DD
	AdID         string  `json:"ad_id"`
	AdName       string  `json:"ad_name"`
	AdCode       *string `json:"ad_code,omitempty"` // derived from AdName, nil when no match
	CampaignName string  `json:"campaign_name"`

	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`

	// Derived metrics, always recomputed on ingest.
	CTR  float64 `json:"ctr"`
	CPC  float64 `json:"cpc"`
	CPM  float64 `json:"cpm"`
	ROAS float64 `json:"roas"`

	Purchases     int64   `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`
}
