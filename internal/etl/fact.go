package etl

import "github.com/radiusdt/vector-etl/internal/models"

// ReconcileFact maps one insights feed record into an upsert-ready fact
// row keyed by (date, ad_id). Counters and spend are coerced with the
// zero-default policy, purchase actions are extracted, the four rate
// metrics are derived, and the ad code is pulled out of the ad name.
func ReconcileFact(row models.InsightRow) *models.AdFact {
	impressions := ParseCount(row.Impressions)
	clicks := ParseCount(row.Clicks)
	spend := ParseAmount(row.Spend)

	purchases := ExtractPurchases(row.Actions)
	purchaseValue := ExtractPurchaseValue(row.ActionValues)

	m := DeriveMetrics(impressions, clicks, spend, purchaseValue)

	return &models.AdFact{
		Date:          row.DateStart,
		AdID:          row.AdID,
		AdName:        row.AdName,
		AdCode:        DeriveAdCode(row.AdName),
		CampaignName:  row.CampaignName,
		Spend:         spend,
		Impressions:   impressions,
		Clicks:        clicks,
		CTR:           m.CTR,
		CPC:           m.CPC,
		CPM:           m.CPM,
		ROAS:          m.ROAS,
		Purchases:     purchases,
		PurchaseValue: purchaseValue,
	}
}
