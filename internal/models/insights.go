package models

// ActionEntry is one tagged action record from the Graph insights API.
// Both counts (actions) and monetary values (action_values) use this shape;
// Value arrives as a string.
type ActionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// InsightRow is one ad-level record from the Graph insights API. The API
// returns numeric fields as strings.
type InsightRow struct {
	DateStart    string        `json:"date_start"`
	DateStop     string        `json:"date_stop,omitempty"`
	AdID         string        `json:"ad_id"`
	AdName       string        `json:"ad_name"`
	CampaignName string        `json:"campaign_name"`
	Impressions  string        `json:"impressions"`
	Clicks       string        `json:"clicks"`
	Spend        string        `json:"spend"`
	Actions      []ActionEntry `json:"actions,omitempty"`
	ActionValues []ActionEntry `json:"action_values,omitempty"`
}

// InsightsPaging carries the cursor links of an insights page.
type InsightsPaging struct {
	Next string `json:"next,omitempty"`
}

// GraphError is the error object the Graph API returns instead of data.
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// InsightsResponse is one page of the insights feed. A response with a nil
// Data slice is treated as a feed failure, not as an empty day.
type InsightsResponse struct {
	Data   []InsightRow    `json:"data"`
	Paging *InsightsPaging `json:"paging,omitempty"`
	Error  *GraphError     `json:"error,omitempty"`
}
