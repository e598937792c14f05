package models

import "time"

// AdMetadata describes one creative, keyed by its ad code. All descriptive
// attributes come from the metadata sheet and are optional free text; nil
// means the column was empty or missing on the last sync. Every upsert
// replaces every column (the sheet is the source of truth).
type AdMetadata struct {
	AdCode string `json:"ad_code"`

	CreativeName   *string `json:"creative_name,omitempty"`
	CreativeLink   *string `json:"creative_link,omitempty"`
	Product        *string `json:"product,omitempty"`
	FunnelLevel    *string `json:"funnel_level,omitempty"`
	Objective      *string `json:"objective,omitempty"`
	Format         *string `json:"format,omitempty"`
	Narrative      *string `json:"narrative,omitempty"`
	Hook           *string `json:"hook,omitempty"`
	Tone           *string `json:"tone,omitempty"`
	Language       *string `json:"language,omitempty"`
	Offer          *string `json:"offer,omitempty"`
	Price          *string `json:"price,omitempty"`
	Season         *string `json:"season,omitempty"`
	ProductionTeam *string `json:"production_team,omitempty"`
	Author         *string `json:"author,omitempty"`
	Cast           *string `json:"cast,omitempty"`
	TitleMain      *string `json:"title_main,omitempty"`
	TitleSub       *string `json:"title_sub,omitempty"`
	Live           *string `json:"live,omitempty"`
	Notes          *string `json:"notes,omitempty"`

	Month   *string `json:"month,omitempty"`
	DateRaw *string `json:"date_raw,omitempty"` // original sheet string
	Date    *string `json:"date,omitempty"`     // normalized ISO, nil when unparseable

	UpdatedAt time.Time `json:"updated_at"`
}
