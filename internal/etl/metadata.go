package etl

import (
	"strings"
	"time"

	"github.com/radiusdt/vector-etl/internal/models"
)

// sheetAliases maps each canonical metadata field to the sheet header
// spellings accepted for it. Headers are human-authored, so matching is
// case-insensitive and ignores surrounding whitespace; aliases are tried
// in order and the first populated cell wins.
var sheetAliases = map[string][]string{
	"ad_code":         {"Ad Code", "AD Code", "Adcode"},
	"creative_name":   {"Creative Name", "Creative"},
	"creative_link":   {"Creative Link", "Link"},
	"product":         {"Product"},
	"funnel_level":    {"Funnel Level", "Funnel"},
	"objective":       {"Objective"},
	"format":          {"Format"},
	"narrative":       {"Narrative"},
	"hook":            {"Hook"},
	"tone":            {"Tone"},
	"language":        {"Language"},
	"offer":           {"Offer"},
	"price":           {"Price"},
	"season":          {"Season"},
	"production_team": {"Production Team", "Team"},
	"author":          {"Author"},
	"cast":            {"Cast"},
	"title_main":      {"Title Main", "Main Title"},
	"title_sub":       {"Title Sub", "Sub Title"},
	"live":            {"Live"},
	"notes":           {"Notes"},
	"month":           {"Month"},
	"date":            {"Date"},
}

// sheetField resolves a canonical field against a header-keyed sheet row.
func sheetField(row map[string]string, canonical string) string {
	for _, alias := range sheetAliases[canonical] {
		for header, value := range row {
			if strings.EqualFold(strings.TrimSpace(header), alias) && strings.TrimSpace(value) != "" {
				return value
			}
		}
	}
	return ""
}

// ReconcileMetadata maps one sheet row into an upsert-ready metadata
// record keyed by ad code. Every cell is trimmed, blanks become NULL and
// the date column is normalized to ISO. Returns nil when the row's ad
// code is blank; such rows are never written.
func ReconcileMetadata(row map[string]string, now time.Time) *models.AdMetadata {
	code := DeriveAdCode(sheetField(row, "ad_code"))
	if code == nil {
		return nil
	}

	dateRaw := TrimToNull(sheetField(row, "date"))
	var date *string
	if dateRaw != nil {
		date = ParseSheetDateToISO(*dateRaw)
	}

	return &models.AdMetadata{
		AdCode:         *code,
		CreativeName:   TrimToNull(sheetField(row, "creative_name")),
		CreativeLink:   TrimToNull(sheetField(row, "creative_link")),
		Product:        TrimToNull(sheetField(row, "product")),
		FunnelLevel:    TrimToNull(sheetField(row, "funnel_level")),
		Objective:      TrimToNull(sheetField(row, "objective")),
		Format:         TrimToNull(sheetField(row, "format")),
		Narrative:      TrimToNull(sheetField(row, "narrative")),
		Hook:           TrimToNull(sheetField(row, "hook")),
		Tone:           TrimToNull(sheetField(row, "tone")),
		Language:       TrimToNull(sheetField(row, "language")),
		Offer:          TrimToNull(sheetField(row, "offer")),
		Price:          TrimToNull(sheetField(row, "price")),
		Season:         TrimToNull(sheetField(row, "season")),
		ProductionTeam: TrimToNull(sheetField(row, "production_team")),
		Author:         TrimToNull(sheetField(row, "author")),
		Cast:           TrimToNull(sheetField(row, "cast")),
		TitleMain:      TrimToNull(sheetField(row, "title_main")),
		TitleSub:       TrimToNull(sheetField(row, "title_sub")),
		Live:           TrimToNull(sheetField(row, "live")),
		Notes:          TrimToNull(sheetField(row, "notes")),
		Month:          TrimToNull(sheetField(row, "month")),
		DateRaw:        dateRaw,
		Date:           date,
		UpdatedAt:      now,
	}
}
