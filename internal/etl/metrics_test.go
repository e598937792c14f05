package etl

import (
	"math"
	"testing"

	"github.com/radiusdt/vector-etl/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDeriveMetrics(t *testing.T) {
	m := DeriveMetrics(1000, 20, 50.0, 150.0)
	assert.Equal(t, 2.0, m.CTR)
	assert.Equal(t, 2.5, m.CPC)
	assert.Equal(t, 50.0, m.CPM)
	assert.Equal(t, 3.0, m.ROAS)
}

func TestDeriveMetricsZeroDenominators(t *testing.T) {
	m := DeriveMetrics(0, 0, 0, 0)
	assert.Equal(t, 0.0, m.CTR)
	assert.Equal(t, 0.0, m.CPC)
	assert.Equal(t, 0.0, m.CPM)
	assert.Equal(t, 0.0, m.ROAS)

	// impressions without clicks, spend without purchases
	m = DeriveMetrics(500, 0, 25.0, 0)
	assert.Equal(t, 0.0, m.CTR)
	assert.Equal(t, 0.0, m.CPC)
	assert.Equal(t, 50.0, m.CPM)
	assert.Equal(t, 0.0, m.ROAS)
}

func TestDeriveMetricsFinite(t *testing.T) {
	cases := []struct {
		impressions, clicks  int64
		spend, purchaseValue float64
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1000000, 999999, 0.0001, 99999.99},
	}

	for _, c := range cases {
		m := DeriveMetrics(c.impressions, c.clicks, c.spend, c.purchaseValue)
		for _, v := range []float64{m.CTR, m.CPC, m.CPM, m.ROAS} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "non-finite metric for %+v", c)
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestExtractPurchases(t *testing.T) {
	actions := []models.ActionEntry{
		{ActionType: "link_click", Value: "12"},
		{ActionType: "purchase", Value: "3"},
		{ActionType: "add_to_cart", Value: "9"},
	}
	assert.Equal(t, int64(3), ExtractPurchases(actions))

	assert.Equal(t, int64(0), ExtractPurchases(nil))
	assert.Equal(t, int64(0), ExtractPurchases([]models.ActionEntry{{ActionType: "lead", Value: "4"}}))
}

func TestExtractPurchaseValue(t *testing.T) {
	values := []models.ActionEntry{
		{ActionType: "purchase", Value: "149.90"},
	}
	assert.Equal(t, 149.90, ExtractPurchaseValue(values))

	assert.Equal(t, 0.0, ExtractPurchaseValue(nil))
	assert.Equal(t, 0.0, ExtractPurchaseValue([]models.ActionEntry{{ActionType: "lead", Value: "5"}}))
}
