package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-tracker/internal/domain"
)

func tokyo() domain.Trip {
	return domain.Trip{
		ID:          1,
		Destination: "Tokyo",
		StartDate:   domain.Date(2025, 3, 1),
		EndDate:     domain.Date(2025, 3, 10),
		Budget:      decimal.NewFromFloat(1200.0),
		Notes:       "solo trip",
	}
}

func TestTrip_ExportString(t *testing.T) {
	assert.Equal(t, "1|Tokyo|03/01/2025|03/10/2025|1200.00|solo trip|false", tokyo().ExportString())
}

func TestTrip_ExportString_Completed(t *testing.T) {
	trip := tokyo()
	trip.Completed = true
	trip.Budget = decimal.RequireFromString("99.5")

	assert.Equal(t, "1|Tokyo|03/01/2025|03/10/2025|99.50|solo trip|true", trip.ExportString())
}

func TestTrip_DisplayString(t *testing.T) {
	assert.Equal(t, "Trip #1 | Tokyo | 03/01/2025 - 03/10/2025 | $1200.00 | solo trip | Planning", tokyo().DisplayString())

	done := tokyo()
	done.Completed = true
	assert.Equal(t, "Trip #1 | Tokyo | 03/01/2025 - 03/10/2025 | $1200.00 | solo trip | Completed", done.String())
}

func TestTrip_NegativeBudgetIsRenderedAsIs(t *testing.T) {
	trip := tokyo()
	trip.Budget = decimal.RequireFromString("-12.345")

	// StringFixed rounds half away from zero.
	assert.Equal(t, "1|Tokyo|03/01/2025|03/10/2025|-12.35|solo trip|false", trip.ExportString())
}

func TestTripPatch_Apply(t *testing.T) {
	dest := "Kyoto"
	end := domain.Date(2025, 3, 12)
	done := true

	got := domain.TripPatch{Destination: &dest, EndDate: &end, Completed: &done}.Apply(tokyo())

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Kyoto", got.Destination)
	assert.Equal(t, domain.Date(2025, 3, 1), got.StartDate, "untouched field must survive")
	assert.Equal(t, end, got.EndDate)
	assert.True(t, got.Completed)
	assert.Equal(t, "solo trip", got.Notes)
}

func TestTripPatch_IsEmpty(t *testing.T) {
	assert.True(t, domain.TripPatch{}.IsEmpty())

	notes := ""
	assert.False(t, domain.TripPatch{Notes: &notes}.IsEmpty())
}

func TestParseSortBy(t *testing.T) {
	cases := map[string]domain.SortBy{
		"id":           domain.SortByID,
		"1":            domain.SortByID,
		"START":        domain.SortByStartDate,
		"destination":  domain.SortByDestination,
		"4":            domain.SortByBudgetAsc,
		" budget-desc": domain.SortByBudgetDesc,
	}
	for in, want := range cases {
		got, err := domain.ParseSortBy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseSortBy_Unknown(t *testing.T) {
	_, err := domain.ParseSortBy("price")

	assert.ErrorIs(t, err, domain.ErrValidation)
}
