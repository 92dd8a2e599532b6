// Package pricing derives the itemized estimate from a booking. The engine is
// pure and deterministic: no clock, no I/O, identical output for identical
// input. All math is in whole dollars.
package pricing

import (
	"math"

	"github.com/manhattanmint/mint-bookings/internal/domain"
)

const (
	// Flat-rate bedroom table
	BaseStudioOneBR = 165
	BaseTwoBR       = 205
	BaseThreeBR     = 255
	PerExtraBedroom = 40

	// First bathroom is included in the base
	PerExtraBathroom = 20

	HourlyRatePerCleaner = 65

	// NYC combined sales tax. Changing this is a code change.
	TaxRate = 0.08875

	DeepFactor      = 1.3
	MoveInOutFactor = 1.5
)

type LineItem struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

type Estimate struct {
	Base        int        `json:"base"`
	AddOns      []LineItem `json:"addons,omitempty"`
	AddOnsTotal int        `json:"addons_total"`
	DiscountPct int        `json:"discount_pct"`
	Subtotal    int        `json:"subtotal"` // after discount, before tax
	Tax         int        `json:"tax"`
	Total       int        `json:"total"`
	// Clamped lists input fields that were below their minimum and were
	// raised before pricing, so the UI can surface the correction.
	Clamped []string `json:"clamped,omitempty"`
}

// Price maps a booking to its estimate. It never fails; out-of-range counters
// are clamped to their minima and reported in Estimate.Clamped.
func Price(b domain.Booking) Estimate {
	var est Estimate

	switch b.Service.Style {
	case domain.StyleHourly:
		est.Base = hourlyBase(b.Service.Hourly, &est.Clamped)
	default:
		est.Base = flatBase(b.Service.Flat, &est.Clamped)
		est.AddOns, est.AddOnsTotal = addOnItems(b.Service.Flat)
	}

	preDiscount := est.Base + est.AddOnsTotal
	est.DiscountPct = b.Recurrence.DiscountPct()
	est.Subtotal = roundDollars(float64(preDiscount) * (1 - float64(est.DiscountPct)/100))
	est.Tax = roundDollars(float64(est.Subtotal) * TaxRate)
	est.Total = est.Subtotal + est.Tax

	return est
}

// flatBase prices the flat-rate branch: bedroom table, cleaning-type factor,
// then the per-bathroom extra on top of the styled base.
func flatBase(svc *domain.FlatService, clamped *[]string) int {
	beds, baths := 0, 0
	cleaningType := domain.CleaningStandard
	if svc != nil {
		beds, baths, cleaningType = svc.Bedrooms, svc.Bathrooms, svc.CleaningType
	}
	if beds < domain.MinBedrooms {
		beds = domain.MinBedrooms
		*clamped = append(*clamped, "bedrooms")
	}
	if baths < domain.MinBathrooms {
		baths = domain.MinBathrooms
		*clamped = append(*clamped, "bathrooms")
	}

	base := BaseStudioOneBR
	switch {
	case beds <= 1:
		base = BaseStudioOneBR
	case beds == 2:
		base = BaseTwoBR
	case beds == 3:
		base = BaseThreeBR
	default:
		base = BaseThreeBR + (beds-3)*PerExtraBedroom
	}

	factor := 1.0
	switch cleaningType {
	case domain.CleaningDeep:
		factor = DeepFactor
	case domain.CleaningMoveInOut:
		factor = MoveInOutFactor
	}

	styled := roundDollars(float64(base) * factor)
	if baths > 1 {
		styled += (baths - 1) * PerExtraBathroom
	}
	return styled
}

func hourlyBase(svc *domain.HourlyService, clamped *[]string) int {
	hours, cleaners := domain.MinHours, domain.MinCleaners
	if svc != nil {
		hours, cleaners = svc.Hours, svc.Cleaners
	}
	if hours < domain.MinHours {
		hours = domain.MinHours
		*clamped = append(*clamped, "hours")
	}
	if cleaners < domain.MinCleaners {
		cleaners = domain.MinCleaners
		*clamped = append(*clamped, "cleaners")
	}
	return hours * cleaners * HourlyRatePerCleaner
}

// addOnItems resolves selected add-on keys against the catalog in catalog
// order, so the line items render stably. Unknown keys are dropped.
func addOnItems(svc *domain.FlatService) ([]LineItem, int) {
	if svc == nil || len(svc.AddOns) == 0 {
		return nil, 0
	}
	selected := make(map[domain.AddOnKey]bool, len(svc.AddOns))
	for _, k := range svc.AddOns {
		selected[k] = true
	}

	var items []LineItem
	total := 0
	for _, a := range domain.Catalog {
		if selected[a.Key] {
			items = append(items, LineItem{Label: a.Label, Amount: a.Price})
			total += a.Price
		}
	}
	return items, total
}

func roundDollars(v float64) int {
	return int(math.Round(v))
}
