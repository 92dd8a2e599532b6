package pricing

import (
	"encoding/json"
	"testing"

	"github.com/manhattanmint/mint-bookings/internal/domain"
)

func TestPrice_FlatStandardOnce(t *testing.T) {
	b := domain.Booking{
		Service:    domain.FlatShape(2, 1, domain.CleaningStandard),
		Recurrence: domain.Once,
	}

	est := Price(b)

	if est.Base != 205 {
		t.Errorf("expected base 205, got %d", est.Base)
	}
	if est.AddOnsTotal != 0 {
		t.Errorf("expected no add-ons, got %d", est.AddOnsTotal)
	}
	if est.DiscountPct != 0 {
		t.Errorf("expected no discount, got %d%%", est.DiscountPct)
	}
	if est.Subtotal != 205 {
		t.Errorf("expected subtotal 205, got %d", est.Subtotal)
	}
	if est.Tax != 18 {
		t.Errorf("expected tax 18, got %d", est.Tax)
	}
	if est.Total != 223 {
		t.Errorf("expected total 223, got %d", est.Total)
	}
}

func TestPrice_DeepBiweeklyWithAddOns(t *testing.T) {
	b := domain.Booking{
		Service:    domain.FlatShape(3, 2, domain.CleaningDeep, domain.AddOnInteriorWindows, domain.AddOnInsideFridge),
		Recurrence: domain.Biweekly,
	}

	est := Price(b)

	if est.Base != 352 {
		t.Errorf("expected base 352, got %d", est.Base)
	}
	if est.AddOnsTotal != 130 {
		t.Errorf("expected add-ons 130, got %d", est.AddOnsTotal)
	}
	if est.DiscountPct != 25 {
		t.Errorf("expected 25%% discount, got %d%%", est.DiscountPct)
	}
	if est.Subtotal != 362 {
		t.Errorf("expected subtotal 362, got %d", est.Subtotal)
	}
	if est.Tax != 32 {
		t.Errorf("expected tax 32, got %d", est.Tax)
	}
	if est.Total != 394 {
		t.Errorf("expected total 394, got %d", est.Total)
	}
}

func TestPrice_HourlyWeekly(t *testing.T) {
	b := domain.Booking{
		Service:    domain.HourlyShape(4, 2),
		Recurrence: domain.Weekly,
	}

	est := Price(b)

	if est.Base != 520 {
		t.Errorf("expected base 520, got %d", est.Base)
	}
	if est.Subtotal != 364 {
		t.Errorf("expected subtotal 364, got %d", est.Subtotal)
	}
	if est.Tax != 32 {
		t.Errorf("expected tax 32, got %d", est.Tax)
	}
	if est.Total != 396 {
		t.Errorf("expected total 396, got %d", est.Total)
	}
}

func TestPrice_MoveInOutWithAddOns(t *testing.T) {
	b := domain.Booking{
		Service:    domain.FlatShape(1, 1, domain.CleaningMoveInOut, domain.AddOnOrganizing, domain.AddOnMoveInOut),
		Recurrence: domain.Once,
	}

	est := Price(b)

	if est.Base != 248 {
		t.Errorf("expected base 248, got %d", est.Base)
	}
	if est.AddOnsTotal != 270 {
		t.Errorf("expected add-ons 270, got %d", est.AddOnsTotal)
	}
	if est.Subtotal != 518 {
		t.Errorf("expected subtotal 518, got %d", est.Subtotal)
	}
	if est.Tax != 46 {
		t.Errorf("expected tax 46, got %d", est.Tax)
	}
	if est.Total != 564 {
		t.Errorf("expected total 564, got %d", est.Total)
	}
}

func TestPrice_Deterministic(t *testing.T) {
	b := domain.Booking{
		Service:    domain.FlatShape(3, 2, domain.CleaningDeep, domain.AddOnInsideOven),
		Recurrence: domain.Monthly,
	}

	first, err := json.Marshal(Price(b))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	second, err := json.Marshal(Price(b))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("estimates differ across runs:\n%s\n%s", first, second)
	}
}

func TestPrice_AddOnsIgnoredForHourly(t *testing.T) {
	b := domain.Booking{
		Service:    domain.HourlyShape(3, 2),
		Recurrence: domain.Once,
	}

	est := Price(b)

	if est.AddOnsTotal != 0 || len(est.AddOns) != 0 {
		t.Errorf("hourly bookings must not price add-ons, got %d", est.AddOnsTotal)
	}
}

func TestPrice_MonotonicInSize(t *testing.T) {
	prevFlat := 0
	for beds := 0; beds <= 8; beds++ {
		est := Price(domain.Booking{Service: domain.FlatShape(beds, 1, domain.CleaningStandard), Recurrence: domain.Once})
		if est.Base < prevFlat {
			t.Errorf("base decreased from %d to %d at %d bedrooms", prevFlat, est.Base, beds)
		}
		prevFlat = est.Base
	}

	prevBath := 0
	for baths := 0; baths <= 5; baths++ {
		est := Price(domain.Booking{Service: domain.FlatShape(2, baths, domain.CleaningStandard), Recurrence: domain.Once})
		if est.Base < prevBath {
			t.Errorf("base decreased from %d to %d at %d bathrooms", prevBath, est.Base, baths)
		}
		prevBath = est.Base
	}

	prevHourly := 0
	for hours := 1; hours <= 8; hours++ {
		est := Price(domain.Booking{Service: domain.HourlyShape(hours, 2), Recurrence: domain.Once})
		if est.Base < prevHourly {
			t.Errorf("base decreased from %d to %d at %d hours", prevHourly, est.Base, hours)
		}
		prevHourly = est.Base
	}
}

func TestPrice_AddOnMonotonic(t *testing.T) {
	without := Price(domain.Booking{Service: domain.FlatShape(2, 1, domain.CleaningStandard), Recurrence: domain.Once})

	keys := []domain.AddOnKey{}
	for _, a := range domain.Catalog {
		keys = append(keys, a.Key)
		with := Price(domain.Booking{Service: domain.FlatShape(2, 1, domain.CleaningStandard, keys...), Recurrence: domain.Once})
		if with.Base+with.AddOnsTotal < without.Base+without.AddOnsTotal {
			t.Errorf("adding %s decreased the pre-discount subtotal", a.Key)
		}
		without = with
	}
}

func TestPrice_DiscountBounds(t *testing.T) {
	for _, rec := range []domain.Recurrence{domain.Once, domain.Weekly, domain.Biweekly, domain.Monthly} {
		est := Price(domain.Booking{Service: domain.FlatShape(3, 2, domain.CleaningStandard), Recurrence: rec})
		pre := est.Base + est.AddOnsTotal
		if est.Subtotal > pre {
			t.Errorf("%s: discounted subtotal %d exceeds pre-discount %d", rec, est.Subtotal, pre)
		}
		if rec == domain.Once && est.Subtotal != pre {
			t.Errorf("once: expected no discount, got %d from %d", est.Subtotal, pre)
		}
		if rec != domain.Once && est.Subtotal >= pre {
			t.Errorf("%s: expected a discount below %d, got %d", rec, pre, est.Subtotal)
		}
	}
}

func TestPrice_ClampsOutOfRange(t *testing.T) {
	est := Price(domain.Booking{
		Service:    domain.FlatShape(-2, -1, domain.CleaningStandard),
		Recurrence: domain.Once,
	})
	if est.Base != BaseStudioOneBR {
		t.Errorf("expected clamped base %d, got %d", BaseStudioOneBR, est.Base)
	}
	if len(est.Clamped) != 2 {
		t.Errorf("expected both counters reported as clamped, got %v", est.Clamped)
	}

	est = Price(domain.Booking{
		Service:    domain.HourlyShape(0, 0),
		Recurrence: domain.Once,
	})
	if est.Base != HourlyRatePerCleaner {
		t.Errorf("expected clamped hourly base %d, got %d", HourlyRatePerCleaner, est.Base)
	}
	if len(est.Clamped) != 2 {
		t.Errorf("expected hours and cleaners reported as clamped, got %v", est.Clamped)
	}
}
