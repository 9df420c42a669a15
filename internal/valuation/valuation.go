// Package valuation derives ownership cost and usage progress for a product.
//
// Every function is pure and recomputed on demand; nothing here is stored.
// Inputs outside the validated range are clamped, never turned into NaN:
// a lifespan of zero or less counts as already used up, and a purchase date
// after today counts as bought today.
package valuation

import (
	"math"
	"time"

	"github.com/spec-kit/device-cost-service/internal/domain"
)

// DaysPerYear is the fixed year length used for lifespans.
const DaysPerYear = 365

// UpgradeThreshold is the progress at which a replacement hint is shown.
const UpgradeThreshold = 60

// ProgressMessage is the advisory tier for a usage progress value.
type ProgressMessage string

const (
	MessageExceeded ProgressMessage = "EXCEEDED"
	MessageNearEnd  ProgressMessage = "NEAR_END"
	MessageHalfUsed ProgressMessage = "HALF_USED"
	MessageGood     ProgressMessage = "GOOD"
	MessageNew      ProgressMessage = "NEW"
)

// ProgressBand colours a progress bar.
type ProgressBand string

const (
	BandOK       ProgressBand = "ok"
	BandWarning  ProgressBand = "warning"
	BandCritical ProgressBand = "critical"
)

// Valuation is the derived view of one product at a point in time.
type Valuation struct {
	DaysOwned          int             `json:"days_owned"`
	CostPerDay         float64         `json:"cost_per_day"`
	ExpectedCostPerDay float64         `json:"expected_cost_per_day"`
	Progress           int             `json:"usage_progress"`
	Message            ProgressMessage `json:"progress_message"`
	Band               ProgressBand    `json:"progress_band"`
	UpgradeSuggested   bool            `json:"upgrade_suggested"`
}

// elapsedDays returns whole days between purchase and today, floored; negative for future dates.
func elapsedDays(purchaseDate, today time.Time) int {
	return int(math.Floor(today.Sub(purchaseDate).Hours() / 24))
}

// DaysOwned returns whole days since purchase, never below 1.
func DaysOwned(purchaseDate, today time.Time) int {
	return max(1, elapsedDays(purchaseDate, today))
}

// CostPerDay divides price over days owned, rounded to one decimal.
func CostPerDay(price float64, daysOwned int) float64 {
	if daysOwned < 1 {
		daysOwned = 1
	}
	return round(price/float64(daysOwned), 1)
}

// ExpectedCostPerDay spreads price over the expected lifespan, rounded to one decimal.
func ExpectedCostPerDay(price float64, lifespanYears int) float64 {
	if lifespanYears <= 0 {
		return 0
	}
	return round(price/float64(lifespanYears*DaysPerYear), 1)
}

// UsageProgress is the percentage of the expected lifespan consumed, in [0, 100].
func UsageProgress(purchaseDate time.Time, lifespanYears int, today time.Time) int {
	if lifespanYears <= 0 {
		return 100
	}
	used := elapsedDays(purchaseDate, today)
	progress := int(math.Round(100 * float64(used) / float64(lifespanYears*DaysPerYear)))
	return min(100, max(0, progress))
}

// Message maps progress to its advisory tier. Thresholds are inclusive lower bounds.
func Message(progress int) ProgressMessage {
	switch {
	case progress >= 100:
		return MessageExceeded
	case progress >= 80:
		return MessageNearEnd
	case progress >= 50:
		return MessageHalfUsed
	case progress >= 20:
		return MessageGood
	default:
		return MessageNew
	}
}

// Band maps progress to a bar colour.
func Band(progress int) ProgressBand {
	switch {
	case progress >= 80:
		return BandCritical
	case progress >= 50:
		return BandWarning
	default:
		return BandOK
	}
}

// Evaluate computes the full valuation of product as of today.
func Evaluate(product domain.Product, today time.Time) Valuation {
	days := DaysOwned(product.PurchaseDate, today)
	progress := UsageProgress(product.PurchaseDate, product.ExpectedLifespanYears, today)
	return Valuation{
		DaysOwned:          days,
		CostPerDay:         CostPerDay(product.Price, days),
		ExpectedCostPerDay: ExpectedCostPerDay(product.Price, product.ExpectedLifespanYears),
		Progress:           progress,
		Message:            Message(progress),
		Band:               Band(progress),
		UpgradeSuggested:   progress >= UpgradeThreshold,
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
