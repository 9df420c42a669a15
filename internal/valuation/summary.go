package valuation

import (
	"time"

	"github.com/spec-kit/device-cost-service/internal/domain"
)

// Summary aggregates a product list for the statistics bar and share report.
type Summary struct {
	Count            int     `json:"count"`
	TotalValue       float64 `json:"total_value"`
	AveragePrice     float64 `json:"average_price"`
	TotalDailyCost   float64 `json:"total_daily_cost"`
	AverageDailyCost float64 `json:"average_daily_cost"`
}

// Summarize totals prices and daily costs as of today.
//
// TotalDailyCost adds each product's price/daysOwned. AverageDailyCost is the
// total value spread over the combined days owned.
func Summarize(products []domain.Product, today time.Time) Summary {
	var (
		total     float64
		daily     float64
		totalDays int
	)
	for _, p := range products {
		days := DaysOwned(p.PurchaseDate, today)
		total += p.Price
		daily += p.Price / float64(days)
		totalDays += days
	}

	s := Summary{
		Count:          len(products),
		TotalValue:     round(total, 2),
		TotalDailyCost: round(daily, 1),
	}
	if s.Count > 0 {
		s.AveragePrice = round(total/float64(s.Count), 0)
		s.AverageDailyCost = round(total/float64(totalDays), 2)
	}
	return s
}
