package domain

import (
	"strings"
	"time"
)

// ProductStatus enumerates the usage state of an owned item.
type ProductStatus string

const (
	ProductStatusUnopened ProductStatus = "UNOPENED"
	ProductStatusInUse    ProductStatus = "IN_USE"
	ProductStatusIdle     ProductStatus = "IDLE"
	ProductStatusSold     ProductStatus = "SOLD"
	ProductStatusScrapped ProductStatus = "SCRAPPED"
)

var statusAliases = map[string]ProductStatus{
	"unopened": ProductStatusUnopened,
	"unused":   ProductStatusUnopened,
	"未开封":      ProductStatusUnopened,
	"in_use":   ProductStatusInUse,
	"in use":   ProductStatusInUse,
	"在用":       ProductStatusInUse,
	"idle":     ProductStatusIdle,
	"闲置":       ProductStatusIdle,
	"sold":     ProductStatusSold,
	"已出售":      ProductStatusSold,
	"scrapped": ProductStatusScrapped,
	"已报废":      ProductStatusScrapped,
}

// ParseProductStatus maps canonical and legacy labels onto a ProductStatus.
func ParseProductStatus(raw string) (ProductStatus, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Category groups products for display.
type Category string

const (
	CategoryPhone      Category = "phone"
	CategoryComputer   Category = "computer"
	CategoryTablet     Category = "tablet"
	CategoryHeadphones Category = "headphones"
	CategoryCamera     Category = "camera"
	CategorySmartwatch Category = "smartwatch"
	CategoryGaming     Category = "gaming"
	CategoryOther      Category = "other"
)

var categoryAliases = map[string]Category{
	"phone":      CategoryPhone,
	"手机":         CategoryPhone,
	"computer":   CategoryComputer,
	"电脑":         CategoryComputer,
	"tablet":     CategoryTablet,
	"平板":         CategoryTablet,
	"headphones": CategoryHeadphones,
	"耳机":         CategoryHeadphones,
	"camera":     CategoryCamera,
	"相机":         CategoryCamera,
	"smartwatch": CategorySmartwatch,
	"智能手表":       CategorySmartwatch,
	"gaming":     CategoryGaming,
	"游戏机":        CategoryGaming,
	"other":      CategoryOther,
	"其他":         CategoryOther,
}

// ParseCategory maps a label onto a Category. Unknown labels become CategoryOther.
func ParseCategory(raw string) Category {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CategoryOther
}

// Currency tags a price.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency accepts CNY, USD or EUR; empty input defaults to CNY.
func ParseCurrency(raw string) (Currency, bool) {
	switch Currency(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", CurrencyCNY:
		return CurrencyCNY, true
	case CurrencyUSD:
		return CurrencyUSD, true
	case CurrencyEUR:
		return CurrencyEUR, true
	}
	return "", false
}

// Product is a tracked device owned by one user.
type Product struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"user_id"`
	Name                  string        `json:"name"`
	Category              Category      `json:"category"`
	Purpose               string        `json:"purpose"`
	Price                 float64       `json:"price"`
	Currency              Currency      `json:"currency"`
	Status                ProductStatus `json:"status"`
	PurchaseDate          time.Time     `json:"purchase_date"`
	ExpectedLifespanYears int           `json:"expected_lifespan_years"`
	Notes                 string        `json:"notes,omitempty"`
	ReasonToBuy           string        `json:"reason_to_buy,omitempty"`
	Tags                  []string      `json:"tags"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// ProductPatch carries a partial edit. Nil fields stay untouched.
type ProductPatch struct {
	Name                  *string
	Category              *Category
	Purpose               *string
	Price                 *float64
	Currency              *Currency
	Status                *ProductStatus
	PurchaseDate          *time.Time
	ExpectedLifespanYears *int
	Notes                 *string
	ReasonToBuy           *string
	Tags                  []string
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Purpose == nil && p.Price == nil &&
		p.Currency == nil && p.Status == nil && p.PurchaseDate == nil &&
		p.ExpectedLifespanYears == nil && p.Notes == nil && p.ReasonToBuy == nil && p.Tags == nil
}

// Apply copies the set fields of the patch onto the product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Purpose != nil {
		product.Purpose = *p.Purpose
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Currency != nil {
		product.Currency = *p.Currency
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
	if p.PurchaseDate != nil {
		product.PurchaseDate = *p.PurchaseDate
	}
	if p.ExpectedLifespanYears != nil {
		product.ExpectedLifespanYears = *p.ExpectedLifespanYears
	}
	if p.Notes != nil {
		product.Notes = *p.Notes
	}
	if p.ReasonToBuy != nil {
		product.ReasonToBuy = *p.ReasonToBuy
	}
	if p.Tags != nil {
		product.Tags = NormalizeTags(p.Tags)
	}
}

// AddTag appends tag unless an equal trimmed tag is already present.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// NormalizeTags trims labels, drops blanks and collapses duplicates keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = AddTag(out, tag)
	}
	return out
}
