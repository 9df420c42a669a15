package dto

import (
	"github.com/spec-kit/device-cost-service/internal/service"
	"github.com/spec-kit/device-cost-service/internal/valuation"
)

// CreateProductRequest payload. Dates use YYYY-MM-DD.
type CreateProductRequest struct {
	Name                  string   `json:"name"`
	Category              string   `json:"category"`
	Purpose               string   `json:"purpose"`
	Price                 float64  `json:"price"`
	Currency              string   `json:"currency"`
	Status                string   `json:"status"`
	PurchaseDate          string   `json:"purchase_date"`
	ExpectedLifespanYears *int     `json:"expected_lifespan_years"`
	Notes                 string   `json:"notes"`
	ReasonToBuy           string   `json:"reason_to_buy"`
	Tags                  []string `json:"tags"`
}

// ToInput maps the payload to the service input.
func (r CreateProductRequest) ToInput() service.ProductInput {
	return service.ProductInput{
		Name:                  r.Name,
		Category:              r.Category,
		Purpose:               r.Purpose,
		Price:                 r.Price,
		Currency:              r.Currency,
		Status:                r.Status,
		PurchaseDate:          r.PurchaseDate,
		ExpectedLifespanYears: r.ExpectedLifespanYears,
		Notes:                 r.Notes,
		ReasonToBuy:           r.ReasonToBuy,
		Tags:                  r.Tags,
	}
}

// UpdateProductRequest payload; omitted fields are left unchanged.
type UpdateProductRequest struct {
	Name                  *string  `json:"name"`
	Category              *string  `json:"category"`
	Purpose               *string  `json:"purpose"`
	Price                 *float64 `json:"price"`
	Currency              *string  `json:"currency"`
	Status                *string  `json:"status"`
	PurchaseDate          *string  `json:"purchase_date"`
	ExpectedLifespanYears *int     `json:"expected_lifespan_years"`
	Notes                 *string  `json:"notes"`
	ReasonToBuy           *string  `json:"reason_to_buy"`
	Tags                  []string `json:"tags"`
}

// ToInput maps the payload to the service input.
func (r UpdateProductRequest) ToInput() service.ProductUpdateInput {
	return service.ProductUpdateInput{
		Name:                  r.Name,
		Category:              r.Category,
		Purpose:               r.Purpose,
		Price:                 r.Price,
		Currency:              r.Currency,
		Status:                r.Status,
		PurchaseDate:          r.PurchaseDate,
		ExpectedLifespanYears: r.ExpectedLifespanYears,
		Notes:                 r.Notes,
		ReasonToBuy:           r.ReasonToBuy,
		Tags:                  r.Tags,
	}
}

// AddTagRequest payload.
type AddTagRequest struct {
	Tag string `json:"tag"`
}

// ProductListResponse pairs the list with its statistics.
type ProductListResponse struct {
	Items   []service.ProductView `json:"items"`
	Summary valuation.Summary     `json:"summary"`
}
