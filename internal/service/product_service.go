package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/events"
	"github.com/spec-kit/device-cost-service/internal/repository"
	"github.com/spec-kit/device-cost-service/internal/valuation"
	apperrors "github.com/spec-kit/device-cost-service/pkg/util/errorutil"
)

// DateLayout is the wire format of purchase dates.
const DateLayout = "2006-01-02"

// ProductService manages a user's products and derives their valuations.
type ProductService struct {
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	loc        *time.Location
}

// ProductDependencies bundles collaborators of the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
}

// ProductInput carries raw fields of a new product. Labels are parsed here
// so legacy status and category names are accepted.
type ProductInput struct {
	Name                  string
	Category              string
	Purpose               string
	Price                 float64
	Currency              string
	Status                string
	PurchaseDate          string
	ExpectedLifespanYears *int
	Notes                 string
	ReasonToBuy           string
	Tags                  []string
}

// ProductUpdateInput carries a partial edit; nil means unchanged.
type ProductUpdateInput struct {
	Name                  *string
	Category              *string
	Purpose               *string
	Price                 *float64
	Currency              *string
	Status                *string
	PurchaseDate          *string
	ExpectedLifespanYears *int
	Notes                 *string
	ReasonToBuy           *string
	Tags                  []string
}

// ProductView is a product with its valuation as of the request.
type ProductView struct {
	domain.Product
	Valuation valuation.Valuation `json:"valuation"`
}

// NewProductService builds the service.
func NewProductService(deps ProductDependencies) *ProductService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ProductService{
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
		loc:        loc,
	}
}

// Add validates and stores a new product.
func (s *ProductService) Add(ctx context.Context, userID string, in ProductInput) (*ProductView, error) {
	now := s.now()
	fields := fieldErrors{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields.add("name", "name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		fields.add("category", "category is required")
	}
	fields.checkPrice(in.Price)

	currency, ok := domain.ParseCurrency(in.Currency)
	if !ok {
		fields.add("currency", "currency must be CNY, USD or EUR")
	}

	status := domain.ProductStatusInUse
	if strings.TrimSpace(in.Status) != "" {
		if status, ok = domain.ParseProductStatus(in.Status); !ok {
			fields.add("status", "unknown status")
		}
	}

	today := calendarDay(now, s.loc)
	purchaseDate := today
	if strings.TrimSpace(in.PurchaseDate) != "" {
		purchaseDate = fields.checkDate(in.PurchaseDate, today)
	}

	lifespan := 1
	if in.ExpectedLifespanYears != nil {
		lifespan = *in.ExpectedLifespanYears
		fields.checkLifespan(lifespan)
	}

	if err := fields.err(); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Name:                  name,
		Category:              domain.ParseCategory(in.Category),
		Purpose:               strings.TrimSpace(in.Purpose),
		Price:                 in.Price,
		Currency:              currency,
		Status:                status,
		PurchaseDate:          purchaseDate,
		ExpectedLifespanYears: lifespan,
		Notes:                 in.Notes,
		ReasonToBuy:           in.ReasonToBuy,
		Tags:                  domain.NormalizeTags(in.Tags),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventProductAdded, userID, product.ID, events.ProductAddedPayload{
		Name:     product.Name,
		Category: product.Category,
		Price:    product.Price,
		Currency: product.Currency,
	}))
	return s.view(*product, now), nil
}

// List returns the user's products, newest first, and their summary. Both
// are computed against one clock reading.
func (s *ProductService) List(ctx context.Context, userID string) ([]ProductView, valuation.Summary, error) {
	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, valuation.Summary{}, err
	}
	now := s.now()
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, *s.view(p, now))
	}
	return views, valuation.Summarize(products, now), nil
}

// Summary aggregates the user's products.
func (s *ProductService) Summary(ctx context.Context, userID string) ([]domain.Product, valuation.Summary, error) {
	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, valuation.Summary{}, err
	}
	return products, valuation.Summarize(products, s.now()), nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, userID, id string) (*ProductView, error) {
	product, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(*product, s.now()), nil
}

// Update applies a partial edit. The id never changes.
func (s *ProductService) Update(ctx context.Context, userID, id string, in ProductUpdateInput) (*ProductView, error) {
	now := s.now()
	patch, changed, err := buildPatch(in, calendarDay(now, s.loc))
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if !validID(id) {
		return nil, notFound(repository.ErrNotFound, id)
	}

	if err := s.products.Update(ctx, userID, id, patch); err != nil {
		return nil, notFound(err, id)
	}
	product, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventProductUpdated, userID, id, events.ProductUpdatedPayload{Fields: changed}))
	return s.view(*product, now), nil
}

// AddTag attaches one tag; adding an existing tag is a no-op.
func (s *ProductService) AddTag(ctx context.Context, userID, id, tag string) (*ProductView, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, apperrors.NewValidationError("invalid tag", map[string]any{"tag": "tag is required"})
	}
	tag = strings.TrimSpace(tag)
	if !validID(id) {
		return nil, notFound(repository.ErrNotFound, id)
	}
	added, err := s.products.AddTag(ctx, userID, id, tag)
	if err != nil {
		return nil, notFound(err, id)
	}
	product, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if added {
		s.publish(ctx, events.NewEvent(events.EventProductUpdated, userID, id, events.ProductUpdatedPayload{Fields: []string{"tags"}}))
	}
	return s.view(*product, s.now()), nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, userID, id string) error {
	product, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, userID, id); err != nil {
		return notFound(err, id)
	}
	s.publish(ctx, events.NewEvent(events.EventProductDeleted, userID, id, events.ProductDeletedPayload{Name: product.Name}))
	return nil
}

func (s *ProductService) get(ctx context.Context, userID, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, notFound(repository.ErrNotFound, id)
	}
	product, err := s.products.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return product, nil
}

func (s *ProductService) view(p domain.Product, now time.Time) *ProductView {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &ProductView{Product: p, Valuation: valuation.Evaluate(p, now)}
}

func (s *ProductService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// validID reports whether id can name a product. Ids are uuids in both store modes.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	return err
}

func buildPatch(in ProductUpdateInput, today time.Time) (domain.ProductPatch, []string, error) {
	var (
		patch   domain.ProductPatch
		changed []string
		fields  = fieldErrors{}
	)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			fields.add("name", "name is required")
		}
		patch.Name = &name
		changed = append(changed, "name")
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			fields.add("category", "category is required")
		}
		category := domain.ParseCategory(*in.Category)
		patch.Category = &category
		changed = append(changed, "category")
	}
	if in.Purpose != nil {
		purpose := strings.TrimSpace(*in.Purpose)
		patch.Purpose = &purpose
		changed = append(changed, "purpose")
	}
	if in.Price != nil {
		fields.checkPrice(*in.Price)
		patch.Price = in.Price
		changed = append(changed, "price")
	}
	if in.Currency != nil {
		currency, ok := domain.ParseCurrency(*in.Currency)
		if !ok {
			fields.add("currency", "currency must be CNY, USD or EUR")
		}
		patch.Currency = &currency
		changed = append(changed, "currency")
	}
	if in.Status != nil {
		status, ok := domain.ParseProductStatus(*in.Status)
		if !ok {
			fields.add("status", "unknown status")
		}
		patch.Status = &status
		changed = append(changed, "status")
	}
	if in.PurchaseDate != nil {
		date := fields.checkDate(*in.PurchaseDate, today)
		patch.PurchaseDate = &date
		changed = append(changed, "purchase_date")
	}
	if in.ExpectedLifespanYears != nil {
		fields.checkLifespan(*in.ExpectedLifespanYears)
		patch.ExpectedLifespanYears = in.ExpectedLifespanYears
		changed = append(changed, "expected_lifespan_years")
	}
	if in.Notes != nil {
		patch.Notes = in.Notes
		changed = append(changed, "notes")
	}
	if in.ReasonToBuy != nil {
		patch.ReasonToBuy = in.ReasonToBuy
		changed = append(changed, "reason_to_buy")
	}
	if in.Tags != nil {
		patch.Tags = domain.NormalizeTags(in.Tags)
		changed = append(changed, "tags")
	}
	if err := fields.err(); err != nil {
		return domain.ProductPatch{}, nil, err
	}
	return patch, changed, nil
}

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) checkPrice(price float64) {
	if price <= 0 {
		f.add("price", "price must be greater than zero")
	}
}

func (f fieldErrors) checkLifespan(years int) {
	if years <= 0 {
		f.add("expected_lifespan_years", "expected lifespan must be at least one year")
	}
}

func (f fieldErrors) checkDate(raw string, today time.Time) time.Time {
	date, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		f.add("purchase_date", "purchase date must be YYYY-MM-DD")
		return time.Time{}
	}
	if date.After(today) {
		f.add("purchase_date", "purchase date cannot be in the future")
	}
	return date
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid product", map[string]any(f))
}

// calendarDay is the date t falls on in loc, as UTC midnight to match how
// purchase dates are parsed.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
