package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/device-cost-service/internal/api/dto"
	"github.com/spec-kit/device-cost-service/internal/auth"
	"github.com/spec-kit/device-cost-service/internal/service"
	apperrors "github.com/spec-kit/device-cost-service/pkg/util/errorutil"
)

// ProductsHandler manages the caller's products.
type ProductsHandler struct {
	service *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{service: productService}
}

// List GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	views, summary, err := h.service.List(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProductListResponse{
		Items:   views,
		Summary: summary,
	}})
}

// Create POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.Add(c.UserContext(), principal.User.ID, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": view})
}

// Get GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Update PATCH /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.Update(c.UserContext(), principal.User.ID, c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

// Delete DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddTag POST /products/:id/tags.
func (h *ProductsHandler) AddTag(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AddTagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := h.service.AddTag(c.UserContext(), principal.User.ID, c.Params("id"), req.Tag)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}

func currentUser(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal, nil
}
