package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/device-cost-service/internal/service"
)

// ShareHandler exports the caller's device list.
type ShareHandler struct {
	service *service.ShareService
}

// NewShareHandler constructs handler.
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{service: shareService}
}

// Summary GET /share/summary.
func (h *ShareHandler) Summary(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Image GET /share/image.
func (h *ShareHandler) Image(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	img, err := h.service.Image(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="my-devices.png"`)
	return c.Send(img)
}

// Publish POST /share/image/publish.
func (h *ShareHandler) Publish(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	published, err := h.service.Publish(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": published})
}
