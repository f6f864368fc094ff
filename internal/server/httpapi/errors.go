package httpapi

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error to an HTTP status and a client-safe detail.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, common.ErrAccountNotActive):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, common.ErrAuth):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "deadline exceeded"
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code, detail := statusFor(err)
	if code == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"detail": detail})
}
