package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	localUserID     = "userID"
)

// requestLogger tags each request with an id and logs its outcome. Bodies
// are never logged.
func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)

	err := c.Next()
	if err != nil {
		// let the error handler set the final status before logging
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "http request",
		"request_id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return nil
}

// requireBearer resolves "Authorization: Bearer <access token>" into the
// caller's user id.
func (s *HTTPServer) requireBearer(c *fiber.Ctx) error {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "missing token"})
	}

	userID, err := s.sessions.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(localUserID, userID)
	return c.Next()
}
