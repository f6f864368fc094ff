package httpapi

import (
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/dto"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func newTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{Access: p.AccessToken, Refresh: p.RefreshToken}
}

// bind parses the JSON body into v and validates it.
func bind(c *fiber.Ctx, v dto.Validatable) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: invalid input", common.ErrValidation)
	}
	return dto.Check(v)
}

func (s *HTTPServer) Register(c *fiber.Ctx) error {
	var r dto.CredentialsRequest
	if err := bind(c, &r); err != nil {
		return err
	}

	if _, err := s.accounts.Register(c.UserContext(), r.Email, r.Password); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(messageResponse{Message: common.MsgRegistered})
}

func (s *HTTPServer) Activate(c *fiber.Ctx) error {
	var r dto.ActivationRequest
	if err := bind(c, &r); err != nil {
		return err
	}

	if err := s.accounts.Activate(c.UserContext(), r.Token); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: common.MsgActivated})
}

func (s *HTTPServer) ResendActivation(c *fiber.Ctx) error {
	var r dto.EmailRequest
	if err := bind(c, &r); err != nil {
		return err
	}

	if err := s.accounts.ResendActivation(c.UserContext(), r.Email); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: common.MsgActivationResent})
}

func (s *HTTPServer) Login(c *fiber.Ctx) error {
	var r dto.CredentialsRequest
	if err := bind(c, &r); err != nil {
		return err
	}

	tokens, err := s.sessions.Login(c.UserContext(), r.Email, r.Password)
	if err != nil {
		return err
	}
	return c.JSON(newTokenResponse(tokens))
}

func (s *HTTPServer) Refresh(c *fiber.Ctx) error {
	var r dto.RefreshRequest
	if err := bind(c, &r); err != nil {
		return err
	}

	tokens, err := s.sessions.RefreshAccess(c.UserContext(), r.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(newTokenResponse(tokens))
}

func (s *HTTPServer) Logout(c *fiber.Ctx) error {
	var r dto.RefreshRequest
	if err := bind(c, &r); err != nil {
		return err
	}

	if err := s.sessions.Logout(c.UserContext(), r.RefreshToken); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: common.MsgLoggedOut})
}

func (s *HTTPServer) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(string)
	return c.JSON(fiber.Map{"user_id": userID})
}
