package server

import (
	"cookconnect/internal/identity"
	"cookconnect/internal/models"
	"cookconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Firstname string `json:"firstname" form:"firstname"`
	Lastname  string `json:"lastname" form:"lastname"`
}

// Register handles POST /api/auth/register
// @Summary Create an account
// @Description JSON or multipart form with an optional avatarFile. Signs the new user in.
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param request body object{username=string,email=string,password=string,firstname=string,lastname=string} true "Registration"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	avatar, err := optionalUpload(c, "avatarFile")
	if err != nil {
		return s.respondError(c, err)
	}

	res, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Avatar:    avatar,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	token, _ := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
	if err := s.authService.Logout(c.UserContext(), token); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
