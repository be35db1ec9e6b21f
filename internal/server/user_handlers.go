package server

import (
	"strings"

	"cookconnect/internal/middleware"
	"cookconnect/internal/models"
	"cookconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CheckUsername handles GET /api/user/check-username
// @Summary Check whether a username is free
// @Description The caller's own username counts as available
// @Tags users
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} object{available=bool}
// @Failure 400 {object} models.ErrorResponse
// @Router /user/check-username [get]
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	available, err := s.userService.UsernameAvailable(c.UserContext(), middleware.ViewerFrom(c), c.Query("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}

// GetMe handles GET /api/user/me
// @Summary Current account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /user/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.Me(c.UserContext(), middleware.ViewerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(user)
}

type profileRequest struct {
	Username     string `json:"username" form:"username"`
	Firstname    string `json:"firstname" form:"firstname"`
	Lastname     string `json:"lastname" form:"lastname"`
	Bio          string `json:"bio" form:"bio"`
	RemoveAvatar string `json:"removeAvatar" form:"removeAvatar"`
}

// UpdateProfile handles PUT /api/user/profile
// @Summary Edit the current profile
// @Description Multipart form; avatarFile replaces the avatar, removeAvatar=true clears it
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /user/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}
	avatar, err := optionalUpload(c, "avatarFile")
	if err != nil {
		return s.respondError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), middleware.ViewerFrom(c), service.UpdateProfileInput{
		Username:     req.Username,
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Bio:          req.Bio,
		Avatar:       avatar,
		RemoveAvatar: strings.EqualFold(strings.TrimSpace(req.RemoveAvatar), "true"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// GetMyRecipes handles GET /api/user/recipes
// @Summary Recipes of the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.RecipeSummary
// @Router /user/recipes [get]
func (s *Server) GetMyRecipes(c *fiber.Ctx) error {
	recipes, err := s.feedService.MyRecipes(c.UserContext(), middleware.ViewerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(recipes)
}

// GetPublicProfile handles GET /api/users/:username
// @Summary Public profile with recipes
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	profile, err := s.feedService.Profile(c.UserContext(), middleware.ViewerFrom(c), c.Params("username"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}
