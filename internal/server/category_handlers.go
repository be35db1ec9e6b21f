package server

import "github.com/gofiber/fiber/v2"

// ListCategories handles GET /api/categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.List(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(categories)
}
