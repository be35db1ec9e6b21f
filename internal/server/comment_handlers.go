package server

import (
	"cookconnect/internal/middleware"
	"cookconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

func parseComment(c *fiber.Ctx) (string, error) {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return "", models.NewValidationError("Invalid request body")
	}
	return req.Content, nil
}

// CreateComment handles POST /api/recipes/:id/comments
// @Summary Comment on a recipe
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} object{message=string,comment=models.CommentView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	content, err := parseComment(c)
	if err != nil {
		return s.respondError(c, err)
	}

	created, err := s.commentService.CreateComment(c.UserContext(), middleware.ViewerFrom(c), recipeID, content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment published",
		"comment": created,
	})
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Description Only the author may edit
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string,comment=models.CommentView}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	content, err := parseComment(c)
	if err != nil {
		return s.respondError(c, err)
	}

	updated, err := s.commentService.UpdateComment(c.UserContext(), middleware.ViewerFrom(c), commentID, content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Comment updated",
		"comment": updated,
	})
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Description The author or an admin may delete
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), middleware.ViewerFrom(c), commentID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// ReactToComment handles POST /api/comments/:id/react
// @Summary Toggle a like or dislike on a comment
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{type=string} true "like or dislike"
// @Success 200 {object} reactionResponse
// @Router /comments/{id}/react [post]
func (s *Server) ReactToComment(c *fiber.Ctx) error {
	return s.react(c, s.reactionService.ToggleComment)
}
