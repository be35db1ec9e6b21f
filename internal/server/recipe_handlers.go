package server

import (
	"context"

	"cookconnect/internal/identity"
	"cookconnect/internal/middleware"
	"cookconnect/internal/models"
	"cookconnect/internal/service"
	"cookconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// recipeFilter reads the list query parameters. categoryIds is accepted as an
// alias of categories.
func recipeFilter(c *fiber.Ctx) models.RecipeFilter {
	categories := c.Query("categories")
	if categories == "" {
		categories = c.Query("categoryIds")
	}
	f := models.ParseRecipeFilter(c.Query("q"), c.Query("time"), c.Query("difficulty"), categories)
	p := parsePagination(c, service.DefaultFeedLimit)
	f.Limit, f.Offset = p.Limit, p.Offset
	return f
}

// ListRecipes handles GET /api/recipes
// @Summary Recipe feed
// @Description Newest recipes first, with counts and the caller's reaction
// @Tags recipes
// @Produce json
// @Param q query string false "Text matched against title or author username"
// @Param time query string false "none, week, month or year"
// @Param difficulty query string false "Fácil, Media or Difícil"
// @Param categories query string false "Comma separated category ids"
// @Success 200 {array} models.RecipeSummary
// @Router /recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	recipes, err := s.feedService.List(c.UserContext(), middleware.ViewerFrom(c), recipeFilter(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(recipes)
}

// SearchRecipes handles GET /api/recipes/search. It shares the feed's filters.
// @Summary Search recipes
// @Tags recipes
// @Produce json
// @Param q query string false "Text matched against title or author username"
// @Success 200 {array} models.RecipeSummary
// @Router /recipes/search [get]
func (s *Server) SearchRecipes(c *fiber.Ctx) error {
	return s.ListRecipes(c)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Recipe detail
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.feedService.Detail(c.UserContext(), middleware.ViewerFrom(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(detail)
}

// recipeInputFromForm reads the scalar and list fields shared by create and
// form-encoded update.
func recipeInputFromForm(c *fiber.Ctx) (service.RecipeInput, error) {
	prep, err := formInt(c, "prep_time_minutes")
	if err != nil {
		return service.RecipeInput{}, err
	}
	ingredients, err := formStringList(c, "ingredients")
	if err != nil {
		return service.RecipeInput{}, err
	}
	categories, err := formIDList(c, "categories")
	if err != nil {
		return service.RecipeInput{}, err
	}
	return service.RecipeInput{
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		PrepTimeMinutes: prep,
		Difficulty:      c.FormValue("difficulty"),
		Ingredients:     ingredients,
		CategoryIDs:     categories,
	}, nil
}

// CreateRecipe handles POST /api/recipes
// @Summary Publish a recipe
// @Description Multipart form; ingredients and categories are JSON arrays, up to 5 recipeImages files
// @Tags recipes
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} object{message=string,recipeId=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	in, err := recipeInputFromForm(c)
	if err != nil {
		return s.respondError(c, err)
	}

	create := service.CreateRecipeInput{RecipeInput: in}
	if form, formErr := c.MultipartForm(); formErr == nil {
		files := form.File["recipeImages"]
		if len(files) > validation.MaxRecipeImages {
			return s.respondError(c, models.NewFieldValidationError("recipeImages", "A recipe can have at most 5 images"))
		}
		for _, fh := range files {
			upload, readErr := readUpload(fh)
			if readErr != nil {
				return s.respondError(c, readErr)
			}
			create.Images = append(create.Images, upload)
		}
	}

	id, err := s.recipeService.Create(c.UserContext(), middleware.ViewerFrom(c), create)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Recipe published",
		"recipeId": id,
	})
}

type updateRecipeRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	PrepTimeMinutes int      `json:"prep_time_minutes"`
	Difficulty      string   `json:"difficulty"`
	Ingredients     []string `json:"ingredients"`
	Categories      idList   `json:"categories"`
}

// UpdateRecipe handles PUT /api/recipes/:id
// @Summary Edit a recipe
// @Description JSON or form body. Ingredients and categories are replaced wholesale; images are kept.
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [put]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.RecipeInput
	if c.Is("json") {
		var req updateRecipeRequest
		if parseErr := c.BodyParser(&req); parseErr != nil {
			return s.respondError(c, models.NewValidationError("Invalid request body"))
		}
		in = service.RecipeInput{
			Title:           req.Title,
			Description:     req.Description,
			PrepTimeMinutes: req.PrepTimeMinutes,
			Difficulty:      req.Difficulty,
			Ingredients:     req.Ingredients,
			CategoryIDs:     req.Categories,
		}
	} else if in, err = recipeInputFromForm(c); err != nil {
		return s.respondError(c, err)
	}

	if err := s.recipeService.Update(c.UserContext(), middleware.ViewerFrom(c), id, in); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recipe updated"})
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Description Removes the recipe with its comments, reactions, images and links
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.recipeService.Delete(c.UserContext(), middleware.ViewerFrom(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recipe deleted"})
}

type toggleFunc func(context.Context, identity.Viewer, uint, string) (*service.ToggleResult, error)

type reactRequest struct {
	Type string `json:"type"`
}

type reactionResponse struct {
	Message       string                `json:"message"`
	Action        models.ReactionAction `json:"action"`
	NewLikesCount int64                 `json:"newLikesCount"`
}

// ReactToRecipe handles POST /api/recipes/:id/react
// @Summary Toggle a like or dislike on a recipe
// @Description Same type twice clears the reaction; the other type switches it
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body object{type=string} true "like or dislike"
// @Success 200 {object} reactionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/react [post]
func (s *Server) ReactToRecipe(c *fiber.Ctx) error {
	return s.react(c, s.reactionService.ToggleRecipe)
}

func (s *Server) react(c *fiber.Ctx, toggle toggleFunc) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req reactRequest
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	result, err := toggle(c.UserContext(), middleware.ViewerFrom(c), id, req.Type)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(reactionResponse{
		Message:       "Reaction " + string(result.Action),
		Action:        result.Action,
		NewLikesCount: result.LikesCount,
	})
}
