package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/gecko-recipes/backend/internal/service"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

type RecipeHandler struct {
	service service.IRecipeService
	log     *slog.Logger
}

func NewRecipeHandler(svc service.IRecipeService, log *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		service: svc,
		log:     log.With("component", "recipe_handler"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/recipes", h.ListRecipes)
	router.POST("/recipes", h.CreateRecipe)
	router.GET("/recipes/:id", h.GetRecipe)
	router.PUT("/recipes/:id", h.UpdateRecipe)
	router.DELETE("/recipes/:id", h.DeleteRecipe)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.service.ListRecipes(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponses(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.service.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponse(*recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	recipe, err := h.service.CreateRecipe(c.Request.Context(), draft)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRecipeResponse(*recipe))
}

// UpdateRecipe replaces the whole recipe, including its ingredient list.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	recipe, err := h.service.UpdateRecipe(c.Request.Context(), id, draft)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponse(*recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := h.recipeID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipeID parses the :id path parameter. Anything that is not an integer is
// a 400. Integers that can never name a recipe (zero or negative) are a 404.
func (h *RecipeHandler) recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, h.log, "recipe_id", "must be a positive integer")
		return 0, false
	}
	if id <= 0 {
		respondError(c, h.log, &types.NotFoundError{RecipeID: id})
		return 0, false
	}
	return id, true
}

func (h *RecipeHandler) bindDraft(c *gin.Context) (types.RecipeDraft, bool) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "body", "must be a JSON recipe object")
		return types.RecipeDraft{}, false
	}
	draft, err := req.Draft()
	if err != nil {
		respondError(c, h.log, err)
		return types.RecipeDraft{}, false
	}
	return draft, true
}
