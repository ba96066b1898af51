package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"neovault/storage"
	"neovault/utils"
)

// CategoryController manages the public category listing and admin mutations.
type CategoryController struct {
	store *storage.Store
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(store *storage.Store) *CategoryController {
	return &CategoryController{store: store}
}

// List returns all categories with their active files. Public.
func (c *CategoryController) List(ctx *gin.Context) {
	cats, err := c.store.ListCategoriesWithFiles()
	if err != nil {
		utils.Sugar.Errorf("listing categories failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	ctx.JSON(http.StatusOK, cats)
}

// Create derives the slug from the submitted name and inserts the category.
func (c *CategoryController) Create(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailure(ctx, "Invalid category data", err.Error())
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	slug := utils.Slugify(name)
	if name == "" || slug == "" {
		utils.ValidationFailure(ctx, "Invalid category data", "name must contain at least one alphanumeric character")
		return
	}

	cat, err := c.store.CreateCategory(name, slug, utils.Sanitize(req.Description))
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			utils.Message(ctx, http.StatusBadRequest, "Category with this name already exists")
			return
		}
		utils.Sugar.Errorf("creating category failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to create category")
		return
	}
	ctx.JSON(http.StatusCreated, cat)
}

// Delete removes a category and cascades over its files.
func (c *CategoryController) Delete(ctx *gin.Context) {
	if err := c.store.DeleteCategory(ctx.Param("id")); err != nil {
		utils.Sugar.Errorf("deleting category failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	ctx.Status(http.StatusNoContent)
}
