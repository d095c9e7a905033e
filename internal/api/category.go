package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"curiohub/internal/model"
	"curiohub/internal/store"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"required"`
	BannerImage string `json:"bannerImage" binding:"required"`
}

type categoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	BannerImage *string `json:"bannerImage"`
}

type categoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	BannerImage string    `json:"bannerImage"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toCategoryResponse(category *model.Category) categoryResponse {
	return categoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Image:       category.Image,
		BannerImage: category.BannerImage,
		CreatedAt:   category.CreatedAt,
	}
}

// handleListCategories 返回全部分类。
//
// GET /api/categories
func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.categories.ListCategories(c.Request.Context())
	if err != nil {
		s.logger.Error("list categories failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "list categories failed")
		return
	}

	data := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		data = append(data, toCategoryResponse(&categories[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// handleGetCategory 返回单个分类。
//
// GET /api/categories/:id
func (s *Server) handleGetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := s.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Category not found")
			return
		}
		s.logger.Error("get category failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "get category failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toCategoryResponse(category)})
}

// handleCreateCategory 创建分类。
//
// POST /api/categories
func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	category := model.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Image:       req.Image,
		BannerImage: req.BannerImage,
	}
	if category.Name == "" {
		fail(c, http.StatusBadRequest, "Category name is required")
		return
	}

	if err := s.categories.CreateCategory(c.Request.Context(), &category); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusBadRequest, "Category name already exists")
			return
		}
		s.logger.Error("create category failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "create category failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": toCategoryResponse(&category)})
}

// handleUpdateCategory 更新分类的给定字段。
//
// PUT /api/categories/:id
func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	patch := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			fail(c, http.StatusBadRequest, "invalid name")
			return
		}
		patch["name"] = name
	}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Image != nil {
		patch["image"] = *req.Image
	}
	if req.BannerImage != nil {
		patch["banner_image"] = *req.BannerImage
	}
	if len(patch) == 0 {
		fail(c, http.StatusBadRequest, "no updates")
		return
	}

	category, err := s.categories.UpdateCategory(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			fail(c, http.StatusNotFound, "Category not found")
		case errors.Is(err, store.ErrDuplicate):
			fail(c, http.StatusBadRequest, "Category name already exists")
		default:
			s.logger.Error("update category failed", slog.String("error", err.Error()))
			fail(c, http.StatusInternalServerError, "update category failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toCategoryResponse(category)})
}

// handleDeleteCategory 删除分类。
//
// DELETE /api/categories/:id
func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := s.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Category not found")
			return
		}
		s.logger.Error("delete category failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "delete category failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}
