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

type socialLinks struct {
	Twitter string `json:"twitter"`
	Discord string `json:"discord"`
	WebLink string `json:"webLink"`
}

type subcategoryRequest struct {
	CategoryID  uint        `json:"categoryId" binding:"required"`
	Title       string      `json:"title" binding:"required"`
	Image       string      `json:"image" binding:"required"`
	SocialLinks socialLinks `json:"socialLinks"`
}

type subcategoryUpdateRequest struct {
	CategoryID  *uint        `json:"categoryId"`
	Title       *string      `json:"title"`
	Image       *string      `json:"image"`
	SocialLinks *socialLinks `json:"socialLinks"`
}

type subcategoryResponse struct {
	ID          uint        `json:"id"`
	CategoryID  uint        `json:"categoryId"`
	Category    string      `json:"category,omitempty"`
	Title       string      `json:"title"`
	Image       string      `json:"image"`
	SocialLinks socialLinks `json:"socialLinks"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func toSubcategoryResponse(sub *model.Subcategory) subcategoryResponse {
	resp := subcategoryResponse{
		ID:         sub.ID,
		CategoryID: sub.CategoryID,
		Title:      sub.Title,
		Image:      sub.Image,
		SocialLinks: socialLinks{
			Twitter: sub.Twitter,
			Discord: sub.Discord,
			WebLink: sub.WebLink,
		},
		CreatedAt: sub.CreatedAt,
	}
	if sub.Category.ID != 0 {
		resp.Category = sub.Category.Name
	}
	return resp
}

// ensureCategoryExists 校验父分类存在，向客户端回写 404 当它不存在时。
func (s *Server) ensureCategoryExists(c *gin.Context, categoryID uint) bool {
	if _, err := s.categories.GetCategory(c.Request.Context(), categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Category not found")
			return false
		}
		s.logger.Error("check category failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "check category failed")
		return false
	}
	return true
}

// handleListSubcategories 返回某个分类下的全部子分类。
//
// GET /api/subcategories/category/:categoryId
func (s *Server) handleListSubcategories(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid category id")
		return
	}
	if !s.ensureCategoryExists(c, categoryID) {
		return
	}

	subs, err := s.subcategories.ListSubcategoriesByCategory(c.Request.Context(), categoryID)
	if err != nil {
		s.logger.Error("list subcategories failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "list subcategories failed")
		return
	}

	data := make([]subcategoryResponse, 0, len(subs))
	for i := range subs {
		data = append(data, toSubcategoryResponse(&subs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// handleGetSubcategory 返回单个子分类。
//
// GET /api/subcategories/:id
func (s *Server) handleGetSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid subcategory id")
		return
	}

	sub, err := s.subcategories.GetSubcategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Subcategory not found")
			return
		}
		s.logger.Error("get subcategory failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "get subcategory failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toSubcategoryResponse(sub)})
}

// handleCreateSubcategory 创建子分类，父分类必须已存在。
//
// POST /api/subcategories
func (s *Server) handleCreateSubcategory(c *gin.Context) {
	var req subcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !s.ensureCategoryExists(c, req.CategoryID) {
		return
	}

	sub := model.Subcategory{
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Image:      req.Image,
		Twitter:    req.SocialLinks.Twitter,
		Discord:    req.SocialLinks.Discord,
		WebLink:    req.SocialLinks.WebLink,
	}
	if sub.Title == "" {
		fail(c, http.StatusBadRequest, "Subcategory title is required")
		return
	}

	if err := s.subcategories.CreateSubcategory(c.Request.Context(), &sub); err != nil {
		s.logger.Error("create subcategory failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "create subcategory failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": toSubcategoryResponse(&sub)})
}

// handleUpdateSubcategory 更新子分类的给定字段。
//
// PUT /api/subcategories/:id
func (s *Server) handleUpdateSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid subcategory id")
		return
	}

	var req subcategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	patch := map[string]interface{}{}
	if req.CategoryID != nil {
		if !s.ensureCategoryExists(c, *req.CategoryID) {
			return
		}
		patch["category_id"] = *req.CategoryID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			fail(c, http.StatusBadRequest, "invalid title")
			return
		}
		patch["title"] = title
	}
	if req.Image != nil {
		patch["image"] = *req.Image
	}
	if req.SocialLinks != nil {
		patch["twitter"] = req.SocialLinks.Twitter
		patch["discord"] = req.SocialLinks.Discord
		patch["web_link"] = req.SocialLinks.WebLink
	}
	if len(patch) == 0 {
		fail(c, http.StatusBadRequest, "no updates")
		return
	}

	sub, err := s.subcategories.UpdateSubcategory(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Subcategory not found")
			return
		}
		s.logger.Error("update subcategory failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "update subcategory failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toSubcategoryResponse(sub)})
}

// handleDeleteSubcategory 删除子分类。
//
// DELETE /api/subcategories/:id
func (s *Server) handleDeleteSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		fail(c, http.StatusBadRequest, "invalid subcategory id")
		return
	}

	if err := s.subcategories.DeleteSubcategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "Subcategory not found")
			return
		}
		s.logger.Error("delete subcategory failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "delete subcategory failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subcategory deleted successfully"})
}
