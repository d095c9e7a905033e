package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"curiohub/internal/model"
	"curiohub/internal/pkg/metrics"
	"curiohub/internal/store"

	"github.com/gin-gonic/gin"
)

type mockSubcategoryStore struct {
	listFunc   func(ctx context.Context, categoryID uint) ([]model.Subcategory, error)
	getFunc    func(ctx context.Context, id uint) (*model.Subcategory, error)
	createFunc func(ctx context.Context, subcategory *model.Subcategory) error
	updateFunc func(ctx context.Context, id uint, patch map[string]interface{}) (*model.Subcategory, error)
	deleteFunc func(ctx context.Context, id uint) error
}

func (m *mockSubcategoryStore) ListSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error) {
	return m.listFunc(ctx, categoryID)
}

func (m *mockSubcategoryStore) GetSubcategory(ctx context.Context, id uint) (*model.Subcategory, error) {
	return m.getFunc(ctx, id)
}

func (m *mockSubcategoryStore) CreateSubcategory(ctx context.Context, subcategory *model.Subcategory) error {
	return m.createFunc(ctx, subcategory)
}

func (m *mockSubcategoryStore) UpdateSubcategory(ctx context.Context, id uint, patch map[string]interface{}) (*model.Subcategory, error) {
	return m.updateFunc(ctx, id, patch)
}

func (m *mockSubcategoryStore) DeleteSubcategory(ctx context.Context, id uint) error {
	return m.deleteFunc(ctx, id)
}

func newSubcategoryTestServer(categories CategoryStore, subcategories SubcategoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()

	s := &Server{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		categories:    categories,
		subcategories: subcategories,
	}

	r := gin.New()
	r.GET("/api/subcategories/category/:categoryId", s.handleListSubcategories)
	r.GET("/api/subcategories/:id", s.handleGetSubcategory)
	r.POST("/api/subcategories", s.handleCreateSubcategory)
	r.PUT("/api/subcategories/:id", s.handleUpdateSubcategory)
	r.DELETE("/api/subcategories/:id", s.handleDeleteSubcategory)
	return r
}

func existingCategory(id uint) *mockCategoryStore {
	return &mockCategoryStore{
		getFunc: func(ctx context.Context, got uint) (*model.Category, error) {
			if got != id {
				return nil, store.ErrNotFound
			}
			return &model.Category{ID: id, Name: "Art"}, nil
		},
	}
}

func TestListSubcategories_Normal(t *testing.T) {
	subs := &mockSubcategoryStore{
		listFunc: func(ctx context.Context, categoryID uint) ([]model.Subcategory, error) {
			return []model.Subcategory{
				{ID: 1, CategoryID: categoryID, Title: "Paintings", Image: "p.png",
					Category: model.Category{ID: categoryID, Name: "Art"},
					Twitter:  "https://twitter.com/paintings"},
			}, nil
		},
	}
	r := newSubcategoryTestServer(existingCategory(5), subs)

	w := doJSON(r, http.MethodGet, "/api/subcategories/category/5", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["count"] != float64(1) {
		t.Fatalf("expected count 1, got %v", resp["count"])
	}
	data, _ := resp["data"].([]any)
	first, _ := data[0].(map[string]any)
	links, _ := first["socialLinks"].(map[string]any)
	if links == nil || links["twitter"] != "https://twitter.com/paintings" {
		t.Fatalf("expected nested social links, got %v", first)
	}
	if first["category"] != "Art" {
		t.Fatalf("expected parent category name, got %v", first)
	}
}

func TestListSubcategories_UnknownCategory(t *testing.T) {
	r := newSubcategoryTestServer(existingCategory(5), &mockSubcategoryStore{})

	w := doJSON(r, http.MethodGet, "/api/subcategories/category/99", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decodeBody(t, w); resp["message"] != "Category not found" {
		t.Fatalf("unexpected message: %v", resp)
	}
}

func TestCreateSubcategory_Normal(t *testing.T) {
	subs := &mockSubcategoryStore{
		createFunc: func(ctx context.Context, sub *model.Subcategory) error {
			sub.ID = 10
			return nil
		},
	}
	r := newSubcategoryTestServer(existingCategory(5), subs)

	w := doJSON(r, http.MethodPost, "/api/subcategories", gin.H{
		"categoryId": 5,
		"title":      "Paintings",
		"image":      "p.png",
		"socialLinks": gin.H{
			"twitter": "https://twitter.com/paintings",
			"webLink": "https://paintings.example.com",
		},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	data, _ := resp["data"].(map[string]any)
	if data == nil || data["id"] != float64(10) {
		t.Fatalf("unexpected payload: %v", resp)
	}
}

func TestCreateSubcategory_UnknownCategory(t *testing.T) {
	r := newSubcategoryTestServer(existingCategory(5), &mockSubcategoryStore{})

	w := doJSON(r, http.MethodPost, "/api/subcategories", gin.H{
		"categoryId": 99, "title": "Paintings", "image": "p.png",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateSubcategory_SocialLinksPatch(t *testing.T) {
	var gotPatch map[string]interface{}
	subs := &mockSubcategoryStore{
		updateFunc: func(ctx context.Context, id uint, patch map[string]interface{}) (*model.Subcategory, error) {
			gotPatch = patch
			return &model.Subcategory{ID: id, CategoryID: 5, Title: "Paintings"}, nil
		},
	}
	r := newSubcategoryTestServer(existingCategory(5), subs)

	w := doJSON(r, http.MethodPut, "/api/subcategories/10", gin.H{
		"socialLinks": gin.H{"discord": "https://discord.gg/paintings"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotPatch["discord"] != "https://discord.gg/paintings" {
		t.Fatalf("expected discord in patch, got %v", gotPatch)
	}
	if _, ok := gotPatch["title"]; ok {
		t.Fatalf("title should not be patched, got %v", gotPatch)
	}
}

func TestDeleteSubcategory_NotFound(t *testing.T) {
	subs := &mockSubcategoryStore{
		deleteFunc: func(ctx context.Context, id uint) error { return store.ErrNotFound },
	}
	r := newSubcategoryTestServer(existingCategory(5), subs)

	w := doJSON(r, http.MethodDelete, "/api/subcategories/99", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decodeBody(t, w); resp["message"] != "Subcategory not found" {
		t.Fatalf("unexpected message: %v", resp)
	}
}
