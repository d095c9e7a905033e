package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"curiohub/internal/api/middleware"
	"curiohub/internal/auth"
	"curiohub/internal/config"
	"curiohub/internal/model"
	"curiohub/internal/pkg/dedup"
	"curiohub/internal/pkg/media"
	"curiohub/internal/pkg/metrics"
	"curiohub/internal/pkg/notify"
	"curiohub/internal/pkg/ratelimit"
	"curiohub/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、凭证管理服务以及 Gin 路由引擎。
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	rdb    *redis.Client
	router *gin.Engine

	credentials   Credentials
	categories    CategoryStore
	subcategories SubcategoryStore
	uploader      MediaUploader
	deduper       Deduper
	resetLimiter  ResetLimiter
}

// Credentials 是凭证管理的契约，由 auth.Service 实现。
type Credentials interface {
	Register(ctx context.Context, fullName, email, password string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawSecret, newPassword string) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uint) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, id uint, patch map[string]interface{}) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type SubcategoryStore interface {
	ListSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error)
	GetSubcategory(ctx context.Context, id uint) (*model.Subcategory, error)
	CreateSubcategory(ctx context.Context, subcategory *model.Subcategory) error
	UpdateSubcategory(ctx context.Context, id uint, patch map[string]interface{}) (*model.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uint) error
}

type MediaUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (url string, key string, err error)
	Delete(ctx context.Context, key string) error
}

type Deduper interface {
	Lookup(ctx context.Context, sum string) (string, error)
	Remember(ctx context.Context, sum string, url string, key string) error
	ForgetKey(ctx context.Context, key string) error
}

type ResetLimiter interface {
	Allow(ctx context.Context) (bool, error)
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 初始化凭证管理、媒体上传与限流
// 4. 初始化 Gin 路由引擎
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
	})
	if err != nil {
		return nil, err
	}

	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	mailer := notify.NewEmailNotifier(&cfg.Email, logger)
	credentials := auth.NewService(st, mailer, cfg.Security.JWTSecret, cfg.App.PublicBaseURL, logger)

	uploader, err := media.NewUploader(ctx, &cfg.Media, logger)
	if err != nil {
		return nil, err
	}
	deduper := dedup.NewDeduplicator(rdb, time.Duration(cfg.App.DedupWindow)*time.Second)
	resetLimiter := ratelimit.New(rdb, logger, "curiohub:ratelimit:password_reset", cfg.App.ResetRateLimit, cfg.App.ResetRateBurst)

	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		rdb:           rdb,
		router:        r,
		credentials:   credentials,
		categories:    st,
		subcategories: st,
		uploader:      uploader,
		deduper:       deduper,
		resetLimiter:  resetLimiter,
	}
	s.registerRoutes()
	return s, nil
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)
	authGroup.POST("/forgot-password", s.handleForgotPassword)
	authGroup.PUT("/reset-password/:resetToken", s.handleResetPassword)

	categories := s.router.Group("/api/categories")
	categories.GET("", s.handleListCategories)
	categories.GET("/:id", s.handleGetCategory)

	categoriesAuthed := categories.Group("")
	categoriesAuthed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret))
	categoriesAuthed.POST("", s.handleCreateCategory)
	categoriesAuthed.PUT("/:id", s.handleUpdateCategory)
	categoriesAuthed.DELETE("/:id", s.handleDeleteCategory)

	subcategories := s.router.Group("/api/subcategories")
	subcategories.GET("/category/:categoryId", s.handleListSubcategories)
	subcategories.GET("/:id", s.handleGetSubcategory)

	subcategoriesAuthed := subcategories.Group("")
	subcategoriesAuthed.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret))
	subcategoriesAuthed.POST("", s.handleCreateSubcategory)
	subcategoriesAuthed.PUT("/:id", s.handleUpdateSubcategory)
	subcategoriesAuthed.DELETE("/:id", s.handleDeleteSubcategory)

	uploads := s.router.Group("/uploads")
	uploads.POST("/upload", s.handleUpload)
	uploads.DELETE("/delete/*key", s.handleDeleteUpload)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail 输出统一的错误信封。
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// parseIDParam 解析路径中的数字 ID。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
