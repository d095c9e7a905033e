package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"curiohub/internal/pkg/dedup"
	"curiohub/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// handleUpload 接收 multipart 表单中的图片并推送到对象存储。
// 同一份字节在去重窗口内重复上传时直接返回缓存的 URL。
//
// POST /uploads/upload
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "Image file is required")
		return
	}
	if s.cfg.App.MaxUploadBytes > 0 && fileHeader.Size > s.cfg.App.MaxUploadBytes {
		fail(c, http.StatusBadRequest, "Image exceeds maximum allowed size")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		fail(c, http.StatusBadRequest, "Only image uploads are allowed")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Image file is required")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Error("read upload failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "read upload failed")
		return
	}

	sum := dedup.HashContent(data)
	cached, err := s.deduper.Lookup(c.Request.Context(), sum)
	if err != nil {
		s.logger.Warn("dedup lookup failed", slog.String("error", err.Error()))
	}
	if cached != "" {
		metrics.UploadDedupHitTotal.Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "url": cached})
		return
	}

	url, key, err := s.uploader.Upload(c.Request.Context(), data, contentType)
	if err != nil {
		s.logger.Error("media upload failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "Image upload failed")
		return
	}
	metrics.UploadBytesTotal.Add(float64(len(data)))

	// 缓存失败不影响本次上传的结果
	if err := s.deduper.Remember(c.Request.Context(), sum, url, key); err != nil {
		s.logger.Warn("remember upload hash failed", slog.String("error", err.Error()))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "key": key})
}

// handleDeleteUpload 从对象存储中删除一个对象。
//
// DELETE /uploads/delete/*key
func (s *Server) handleDeleteUpload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		fail(c, http.StatusBadRequest, "Object key is required")
		return
	}

	if err := s.uploader.Delete(c.Request.Context(), key); err != nil {
		s.logger.Error("media delete failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "Image delete failed")
		return
	}

	// 对象没了，缓存里指向它的 URL 也必须失效，否则同样内容的
	// 再次上传会命中缓存拿到死链接
	if err := s.deduper.ForgetKey(c.Request.Context(), key); err != nil {
		s.logger.Warn("invalidate dedup cache failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Image deleted successfully"})
}
