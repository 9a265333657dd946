// Package file stores user uploads and generated media on the local media
// dir, serves them back, and syncs them to S3 on demand.
package file

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appcfg "github.com/onyria-app/core/internal/config"
	"github.com/onyria-app/core/internal/middleware"
	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
	"github.com/onyria-app/core/internal/pkg/pagination"
	"github.com/onyria-app/core/internal/pkg/response"
	"github.com/onyria-app/core/internal/pkg/storage"
	"github.com/onyria-app/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultAvatarFormats   = "jpg,jpeg,png,gif,webp"
	defaultAvatarMaxSizeMB = 5
)

type Handler struct {
	db       *gorm.DB
	cfgSvc   *configs.Service
	mediaDir string
	tasks    *taskqueue.Service
	logger   *zap.Logger
}

type HandlerOption func(*Handler)

func WithLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTaskQueue makes S3 batch uploads run as tracked background tasks.
func WithTaskQueue(tasks *taskqueue.Service) HandlerOption {
	return func(h *Handler) { h.tasks = tasks }
}

func NewHandler(db *gorm.DB, cfgSvc *configs.Service, mediaDir string, opts ...HandlerOption) *Handler {
	h := &Handler{db: db, cfgSvc: cfgSvc, mediaDir: mediaDir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/files", authMW)

	g.POST("/avatar", h.uploadAvatar)
	g.GET("", h.listOwn)
	g.DELETE("/:id", h.deleteOwn)
	g.POST("/s3/batch-upload", h.batchUploadToS3)
	g.GET("/s3/task/:id", h.getS3Task)
}

// ServeMedia handles GET /media/*mediapath with long cache headers.
func (h *Handler) ServeMedia(c *gin.Context) {
	rel, ok := safeRelPath(c.Param("mediapath"))
	if !ok {
		response.NotFound(c)
		return
	}

	path := filepath.Join(h.mediaDir, filepath.FromSlash(rel))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		response.NotFound(c)
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(path)
}

// POST /files/avatar  [auth]
func (h *Handler) uploadAvatar(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "avatar file is required")
		return
	}

	formats, maxSizeMB := h.avatarLimits()
	if err := validateAvatarFile(fileHeader.Filename, fileHeader.Size, formats, maxSizeMB); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filename := buildFileName(fileHeader.Filename)
	dir := filepath.Join(h.mediaDir, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		response.InternalError(c, err)
		return
	}
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(dir, filename)); err != nil {
		response.InternalError(c, err)
		return
	}

	webPath := "/media/avatars/" + filename

	// Retire the previous avatar so the cleanup job removes the file.
	now := time.Now()
	_ = h.db.Model(&models.FileReferenceModel{}).
		Where("user_id = ? AND ref_type = ? AND deleted_by IS NULL", userID, models.FileRefAvatar).
		Update("deleted_by", &now).Error

	ref := &models.FileReferenceModel{
		UserID:  userID,
		RefType: models.FileRefAvatar,
		RefID:   userID,
		Path:    webPath,
		Size:    fileHeader.Size,
		MIME:    detectContentType(fileHeader.Filename, nil, fileHeader.Header.Get("Content-Type")),
	}
	if err := h.db.Create(ref).Error; err != nil {
		response.InternalError(c, err)
		return
	}

	if err := h.db.Model(&models.UserModel{}).Where("id = ?", userID).Update("avatar", webPath).Error; err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, gin.H{
		"url":  webPath,
		"name": filename,
	})
}

// GET /files  [auth]
func (h *Handler) listOwn(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	q := pagination.FromContext(c)
	tx := h.db.Model(&models.FileReferenceModel{}).
		Where("user_id = ? AND deleted_by IS NULL", userID).
		Order("created_at DESC")

	var refs []models.FileReferenceModel
	page, err := pagination.Paginate(tx, q, &refs)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]gin.H, 0, len(refs))
	for _, ref := range refs {
		items = append(items, gin.H{
			"id":       ref.ID,
			"ref_type": ref.RefType,
			"path":     ref.Path,
			"size":     ref.Size,
			"mime":     ref.MIME,
			"created":  ref.CreatedAt,
		})
	}
	response.Paged(c, items, page)
}

// DELETE /files/:id  [auth] - flags the reference; the file itself is swept
// by the cleanup job.
func (h *Handler) deleteOwn(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	now := time.Now()
	res := h.db.Model(&models.FileReferenceModel{}).
		Where("id = ? AND user_id = ? AND deleted_by IS NULL", c.Param("id"), userID).
		Update("deleted_by", &now)
	if res.Error != nil {
		response.InternalError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}

type batchS3UploadDTO struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// POST /files/s3/batch-upload  [auth] - pushes locally stored files to S3 and
// rewrites their references to the public URL.
func (h *Handler) batchUploadToS3(c *gin.Context) {
	var dto batchS3UploadDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !dto.All && len(dto.IDs) == 0 {
		response.BadRequest(c, "ids or all is required")
		return
	}

	cfg, err := h.loadConfig()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if cfg == nil || !cfg.S3Options.Enable {
		response.BadRequest(c, "S3 storage is not enabled")
		return
	}
	uploader, err := storage.NewS3Uploader(cfg.S3Options)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	tx := h.db.Model(&models.FileReferenceModel{}).
		Where("user_id = ? AND deleted_by IS NULL AND path LIKE ?", userID, "/media/%")
	if !dto.All {
		tx = tx.Where("id IN ?", dto.IDs)
	}

	var refs []models.FileReferenceModel
	if err := tx.Find(&refs).Error; err != nil {
		response.InternalError(c, err)
		return
	}

	if h.tasks != nil {
		task, err := h.tasks.Enqueue(c.Request.Context(), "s3_batch_upload",
			gin.H{"user_id": userID, "count": len(refs)}, "", userID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		go h.runS3BatchTask(task.ID, uploader, refs)
		c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID, "count": len(refs)})
		return
	}

	response.OK(c, gin.H{"results": h.uploadRefs(context.Background(), uploader, refs)})
}

// GET /files/s3/task/:id  [auth]
func (h *Handler) getS3Task(c *gin.Context) {
	if h.tasks == nil {
		response.NotFound(c)
		return
	}
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

func (h *Handler) runS3BatchTask(taskID string, uploader *storage.S3Uploader, refs []models.FileReferenceModel) {
	ctx := context.Background()
	_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	results := h.uploadRefs(ctx, uploader, refs)
	failed := 0
	for _, item := range results {
		if _, ok := item["error"]; ok {
			failed++
		}
	}

	status := taskqueue.TaskCompleted
	errMsg := ""
	if failed > 0 && failed == len(results) {
		status = taskqueue.TaskFailed
		errMsg = "all uploads failed"
	}
	if err := h.tasks.UpdateStatus(ctx, taskID, status, gin.H{"results": results}, errMsg); err != nil {
		h.logger.Warn("update s3 batch task status", zap.String("task", taskID), zap.Error(err))
	}
}

func (h *Handler) uploadRefs(ctx context.Context, uploader *storage.S3Uploader, refs []models.FileReferenceModel) []gin.H {
	results := make([]gin.H, 0, len(refs))
	for _, ref := range refs {
		url, err := h.syncToS3(ctx, uploader, &ref)
		item := gin.H{"id": ref.ID, "originalPath": ref.Path}
		if err != nil {
			item["error"] = err.Error()
		} else {
			item["url"] = url
		}
		results = append(results, item)
	}
	return results
}

func (h *Handler) syncToS3(ctx context.Context, uploader *storage.S3Uploader, ref *models.FileReferenceModel) (string, error) {
	rel, ok := mediaRelPath(ref.Path)
	if !ok {
		return "", errors.New("reference is not stored locally")
	}

	payload, err := os.ReadFile(filepath.Join(h.mediaDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}

	url, err := uploader.Upload(ctx, rel, payload, detectContentType(rel, payload, ref.MIME))
	if err != nil {
		return "", err
	}

	if err := h.db.Model(ref).Update("path", url).Error; err != nil {
		return "", err
	}

	switch ref.RefType {
	case models.FileRefDreamImage:
		_ = h.db.Model(&models.DreamModel{}).Where("id = ?", ref.RefID).Update("image_path", url).Error
	case models.FileRefAvatar:
		_ = h.db.Model(&models.UserModel{}).Where("id = ?", ref.UserID).Update("avatar", url).Error
	}
	return url, nil
}

func (h *Handler) loadConfig() (*appcfg.FullConfig, error) {
	if h.cfgSvc == nil {
		return nil, nil
	}
	return h.cfgSvc.Get()
}

func (h *Handler) avatarLimits() (string, int) {
	formats, maxSizeMB := defaultAvatarFormats, defaultAvatarMaxSizeMB
	cfg, err := h.loadConfig()
	if err != nil || cfg == nil {
		return formats, maxSizeMB
	}
	if strings.TrimSpace(cfg.MediaOptions.AvatarFormats) != "" {
		formats = cfg.MediaOptions.AvatarFormats
	}
	if cfg.MediaOptions.AvatarMaxSizeMB > 0 {
		maxSizeMB = cfg.MediaOptions.AvatarMaxSizeMB
	}
	return formats, maxSizeMB
}

// CleanupOrphans hard-deletes flagged file references and their local files.
// Returns the number of swept references.
func CleanupOrphans(db *gorm.DB, mediaDir string, olderThan time.Duration, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	cutoff := time.Now().Add(-olderThan)
	var refs []models.FileReferenceModel
	if err := db.Where("deleted_by IS NOT NULL AND deleted_by <= ?", cutoff).Find(&refs).Error; err != nil {
		logger.Warn("orphan sweep query failed", zap.Error(err))
		return 0
	}

	swept := 0
	for _, ref := range refs {
		if rel, ok := mediaRelPath(ref.Path); ok {
			if err := os.Remove(filepath.Join(mediaDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
				logger.Warn("orphan file removal failed", zap.String("path", ref.Path), zap.Error(err))
				continue
			}
		}
		if err := db.Unscoped().Delete(&models.FileReferenceModel{}, "id = ?", ref.ID).Error; err == nil {
			swept++
		}
	}
	return swept
}
