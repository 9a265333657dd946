package dream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/onyria-app/core/internal/middleware"
	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/processing/emotion"
	"github.com/onyria-app/core/internal/modules/processing/interpret"
	"github.com/onyria-app/core/internal/modules/processing/markdown"
	"github.com/onyria-app/core/internal/modules/processing/transcribe"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
	"github.com/onyria-app/core/internal/pkg/pagination"
	"github.com/onyria-app/core/internal/pkg/response"
	"gorm.io/gorm"
)

// analysisErrorMessage is shown whenever the pipeline fails upstream.
const analysisErrorMessage = "Les fils de votre rêve se sont emmêlés... Laissez-moi démêler ce songe et tentez une nouvelle analyse."

const defaultAudioMaxSizeMB = 25

type Handler struct {
	svc    *Service
	cfgSvc *configs.Service
}

func NewHandler(svc *Service, cfgSvc *configs.Service) *Handler {
	return &Handler{svc: svc, cfgSvc: cfgSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/dreams", authMW)

	g.POST("/analyze", h.analyze)
	g.GET("", h.list)
	g.GET("/stats", h.stats)
	g.GET("/:id", h.getOne)
	g.DELETE("/:id", h.deleteOne)
	g.GET("/:id/export", h.export)
}

// POST /dreams/analyze  [auth]
func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		failAnalysis(c, http.StatusBadRequest, "Aucun enregistrement audio reçu.", "no_audio")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		failAnalysis(c, http.StatusBadRequest, "L'enregistrement audio est vide.", "empty_audio")
		return
	}
	if maxMB := h.audioMaxSizeMB(); header.Size > int64(maxMB)<<20 {
		failAnalysis(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("L'enregistrement dépasse la taille maximale de %d Mo.", maxMB), "audio_too_large")
		return
	}
	if _, err := transcribe.MIMEForFilename(header.Filename); err != nil {
		failAnalysis(c, http.StatusUnsupportedMediaType, "Format audio non pris en charge.", "unsupported_format")
		return
	}

	entry, record, err := h.svc.Analyze(c.Request.Context(), userID, file, header.Filename)
	if err != nil {
		status, message, detail := classifyAnalysisError(err)
		failAnalysis(c, status, message, detail)
		return
	}

	response.OK(c, newAnalyzeResponse(entry, record))
}

// GET /dreams  [auth]
func (h *Handler) list(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	dreams, page, err := h.svc.List(c.Request.Context(), userID, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]dreamItem, 0, len(dreams))
	for i := range dreams {
		items = append(items, newDreamItem(&dreams[i]))
	}
	response.Paged(c, items, page)
}

// GET /dreams/stats  [auth]
func (h *Handler) stats(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}

// GET /dreams/:id  [auth]
func (h *Handler) getOne(c *gin.Context) {
	entry, ok := h.findOwned(c)
	if !ok {
		return
	}
	response.OK(c, newDreamDetail(entry))
}

// DELETE /dreams/:id  [auth]
func (h *Handler) deleteOne(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	err := h.svc.Delete(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// GET /dreams/:id/export?format=md|html&yaml=1  [auth]
func (h *Handler) export(c *gin.Context) {
	entry, ok := h.findOwned(c)
	if !ok {
		return
	}

	title := exportTitle(entry)
	body := buildExportBody(entry)

	switch strings.ToLower(c.DefaultQuery("format", "md")) {
	case "html":
		page := markdown.RenderHTMLDocument(markdown.RenderContent(body), markdown.DocumentOptions{
			Title:  title,
			Info:   "Exporté depuis Onyria le " + frenchDate(entry.CreatedAt),
			Footer: "Onyria",
		})
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	case "md", "markdown":
		withYAML := markdown.ParseBool(c.DefaultQuery("yaml", "true"))
		doc := markdown.BuildDocument(buildExportMeta(entry), title, body, withYAML)
		c.Header("Content-Disposition", `attachment; filename="`+markdown.Filename(title)+`"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
	default:
		response.BadRequest(c, "format must be md or html")
	}
}

func (h *Handler) findOwned(c *gin.Context) (*models.DreamModel, bool) {
	userID := middleware.CurrentUserID(c)

	entry, err := h.svc.GetByID(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c)
		return nil, false
	}
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	return entry, true
}

func (h *Handler) audioMaxSizeMB() int {
	if h.cfgSvc == nil {
		return defaultAudioMaxSizeMB
	}
	cfg, err := h.cfgSvc.Get()
	if err != nil || cfg.MediaOptions.AudioMaxSizeMB <= 0 {
		return defaultAudioMaxSizeMB
	}
	return cfg.MediaOptions.AudioMaxSizeMB
}

// failAnalysis writes the analysis failure envelope: a user-facing message
// plus a stable machine-readable detail token.
func failAnalysis(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
		"detail":  detail,
	})
}

// classifyAnalysisError maps a pipeline failure to an HTTP status, a French
// user-facing message and a detail token.
func classifyAnalysisError(err error) (int, string, string) {
	switch {
	case errors.Is(err, transcribe.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Format audio non pris en charge.", "unsupported_format"
	case errors.Is(err, interpret.ErrInvalidInput):
		return http.StatusBadRequest, "L'enregistrement ne contient aucun récit de rêve.", "empty_narrative"
	case errors.Is(err, transcribe.ErrDisabled):
		return http.StatusServiceUnavailable, analysisErrorMessage, "transcription_disabled"
	case errors.Is(err, transcribe.ErrTranscriptionFailed):
		return http.StatusBadGateway, analysisErrorMessage, "transcription_failed"
	case errors.Is(err, emotion.ErrClassificationFailed):
		return http.StatusBadGateway, analysisErrorMessage, "classification_failed"
	case errors.Is(err, interpret.ErrGenerationFailed):
		return http.StatusBadGateway, analysisErrorMessage, "interpretation_failed"
	default:
		return http.StatusInternalServerError, analysisErrorMessage, "server_error"
	}
}
