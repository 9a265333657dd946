package ai

import (
	"github.com/gin-gonic/gin"
	appcfg "github.com/onyria-app/core/internal/config"
	"github.com/onyria-app/core/internal/modules/system/core/configs"
	"github.com/onyria-app/core/internal/pkg/response"
)

type Handler struct{ cfgSvc *configs.Service }

func NewHandler(cfgSvc *configs.Service) *Handler { return &Handler{cfgSvc: cfgSvc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ai")

	modelsRoute := g.Group("/models", authMW)
	modelsRoute.GET("", h.getAvailableModels)
	modelsRoute.GET("/:providerId", h.getModelsForProvider)
	modelsRoute.POST("/list", h.fetchModelsList)
	g.POST("/test", authMW, h.testProviderConnection)
}

// GET /ai/models  [auth]
func (h *Handler) getAvailableModels(c *gin.Context) {
	cfg, err := h.cfgSvc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]providerModelsResponse, 0, len(cfg.AI.Providers))
	for _, p := range cfg.AI.Providers {
		if !p.Enabled || p.APIKey == "" {
			continue
		}
		out = append(out, providerModelsResponse{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			ProviderType: p.Type,
			Models:       modelsFromProvider(p),
		})
	}
	response.OK(c, out)
}

// GET /ai/models/:providerId  [auth]
func (h *Handler) getModelsForProvider(c *gin.Context) {
	providerID := c.Param("providerId")
	cfg, err := h.cfgSvc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	for _, p := range cfg.AI.Providers {
		if p.ID == providerID {
			response.OK(c, providerModelsResponse{
				ProviderID:   p.ID,
				ProviderName: p.Name,
				ProviderType: p.Type,
				Models:       modelsFromProvider(p),
			})
			return
		}
	}
	response.NotFoundMsg(c, "Ce fournisseur d'IA n'existe pas.")
}

// POST /ai/models/list  [auth]
func (h *Handler) fetchModelsList(c *gin.Context) {
	var dto fetchModelsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Prefer explicit request payload; fallback to stored provider.
	provider := appcfg.AIProvider{
		ID:           dto.ProviderID,
		Name:         dto.ProviderID,
		Type:         dto.Type,
		APIKey:       dto.APIKey,
		Endpoint:     dto.Endpoint,
		DefaultModel: "",
		Enabled:      true,
	}

	if dto.ProviderID != "" {
		if cfg, err := h.cfgSvc.Get(); err == nil {
			for _, p := range cfg.AI.Providers {
				if p.ID == dto.ProviderID {
					if provider.Type == "" {
						provider.Type = p.Type
					}
					if provider.APIKey == "" {
						provider.APIKey = p.APIKey
					}
					if provider.Endpoint == "" {
						provider.Endpoint = p.Endpoint
					}
					if provider.DefaultModel == "" {
						provider.DefaultModel = p.DefaultModel
					}
					if provider.Name == "" {
						provider.Name = p.Name
					}
					break
				}
			}
		}
	}

	if provider.Type == "" || provider.APIKey == "" {
		response.OK(c, gin.H{
			"models": []modelInfo{},
			"error":  "Provider type and api key are required",
		})
		return
	}

	fetchedModels, err := fetchModelsFromProvider(provider)
	if err != nil {
		fallback := modelsFromProvider(provider)
		response.OK(c, gin.H{
			"models": fallback,
			"error":  err.Error(),
		})
		return
	}
	if len(fetchedModels) == 0 {
		fetchedModels = modelsFromProvider(provider)
	}

	response.OK(c, gin.H{
		"models": fetchedModels,
	})
}

// POST /ai/test  [auth]
func (h *Handler) testProviderConnection(c *gin.Context) {
	var dto testConnectionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.ProviderID != "" && (dto.Type == "" || dto.APIKey == "" || dto.Model == "") {
		if cfg, err := h.cfgSvc.Get(); err == nil {
			for _, p := range cfg.AI.Providers {
				if p.ID == dto.ProviderID {
					if dto.Type == "" {
						dto.Type = p.Type
					}
					if dto.APIKey == "" {
						dto.APIKey = p.APIKey
					}
					if dto.Model == "" {
						dto.Model = p.DefaultModel
					}
					if dto.Endpoint == "" {
						dto.Endpoint = p.Endpoint
					}
					break
				}
			}
		}
	}
	if dto.Type == "" || dto.APIKey == "" || dto.Model == "" {
		response.BadRequest(c, "type, apiKey and model are required")
		return
	}

	provider := appcfg.AIProvider{
		Type:         dto.Type,
		APIKey:       dto.APIKey,
		Endpoint:     dto.Endpoint,
		DefaultModel: dto.Model,
		Enabled:      true,
	}

	if _, err := Generate(c.Request.Context(), &provider, "", "Say OK", 10); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"ok": true})
}
