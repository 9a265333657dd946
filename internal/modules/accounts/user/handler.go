package user

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onyria-app/core/internal/middleware"
	"github.com/onyria-app/core/internal/pkg/response"
	sessionpkg "github.com/onyria-app/core/internal/pkg/session"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/user")

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/allow-login", h.allowLogin)
	g.GET("/check_logged", middleware.OptionalAuth(h.svc.db), h.checkLogged)

	a := g.Group("", authMW)
	a.GET("", h.getProfile)
	a.PATCH("", h.updateProfile)
	a.DELETE("", h.deleteAccount)
	a.PUT("/login", h.refreshToken)
	a.POST("/logout", h.logout)
	a.PATCH("/password", h.changePassword)
	a.GET("/session", h.listSessions)
	a.DELETE("/session/all", h.deleteAllSessions)
	a.DELETE("/session/:sessionId", h.deleteSession)
}

// POST /user/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			response.Conflict(c, "Cette adresse e-mail rêve déjà chez nous.")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(u))
}

// POST /user/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if h.svc.cfgSvc != nil {
		if cfg, err := h.svc.cfgSvc.Get(); err == nil && cfg.AuthSecurity.DisablePasswordLogin {
			response.BadRequest(c, "La connexion par mot de passe est désactivée.")
			return
		}
	}

	token, u, err := h.svc.Login(dto.Email, dto.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, errUserNotFound) || errors.Is(err, errWrongPassword) {
			response.ForbiddenMsg(c, "E-mail ou mot de passe incorrect.")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: toResponse(u)})
}

// GET /user/allow-login
func (h *Handler) allowLogin(c *gin.Context) {
	passwordEnabled := true
	if h.svc.cfgSvc != nil {
		if cfg, err := h.svc.cfgSvc.Get(); err == nil {
			passwordEnabled = !cfg.AuthSecurity.DisablePasswordLogin
		}
	}
	response.OK(c, gin.H{"password": passwordEnabled})
}

// GET /user/check_logged
func (h *Handler) checkLogged(c *gin.Context) {
	isAuthenticated := middleware.IsAuthenticated(c)
	response.OK(c, gin.H{
		"ok":      boolToInt(isAuthenticated),
		"isGuest": !isAuthenticated,
	})
}

// GET /user  [auth]
func (h *Handler) getProfile(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

// PATCH /user  [auth]
func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

// DELETE /user  [auth]
func (h *Handler) deleteAccount(c *gin.Context) {
	var dto DeleteAccountDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.DeleteAccount(middleware.CurrentUserID(c), dto.Password)
	if errors.Is(err, errWrongPassword) {
		response.ForbiddenMsg(c, "Mot de passe incorrect.")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// PUT /user/login  [auth] - reissues a token and retires the current session.
func (h *Handler) refreshToken(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	currentSessionID := middleware.CurrentSessionID(c)

	token, _, err := sessionpkg.Issue(h.svc.db, userID, c.ClientIP(), c.Request.UserAgent(), h.svc.sessionTTL())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if currentSessionID != "" {
		sessionpkg.RevokeAfter(h.svc.db, userID, currentSessionID, 6*time.Second)
	}
	response.OK(c, gin.H{"token": token})
}

// POST /user/logout  [auth]
func (h *Handler) logout(c *gin.Context) {
	if sessionID := middleware.CurrentSessionID(c); sessionID != "" {
		_ = sessionpkg.Revoke(h.svc.db, middleware.CurrentUserID(c), sessionID)
	}
	response.NoContent(c)
}

// PATCH /user/password  [auth]
func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ChangePassword(middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword)
	if err != nil {
		if errors.Is(err, errWrongPassword) {
			response.BadRequest(c, "Mot de passe actuel incorrect.")
			return
		}
		if errors.Is(err, errPasswordSameAsOld) {
			response.UnprocessableEntity(c, "Le nouveau mot de passe doit être différent de l'ancien.")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// GET /user/session  [auth]
func (h *Handler) listSessions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	currentSessionID := middleware.CurrentSessionID(c)

	sessions, err := sessionpkg.ListActive(h.svc.db, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	data := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		data = append(data, gin.H{
			"id":      s.ID,
			"ua":      s.UA,
			"ip":      s.IP,
			"date":    s.UpdatedAt,
			"current": s.ID == currentSessionID,
		})
	}
	response.OK(c, gin.H{"data": data})
}

// DELETE /user/session/all  [auth]
// Revokes every session except the one making the call.
func (h *Handler) deleteAllSessions(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if err := sessionpkg.RevokeAllExcept(h.svc.db, userID, middleware.CurrentSessionID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// DELETE /user/session/:sessionId  [auth]
func (h *Handler) deleteSession(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	sessionID := c.Param("sessionId")
	if err := sessionpkg.Revoke(h.svc.db, userID, sessionID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
