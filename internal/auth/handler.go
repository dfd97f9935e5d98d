package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/ratelimit"
	"github.com/yourusername/launchbase/internal/session"
	"github.com/yourusername/launchbase/internal/user"
)

// Handler は /api/auth 配下のHTTPハンドラーをまとめた構造体です。
type Handler struct {
	service    *Service
	store      *session.Store
	limiter    *ratelimit.Limiter
	authLimit  ratelimit.Config
	cookieOpts session.CookieOptions
	log        *logger.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(service *Service, store *session.Store, limiter *ratelimit.Limiter, authLimit ratelimit.Config, cookieOpts session.CookieOptions, log *logger.Logger) *Handler {
	return &Handler{
		service:    service,
		store:      store,
		limiter:    limiter,
		authLimit:  authLimit,
		cookieOpts: cookieOpts,
		log:        log,
	}
}

type registerRequest struct {
	Name     string  `json:"name" binding:"required,min=2"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Phone    *string `json:"phone" binding:"omitempty,min=7"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// userPayload は登録・ログイン応答に載せるユーザー情報です。
type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register は POST /api/auth/register のハンドラーです。
func (h *Handler) Register(c *gin.Context) {
	if !h.allow(c, "register") {
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ip, userAgent := clientInfo(c)
	result, err := h.service.Register(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, ip, userAgent)
	if err != nil {
		var authErr *Error
		if errors.As(err, &authErr) {
			// 登録の失敗（重複メール等）は 400 で返す
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   authErr.Message,
			})
			return
		}
		h.log.Error("registration failed", "email", user.NormalizeEmail(req.Email), "ip", derefOr(ip, ""), "error", err)
		respondInternalError(c)
		return
	}

	session.IssueCookie(c, result.Session, h.cookieOpts)

	h.log.Info("user registered", "userId", result.User.ID.String(), "email", result.User.Email, "ip", derefOr(ip, ""))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    resultPayload(result),
		"message": "登録が完了しました",
	})
}

// Login は POST /api/auth/login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	if !h.allow(c, "login") {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	ip, userAgent := clientInfo(c)
	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password, ip, userAgent)
	if err != nil {
		var authErr *Error
		if errors.As(err, &authErr) {
			h.log.Warn("login failed", "email", user.NormalizeEmail(req.Email), "ip", derefOr(ip, ""), "kind", string(authErr.Kind))
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   authErr.Message,
			})
			return
		}
		h.log.Error("login failed", "email", user.NormalizeEmail(req.Email), "ip", derefOr(ip, ""), "error", err)
		respondInternalError(c)
		return
	}

	session.IssueCookie(c, result.Session, h.cookieOpts)

	h.log.Info("user logged in", "userId", result.User.ID.String(), "email", result.User.Email, "ip", derefOr(ip, ""))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resultPayload(result),
		"message": "ログインしました",
	})
}

// Logout は POST /api/auth/logout のハンドラーです。
// クッキーが無くても常に 200 を返します。
func (h *Handler) Logout(c *gin.Context) {
	if id, ok := sessionIDFromCookie(c); ok {
		h.service.Logout(c.Request.Context(), id)
	}
	session.ClearCookie(c, h.cookieOpts)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ログアウトしました",
	})
}

// Session は GET /api/auth/session のハンドラーです。
// エッジのゲートキーパーがセッション検証に利用します。
func (h *Handler) Session(c *gin.Context) {
	id, ok := sessionIDFromCookie(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	u, err := h.store.ResolveUser(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to get session", "sessionId", id.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":       false,
			"authenticated": false,
			"error":         "セッションの取得に失敗しました",
		})
		return
	}
	if u == nil {
		respondUnauthenticated(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"authenticated": true,
		"data": gin.H{
			"user": gin.H{
				"id":            u.ID.String(),
				"email":         u.Email,
				"name":          u.Name,
				"avatarUrl":     u.AvatarURL,
				"status":        string(u.Status),
				"emailVerified": u.EmailVerified,
				"lastLoginAt":   u.LastLoginAt,
			},
		},
	})
}

// allow はレート制限を適用します。超過時は 429 を返して false を返します。
func (h *Handler) allow(c *gin.Context, endpoint string) bool {
	ip := ratelimit.ClientIP(c.Request)
	result := h.limiter.Check(endpoint+":"+ip, h.authLimit)
	if result.Allowed {
		return true
	}

	h.log.Warn("rate limit exceeded", "endpoint", endpoint, "ip", ip)

	// Retry-After は秒数で返す
	c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error":   "リクエストが多すぎます。しばらくしてから再度お試しください",
	})
	return false
}

func resultPayload(r *Result) gin.H {
	return gin.H{
		"user": userPayload{
			ID:    r.User.ID.String(),
			Email: r.User.Email,
			Name:  r.User.Name,
		},
		"session": sessionPayload{
			ID:        r.Session.ID.String(),
			UserID:    r.Session.UserID.String(),
			ExpiresAt: r.Session.ExpiresAt,
		},
	}
}

func respondValidationError(c *gin.Context, err error) {
	body := gin.H{
		"success": false,
		"error":   "入力内容に誤りがあります",
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, gin.H{
				"field": fe.Field(),
				"rule":  fe.Tag(),
			})
		}
		body["details"] = details
	}
	c.JSON(http.StatusBadRequest, body)
}

func respondInternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "サーバーエラーが発生しました",
	})
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success":       false,
		"authenticated": false,
	})
}

// sessionIDFromCookie はクッキーからセッションIDを読み取ります。
func sessionIDFromCookie(c *gin.Context) (uuid.UUID, bool) {
	value, err := c.Cookie(session.CookieName)
	if err != nil || value == "" {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// clientInfo はセッションに記録するクライアント情報を取り出します。
func clientInfo(c *gin.Context) (ip, userAgent *string) {
	if v := ratelimit.ClientIP(c.Request); v != "" && v != "unknown" {
		ip = &v
	}
	if v := c.GetHeader("User-Agent"); v != "" {
		userAgent = &v
	}
	return ip, userAgent
}
