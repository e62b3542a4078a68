package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/galp2508/shavzak-sub000/pkg/auth"
	"github.com/galp2508/shavzak-sub000/pkg/config"
	"github.com/galp2508/shavzak-sub000/pkg/database"
	"github.com/galp2508/shavzak-sub000/pkg/learner"
)

// Handler contains dependencies for the route handlers.
type Handler struct {
	DB       *gorm.DB
	Learner  *learner.Store
	Settings config.Settings

	Login1m   *RateLimiter
	ClientHr  *RateLimiter
	ClientDay *RateLimiter

	// genLocks serializes concurrent generation runs for the same roster.
	genMu    sync.Mutex
	genLocks map[string]*sync.Mutex
}

// New wires a handler with the default rate-limit budgets: login 5/min per
// address, clients 1000/hour and 5000/day.
func New(db *gorm.DB, store *learner.Store, settings config.Settings) *Handler {
	return &Handler{
		DB:        db,
		Learner:   store,
		Settings:  settings,
		Login1m:   NewRateLimiter(5, minuteWindow),
		ClientHr:  NewRateLimiter(1000, hourWindow),
		ClientDay: NewRateLimiter(5000, dayWindow),
		genLocks:  make(map[string]*sync.Mutex),
	}
}

// rosterLock returns the mutex guarding generation for one roster.
func (h *Handler) rosterLock(rosterID string) *sync.Mutex {
	h.genMu.Lock()
	defer h.genMu.Unlock()
	mu, ok := h.genLocks[rosterID]
	if !ok {
		mu = &sync.Mutex{}
		h.genLocks[rosterID] = mu
	}
	return mu
}

// respondError writes the standard error envelope.
func respondError(c *gin.Context, status int, err, message, errType string) {
	body := gin.H{"error": err}
	if message != "" {
		body["message"] = message
	}
	if errType != "" {
		body["type"] = errType
	}
	c.JSON(status, body)
}

// AuthMiddleware verifies the bearer token on every protected route and
// stashes the claims and user record in the request context.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			respondError(c, http.StatusUnauthorized, "Authorization header required", "", "auth")
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid token", "", "auth")
			c.Abort()
			return
		}

		var user database.User
		if err := h.DB.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			respondError(c, http.StatusUnauthorized, "Unknown user", "", "auth")
			c.Abort()
			return
		}

		if !h.ClientHr.Allow(user.ID) || !h.ClientDay.Allow(user.ID) {
			respondError(c, http.StatusTooManyRequests, "Request budget exceeded", "", "rate-limit")
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("user", &user)
		c.Next()
	}
}

// AdminOnly gates admin endpoints; it must run after AuthMiddleware.
func (h *Handler) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			respondError(c, http.StatusForbidden, "Admin access required", "", "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get("claims")
	return v.(*auth.Claims)
}

func currentUser(c *gin.Context) *database.User {
	v, _ := c.Get("user")
	return v.(*database.User)
}
