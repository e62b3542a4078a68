package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/galp2508/shavzak-sub000/pkg/auth"
	"github.com/galp2508/shavzak-sub000/pkg/database"
	"github.com/galp2508/shavzak-sub000/pkg/models"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	PlatoonID   string `json:"platoon_id"`
	SquadID     string `json:"squad_id"`
}

// Register creates the first-ever account as admin; any later registration
// is enqueued as a join request awaiting approval.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	if req.Role != "" {
		if _, err := models.ParseRole(req.Role); err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
			return
		}
	}

	var taken int64
	h.DB.Model(&database.User{}).Where("username = ?", req.Username).Count(&taken)
	if taken > 0 {
		respondError(c, http.StatusBadRequest, "Username already taken", "", "validation")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not hash password", "", "server")
		return
	}

	var count int64
	h.DB.Model(&database.User{}).Count(&count)

	if count == 0 {
		user := database.User{
			ID:           uuid.NewString(),
			Username:     req.Username,
			PasswordHash: hash,
			DisplayName:  req.DisplayName,
			Role:         req.Role,
			PlatoonID:    req.PlatoonID,
			SquadID:      req.SquadID,
			IsAdmin:      true,
		}
		if err := h.DB.Create(&user).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Could not create user", "", "server")
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "admin": true})
		return
	}

	jr := database.JoinRequest{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		PlatoonID:    req.PlatoonID,
		SquadID:      req.SquadID,
		Status:       "pending",
	}
	if err := h.DB.Create(&jr).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create join request", "", "server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"join_request_id": jr.ID, "status": jr.Status})
}

// Login exchanges credentials for a bearer token. Limited to 5 attempts per
// minute per remote address.
func (h *Handler) Login(c *gin.Context) {
	if !h.Login1m.Allow(c.ClientIP()) {
		respondError(c, http.StatusTooManyRequests, "Too many login attempts", "", "rate-limit")
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}

	var user database.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "", "auth")
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "", "auth")
		return
	}

	role, _ := models.ParseRole(user.Role)
	token, err := auth.CreateToken(user.ID, role, user.PlatoonID, user.SquadID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create token", "", "server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GetMe returns the authenticated identity.
func (h *Handler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// UpdateMe lets a user change their display name and password.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req struct {
		DisplayName *string `json:"display_name"`
		Password    *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}

	user := currentUser(c)
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			respondError(c, http.StatusBadRequest, "Password too short", "", "validation")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Could not hash password", "", "server")
			return
		}
		updates["password_hash"] = hash
	}
	if len(updates) > 0 {
		if err := h.DB.Model(user).Updates(updates).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Could not update user", "", "server")
			return
		}
	}
	c.JSON(http.StatusOK, user)
}

// ListJoinRequests returns pending join requests (admin only).
func (h *Handler) ListJoinRequests(c *gin.Context) {
	var reqs []database.JoinRequest
	h.DB.Where("status = ?", "pending").Order("created_at asc").Find(&reqs)
	c.JSON(http.StatusOK, gin.H{"join_requests": reqs})
}

// ApproveJoinRequest promotes a pending join request to a full account.
func (h *Handler) ApproveJoinRequest(c *gin.Context) {
	id := c.Param("id")
	var jr database.JoinRequest
	if err := h.DB.Where("id = ? AND status = ?", id, "pending").First(&jr).Error; err != nil {
		respondError(c, http.StatusNotFound, "Join request not found", "", "not-found")
		return
	}

	user := database.User{
		ID:           uuid.NewString(),
		Username:     jr.Username,
		PasswordHash: jr.PasswordHash,
		DisplayName:  jr.DisplayName,
		Role:         jr.Role,
		PlatoonID:    jr.PlatoonID,
		SquadID:      jr.SquadID,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&jr).Update("status", "approved").Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not approve join request", "", "server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID})
}
