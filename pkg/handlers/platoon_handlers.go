package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/galp2508/shavzak-sub000/pkg/database"
)

// ListPlatoons returns all platoons with their squads.
func (h *Handler) ListPlatoons(c *gin.Context) {
	var platoons []database.PlatoonRecord
	h.DB.Order("name asc").Find(&platoons)
	var squads []database.SquadRecord
	h.DB.Order("name asc").Find(&squads)

	byPlatoon := make(map[string][]database.SquadRecord)
	for _, s := range squads {
		byPlatoon[s.PlatoonID] = append(byPlatoon[s.PlatoonID], s)
	}

	out := make([]gin.H, 0, len(platoons))
	for _, p := range platoons {
		out = append(out, gin.H{
			"id":         p.ID,
			"name":       p.Name,
			"is_special": p.IsSpecial,
			"squads":     byPlatoon[p.ID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"platoons": out})
}

// CreatePlatoon adds a platoon (admin only).
func (h *Handler) CreatePlatoon(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		IsSpecial bool   `json:"is_special"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	rec := database.PlatoonRecord{ID: uuid.NewString(), Name: req.Name, IsSpecial: req.IsSpecial}
	if err := h.DB.Create(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create platoon", "", "server")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CreateSquad adds a squad to a platoon (admin only).
func (h *Handler) CreateSquad(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	platoonID := c.Param("id")
	var count int64
	h.DB.Model(&database.PlatoonRecord{}).Where("id = ?", platoonID).Count(&count)
	if count == 0 {
		respondError(c, http.StatusNotFound, "Platoon not found", "", "not-found")
		return
	}
	rec := database.SquadRecord{ID: uuid.NewString(), PlatoonID: platoonID, Name: req.Name}
	if err := h.DB.Create(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create squad", "", "server")
		return
	}
	c.JSON(http.StatusOK, rec)
}
