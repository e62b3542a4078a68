package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/galp2508/shavzak-sub000/pkg/database"
	"github.com/galp2508/shavzak-sub000/pkg/learner"
	"github.com/galp2508/shavzak-sub000/pkg/models"
)

type feedbackRequest struct {
	InstanceID string                   `json:"instance_id" binding:"required"`
	Rating     string                   `json:"rating" binding:"required"`
	Changes    *learner.FeedbackChanges `json:"changes"`
}

// SubmitFeedback records a user verdict on a generated assignment, updates
// the learned model, and appends the event to the audit table.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}

	rating := models.Rating(req.Rating)
	switch rating {
	case models.RatingApproved, models.RatingRejected, models.RatingModified:
	default:
		respondError(c, http.StatusBadRequest, "rating must be approved, rejected, or modified", "", "validation")
		return
	}

	var inst database.InstanceRecord
	if err := h.DB.Where("id = ?", req.InstanceID).First(&inst).Error; err != nil {
		respondError(c, http.StatusNotFound, "Task instance not found", "", "not-found")
		return
	}

	ti := database.ToInstance(&inst)
	claims := currentClaims(c)

	ev := learner.FeedbackEvent{
		InstanceID:   ti.ID,
		RosterID:     inst.RosterID,
		Archetype:    ti.Archetype,
		PersonIDs:    ti.SelectedIDs(),
		StartHour:    ti.StartHour,
		Rating:       rating,
		Changes:      req.Changes,
		ReporterRole: claims.Role,
		At:           time.Now(),
	}
	if err := h.Learner.ApplyFeedback(ev); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not persist model", "", "server")
		return
	}

	changesJSON := ""
	if req.Changes != nil {
		if b, err := json.Marshal(req.Changes); err == nil {
			changesJSON = string(b)
		}
	}
	rec := database.FeedbackRecord{
		InstanceID: ti.ID,
		RosterID:   inst.RosterID,
		Rating:     string(rating),
		Changes:    changesJSON,
		ReporterID: currentUser(c).ID,
	}
	if err := h.DB.Create(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not record feedback", "", "server")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback recorded", "stats": h.Learner.Stats()})
}

// ModelStats returns the learned-model counters (admin only).
func (h *Handler) ModelStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": h.Learner.Stats()})
}

type trainRequest struct {
	Examples []struct {
		RosterID string `json:"roster_id" binding:"required"`
		Rating   string `json:"rating" binding:"required"`
	} `json:"examples" binding:"required,min=1"`
}

// TrainModel folds graded historical rosters into the learned model
// (admin only). Each example references a stored roster and a qualitative
// grade; the roster's persisted instances become the training material.
func (h *Handler) TrainModel(c *gin.Context) {
	var req trainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}

	batch := make([]learner.TrainingExample, 0, len(req.Examples))
	for _, ex := range req.Examples {
		rating := models.ExemplarRating(ex.Rating)
		switch rating {
		case models.ExemplarExcellent, models.ExemplarGood, models.ExemplarBad:
		default:
			respondError(c, http.StatusBadRequest, "rating must be excellent, good, or bad", "", "validation")
			return
		}

		var recs []database.InstanceRecord
		if err := h.DB.Where("roster_id = ?", ex.RosterID).Find(&recs).Error; err != nil || len(recs) == 0 {
			respondError(c, http.StatusNotFound, "Roster has no stored instances: "+ex.RosterID, "", "not-found")
			return
		}
		instances := make([]*models.TaskInstance, 0, len(recs))
		for i := range recs {
			instances = append(instances, database.ToInstance(&recs[i]))
		}
		batch = append(batch, learner.TrainingExample{Instances: instances, Rating: rating})
	}

	if err := h.Learner.Train(batch); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not persist model", "", "server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model trained", "stats": h.Learner.Stats()})
}

// ResetModel discards all learned state (admin only).
func (h *Handler) ResetModel(c *gin.Context) {
	if err := h.Learner.Reset(); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not persist model", "", "server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model reset"})
}
