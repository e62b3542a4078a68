package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/galp2508/shavzak-sub000/pkg/auth"
	"github.com/galp2508/shavzak-sub000/pkg/database"
	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// ListPersons returns the personnel roster, scoped to the caller's platoon
// unless they are the admin.
func (h *Handler) ListPersons(c *gin.Context) {
	claims := currentClaims(c)
	q := h.DB.Preload("Unavailability")
	if !currentUser(c).IsAdmin {
		q = q.Where("platoon_id = ?", claims.PlatoonID)
	}
	var recs []database.PersonRecord
	q.Order("name asc").Find(&recs)
	c.JSON(http.StatusOK, gin.H{"persons": recs})
}

type personRequest struct {
	Name           string   `json:"name" binding:"required"`
	Role           string   `json:"role" binding:"required"`
	PlatoonID      string   `json:"platoon_id" binding:"required"`
	SquadID        string   `json:"squad_id"`
	Certifications []string `json:"certifications"`
	HomeRoundDate  *string  `json:"home_round_date"`
	CycleType      string   `json:"cycle_type"`
	StatusType     string   `json:"status_type"`
	ReturnDate     *string  `json:"return_date"`
}

func (r *personRequest) toPerson(id string) (*models.Person, map[string]string) {
	errs := map[string]string{}
	role, err := models.ParseRole(r.Role)
	if err != nil {
		errs["role"] = err.Error()
	}
	cycle := models.Cycle17_4
	if r.CycleType != "" {
		if cycle, err = models.ParseCycleType(r.CycleType); err != nil {
			errs["cycle_type"] = err.Error()
		}
	}
	status := models.StatusInBase
	if r.StatusType != "" {
		if status, err = models.ParseStatusType(r.StatusType); err != nil {
			errs["status_type"] = err.Error()
		}
	}
	p := &models.Person{
		ID:             id,
		Name:           r.Name,
		Role:           role,
		PlatoonID:      r.PlatoonID,
		SquadID:        r.SquadID,
		Certifications: r.Certifications,
		CycleType:      cycle,
		StatusType:     status,
	}
	if r.HomeRoundDate != nil {
		t, err := time.Parse("2006-01-02", *r.HomeRoundDate)
		if err != nil {
			errs["home_round_date"] = "must be YYYY-MM-DD"
		} else {
			p.HomeRoundDate = &t
		}
	}
	if r.ReturnDate != nil {
		t, err := time.Parse("2006-01-02", *r.ReturnDate)
		if err != nil {
			errs["return_date"] = "must be YYYY-MM-DD"
		} else {
			p.ReturnDate = &t
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

// CreatePerson adds a person to the roster.
func (h *Handler) CreatePerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	p, errs := req.toPerson(uuid.NewString())
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid person", "errors": errs, "type": "validation"})
		return
	}
	if !auth.CanEditPerson(currentClaims(c), p.PlatoonID, p.SquadID, currentUser(c).IsAdmin) {
		respondError(c, http.StatusForbidden, "Cannot edit persons outside your scope", "", "forbidden")
		return
	}

	var platoonCount int64
	h.DB.Model(&database.PlatoonRecord{}).Where("id = ?", p.PlatoonID).Count(&platoonCount)
	if platoonCount == 0 {
		respondError(c, http.StatusBadRequest, "Unknown platoon", "", "validation")
		return
	}

	if err := h.DB.Create(database.FromPerson(p)).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create person", "", "server")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePerson replaces a person's editable attributes.
func (h *Handler) UpdatePerson(c *gin.Context) {
	var rec database.PersonRecord
	if err := h.DB.Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		respondError(c, http.StatusNotFound, "Person not found", "", "not-found")
		return
	}
	if !auth.CanEditPerson(currentClaims(c), rec.PlatoonID, rec.SquadID, currentUser(c).IsAdmin) {
		respondError(c, http.StatusForbidden, "Cannot edit persons outside your scope", "", "forbidden")
		return
	}

	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	p, errs := req.toPerson(rec.ID)
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid person", "errors": errs, "type": "validation"})
		return
	}
	if err := h.DB.Model(&rec).Updates(database.FromPerson(p)).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not update person", "", "server")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePerson removes a person and their unavailability intervals.
func (h *Handler) DeletePerson(c *gin.Context) {
	var rec database.PersonRecord
	if err := h.DB.Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		respondError(c, http.StatusNotFound, "Person not found", "", "not-found")
		return
	}
	if !auth.CanEditPerson(currentClaims(c), rec.PlatoonID, rec.SquadID, currentUser(c).IsAdmin) {
		respondError(c, http.StatusForbidden, "Cannot edit persons outside your scope", "", "forbidden")
		return
	}
	h.DB.Where("person_id = ?", rec.ID).Delete(&database.UnavailabilityRecord{})
	if err := h.DB.Delete(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not delete person", "", "server")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Person deleted"})
}

// AddUnavailability declares an unavailability interval for a person.
func (h *Handler) AddUnavailability(c *gin.Context) {
	var rec database.PersonRecord
	if err := h.DB.Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		respondError(c, http.StatusNotFound, "Person not found", "", "not-found")
		return
	}
	if !auth.CanEditPerson(currentClaims(c), rec.PlatoonID, rec.SquadID, currentUser(c).IsAdmin) {
		respondError(c, http.StatusForbidden, "Cannot edit persons outside your scope", "", "forbidden")
		return
	}

	var req struct {
		Start    string `json:"start" binding:"required"`
		End      string `json:"end" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	start, err1 := time.Parse("2006-01-02", req.Start)
	end, err2 := time.Parse("2006-01-02", req.End)
	if err1 != nil || err2 != nil || !end.After(start) {
		respondError(c, http.StatusBadRequest, "start/end must be YYYY-MM-DD with end after start", "", "validation")
		return
	}

	u := database.UnavailabilityRecord{
		PersonID: rec.ID,
		Start:    start,
		End:      end,
		Reason:   req.Reason,
		Quantity: req.Quantity,
	}
	if err := h.DB.Create(&u).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create interval", "", "server")
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListTemplates returns the task-template catalog.
func (h *Handler) ListTemplates(c *gin.Context) {
	var recs []database.TemplateRecord
	h.DB.Order("name asc").Find(&recs)
	c.JSON(http.StatusOK, gin.H{"templates": recs})
}

type templateRequest struct {
	Name                    string `json:"name" binding:"required"`
	Archetype               string `json:"archetype" binding:"required"`
	LengthInHours           int    `json:"length_in_hours" binding:"required,min=1,max=24"`
	StartHour               *int   `json:"start_hour"`
	TimesPerDay             int    `json:"times_per_day"`
	Commanders              int    `json:"commanders"`
	Drivers                 int    `json:"drivers"`
	Soldiers                int    `json:"soldiers"`
	SamePlatoonRequired     bool   `json:"same_platoon_required"`
	RequiresSeniorCommander bool   `json:"requires_senior_commander"`
	RequiresSpecialPlatoon  bool   `json:"requires_special_platoon"`
	IsStandbyTask           bool   `json:"is_standby_task"`
	ReuseSoldiersForStandby bool   `json:"reuse_soldiers_for_standby"`
	IsBaseTask              bool   `json:"is_base_task"`
	RequiredCertification   string `json:"required_certification"`
}

// CreateTemplate adds a task template to the catalog (admin only).
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	arch, err := models.ParseArchetype(req.Archetype)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	startHour := -1
	if req.StartHour != nil {
		if *req.StartHour < 0 || *req.StartHour > 23 {
			respondError(c, http.StatusBadRequest, "start_hour out of range", "", "validation")
			return
		}
		startHour = *req.StartHour
	}
	times := req.TimesPerDay
	if times <= 0 {
		times = 1
	}

	tpl := &models.TaskTemplate{
		ID:                      uuid.NewString(),
		Name:                    req.Name,
		Archetype:               arch,
		LengthInHours:           req.LengthInHours,
		StartHour:               startHour,
		TimesPerDay:             times,
		CommandersNeeded:        req.Commanders,
		DriversNeeded:           req.Drivers,
		SoldiersNeeded:          req.Soldiers,
		SamePlatoonRequired:     req.SamePlatoonRequired,
		RequiresSeniorCommander: req.RequiresSeniorCommander,
		RequiresSpecialPlatoon:  req.RequiresSpecialPlatoon,
		IsStandbyTask:           req.IsStandbyTask,
		ReuseSoldiersForStandby: req.ReuseSoldiersForStandby,
		IsBaseTask:              req.IsBaseTask,
		RequiredCertification:   req.RequiredCertification,
	}
	if err := h.DB.Create(database.FromTemplate(tpl)).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create template", "", "server")
		return
	}
	c.JSON(http.StatusOK, tpl)
}
