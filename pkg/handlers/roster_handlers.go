package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/galp2508/shavzak-sub000/pkg/auth"
	"github.com/galp2508/shavzak-sub000/pkg/config"
	"github.com/galp2508/shavzak-sub000/pkg/database"
	"github.com/galp2508/shavzak-sub000/pkg/models"
	"github.com/galp2508/shavzak-sub000/pkg/scheduler"
)

type createRosterRequest struct {
	Name                    string `json:"name" binding:"required"`
	StartDate               string `json:"start_date" binding:"required"`
	DaysCount               int    `json:"days_count" binding:"required,min=1,max=60"`
	PlatoonID               string `json:"platoon_id"`
	MinRestHours            *int   `json:"min_rest_hours"`
	EmergencyMode           bool   `json:"emergency_mode"`
	ReuseSoldiersForStandby bool   `json:"reuse_soldiers_for_standby"`
}

// CreateRoster creates a shavzak shell awaiting generation.
func (h *Handler) CreateRoster(c *gin.Context) {
	var req createRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD", "", "validation")
		return
	}

	minRest := h.Settings.MinRestHours
	if req.MinRestHours != nil {
		if *req.MinRestHours < 0 {
			respondError(c, http.StatusBadRequest, "min_rest_hours must be non-negative", "", "validation")
			return
		}
		minRest = *req.MinRestHours
	}

	rec := database.RosterRecord{
		ID:                      uuid.NewString(),
		Name:                    req.Name,
		StartDate:               start,
		DaysCount:               req.DaysCount,
		PlatoonID:               req.PlatoonID,
		MinRestHours:            minRest,
		EmergencyMode:           req.EmergencyMode,
		ReuseSoldiersForStandby: req.ReuseSoldiersForStandby,
		CreatedBy:               currentUser(c).ID,
	}
	if err := h.DB.Create(&rec).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create roster", "", "server")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListRosters returns the rosters visible to the caller.
func (h *Handler) ListRosters(c *gin.Context) {
	claims := currentClaims(c)
	user := currentUser(c)

	var recs []database.RosterRecord
	q := h.DB.Order("created_at desc")
	if !user.IsAdmin {
		q = q.Where("platoon_id = ? OR platoon_id = ''", claims.PlatoonID)
	}
	q.Find(&recs)
	c.JSON(http.StatusOK, gin.H{"shavzakim": recs})
}

// GetRoster fetches one roster with its task instances and selections.
func (h *Handler) GetRoster(c *gin.Context) {
	var rec database.RosterRecord
	if err := h.DB.Preload("Instances").Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		respondError(c, http.StatusNotFound, "Roster not found", "", "not-found")
		return
	}
	if !auth.CanViewRoster(currentClaims(c), rec.PlatoonID, currentUser(c).IsAdmin) {
		respondError(c, http.StatusForbidden, "Not a member of this platoon", "", "forbidden")
		return
	}
	c.JSON(http.StatusOK, rec)
}

type generateRequest struct {
	Seed          *int64 `json:"seed"`
	EmergencyMode *bool  `json:"emergency_mode"`
}

// Generate runs the generator synchronously for a roster and returns the
// per-instance outcomes and warnings. Runs for the same roster are
// serialized; the run reads a model snapshot taken at start.
func (h *Handler) Generate(c *gin.Context) {
	var rec database.RosterRecord
	if err := h.DB.Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		respondError(c, http.StatusNotFound, "Roster not found", "", "not-found")
		return
	}
	if !auth.CanViewRoster(currentClaims(c), rec.PlatoonID, currentUser(c).IsAdmin) {
		respondError(c, http.StatusForbidden, "Not a member of this platoon", "", "forbidden")
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, err.Error(), "", "validation")
		return
	}

	roster := database.ToRoster(&rec)
	roster.Instances = nil
	if req.EmergencyMode != nil {
		roster.EmergencyMode = *req.EmergencyMode
	}

	templates, err := h.loadTemplates()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not load templates", err.Error(), "server")
		return
	}
	if len(templates) == 0 {
		respondError(c, http.StatusBadRequest, "No task templates configured", "", "validation")
		return
	}
	persons, platoons := h.loadPersonnel()

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	mu := h.rosterLock(roster.ID)
	mu.Lock()
	defer mu.Unlock()

	gen := scheduler.NewGenerator(roster, templates, persons, platoons, h.Learner.Snapshot(), rng)
	gen.Epsilon = h.Settings.Epsilon
	gen.TopK = h.Settings.TopK
	report := gen.Run(c.Request.Context())

	outcomeByID := make(map[string]models.Outcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		outcomeByID[o.TaskID] = o.Outcome
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("roster_id = ?", roster.ID).Delete(&database.InstanceRecord{}).Error; err != nil {
			return err
		}
		for _, inst := range roster.Instances {
			if err := tx.Create(database.FromInstance(roster.ID, inst, outcomeByID[inst.ID])).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not persist generation", "", "server")
		return
	}

	c.JSON(http.StatusOK, report)
}

// loadTemplates prefers the database catalog; with an empty table it falls
// back to the YAML catalog file when configured.
func (h *Handler) loadTemplates() ([]*models.TaskTemplate, error) {
	var recs []database.TemplateRecord
	if err := h.DB.Find(&recs).Error; err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		out := make([]*models.TaskTemplate, 0, len(recs))
		for i := range recs {
			out = append(out, database.ToTemplate(&recs[i]))
		}
		return out, nil
	}
	if h.Settings.TemplatesPath == "" {
		return nil, nil
	}
	return config.LoadTemplates(h.Settings.TemplatesPath)
}

// loadPersonnel reads the full person and platoon universe for a run.
func (h *Handler) loadPersonnel() (map[string]*models.Person, map[string]*models.Platoon) {
	var precs []database.PersonRecord
	h.DB.Preload("Unavailability").Find(&precs)
	persons := make(map[string]*models.Person, len(precs))
	for i := range precs {
		p := database.ToPerson(&precs[i])
		persons[p.ID] = p
	}

	var platRecs []database.PlatoonRecord
	h.DB.Find(&platRecs)
	platoons := make(map[string]*models.Platoon, len(platRecs))
	for _, r := range platRecs {
		platoons[r.ID] = &models.Platoon{ID: r.ID, Name: r.Name, IsSpecial: r.IsSpecial}
	}
	return persons, platoons
}
