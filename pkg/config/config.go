// Package config resolves runtime settings from the environment and loads
// the task-template catalog from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// Settings are the engine and server knobs, all overridable via env.
type Settings struct {
	Port          string
	ModelPath     string
	TemplatesPath string
	MinRestHours  int
	Epsilon       float64
	TopK          int
}

// Load reads settings from the environment, applying defaults.
func Load() Settings {
	s := Settings{
		Port:          getenv("PORT", "8000"),
		ModelPath:     getenv("SHAVZAK_MODEL_PATH", "ml_model.json"),
		TemplatesPath: getenv("SHAVZAK_TEMPLATES_PATH", ""),
		MinRestHours:  getenvInt("SHAVZAK_MIN_REST", 8),
		Epsilon:       getenvFloat("SHAVZAK_EPSILON", 0.08),
		TopK:          getenvInt("SHAVZAK_TOP_K", 5),
	}
	return s
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// templateDoc is the YAML shape of one catalog entry.
type templateDoc struct {
	Name                    string `yaml:"name"`
	Archetype               string `yaml:"archetype"`
	LengthInHours           int    `yaml:"length_in_hours"`
	StartHour               *int   `yaml:"start_hour"`
	TimesPerDay             int    `yaml:"times_per_day"`
	Commanders              int    `yaml:"commanders"`
	Drivers                 int    `yaml:"drivers"`
	Soldiers                int    `yaml:"soldiers"`
	SamePlatoonRequired     bool   `yaml:"same_platoon_required"`
	RequiresSeniorCommander bool   `yaml:"requires_senior_commander"`
	RequiresSpecialPlatoon  bool   `yaml:"requires_special_platoon"`
	IsStandbyTask           bool   `yaml:"is_standby_task"`
	ReuseSoldiersForStandby bool   `yaml:"reuse_soldiers_for_standby"`
	IsBaseTask              bool   `yaml:"is_base_task"`
	RequiredCertification   string `yaml:"required_certification"`
}

type catalogDoc struct {
	Templates []templateDoc `yaml:"templates"`
}

// LoadTemplates parses a YAML task-template catalog.
func LoadTemplates(path string) ([]*models.TaskTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template catalog: %w", err)
	}
	return ParseTemplates(data)
}

// ParseTemplates decodes catalog bytes into task templates.
func ParseTemplates(data []byte) ([]*models.TaskTemplate, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	out := make([]*models.TaskTemplate, 0, len(doc.Templates))
	for i, t := range doc.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("template %d: name is required", i)
		}
		arch, err := models.ParseArchetype(t.Archetype)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", t.Name, err)
		}
		if t.LengthInHours <= 0 || t.LengthInHours > 24 {
			return nil, fmt.Errorf("template %q: length_in_hours out of range", t.Name)
		}
		start := -1
		if t.StartHour != nil {
			start = *t.StartHour
			if start < 0 || start > 23 {
				return nil, fmt.Errorf("template %q: start_hour out of range", t.Name)
			}
		}
		times := t.TimesPerDay
		if times <= 0 {
			times = 1
		}
		out = append(out, &models.TaskTemplate{
			ID:                      uuid.NewString(),
			Name:                    t.Name,
			Archetype:               arch,
			LengthInHours:           t.LengthInHours,
			StartHour:               start,
			TimesPerDay:             times,
			CommandersNeeded:        t.Commanders,
			DriversNeeded:           t.Drivers,
			SoldiersNeeded:          t.Soldiers,
			SamePlatoonRequired:     t.SamePlatoonRequired,
			RequiresSeniorCommander: t.RequiresSeniorCommander,
			RequiresSpecialPlatoon:  t.RequiresSpecialPlatoon,
			IsStandbyTask:           t.IsStandbyTask,
			ReuseSoldiersForStandby: t.ReuseSoldiersForStandby,
			IsBaseTask:              t.IsBaseTask,
			RequiredCertification:   t.RequiredCertification,
		})
	}
	return out, nil
}
