// Package achievement decides which catalog entries a progress document has
// earned.
package achievement

import "github.com/vytor/codetrail/internal/models"

type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Evaluate returns, in catalog order, the definitions p satisfies but has not
// unlocked yet. Every requirement must hold; counters missing from p count as 0.
func (e *Engine) Evaluate(p *models.UserProgress) []models.AchievementDefinition {
	var unlocked []models.AchievementDefinition
	for _, d := range e.catalog.defs {
		if p.Achievements.Has(d.ID) {
			continue
		}
		if satisfies(p.AchievementProgress, d.Requirement) {
			unlocked = append(unlocked, copyDefinition(d))
		}
	}
	return unlocked
}

// Overview splits the catalog into unlocked and locked entries for p.
func (e *Engine) Overview(p *models.UserProgress) models.AchievementOverview {
	o := models.AchievementOverview{
		Unlocked:            []models.AchievementStatus{},
		Locked:              []models.AchievementStatus{},
		AchievementProgress: p.AchievementProgress,
		TotalAchievements:   e.catalog.Len(),
	}
	for _, d := range e.catalog.defs {
		st := models.AchievementStatus{AchievementDefinition: copyDefinition(d)}
		if p.Achievements.Has(d.ID) {
			st.Unlocked = true
			o.Unlocked = append(o.Unlocked, st)
			continue
		}
		o.Locked = append(o.Locked, st)
	}
	o.UnlockedCount = len(o.Unlocked)
	return o
}

func satisfies(ap models.AchievementProgress, req map[string]int) bool {
	for counter, threshold := range req {
		if ap.Value(counter) < threshold {
			return false
		}
	}
	return true
}
