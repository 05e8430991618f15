package main

import (
	"log/slog"

	"github.com/udisondev/skillcore/internal/data"
	"github.com/udisondev/skillcore/internal/db"
	"github.com/udisondev/skillcore/internal/game/skill"
)

// learnedSkills lists the skills e owns as store rows.
func learnedSkills(key string, e *skill.Entity, digest string) []db.LearnedSkill {
	own := e.Skills().OwnSkills()
	out := make([]db.LearnedSkill, 0, len(own))
	for _, s := range own {
		out = append(out, db.LearnedSkill{
			Entity:    key,
			SkillCode: s.CodeName(),
			Level:     s.Level(),
			Digest:    digest,
		})
	}
	return out
}

// restoreSkills registers or re-levels the skills of rows on e. Skills the
// catalog no longer has are skipped, levels are clamped to the new maximum.
func restoreSkills(cat *data.Catalog, e *skill.Entity, rows []db.LearnedSkill) {
	for _, row := range rows {
		tmpl, ok := cat.Skill(row.SkillCode)
		if !ok {
			slog.Warn("saved skill no longer in catalog", "entity", e.Name(), "skill", row.SkillCode)
			continue
		}
		if row.Digest != "" && row.Digest != cat.DigestHex() {
			slog.Debug("skill saved under another catalog",
				"entity", e.Name(),
				"skill", row.SkillCode,
				"digest", row.Digest)
		}

		if owned := e.Skills().Find(tmpl); owned != nil {
			owned.SetLevel(min(max(row.Level, 1), owned.MaxLevel()))
			continue
		}
		e.Skills().RegisterWithoutCost(tmpl, min(max(row.Level, 1), tmpl.MaxLevel()))
	}
}
