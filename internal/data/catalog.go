// Package data loads the YAML catalog of stats, categories, effects,
// skills, skill trees and entity archetypes.
package data

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/stat"
)

var (
	// ErrUnknownType is returned for unregistered factory names, unknown enum
	// values and references to undeclared codes.
	ErrUnknownType = errors.New("unknown type")
	// ErrDuplicateID is returned when two records share an ID or code.
	ErrDuplicateID = errors.New("duplicate id")
)

// Catalog is an immutable set of templates. Skill and effect templates are
// shared; entities get clones through System registration.
type Catalog struct {
	digest [blake2b.Size256]byte

	hpStat        string
	skillCostStat string

	stats      map[string]*stat.Stat
	statOrder  []string
	categories map[string]CategoryDef
	effects    map[string]*effect.Effect
	skills     map[string]*skill.Skill
	skillByID  map[int]*skill.Skill
	skillOrder []string
	trees      map[string]*skill.Tree
	archetypes map[string]ArchetypeDef
	archOrder  []string
}

// IsCatalogFile reports whether name is read by Load.
func IsCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads every YAML file of dir.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir: %w", err)
	}

	files := make(map[string][]byte)
	for _, entry := range entries {
		if entry.IsDir() || !IsCatalogFile(entry.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		files[entry.Name()] = raw
	}

	c, err := Parse(files)
	if err != nil {
		return nil, err
	}
	slog.Info("catalog loaded",
		"dir", dir,
		"files", len(files),
		"skills", len(c.skills),
		"effects", len(c.effects),
		"digest", c.DigestHex())
	return c, nil
}

// Parse builds a catalog from named YAML documents. Files are processed in
// name order, so the digest and any error do not depend on map order.
func Parse(files map[string][]byte) (*Catalog, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	h, _ := blake2b.New256(nil)
	var merged fileDef
	for _, name := range names {
		raw := files[name]
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(raw)

		var fs fileDef
		if err := yaml.Unmarshal(raw, &fs); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if err := merge(&merged, fs); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	c := &Catalog{
		hpStat:        merged.HPStat,
		skillCostStat: merged.SkillCostStat,
		stats:         make(map[string]*stat.Stat),
		categories:    make(map[string]CategoryDef),
		effects:       make(map[string]*effect.Effect),
		skills:        make(map[string]*skill.Skill),
		skillByID:     make(map[int]*skill.Skill),
		trees:         make(map[string]*skill.Tree),
		archetypes:    make(map[string]ArchetypeDef),
	}
	copy(c.digest[:], h.Sum(nil))

	if err := c.build(merged); err != nil {
		return nil, err
	}
	return c, nil
}

func merge(dst *fileDef, src fileDef) error {
	for _, v := range []struct {
		name     string
		dst, src *string
	}{
		{"hp_stat", &dst.HPStat, &src.HPStat},
		{"skill_cost_stat", &dst.SkillCostStat, &src.SkillCostStat},
	} {
		if *v.src == "" {
			continue
		}
		if *v.dst != "" && *v.dst != *v.src {
			return fmt.Errorf("%s set twice: %s and %s", v.name, *v.dst, *v.src)
		}
		*v.dst = *v.src
	}
	dst.Stats = append(dst.Stats, src.Stats...)
	dst.Categories = append(dst.Categories, src.Categories...)
	dst.Effects = append(dst.Effects, src.Effects...)
	dst.Skills = append(dst.Skills, src.Skills...)
	dst.Trees = append(dst.Trees, src.Trees...)
	dst.Archetypes = append(dst.Archetypes, src.Archetypes...)
	return nil
}

// build converts items in dependency order: stats and categories, effects,
// skills, trees, then archetypes.
func (c *Catalog) build(fs fileDef) error {
	statIDs := make(map[int]bool)
	for _, def := range fs.Stats {
		if def.CodeName == "" {
			return fmt.Errorf("stat %d: missing code", def.ID)
		}
		if _, dup := c.stats[def.CodeName]; dup || statIDs[def.ID] {
			return fmt.Errorf("stat %s: %w", def.CodeName, ErrDuplicateID)
		}
		statIDs[def.ID] = true
		c.stats[def.CodeName] = stat.New(def)
		c.statOrder = append(c.statOrder, def.CodeName)
	}
	for _, code := range []string{c.hpStat, c.skillCostStat} {
		if code == "" {
			continue
		}
		if _, ok := c.stats[code]; !ok {
			return fmt.Errorf("%w: stat %s", ErrUnknownType, code)
		}
	}

	for _, cat := range fs.Categories {
		if _, dup := c.categories[cat.Code]; dup {
			return fmt.Errorf("category %s: %w", cat.Code, ErrDuplicateID)
		}
		c.categories[cat.Code] = cat
	}

	effectIDs := make(map[int]bool)
	for _, item := range fs.Effects {
		if _, dup := c.effects[item.Code]; dup || effectIDs[item.ID] {
			return fmt.Errorf("effect %s: %w", item.Code, ErrDuplicateID)
		}
		e, err := c.buildEffect(item)
		if err != nil {
			return fmt.Errorf("effect %s: %w", item.Code, err)
		}
		effectIDs[item.ID] = true
		c.effects[item.Code] = e
	}

	for _, item := range fs.Skills {
		if _, dup := c.skills[item.Code]; dup {
			return fmt.Errorf("skill %s: %w", item.Code, ErrDuplicateID)
		}
		if _, dup := c.skillByID[item.ID]; dup {
			return fmt.Errorf("skill %s: id %d: %w", item.Code, item.ID, ErrDuplicateID)
		}
		s, err := c.buildSkill(item)
		if err != nil {
			return fmt.Errorf("skill %s: %w", item.Code, err)
		}
		c.skills[item.Code] = s
		c.skillByID[item.ID] = s
		c.skillOrder = append(c.skillOrder, item.Code)
	}

	for _, item := range fs.Trees {
		if _, dup := c.trees[item.Code]; dup {
			return fmt.Errorf("tree %s: %w", item.Code, ErrDuplicateID)
		}
		t, err := c.buildTree(item)
		if err != nil {
			return fmt.Errorf("tree %s: %w", item.Code, err)
		}
		c.trees[item.Code] = t
	}

	for _, item := range fs.Archetypes {
		if _, dup := c.archetypes[item.Name]; dup {
			return fmt.Errorf("archetype %s: %w", item.Name, ErrDuplicateID)
		}
		if err := c.checkArchetype(item); err != nil {
			return fmt.Errorf("archetype %s: %w", item.Name, err)
		}
		c.archetypes[item.Name] = item
		c.archOrder = append(c.archOrder, item.Name)
	}
	return nil
}

// checkCategories rejects undeclared category codes. A catalog that declares
// no categories accepts any code.
func (c *Catalog) checkCategories(codes []string) error {
	if len(c.categories) == 0 {
		return nil
	}
	for _, code := range codes {
		if _, ok := c.categories[code]; !ok {
			return fmt.Errorf("%w: category %s", ErrUnknownType, code)
		}
	}
	return nil
}

func (c *Catalog) checkArchetype(item ArchetypeDef) error {
	if _, err := skill.ParseControlType(cmpOr(item.Control, "ai")); err != nil {
		return unknown(err)
	}
	if err := c.checkCategories(item.Categories); err != nil {
		return err
	}
	for code := range item.Stats {
		if _, ok := c.stats[code]; !ok {
			return fmt.Errorf("%w: stat %s", ErrUnknownType, code)
		}
	}
	for _, code := range item.Skills {
		if _, ok := c.skills[code]; !ok {
			return fmt.Errorf("%w: skill %s", ErrUnknownType, code)
		}
	}
	if item.Tree != "" {
		if _, ok := c.trees[item.Tree]; !ok {
			return fmt.Errorf("%w: tree %s", ErrUnknownType, item.Tree)
		}
	}
	return nil
}

// Digest returns the BLAKE2b-256 digest of the catalog files.
func (c *Catalog) Digest() [blake2b.Size256]byte { return c.digest }

// DigestHex returns Digest hex-encoded.
func (c *Catalog) DigestHex() string { return hex.EncodeToString(c.digest[:]) }

func (c *Catalog) HPStat() string        { return c.hpStat }
func (c *Catalog) SkillCostStat() string { return c.skillCostStat }

// Stat returns the stat template with code.
func (c *Catalog) Stat(code string) (*stat.Stat, bool) {
	s, ok := c.stats[code]
	return s, ok
}

// NewStats builds a stat set holding every catalog stat. values override
// the template defaults by code.
func (c *Catalog) NewStats(values map[string]float64) *stat.Stats {
	overrides := make([]stat.Override, 0, len(c.statOrder))
	for _, code := range c.statOrder {
		v, ok := values[code]
		overrides = append(overrides, stat.Override{Stat: c.stats[code], UseOverride: ok, Default: v})
	}
	return stat.NewStats(overrides, c.hpStat, c.skillCostStat)
}

// Effect returns the effect template with code.
func (c *Catalog) Effect(code string) (*effect.Effect, bool) {
	e, ok := c.effects[code]
	return e, ok
}

// Skill returns the skill template with code.
func (c *Catalog) Skill(code string) (*skill.Skill, bool) {
	s, ok := c.skills[code]
	return s, ok
}

// SkillByID returns the skill template with id.
func (c *Catalog) SkillByID(id int) (*skill.Skill, bool) {
	s, ok := c.skillByID[id]
	return s, ok
}

// Skills returns the skill templates in declaration order.
func (c *Catalog) Skills() []*skill.Skill {
	out := make([]*skill.Skill, 0, len(c.skillOrder))
	for _, code := range c.skillOrder {
		out = append(out, c.skills[code])
	}
	return out
}

// Tree returns the skill tree with code.
func (c *Catalog) Tree(code string) (*skill.Tree, bool) {
	t, ok := c.trees[code]
	return t, ok
}

// Archetype returns the archetype named name.
func (c *Catalog) Archetype(name string) (ArchetypeDef, bool) {
	a, ok := c.archetypes[name]
	return a, ok
}

// Archetypes returns archetype names in declaration order.
func (c *Catalog) Archetypes() []string { return slices.Clone(c.archOrder) }

// EntityConfig builds the config of a new entity of archetype name at pos.
func (c *Catalog) EntityConfig(name string, pos model.Vec3) (skill.EntityConfig, error) {
	a, ok := c.archetypes[name]
	if !ok {
		return skill.EntityConfig{}, fmt.Errorf("%w: archetype %s", ErrUnknownType, name)
	}
	control, err := skill.ParseControlType(cmpOr(a.Control, "ai"))
	if err != nil {
		return skill.EntityConfig{}, err
	}
	return skill.EntityConfig{
		Name:        a.Name,
		Categories:  slices.Clone(a.Categories),
		ControlType: control,
		Stats:       c.NewStats(a.Stats),
		Position:    pos,
	}, nil
}

// SetupSkills registers the archetype's default skills and tree on e.
func (c *Catalog) SetupSkills(e *skill.Entity, name string) error {
	a, ok := c.archetypes[name]
	if !ok {
		return fmt.Errorf("%w: archetype %s", ErrUnknownType, name)
	}
	defaults := make([]*skill.Skill, 0, len(a.Skills))
	for _, code := range a.Skills {
		defaults = append(defaults, c.skills[code])
	}
	e.Skills().Setup(defaults, c.trees[a.Tree])
	return nil
}
