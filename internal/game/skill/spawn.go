package skill

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/udisondev/skillcore/internal/mathx"
	"github.com/udisondev/skillcore/internal/model"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/target"
	"github.com/udisondev/skillcore/internal/textreplace"
)

// Spawned is a world object created by a skill action and ticked by its
// spawner until Update reports it dead.
type Spawned interface {
	Position() model.Vec3
	// Update advances the object by dt seconds and reports whether it is
	// still alive.
	Update(dt float64) bool
}

// Spawner owns spawned objects.
type Spawner interface {
	Spawn(obj Spawned)
}

// Projectile flies straight from its origin and applies its skill to the
// first living entity other than its owner it overlaps.
type Projectile struct {
	owner  *Entity
	skill  *Skill
	pos    model.Vec3
	dir    model.Vec3
	speed  float64
	radius float64

	maxDistance float64
	traveled    float64
	hit         *Entity
}

// NewProjectile creates a projectile carrying a clone of s.
func NewProjectile(s *Skill, origin, dir model.Vec3, speed, radius, maxDistance float64) *Projectile {
	if dir.IsZero() {
		dir = model.Forward
	}
	return &Projectile{
		owner:       s.Owner(),
		skill:       s.Clone(),
		pos:         origin,
		dir:         dir.Normalized(),
		speed:       speed,
		radius:      radius,
		maxDistance: maxDistance,
	}
}

func (p *Projectile) Position() model.Vec3 { return p.pos }
func (p *Projectile) Forward() model.Vec3  { return p.dir }

// Hit returns the entity the projectile hit, or nil.
func (p *Projectile) Hit() *Entity { return p.hit }

func (p *Projectile) Update(dt float64) bool {
	step := p.dir.Scale(p.speed * dt)
	p.pos = p.pos.Add(step)
	p.traveled += step.Magnitude()

	if physics := p.owner.Physics(); physics != nil {
		for _, t := range physics.Overlap(p.pos, p.radius) {
			e, ok := t.(*Entity)
			if !ok || e == p.owner || e.IsDead() {
				continue
			}
			p.hit = e
			e.Skills().ApplySkill(p.skill)
			return false
		}
	}
	return p.maxDistance <= 0 || p.traveled < p.maxDistance
}

// SkillObject is a persistent area that searches for targets around itself
// and applies its skill to them on a cycle.
type SkillObject struct {
	owner    *Entity
	skill    *Skill
	searcher *target.Searcher
	pos      model.Vec3

	duration    float64
	applyCount  int
	applyCycle  float64
	destroyTime float64

	currentDuration   float64
	currentApplyCycle float64
	currentApplyCount int
}

// SkillObjectOptions configures a SkillObject.
type SkillObjectOptions struct {
	Duration   float64
	ApplyCount int
	// DelayFirstApply waits one cycle before the first apply.
	DelayFirstApply bool
	// DelayDestroy keeps the object one cycle past its duration.
	DelayDestroy bool
}

// NewSkillObject creates an object at pos carrying a clone of s and of
// searcher. Unless DelayFirstApply is set it applies once immediately.
func NewSkillObject(s *Skill, searcher *target.Searcher, pos model.Vec3, opts SkillObjectOptions) *SkillObject {
	o := &SkillObject{
		owner:      s.Owner(),
		skill:      s.Clone(),
		searcher:   searcher.Clone(),
		pos:        pos,
		duration:   opts.Duration,
		applyCount: opts.ApplyCount,
	}
	o.applyCycle = skillObjectApplyCycle(opts.Duration, opts.ApplyCount, opts.DelayFirstApply)
	o.destroyTime = o.duration
	if opts.DelayDestroy {
		o.destroyTime += o.applyCycle
	}
	if !opts.DelayFirstApply {
		o.apply()
	}
	return o
}

func skillObjectApplyCycle(duration float64, applyCount int, delayFirst bool) float64 {
	switch {
	case applyCount <= 1:
		return 0
	case delayFirst:
		return duration / float64(applyCount)
	default:
		return duration / float64(applyCount-1)
	}
}

func (o *SkillObject) Position() model.Vec3 { return o.pos }
func (o *SkillObject) Forward() model.Vec3  { return model.Forward }

func (o *SkillObject) ApplyCycle() float64        { return o.applyCycle }
func (o *SkillObject) CurrentApplyCount() int     { return o.currentApplyCount }
func (o *SkillObject) Searcher() *target.Searcher { return o.searcher }

func (o *SkillObject) isApplicable() bool {
	return (o.applyCount == 0 || o.currentApplyCount < o.applyCount) &&
		o.currentApplyCycle >= o.applyCycle
}

func (o *SkillObject) Update(dt float64) bool {
	o.currentDuration += dt
	o.currentApplyCycle += dt
	if o.isApplicable() {
		o.apply()
	}
	return o.currentDuration < o.destroyTime
}

func (o *SkillObject) apply() {
	o.searcher.SelectImmediate(o.owner, o, o.pos)
	result := o.searcher.SearchTargets(o.owner, o)
	for _, t := range result.Entities() {
		if e, ok := t.(*Entity); ok {
			e.Skills().ApplySkill(o.skill)
		}
	}
	o.currentApplyCount++
	o.currentApplyCycle = mathx.Mod(o.currentApplyCycle, o.applyCycle)
}

// SpawnProjectileAction launches a projectile along the owner's facing.
type SpawnProjectileAction struct {
	BaseAction
	speed       float64
	radius      float64
	maxDistance float64
	offset      float64
}

// NewSpawnProjectileAction creates a SpawnProjectileAction.
// Params: "speed" (default 10), "radius" (default 0.5), "max_distance"
// (default 30, 0 is unlimited), "offset" (spawn distance ahead of the owner,
// default 1).
func NewSpawnProjectileAction(p params.Params) (Action, error) {
	a := &SpawnProjectileAction{
		speed:       p.Float("speed", 10),
		radius:      p.Float("radius", 0.5),
		maxDistance: p.Float("max_distance", 30),
		offset:      p.Float("offset", 1),
	}
	if a.speed <= 0 {
		return nil, fmt.Errorf("spawn projectile: speed must be positive, got %v", a.speed)
	}
	return a, nil
}

func (a *SpawnProjectileAction) Apply(s *Skill) {
	owner := s.Owner()
	spawner := owner.Spawner()
	if spawner == nil {
		slog.Debug("no spawner for projectile", "skill", s.CodeName())
		return
	}
	origin := owner.Position().Add(owner.Forward().Scale(a.offset))
	spawner.Spawn(NewProjectile(s, origin, owner.Forward(), a.speed, a.radius, a.maxDistance))
}

func (a *SpawnProjectileAction) Keywords() map[string]string {
	return map[string]string{"speed": textreplace.Number(a.speed)}
}

func (a *SpawnProjectileAction) Clone() Action {
	cp := *a
	return &cp
}

// SpawnSkillObjectAction places a SkillObject at every searched position.
type SpawnSkillObjectAction struct {
	BaseAction
	searcher *target.Searcher
	opts     SkillObjectOptions
}

// NewSpawnSkillObjectAction creates a SpawnSkillObjectAction.
// Params: "duration", "apply_count", "delay_first_apply", "delay_destroy",
// "selection" (default SelectSelf), "search" (default SearchArea), and the
// nested "selection.*" and "search.*" params of the object's searcher.
func NewSpawnSkillObjectAction(p params.Params) (Action, error) {
	selection, err := target.CreateSelection(p.String("selection", "SelectSelf"), p.Sub("selection."))
	if err != nil {
		return nil, fmt.Errorf("spawn skill object: %w", err)
	}
	search, err := target.CreateSearch(p.String("search", "SearchArea"), p.Sub("search."))
	if err != nil {
		return nil, fmt.Errorf("spawn skill object: %w", err)
	}
	return &SpawnSkillObjectAction{
		searcher: target.NewSearcher(selection, search),
		opts: SkillObjectOptions{
			Duration:        p.Float("duration", 0),
			ApplyCount:      p.Int("apply_count", 1),
			DelayFirstApply: p.Bool("delay_first_apply", false),
			DelayDestroy:    p.Bool("delay_destroy", false),
		},
	}, nil
}

func (a *SpawnSkillObjectAction) Apply(s *Skill) {
	spawner := s.Owner().Spawner()
	if spawner == nil {
		slog.Debug("no spawner for skill object", "skill", s.CodeName())
		return
	}
	for _, pos := range s.TargetPositions() {
		spawner.Spawn(NewSkillObject(s, a.searcher, pos, a.opts))
	}
}

func (a *SpawnSkillObjectAction) Keywords() map[string]string {
	cycle := skillObjectApplyCycle(a.opts.Duration, a.opts.ApplyCount, a.opts.DelayFirstApply)
	perSec := 0.0
	if a.opts.Duration > 0 {
		perSec = float64(a.opts.ApplyCount) / a.opts.Duration
	}
	return map[string]string{
		"duration":         textreplace.Number(a.opts.Duration),
		"applyCount":       strconv.Itoa(a.opts.ApplyCount),
		"applyCountPerSec": textreplace.Number(perSec),
		"applyCycle":       textreplace.Number(cycle),
	}
}

func (a *SpawnSkillObjectAction) Clone() Action {
	return &SpawnSkillObjectAction{searcher: a.searcher.Clone(), opts: a.opts}
}

func (a *SpawnSkillObjectAction) buildDescription(description string) string {
	description = buildActionDescription(description, a)
	return a.searcher.BuildDescription(description, "skillAction")
}
