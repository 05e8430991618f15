package data

import (
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/stat"
)

// fileDef is the top level of one catalog file. Every section is optional;
// sections of all files are merged.
type fileDef struct {
	HPStat        string            `yaml:"hp_stat"`
	SkillCostStat string            `yaml:"skill_cost_stat"`
	Stats         []stat.Definition `yaml:"stats"`
	Categories    []CategoryDef     `yaml:"categories"`
	Effects       []EffectDef       `yaml:"effects"`
	Skills        []SkillDef        `yaml:"skills"`
	Trees         []TreeDef         `yaml:"trees"`
	Archetypes    []ArchetypeDef    `yaml:"archetypes"`
}

// CategoryDef declares a category code shared by entities, effects and
// skills.
type CategoryDef struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// TypeDef names a registered factory and its params.
type TypeDef struct {
	Type   string        `yaml:"type"`
	Params params.Params `yaml:"params"`
}

// EffectDef describes an effect template.
type EffectDef struct {
	ID                    int             `yaml:"id"`
	Code                  string          `yaml:"code"`
	Name                  string          `yaml:"name"`
	Description           string          `yaml:"description"`
	Categories            []string        `yaml:"categories"`
	Type                  string          `yaml:"type"`
	AllowDuplicate        bool            `yaml:"allow_duplicate"`
	RemoveDuplicate       string          `yaml:"remove_duplicate"`
	AllowLevelExceedDatas bool            `yaml:"allow_level_exceed_datas"`
	MaxLevel              int             `yaml:"max_level"`
	Datas                 []EffectDataDef `yaml:"datas"`
}

// EffectDataDef is one level record of an effect.
type EffectDataDef struct {
	Level                       int              `yaml:"level"`
	MaxStack                    int              `yaml:"max_stack"`
	Action                      *TypeDef         `yaml:"action"`
	StackActions                []StackActionDef `yaml:"stack_actions"`
	Finish                      string           `yaml:"finish"`
	ApplyAllWhenDurationExpires bool             `yaml:"apply_all_when_duration_expires"`
	Duration                    stat.ScaleFloat  `yaml:"duration"`
	ApplyCount                  *int             `yaml:"apply_count"`
	ApplyCycle                  float64          `yaml:"apply_cycle"`
	CustomActions               []TypeDef        `yaml:"custom_actions"`
}

// StackActionDef is an action run while an effect holds a stack count.
type StackActionDef struct {
	Stack              int     `yaml:"stack"`
	ReleaseOnNextApply bool    `yaml:"release_on_next_apply"`
	ApplyOnceInLife    bool    `yaml:"apply_once_in_life"`
	Action             TypeDef `yaml:"action"`
}

// SkillDef describes a skill template.
type SkillDef struct {
	ID              int      `yaml:"id"`
	Code            string   `yaml:"code"`
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Categories      []string `yaml:"categories"`
	Type            string   `yaml:"type"`
	UseType         string   `yaml:"use_type"`
	ExecutionType   string   `yaml:"execution_type"`
	ApplyType       string   `yaml:"apply_type"`
	NeedSelection   string   `yaml:"need_selection"`
	SelectionTiming string   `yaml:"selection_timing"`
	SearchTiming    string   `yaml:"search_timing"`

	AcquisitionConditions []TypeDef `yaml:"acquisition_conditions"`
	AcquisitionCosts      []TypeDef `yaml:"acquisition_costs"`
	UseConditions         []TypeDef `yaml:"use_conditions"`

	AllowLevelExceedDatas bool           `yaml:"allow_level_exceed_datas"`
	MaxLevel              int            `yaml:"max_level"`
	DefaultLevel          int            `yaml:"default_level"`
	Datas                 []SkillDataDef `yaml:"datas"`
}

// SkillDataDef is one level record of a skill.
type SkillDataDef struct {
	Level int `yaml:"level"`

	LevelUpConditions []TypeDef `yaml:"level_up_conditions"`
	LevelUpCosts      []TypeDef `yaml:"level_up_costs"`

	PrecedingAction *TypeDef `yaml:"preceding_action"`
	Action          TypeDef  `yaml:"action"`

	RunningFinish string          `yaml:"running_finish"`
	Duration      float64         `yaml:"duration"`
	ApplyCount    *int            `yaml:"apply_count"`
	ApplyCycle    float64         `yaml:"apply_cycle"`
	Cooldown      stat.ScaleFloat `yaml:"cooldown"`

	Searcher SearcherDef `yaml:"searcher"`
	Costs    []TypeDef   `yaml:"costs"`

	Cast   *CastDef   `yaml:"cast"`
	Charge *ChargeDef `yaml:"charge"`

	Effects []EffectRefDef `yaml:"effects"`

	InActionFinish string               `yaml:"in_action_finish"`
	Params         AnimatorParamsDef    `yaml:"animator"`
	CustomActions  map[string][]TypeDef `yaml:"custom_actions"`
	ApplyDatas     []ApplyDataDef       `yaml:"apply_datas"`
}

// SearcherDef pairs a selection action with a search action.
type SearcherDef struct {
	Selection TypeDef `yaml:"selection"`
	Search    TypeDef `yaml:"search"`
}

// CastDef enables the cast phase.
type CastDef struct {
	Time stat.ScaleFloat `yaml:"time"`
}

// ChargeDef enables the charge phase.
type ChargeDef struct {
	FinishAction  string  `yaml:"finish_action"`
	Duration      float64 `yaml:"duration"`
	Time          float64 `yaml:"time"`
	NeedTimeToUse float64 `yaml:"need_time_to_use"`
	StartPower    float64 `yaml:"start_power"`
}

// EffectRefDef references an effect template by code. The effect is
// applied while the skill level is at least Level.
type EffectRefDef struct {
	Effect string `yaml:"effect"`
	Level  int    `yaml:"level"`
}

// AnimatorParamDef names an animator parameter.
type AnimatorParamDef struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// AnimatorParamsDef holds the parameters driven by each skill phase.
type AnimatorParamsDef struct {
	Cast      *AnimatorParamDef `yaml:"cast"`
	Charge    *AnimatorParamDef `yaml:"charge"`
	Preceding *AnimatorParamDef `yaml:"preceding"`
	Action    *AnimatorParamDef `yaml:"action"`
}

// ApplyDataDef overrides one apply of a multi-apply skill.
type ApplyDataDef struct {
	ApplyIndex    int               `yaml:"apply_index"`
	Effects       []EffectRefDef    `yaml:"effects"`
	ActionParam   *AnimatorParamDef `yaml:"action_param"`
	CustomActions []TypeDef         `yaml:"custom_actions"`
}

// TreeDef describes a skill tree.
type TreeDef struct {
	ID    int       `yaml:"id"`
	Code  string    `yaml:"code"`
	Name  string    `yaml:"name"`
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef is a slot of a skill tree.
type NodeDef struct {
	Tier        int            `yaml:"tier"`
	Index       int            `yaml:"index"`
	Skill       string         `yaml:"skill"`
	AutoAcquire bool           `yaml:"auto_acquire"`
	Preceding   []PrecedingDef `yaml:"preceding"`
}

// PrecedingDef requires the node at Tier/Index to be acquired at Level.
type PrecedingDef struct {
	Tier  int `yaml:"tier"`
	Index int `yaml:"index"`
	Level int `yaml:"level"`
}

// ArchetypeDef is a template for seeding arena entities.
type ArchetypeDef struct {
	Name       string             `yaml:"name"`
	Control    string             `yaml:"control"`
	Categories []string           `yaml:"categories"`
	Stats      map[string]float64 `yaml:"stats"`
	Skills     []string           `yaml:"skills"`
	Tree       string             `yaml:"tree"`
}
