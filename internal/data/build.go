package data

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/skillcore/internal/custom"
	"github.com/udisondev/skillcore/internal/effect"
	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/params"
	"github.com/udisondev/skillcore/internal/target"
)

// typed wraps a factory error, tagging unregistered names with
// ErrUnknownType.
func typed(kind string, item TypeDef, err error) error {
	if errors.Is(err, params.ErrNotRegistered) {
		return fmt.Errorf("%s: %w: %w", kind, ErrUnknownType, err)
	}
	return fmt.Errorf("%s %s: %w", kind, item.Type, err)
}

// unknown tags an enum parse error with ErrUnknownType.
func unknown(err error) error {
	return fmt.Errorf("%w: %w", ErrUnknownType, err)
}

func parseEffectType(s string) (effect.Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return effect.TypeNone, nil
	case "buff":
		return effect.TypeBuff, nil
	case "debuff":
		return effect.TypeDebuff, nil
	default:
		return 0, fmt.Errorf("%w: effect type %s", ErrUnknownType, s)
	}
}

func parseRemoveDuplicate(s string) (effect.RemoveDuplicateTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "old":
		return effect.RemoveOld, nil
	case "new":
		return effect.RemoveNew, nil
	default:
		return 0, fmt.Errorf("%w: remove duplicate target %s", ErrUnknownType, s)
	}
}

func parseFinishOption(s string) (effect.FinishOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "apply_completed":
		return effect.FinishWhenApplyCompleted, nil
	case "duration_ended":
		return effect.FinishWhenDurationEnded, nil
	default:
		return 0, fmt.Errorf("%w: effect finish option %s", ErrUnknownType, s)
	}
}

func buildCustomActions(items []TypeDef) ([]custom.Action, error) {
	var out []custom.Action
	for _, item := range items {
		a, err := custom.Create(item.Type, item.Params)
		if err != nil {
			return nil, typed("custom action", item, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *Catalog) buildEffect(item EffectDef) (*effect.Effect, error) {
	if len(item.Datas) == 0 {
		return nil, errors.New("no datas")
	}
	typ, err := parseEffectType(item.Type)
	if err != nil {
		return nil, err
	}
	removeDuplicate, err := parseRemoveDuplicate(item.RemoveDuplicate)
	if err != nil {
		return nil, err
	}
	if err := c.checkCategories(item.Categories); err != nil {
		return nil, err
	}

	datas := make([]effect.Data, 0, len(item.Datas))
	for _, ds := range item.Datas {
		d, err := buildEffectData(ds)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", ds.Level, err)
		}
		datas = append(datas, d)
	}

	return effect.New(effect.Definition{
		ID:                    item.ID,
		CodeName:              item.Code,
		DisplayName:           item.Name,
		Description:           item.Description,
		Categories:            item.Categories,
		Type:                  typ,
		AllowDuplicate:        item.AllowDuplicate,
		RemoveDuplicateTarget: removeDuplicate,
		AllowLevelExceedDatas: item.AllowLevelExceedDatas,
		MaxLevel:              item.MaxLevel,
		Datas:                 datas,
	}), nil
}

func buildEffectData(ds EffectDataDef) (effect.Data, error) {
	finish, err := parseFinishOption(ds.Finish)
	if err != nil {
		return effect.Data{}, err
	}
	d := effect.Data{
		Level:                       max(ds.Level, 1),
		MaxStack:                    ds.MaxStack,
		FinishOption:                finish,
		ApplyAllWhenDurationExpires: ds.ApplyAllWhenDurationExpires,
		Duration:                    ds.Duration,
		ApplyCount:                  applyCount(ds.ApplyCount),
		ApplyCycle:                  ds.ApplyCycle,
	}
	if ds.Action != nil {
		if d.Action, err = effect.CreateAction(ds.Action.Type, ds.Action.Params); err != nil {
			return effect.Data{}, typed("action", *ds.Action, err)
		}
	}
	for _, sa := range ds.StackActions {
		a, err := effect.CreateAction(sa.Action.Type, sa.Action.Params)
		if err != nil {
			return effect.Data{}, typed("stack action", sa.Action, err)
		}
		d.StackActions = append(d.StackActions, effect.NewStackAction(sa.Stack, sa.ReleaseOnNextApply, sa.ApplyOnceInLife, a))
	}
	if d.CustomActions, err = buildCustomActions(ds.CustomActions); err != nil {
		return effect.Data{}, err
	}
	return d, nil
}

func (c *Catalog) buildSkill(item SkillDef) (*skill.Skill, error) {
	if len(item.Datas) == 0 {
		return nil, errors.New("no datas")
	}
	if err := c.checkCategories(item.Categories); err != nil {
		return nil, err
	}
	def := skill.Definition{
		ID:                    item.ID,
		CodeName:              item.Code,
		DisplayName:           item.Name,
		Description:           item.Description,
		Categories:            item.Categories,
		AllowLevelExceedDatas: item.AllowLevelExceedDatas,
		MaxLevel:              item.MaxLevel,
		DefaultLevel:          item.DefaultLevel,
	}

	var err error
	if def.Type, err = skill.ParseType(item.Type); err != nil {
		return nil, unknown(err)
	}
	if def.UseType, err = skill.ParseUseType(item.UseType); err != nil {
		return nil, unknown(err)
	}
	if def.ExecutionType, err = skill.ParseExecutionType(item.ExecutionType); err != nil {
		return nil, unknown(err)
	}
	if def.ApplyType, err = skill.ParseApplyType(item.ApplyType); err != nil {
		return nil, unknown(err)
	}
	if def.NeedSelectionResult, err = skill.ParseNeedSelectionResult(item.NeedSelection); err != nil {
		return nil, unknown(err)
	}
	if def.SelectionTiming, err = skill.ParseSelectionTiming(item.SelectionTiming); err != nil {
		return nil, unknown(err)
	}
	if def.SearchTiming, err = skill.ParseSearchTiming(item.SearchTiming); err != nil {
		return nil, unknown(err)
	}

	if def.AcquisitionConditions, err = buildEntityConditions(item.AcquisitionConditions); err != nil {
		return nil, fmt.Errorf("acquisition: %w", err)
	}
	if def.AcquisitionCosts, err = buildCosts(item.AcquisitionCosts); err != nil {
		return nil, fmt.Errorf("acquisition: %w", err)
	}
	for _, cs := range item.UseConditions {
		cond, err := skill.CreateCondition(cs.Type, cs.Params)
		if err != nil {
			return nil, typed("use condition", cs, err)
		}
		def.UseConditions = append(def.UseConditions, cond)
	}

	for _, ds := range item.Datas {
		d, err := c.buildSkillData(ds)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", ds.Level, err)
		}
		def.Datas = append(def.Datas, d)
	}
	return skill.New(def), nil
}

func (c *Catalog) buildSkillData(ds SkillDataDef) (skill.Data, error) {
	d := skill.Data{
		Level:      max(ds.Level, 1),
		Duration:   ds.Duration,
		ApplyCount: applyCount(ds.ApplyCount),
		ApplyCycle: ds.ApplyCycle,
		Cooldown:   ds.Cooldown,
	}

	var err error
	if d.LevelUpConditions, err = buildEntityConditions(ds.LevelUpConditions); err != nil {
		return d, fmt.Errorf("level up: %w", err)
	}
	if d.LevelUpCosts, err = buildCosts(ds.LevelUpCosts); err != nil {
		return d, fmt.Errorf("level up: %w", err)
	}
	if ds.PrecedingAction != nil {
		if d.PrecedingAction, err = skill.CreatePrecedingAction(ds.PrecedingAction.Type, ds.PrecedingAction.Params); err != nil {
			return d, typed("preceding action", *ds.PrecedingAction, err)
		}
	}
	if ds.Action.Type == "" {
		return d, errors.New("missing action")
	}
	if d.Action, err = skill.CreateAction(ds.Action.Type, ds.Action.Params); err != nil {
		return d, typed("action", ds.Action, err)
	}
	if d.RunningFinishOption, err = skill.ParseRunningFinishOption(ds.RunningFinish); err != nil {
		return d, unknown(err)
	}
	if d.Searcher, err = buildSearcher(ds.Searcher); err != nil {
		return d, err
	}
	if d.Costs, err = buildCosts(ds.Costs); err != nil {
		return d, err
	}

	if ds.Cast != nil {
		d.UseCast = true
		d.CastTime = ds.Cast.Time
	}
	if ch := ds.Charge; ch != nil {
		d.UseCharge = true
		if d.ChargeFinishAction, err = skill.ParseChargeFinishAction(ch.FinishAction); err != nil {
			return d, unknown(err)
		}
		d.ChargeDuration = ch.Duration
		d.ChargeTime = ch.Time
		d.NeedChargeTimeToUse = ch.NeedTimeToUse
		d.StartChargePower = ch.StartPower
	}

	if d.EffectSelectors, err = c.effectSelectors(ds.Effects); err != nil {
		return d, err
	}
	if d.InActionFinishOption, err = skill.ParseInActionFinishOption(ds.InActionFinish); err != nil {
		return d, unknown(err)
	}
	for _, p := range []struct {
		item *AnimatorParamDef
		dst  *skill.AnimatorParam
	}{
		{ds.Params.Cast, &d.CastParam},
		{ds.Params.Charge, &d.ChargeParam},
		{ds.Params.Preceding, &d.PrecedingParam},
		{ds.Params.Action, &d.ActionParam},
	} {
		if *p.dst, err = animatorParam(p.item); err != nil {
			return d, err
		}
	}

	if len(ds.CustomActions) > 0 {
		d.CustomActions = make(map[skill.CustomActionType][]custom.Action, len(ds.CustomActions))
		for timing, items := range ds.CustomActions {
			t, err := skill.ParseCustomActionType(timing)
			if err != nil {
				return d, unknown(err)
			}
			if d.CustomActions[t], err = buildCustomActions(items); err != nil {
				return d, err
			}
		}
	}

	for _, as := range ds.ApplyDatas {
		ad := skill.ApplyData{ApplyIndex: as.ApplyIndex}
		if ad.EffectSelectors, err = c.effectSelectors(as.Effects); err != nil {
			return d, fmt.Errorf("apply %d: %w", as.ApplyIndex, err)
		}
		if ad.ActionParam, err = animatorParam(as.ActionParam); err != nil {
			return d, fmt.Errorf("apply %d: %w", as.ApplyIndex, err)
		}
		if ad.CustomActions, err = buildCustomActions(as.CustomActions); err != nil {
			return d, fmt.Errorf("apply %d: %w", as.ApplyIndex, err)
		}
		d.ApplyDatas = append(d.ApplyDatas, ad)
	}
	d.UseApplyData = len(d.ApplyDatas) > 0
	return d, nil
}

// buildSearcher defaults to selecting the user and searching the selection.
func buildSearcher(item SearcherDef) (*target.Searcher, error) {
	selection, err := target.CreateSelection(cmpOr(item.Selection.Type, "SelectSelf"), item.Selection.Params)
	if err != nil {
		return nil, typed("selection", item.Selection, err)
	}
	search, err := target.CreateSearch(cmpOr(item.Search.Type, "SelectedTarget"), item.Search.Params)
	if err != nil {
		return nil, typed("search", item.Search, err)
	}
	return target.NewSearcher(selection, search), nil
}

func buildCosts(items []TypeDef) ([]skill.Cost, error) {
	var out []skill.Cost
	for _, item := range items {
		cost, err := skill.CreateCost(item.Type, item.Params)
		if err != nil {
			return nil, typed("cost", item, err)
		}
		out = append(out, cost)
	}
	return out, nil
}

func buildEntityConditions(items []TypeDef) ([]skill.EntityCondition, error) {
	var out []skill.EntityCondition
	for _, item := range items {
		cond, err := skill.CreateEntityCondition(item.Type, item.Params)
		if err != nil {
			return nil, typed("condition", item, err)
		}
		out = append(out, cond)
	}
	return out, nil
}

func animatorParam(item *AnimatorParamDef) (skill.AnimatorParam, error) {
	if item == nil {
		return skill.AnimatorParam{}, nil
	}
	kind, err := skill.ParseParamKind(item.Kind)
	if err != nil {
		return skill.AnimatorParam{}, unknown(err)
	}
	return skill.AnimatorParam{Kind: kind, Name: item.Name}, nil
}

func (c *Catalog) effectSelectors(refs []EffectRefDef) ([]skill.EffectSelector, error) {
	var out []skill.EffectSelector
	for _, ref := range refs {
		e, ok := c.effects[ref.Effect]
		if !ok {
			return nil, fmt.Errorf("%w: effect %s", ErrUnknownType, ref.Effect)
		}
		out = append(out, skill.EffectSelector{Level: max(ref.Level, 1), Effect: e})
	}
	return out, nil
}

func (c *Catalog) buildTree(item TreeDef) (*skill.Tree, error) {
	type slot struct{ tier, index int }
	nodes := make(map[slot]*skill.SlotNode, len(item.Nodes))
	ordered := make([]*skill.SlotNode, 0, len(item.Nodes))

	for _, ns := range item.Nodes {
		s, ok := c.skills[ns.Skill]
		if !ok {
			return nil, fmt.Errorf("%w: skill %s", ErrUnknownType, ns.Skill)
		}
		key := slot{ns.Tier, ns.Index}
		if _, dup := nodes[key]; dup {
			return nil, fmt.Errorf("%w: slot %d/%d", ErrDuplicateID, ns.Tier, ns.Index)
		}
		n := &skill.SlotNode{Tier: ns.Tier, Index: ns.Index, Skill: s, AutoAcquire: ns.AutoAcquire}
		nodes[key] = n
		ordered = append(ordered, n)
	}
	for i, ns := range item.Nodes {
		for _, ps := range ns.Preceding {
			pre, ok := nodes[slot{ps.Tier, ps.Index}]
			if !ok {
				return nil, fmt.Errorf("%w: preceding slot %d/%d", ErrUnknownType, ps.Tier, ps.Index)
			}
			ordered[i].Preceding = append(ordered[i].Preceding, skill.Preceding{Node: pre, Level: max(ps.Level, 1)})
		}
	}
	return skill.NewTree(item.ID, item.Code, item.Name, ordered), nil
}

// applyCount defaults an omitted apply_count to one apply. An explicit 0
// applies without limit.
func applyCount(n *int) int {
	if n == nil {
		return 1
	}
	return *n
}

func cmpOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
