package skill

import (
	"fmt"
	"strings"
)

// Type separates skills the owner triggers from skills that run on their own.
type Type int

const (
	TypeActive Type = iota
	TypePassive
)

var typeNames = []string{"active", "passive"}

func (t Type) String() string { return enumName(typeNames, int(t)) }

// ParseType parses "active" or "passive".
func ParseType(s string) (Type, error) { return parseEnum[Type]("skill type", s, typeNames) }

// UseType selects between one-shot and toggled skills.
type UseType int

const (
	UseInstant UseType = iota
	UseToggle
)

var useTypeNames = []string{"instant", "toggle"}

func (t UseType) String() string { return enumName(useTypeNames, int(t)) }

func ParseUseType(s string) (UseType, error) {
	return parseEnum[UseType]("use type", s, useTypeNames)
}

// ExecutionType decides who drives applies while in action: the apply cycle
// timer (Auto) or repeated Use calls (Input).
type ExecutionType int

const (
	ExecutionAuto ExecutionType = iota
	ExecutionInput
)

var executionTypeNames = []string{"auto", "input"}

func (t ExecutionType) String() string { return enumName(executionTypeNames, int(t)) }

func ParseExecutionType(s string) (ExecutionType, error) {
	return parseEnum[ExecutionType]("execution type", s, executionTypeNames)
}

// ApplyType decides whether entering an apply applies at once (Instant) or
// waits for an animation event (Animation).
type ApplyType int

const (
	ApplyInstant ApplyType = iota
	ApplyAnimation
)

var applyTypeNames = []string{"instant", "animation"}

func (t ApplyType) String() string { return enumName(applyTypeNames, int(t)) }

func ParseApplyType(s string) (ApplyType, error) {
	return parseEnum[ApplyType]("apply type", s, applyTypeNames)
}

// NeedSelectionResult is the selection outcome a skill accepts.
type NeedSelectionResult int

const (
	NeedTarget NeedSelectionResult = iota
	NeedPosition
)

var needSelectionNames = []string{"target", "position"}

func (n NeedSelectionResult) String() string { return enumName(needSelectionNames, int(n)) }

func ParseNeedSelectionResult(s string) (NeedSelectionResult, error) {
	return parseEnum[NeedSelectionResult]("selection result", s, needSelectionNames)
}

// SelectionTiming decides when a target is selected.
type SelectionTiming int

const (
	// SelectOnUse selects before the skill starts.
	SelectOnUse SelectionTiming = iota
	// SelectInAction selects on every Use while in action.
	SelectInAction
	SelectBoth
)

var selectionTimingNames = []string{"use", "use_in_action", "both"}

func (t SelectionTiming) String() string { return enumName(selectionTimingNames, int(t)) }

func ParseSelectionTiming(s string) (SelectionTiming, error) {
	return parseEnum[SelectionTiming]("selection timing", s, selectionTimingNames)
}

// SearchTiming decides when targets are gathered around the selection.
type SearchTiming int

const (
	SearchOnSelectionCompleted SearchTiming = iota
	SearchOnApply
)

var searchTimingNames = []string{"selection_completed", "apply"}

func (t SearchTiming) String() string { return enumName(searchTimingNames, int(t)) }

func ParseSearchTiming(s string) (SearchTiming, error) {
	return parseEnum[SearchTiming]("search timing", s, searchTimingNames)
}

// RunningFinishOption decides when an in-action skill is finished.
type RunningFinishOption int

const (
	FinishWhenApplyCompleted RunningFinishOption = iota
	FinishWhenDurationEnded
)

var runningFinishNames = []string{"apply_completed", "duration_ended"}

func (o RunningFinishOption) String() string { return enumName(runningFinishNames, int(o)) }

func ParseRunningFinishOption(s string) (RunningFinishOption, error) {
	return parseEnum[RunningFinishOption]("running finish option", s, runningFinishNames)
}

// ChargeFinishAction decides what happens when the charge duration runs out.
type ChargeFinishAction int

const (
	ChargeFinishUse ChargeFinishAction = iota
	ChargeFinishCancel
)

var chargeFinishNames = []string{"use", "cancel"}

func (a ChargeFinishAction) String() string { return enumName(chargeFinishNames, int(a)) }

func ParseChargeFinishAction(s string) (ChargeFinishAction, error) {
	return parseEnum[ChargeFinishAction]("charge finish action", s, chargeFinishNames)
}

// InActionFinishOption decides when the owner leaves its in-skill-action state.
type InActionFinishOption int

const (
	FinishOnceApplied InActionFinishOption = iota
	FinishWhenFullyApplied
	FinishWhenAnimationEnded
)

var inActionFinishNames = []string{"once_applied", "fully_applied", "animation_ended"}

func (o InActionFinishOption) String() string { return enumName(inActionFinishNames, int(o)) }

func ParseInActionFinishOption(s string) (InActionFinishOption, error) {
	return parseEnum[InActionFinishOption]("in-action finish option", s, inActionFinishNames)
}

// CustomActionType is the timing a custom action set is attached to.
type CustomActionType int

const (
	CustomOnCast CustomActionType = iota
	CustomOnCharge
	CustomOnPrecedingAction
	CustomOnAction
)

var customActionTypeNames = []string{"cast", "charge", "preceding_action", "action"}

func (t CustomActionType) String() string { return enumName(customActionTypeNames, int(t)) }

func ParseCustomActionType(s string) (CustomActionType, error) {
	return parseEnum[CustomActionType]("custom action type", s, customActionTypeNames)
}

// ParamKind is the kind of an animator parameter.
type ParamKind int

const (
	ParamBool ParamKind = iota
	ParamTrigger
)

var paramKindNames = []string{"bool", "trigger"}

func (k ParamKind) String() string { return enumName(paramKindNames, int(k)) }

func ParseParamKind(s string) (ParamKind, error) {
	return parseEnum[ParamKind]("animator parameter kind", s, paramKindNames)
}

// AnimatorParam names an animator parameter a skill state drives on its owner.
// The zero value is invalid and is ignored.
type AnimatorParam struct {
	Kind ParamKind
	Name string
}

func (p AnimatorParam) IsValid() bool { return p.Name != "" }

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

// parseEnum matches s case-insensitively against names. An empty string
// yields the zero value.
func parseEnum[T ~int](kind, s string, names []string) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s: %s", kind, s)
}
