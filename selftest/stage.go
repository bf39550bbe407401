package selftest

import "github.com/sarchlab/ipif/hooking"

// Hook positions triggered by a Tester.
var (
	HookPosTestStart = &hooking.HookPos{Name: "SelfTestStart"}
	HookPosTestStep  = &hooking.HookPos{Name: "SelfTestStep"}
	HookPosTestEnd   = &hooking.HookPos{Name: "SelfTestEnd"}
)

// Stage identifies one check of the register test.
type Stage int

// Stages in the order they run.
const (
	StageNone Stage = iota
	StageResetValue
	StageExcludePreset
	StageStatusSet
	StageStatusAck
	StageEnableSet
	StageEnableClear
)

var stageNames = [...]string{
	StageNone:          "None",
	StageResetValue:    "ResetValue",
	StageExcludePreset: "ExcludePreset",
	StageStatusSet:     "StatusSet",
	StageStatusAck:     "StatusAck",
	StageEnableSet:     "EnableSet",
	StageEnableClear:   "EnableClear",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}

	return stageNames[s]
}

// Start is passed to hooks when a self-test begins.
type Start struct {
	RunID string
	Width int
}

// Step is passed to hooks after each stage. Wrote is zero for stages that
// only read.
type Step struct {
	RunID  string
	Stage  Stage
	Mask   uint32
	Wrote  uint32
	Read   uint32
	Passed bool
}

// Result is passed to hooks when a self-test ends. FailedStage is StageNone
// on success.
type Result struct {
	RunID       string
	Width       int
	Mask        uint32
	Status      Status
	FailedStage Stage
}
