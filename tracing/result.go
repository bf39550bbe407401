package tracing

import (
	"sync"

	"github.com/sarchlab/ipif/datarecording"
	"github.com/sarchlab/ipif/hooking"
	"github.com/sarchlab/ipif/selftest"
)

// ResultRecord is the outcome of one self-test run.
type ResultRecord struct {
	RunID       string
	Tester      string
	Width       int
	Mask        uint32
	Status      string
	StatusCode  int
	FailedStage string
}

// StepRecord is one stage of a self-test run.
type StepRecord struct {
	RunID  string
	Stage  string
	Mask   uint32
	Wrote  uint32
	Read   uint32
	Passed bool
}

// ResultTracer is a hook that records self-test stages and outcomes.
type ResultTracer struct {
	mu       sync.Mutex
	recorder datarecording.DataRecorder
	results  []ResultRecord
	steps    []StepRecord
}

// NewResultTracer creates a ResultTracer. The recorder may be nil.
func NewResultTracer(recorder datarecording.DataRecorder) *ResultTracer {
	t := &ResultTracer{recorder: recorder}

	if recorder != nil {
		recorder.CreateTable(ResultTable, ResultRecord{})
		recorder.CreateTable(StepTable, StepRecord{})
	}

	return t
}

// Func records steps and results.
func (t *ResultTracer) Func(ctx hooking.HookCtx) {
	switch item := ctx.Item.(type) {
	case selftest.Step:
		t.addStep(StepRecord{
			RunID:  item.RunID,
			Stage:  item.Stage.String(),
			Mask:   item.Mask,
			Wrote:  item.Wrote,
			Read:   item.Read,
			Passed: item.Passed,
		})
	case selftest.Result:
		t.addResult(ResultRecord{
			RunID:       item.RunID,
			Tester:      testerName(ctx.Domain),
			Width:       item.Width,
			Mask:        item.Mask,
			Status:      item.Status.String(),
			StatusCode:  int(item.Status),
			FailedStage: item.FailedStage.String(),
		})
	}
}

func testerName(domain hooking.Hookable) string {
	if named, ok := domain.(interface{ Name() string }); ok {
		return named.Name()
	}

	return ""
}

func (t *ResultTracer) addStep(record StepRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.steps = append(t.steps, record)

	if t.recorder != nil {
		t.recorder.InsertData(StepTable, record)
	}
}

func (t *ResultTracer) addResult(record ResultRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.results = append(t.results, record)

	if t.recorder != nil {
		t.recorder.InsertData(ResultTable, record)
	}
}

// Results returns a copy of the results so far.
func (t *ResultTracer) Results() []ResultRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]ResultRecord(nil), t.results...)
}

// Steps returns a copy of the steps so far.
func (t *ResultTracer) Steps() []StepRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]StepRecord(nil), t.steps...)
}
