// Package tracing turns device and self-test hooks into records, kept in
// memory and optionally stored through a DataRecorder.
package tracing

import (
	"sync"

	"github.com/sarchlab/ipif/datarecording"
	"github.com/sarchlab/ipif/device"
	"github.com/sarchlab/ipif/hooking"
)

// Table names used in recordings.
const (
	AccessTable = "register_access"
	ResultTable = "self_test_result"
	StepTable   = "self_test_step"
)

// Access kinds.
const (
	KindRead  = "read"
	KindWrite = "write"
	KindReset = "reset"
)

// AccessRecord is one register access.
type AccessRecord struct {
	Seq      uint64
	Device   string
	Kind     string
	Register string
	Offset   uint64
	Value    uint32
}

// AccessTracer is a hook that records register accesses of simulated
// devices. It can be attached to several devices at once.
type AccessTracer struct {
	mu       sync.Mutex
	recorder datarecording.DataRecorder
	records  []AccessRecord
	nextSeq  uint64
}

// NewAccessTracer creates an AccessTracer. The recorder may be nil, in which
// case records are only kept in memory.
func NewAccessTracer(recorder datarecording.DataRecorder) *AccessTracer {
	t := &AccessTracer{recorder: recorder}

	if recorder != nil {
		recorder.CreateTable(AccessTable, AccessRecord{})
	}

	return t
}

// Func records an access.
func (t *AccessTracer) Func(ctx hooking.HookCtx) {
	var kind string

	switch ctx.Pos {
	case device.HookPosRegRead:
		kind = KindRead
	case device.HookPosRegWrite:
		kind = KindWrite
	case device.HookPosReset:
		kind = KindReset
	default:
		return
	}

	access, ok := ctx.Item.(device.Access)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextSeq++
	record := AccessRecord{
		Seq:      t.nextSeq,
		Device:   access.Device,
		Kind:     kind,
		Register: access.Register,
		Offset:   access.Offset,
		Value:    access.Value,
	}

	t.records = append(t.records, record)

	if t.recorder != nil {
		t.recorder.InsertData(AccessTable, record)
	}
}

// Accesses returns a copy of the records so far.
func (t *AccessTracer) Accesses() []AccessRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]AccessRecord(nil), t.records...)
}

// Clear drops the in-memory records. Recorded rows are kept.
func (t *AccessTracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = nil
}
