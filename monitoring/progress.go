package monitoring

import (
	"log"
	"sync"
	"time"

	"github.com/sarchlab/ipif/id"
)

// A ProgressBar counts the self-tests of one batch started through the
// monitor. Counters change while the batch runs, so they are only read
// through Snapshot.
type ProgressBar struct {
	id        string
	name      string
	startTime time.Time
	total     uint64

	mu         sync.Mutex
	inProgress uint64
	finished   uint64
}

// Progress is a copy of a ProgressBar taken at one point in time.
type Progress struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func newProgressBar(name string, total uint64) *ProgressBar {
	return &ProgressBar{
		id:        id.Generate(),
		name:      name,
		startTime: time.Now(),
		total:     total,
	}
}

// Start marks n more tests as running.
func (b *ProgressBar) Start(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inProgress += n
}

// Finish marks n running tests as done.
func (b *ProgressBar) Finish(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.inProgress {
		log.Panicf("progress bar %s: finishing %d tests, only %d running",
			b.name, n, b.inProgress)
	}

	b.inProgress -= n
	b.finished += n
}

// Snapshot copies the bar under its lock.
func (b *ProgressBar) Snapshot() Progress {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Progress{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}
