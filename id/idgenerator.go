// Package id generates identifiers for self-test runs.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	generatorMutex        sync.Mutex
	generatorInstantiated bool
	generator             Generator
)

// Generator can generate IDs.
type Generator interface {
	// Generate an ID.
	Generate() string
}

// UseSequentialGenerator makes Generate return 1, 2, 3, ... Runs are then
// reproducible.
func UseSequentialGenerator() {
	use(&sequentialGenerator{})
}

// UseParallelGenerator makes Generate return globally unique IDs. The IDs
// are not deterministic.
func UseParallelGenerator() {
	use(parallelGenerator{})
}

func use(g Generator) {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if generatorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	generator = g
	generatorInstantiated = true
}

// GetGenerator returns the process-wide generator. It is sequential unless
// another kind was selected before the first use.
func GetGenerator() Generator {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if !generatorInstantiated {
		generator = &sequentialGenerator{}
		generatorInstantiated = true
	}

	return generator
}

// Generate returns a new ID from the process-wide generator.
func Generate() string {
	return GetGenerator().Generate()
}

// NewSequentialGenerator returns a private sequential generator.
func NewSequentialGenerator() Generator {
	return &sequentialGenerator{}
}

type sequentialGenerator struct {
	nextID uint64
}

func (g *sequentialGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type parallelGenerator struct{}

func (parallelGenerator) Generate() string {
	return xid.New().String()
}
