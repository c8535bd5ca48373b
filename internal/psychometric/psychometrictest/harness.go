package psychometrictest

import (
	"time"

	"psychometric-workers/internal/common/logger"
	"psychometric-workers/internal/psychometric"
)

// Epoch is the first instant returned by a Harness clock.
var Epoch = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// Harness is a Service wired to in-memory collaborators. "mentor-1" resolves
// to a mentor; everyone else is an entrepreneur.
type Harness struct {
	Store     *MemoryStore
	Generator *StubGenerator
	Analyzer  *StubAnalyzer
	Indexer   *RecordingIndexer
	Publisher *RecordingPublisher
	Service   *psychometric.Service
}

func NewHarness(log logger.Logger) *Harness {
	h := &Harness{
		Store:     NewMemoryStore(),
		Generator: &StubGenerator{},
		Analyzer:  &StubAnalyzer{Result: RichAnalysis()},
		Indexer:   &RecordingIndexer{},
		Publisher: &RecordingPublisher{},
	}
	h.Service = psychometric.NewService(psychometric.DefaultConfig(), h.Generator, h.Analyzer, h.Store,
		StaticRoles{"mentor-1": psychometric.Mentor}, log,
		psychometric.WithIndexer(h.Indexer),
		psychometric.WithPublisher(h.Publisher),
		psychometric.WithClock(FixedClock(Epoch)),
	)
	return h
}
