// Package sim drives a cache hierarchy over an access trace.
package sim

import (
	"errors"
	"io"

	"github.com/sarchlab/cachetrace/cache"
	"github.com/sarchlab/cachetrace/trace"
)

// An EventHandler receives every event the hierarchy emits, in order.
// Handlers run synchronously; a slow handler slows the simulation down.
type EventHandler interface {
	HandleEvent(ev cache.EventRecord)
}

// A Report summarizes one finished run.
type Report struct {
	Accesses       uint64
	Events         []cache.EventRecord
	Levels         []cache.LevelStats
	MemoryAccesses uint64
}

// A Simulator folds a trace over a hierarchy, one access at a time, in
// input order. There is no batching, reordering, or retrying: a simulation
// is a deterministic function of the configuration and the trace.
type Simulator struct {
	hierarchy *cache.Hierarchy
	handlers  []EventHandler
}

// NewSimulator creates a Simulator over the given hierarchy.
func NewSimulator(hierarchy *cache.Hierarchy) *Simulator {
	return &Simulator{
		hierarchy: hierarchy,
	}
}

// AddHandler registers a handler that receives events during Run, in
// registration order.
func (s *Simulator) AddHandler(h EventHandler) {
	s.handlers = append(s.handlers, h)
}

// Run consumes src until io.EOF. A malformed trace record aborts the run and
// is returned as the error; the events emitted before the bad record have
// already reached the handlers.
func (s *Simulator) Run(src trace.Source) (*Report, error) {
	report := &Report{}

	for {
		access, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		report.Accesses++

		events := s.hierarchy.Access(access.Op, access.Addr)
		for _, ev := range events {
			for _, h := range s.handlers {
				h.HandleEvent(ev)
			}
		}

		report.Events = append(report.Events, events...)
	}

	report.Levels = s.hierarchy.Stats()
	report.MemoryAccesses = s.hierarchy.Memory().Accesses()

	return report, nil
}
