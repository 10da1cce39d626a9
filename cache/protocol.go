// Package cache models set-associative, write-back cache levels and the
// inclusive hierarchy that connects them to a backing store.
package cache

// Op is the kind of a memory operation.
type Op int

// The operations a trace can request.
const (
	OpRead Op = iota
	OpWrite
)

func (o Op) String() string {
	if o == OpWrite {
		return "write"
	}
	return "read"
}

// Outcome tells whether an access found its block at a level.
type Outcome int

// The possible outcomes of an access at one level.
const (
	OutcomeMiss Outcome = iota
	OutcomeHit
)

func (o Outcome) String() string {
	if o == OutcomeHit {
		return "hit"
	}
	return "miss"
}

// EventKind distinguishes regular accesses from inclusion-driven
// back-invalidations.
type EventKind int

// The kinds of events a hierarchy emits.
const (
	KindAccess EventKind = iota
	KindBackInvalidate
)

func (k EventKind) String() string {
	if k == KindBackInvalidate {
		return "back-invalidate"
	}
	return "access"
}

// An Access is one record of the input trace.
type Access struct {
	Op   Op
	Addr uint64
}

// An EventRecord describes what happened at one level while one access was
// served. Records are never mutated after Hierarchy.Access returns them.
type EventRecord struct {
	Level   string
	Kind    EventKind
	Op      Op
	Outcome Outcome
	Addr    uint64

	Evicted     bool
	EvictedAddr uint64
	Writeback   bool
}

// Stats holds the counters one level accumulates over a run. Counters only
// grow; they are never reset while a simulation is running.
type Stats struct {
	ReadHits    uint64
	ReadMisses  uint64
	WriteHits   uint64
	WriteMisses uint64
	Evictions   uint64
	Writebacks  uint64
}

// Hits returns the total number of hits.
func (s Stats) Hits() uint64 {
	return s.ReadHits + s.WriteHits
}

// Misses returns the total number of misses.
func (s Stats) Misses() uint64 {
	return s.ReadMisses + s.WriteMisses
}

// HitRate returns the fraction of accesses that hit, or 0 when the level was
// never accessed.
func (s Stats) HitRate() float64 {
	total := s.Hits() + s.Misses()
	if total == 0 {
		return 0
	}

	return float64(s.Hits()) / float64(total)
}

// LevelStats pairs a level name with the counters it accumulated.
type LevelStats struct {
	Name  string
	Stats Stats
}
