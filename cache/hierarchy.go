package cache

import "fmt"

// MemoryLevelName labels the backing store in event records.
const MemoryLevelName = "Memory"

// A BackingStore models the memory behind the last cache level. It is
// infinite and always hits; only the number of accesses reaching it is
// tracked.
type BackingStore struct {
	accesses uint64
}

// Accesses returns how many fetches and write-backs reached the backing
// store.
func (m *BackingStore) Accesses() uint64 {
	return m.accesses
}

func (m *BackingStore) access() {
	m.accesses++
}

// A Hierarchy connects one or two cache levels to a backing store. It routes
// misses downward and enforces the inclusion contract: every block resident
// in L1 is also resident in L2.
type Hierarchy struct {
	levels []*Level
	memory *BackingStore
}

// NewHierarchy builds the levels described by configs, innermost (L1) first,
// backed by an infinite backing store. The configs must already be
// validated; see the config package.
func NewHierarchy(configs []Config) *Hierarchy {
	if len(configs) == 0 || len(configs) > 2 {
		panic(fmt.Sprintf(
			"a hierarchy takes one or two levels, got %d", len(configs)))
	}

	h := &Hierarchy{
		memory: &BackingStore{},
	}

	for _, c := range configs {
		h.levels = append(h.levels, MakeBuilder().WithConfig(c).Build())
	}

	return h
}

// Levels returns the cache levels, innermost first.
func (h *Hierarchy) Levels() []*Level {
	return h.levels
}

// Memory returns the backing store.
func (h *Hierarchy) Memory() *BackingStore {
	return h.memory
}

// Stats returns the counters of every level, innermost first.
func (h *Hierarchy) Stats() []LevelStats {
	stats := make([]LevelStats, 0, len(h.levels))
	for _, l := range h.levels {
		stats = append(stats, LevelStats{Name: l.name, Stats: l.Stats()})
	}

	return stats
}

// Access runs one trace record through the hierarchy. It returns one event
// per level consulted, top-down (L1, then L2, then the backing store),
// followed by a back-invalidation event when an L2 eviction forced a block
// out of L1.
func (h *Hierarchy) Access(op Op, addr uint64) []EventRecord {
	l1 := h.levels[0]

	if l1.Access(op, addr) {
		return []EventRecord{{
			Level:   l1.name,
			Op:      op,
			Outcome: OutcomeHit,
			Addr:    addr,
		}}
	}

	ev1 := EventRecord{
		Level:   l1.name,
		Op:      op,
		Outcome: OutcomeMiss,
		Addr:    addr,
	}

	if len(h.levels) == 1 {
		return h.fillFromMemory(l1, op, addr, ev1)
	}

	return h.accessL2(op, addr, ev1)
}

// fillFromMemory serves a miss of a single-level hierarchy straight from the
// backing store.
func (h *Hierarchy) fillFromMemory(
	l1 *Level,
	op Op,
	addr uint64,
	ev1 EventRecord,
) []EventRecord {
	h.memory.access()

	fill := l1.Fill(addr, op == OpWrite)
	ev1.applyFill(fill)
	if fill.Writeback {
		h.memory.access()
	}

	evMem := EventRecord{
		Level:   MemoryLevelName,
		Op:      OpRead,
		Outcome: OutcomeHit,
		Addr:    addr,
	}

	return []EventRecord{ev1, evMem}
}

// accessL2 serves an L1 miss from L2, fetching from the backing store and
// filling L2 first when L2 misses as well. Fetches travel outward as reads;
// the write itself lands in L1.
func (h *Hierarchy) accessL2(op Op, addr uint64, ev1 EventRecord) []EventRecord {
	l2 := h.levels[1]

	if l2.Access(OpRead, addr) {
		ev2 := EventRecord{
			Level:   l2.name,
			Op:      OpRead,
			Outcome: OutcomeHit,
			Addr:    addr,
		}

		h.fillL1(addr, op, &ev1)

		return []EventRecord{ev1, ev2}
	}

	ev2 := EventRecord{
		Level:   l2.name,
		Op:      OpRead,
		Outcome: OutcomeMiss,
		Addr:    addr,
	}
	evMem := EventRecord{
		Level:   MemoryLevelName,
		Op:      OpRead,
		Outcome: OutcomeHit,
		Addr:    addr,
	}
	h.memory.access()

	backInval, haveBackInval := h.backInvalidate(addr)

	fill2 := l2.Fill(addr, false)
	ev2.applyFill(fill2)
	if fill2.Writeback {
		h.memory.access()
	}

	h.fillL1(addr, op, &ev1)

	events := []EventRecord{ev1, ev2, evMem}
	if haveBackInval {
		events = append(events, backInval)
	}

	return events
}

// fillL1 inserts the block into L1 once it is resident in L2 (or fetched
// from memory in a single-level hierarchy). The line starts dirty iff the
// original operation is a write. A dirty L1 victim is written back into its
// L2 line, which inclusion guarantees to exist.
func (h *Hierarchy) fillL1(addr uint64, op Op, ev1 *EventRecord) {
	l1 := h.levels[0]

	fill := l1.Fill(addr, op == OpWrite)
	ev1.applyFill(fill)

	if fill.Writeback {
		h.levels[1].MarkDirty(fill.EvictedAddr)
	}
}

// backInvalidate removes L2's upcoming victim from L1 before L2 evicts it.
// A dirty L1 copy is first written back into the still-resident L2 line, so
// the dirty data reaches the backing store with L2's own write-back.
func (h *Hierarchy) backInvalidate(addr uint64) (EventRecord, bool) {
	l1, l2 := h.levels[0], h.levels[1]

	victimAddr, full := l2.Victim(addr)
	if !full {
		return EventRecord{}, false
	}

	present, dirty := l1.Invalidate(victimAddr)
	if !present {
		return EventRecord{}, false
	}

	if dirty {
		l2.MarkDirty(victimAddr)
	}

	return EventRecord{
		Level:       l1.name,
		Kind:        KindBackInvalidate,
		Addr:        victimAddr,
		Evicted:     true,
		EvictedAddr: victimAddr,
		Writeback:   dirty,
	}, true
}

// CheckInclusion verifies that every valid line in L1 is also resident in
// L2. A failure is a defect in the hierarchy, not a runtime condition; the
// check exists for tests.
func (h *Hierarchy) CheckInclusion() error {
	if len(h.levels) < 2 {
		return nil
	}

	l1, l2 := h.levels[0], h.levels[1]

	var err error
	l1.forEachResidentBlock(func(addr uint64) {
		if err == nil && !l2.Contains(addr) {
			err = fmt.Errorf(
				"inclusion broken: block 0x%x is in %s but not in %s",
				addr, l1.name, l2.name)
		}
	})

	return err
}

func (ev *EventRecord) applyFill(fill FillResult) {
	ev.Evicted = fill.Evicted
	ev.EvictedAddr = fill.EvictedAddr
	ev.Writeback = fill.Writeback
}
