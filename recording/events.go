package recording

import "github.com/sarchlab/cachetrace/cache"

// eventEntry is one simulation event as stored in the trace_events table.
type eventEntry struct {
	Seq         uint64
	Level       string
	Kind        string
	Op          string
	Outcome     string
	Addr        uint64
	Evicted     bool
	EvictedAddr uint64
	Writeback   bool
}

// statsEntry is one level's final counters as stored in the level_stats
// table.
type statsEntry struct {
	Level       string
	ReadHits    uint64
	ReadMisses  uint64
	WriteHits   uint64
	WriteMisses uint64
	Evictions   uint64
	Writebacks  uint64
}

// An EventRecorder stores every simulation event, and the final statistics,
// through a DataRecorder. It plugs into the simulator as an event handler.
type EventRecorder struct {
	recorder DataRecorder
	seq      uint64
}

// NewEventRecorder creates an EventRecorder and its tables.
func NewEventRecorder(recorder DataRecorder) *EventRecorder {
	recorder.CreateTable("trace_events", eventEntry{})
	recorder.CreateTable("level_stats", statsEntry{})

	return &EventRecorder{
		recorder: recorder,
	}
}

// HandleEvent buffers one event for insertion. Seq preserves the emission
// order across the whole run.
func (r *EventRecorder) HandleEvent(ev cache.EventRecord) {
	r.recorder.InsertData("trace_events", eventEntry{
		Seq:         r.seq,
		Level:       ev.Level,
		Kind:        ev.Kind.String(),
		Op:          ev.Op.String(),
		Outcome:     ev.Outcome.String(),
		Addr:        ev.Addr,
		Evicted:     ev.Evicted,
		EvictedAddr: ev.EvictedAddr,
		Writeback:   ev.Writeback,
	})

	r.seq++
}

// RecordStats stores the final per-level counters and flushes everything.
func (r *EventRecorder) RecordStats(levels []cache.LevelStats) {
	for _, l := range levels {
		r.recorder.InsertData("level_stats", statsEntry{
			Level:       l.Name,
			ReadHits:    l.Stats.ReadHits,
			ReadMisses:  l.Stats.ReadMisses,
			WriteHits:   l.Stats.WriteHits,
			WriteMisses: l.Stats.WriteMisses,
			Evictions:   l.Stats.Evictions,
			Writebacks:  l.Stats.Writebacks,
		})
	}

	r.recorder.Flush()
}
