// Package render turns simulation events and statistics into text.
package render

import (
	"fmt"
	"io"

	"github.com/sarchlab/cachetrace/cache"
)

// A Renderer writes one line of text per simulation event.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a Renderer that writes to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// HandleEvent writes one event as a single line.
func (r *Renderer) HandleEvent(ev cache.EventRecord) {
	fmt.Fprintln(r.w, FormatEvent(ev))
}

// FormatEvent renders one event, e.g.,
// `L1: read miss at address 0x10 (evict 0x0, writeback)`.
func FormatEvent(ev cache.EventRecord) string {
	if ev.Kind == cache.KindBackInvalidate {
		line := fmt.Sprintf("%s: invalidate at address 0x%x", ev.Level, ev.Addr)
		if ev.Writeback {
			line += " (writeback)"
		}
		return line
	}

	line := fmt.Sprintf("%s: %s %s at address 0x%x",
		ev.Level, ev.Op, ev.Outcome, ev.Addr)

	if ev.Evicted {
		line += fmt.Sprintf(" (evict 0x%x", ev.EvictedAddr)
		if ev.Writeback {
			line += ", writeback"
		}
		line += ")"
	}

	return line
}

// WriteSummary prints the per-level counters of a finished run, followed by
// the number of accesses that reached the backing store.
func (r *Renderer) WriteSummary(levels []cache.LevelStats, memoryAccesses uint64) {
	for _, l := range levels {
		s := l.Stats

		fmt.Fprintf(r.w, "=== %s ===\n", l.Name)
		fmt.Fprintf(r.w, "Read hits:    %d\n", s.ReadHits)
		fmt.Fprintf(r.w, "Read misses:  %d\n", s.ReadMisses)
		fmt.Fprintf(r.w, "Write hits:   %d\n", s.WriteHits)
		fmt.Fprintf(r.w, "Write misses: %d\n", s.WriteMisses)
		fmt.Fprintf(r.w, "Hit rate:     %.2f%%\n", s.HitRate()*100)
		fmt.Fprintf(r.w, "Evictions:    %d\n", s.Evictions)
		fmt.Fprintf(r.w, "Writebacks:   %d\n", s.Writebacks)
	}

	fmt.Fprintf(r.w, "=== %s ===\n", cache.MemoryLevelName)
	fmt.Fprintf(r.w, "Accesses:     %d\n", memoryAccesses)
}
