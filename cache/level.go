package cache

import (
	"fmt"

	"github.com/sarchlab/cachetrace/cache/internal/tagging"
)

// A Level models a single write-back, write-allocate cache.
//
// A Level only ever mutates its own sets and counters. Coordinating multiple
// levels, including the inclusion contract between them, is the job of
// Hierarchy.
type Level struct {
	name     string
	geometry Geometry
	tags     tagging.TagArray
	policy   tagging.Policy
	stats    Stats
}

// Name returns the label of the level, e.g., "L1".
func (l *Level) Name() string {
	return l.name
}

// Geometry returns the set/way/block organization of the level.
func (l *Level) Geometry() Geometry {
	return l.geometry
}

// Stats returns a copy of the counters accumulated so far.
func (l *Level) Stats() Stats {
	return l.stats
}

// Access serves one read or write at this level. A hit updates the
// replacement order, and a write hit marks the line dirty. A miss only
// counts; allocation is a separate Fill so that a hierarchy can order fills
// to keep the inclusion contract.
func (l *Level) Access(op Op, addr uint64) bool {
	tag, setID, _ := l.geometry.Decode(addr)

	block, ok := l.tags.Lookup(setID, tag)
	if !ok {
		l.countMiss(op)
		return false
	}

	l.countHit(op)

	if op == OpWrite {
		block.IsDirty = true
		l.tags.Update(block)
	}

	l.policy.Touch(l.tags.Set(setID), block.WayID)

	return true
}

// FillResult reports what a Fill displaced.
type FillResult struct {
	Evicted     bool
	EvictedAddr uint64
	Writeback   bool
}

// Fill places the block holding addr into its set, evicting the policy
// victim when no way is free. A dirty victim raises the writeback flag; the
// caller routes the write-back to the next level or the backing store.
func (l *Level) Fill(addr uint64, dirty bool) FillResult {
	tag, setID, _ := l.geometry.Decode(addr)
	set := l.tags.Set(setID)

	res := FillResult{}

	way, free := l.tags.FreeWay(setID)
	if !free {
		way = l.policy.Victim(set)
		victim := set.Blocks[way]

		res.Evicted = true
		res.EvictedAddr = l.geometry.BlockAddr(victim.Tag, setID)
		res.Writeback = victim.IsDirty

		l.stats.Evictions++
		if victim.IsDirty {
			l.stats.Writebacks++
		}

		set.Dequeue(way)
	}

	l.tags.Update(tagging.Block{
		Tag:     tag,
		SetID:   setID,
		WayID:   way,
		IsValid: true,
		IsDirty: dirty,
	})
	l.policy.Insert(set, way)

	return res
}

// Victim returns the block address that a Fill targeting addr's set would
// evict. The second return value is false while the set still has a free
// way. Victim never mutates the level.
func (l *Level) Victim(addr uint64) (uint64, bool) {
	_, setID, _ := l.geometry.Decode(addr)

	if _, free := l.tags.FreeWay(setID); free {
		return 0, false
	}

	set := l.tags.Set(setID)
	victim := set.Blocks[l.policy.Victim(set)]

	return l.geometry.BlockAddr(victim.Tag, setID), true
}

// Invalidate drops addr's block if it is resident. The write-back of a dirty
// line is accounted before the line is dropped; the caller propagates the
// dirty data using the returned flag.
func (l *Level) Invalidate(addr uint64) (present, dirty bool) {
	tag, setID, _ := l.geometry.Decode(addr)

	block, ok := l.tags.Lookup(setID, tag)
	if !ok {
		return false, false
	}

	if block.IsDirty {
		l.stats.Writebacks++
	}
	l.stats.Evictions++

	l.tags.Set(setID).Dequeue(block.WayID)
	l.tags.Update(tagging.Block{SetID: setID, WayID: block.WayID})

	return true, block.IsDirty
}

// MarkDirty sets the dirty bit on addr's resident line without touching the
// replacement order. It models receiving a write-back from the level above.
// The block must be resident; a miss here means the inclusion contract was
// broken.
func (l *Level) MarkDirty(addr uint64) {
	tag, setID, _ := l.geometry.Decode(addr)

	block, ok := l.tags.Lookup(setID, tag)
	if !ok {
		panic(fmt.Sprintf(
			"%s: write-back to non-resident block 0x%x", l.name, addr))
	}

	block.IsDirty = true
	l.tags.Update(block)
}

// Contains reports whether addr's block is resident and valid.
func (l *Level) Contains(addr uint64) bool {
	tag, setID, _ := l.geometry.Decode(addr)
	_, ok := l.tags.Lookup(setID, tag)

	return ok
}

func (l *Level) countHit(op Op) {
	if op == OpWrite {
		l.stats.WriteHits++
	} else {
		l.stats.ReadHits++
	}
}

func (l *Level) countMiss(op Op) {
	if op == OpWrite {
		l.stats.WriteMisses++
	} else {
		l.stats.ReadMisses++
	}
}

// forEachResidentBlock calls f with the block address of every valid line.
func (l *Level) forEachResidentBlock(f func(addr uint64)) {
	for setID := 0; setID < int(l.geometry.NumSets()); setID++ {
		for _, block := range l.tags.Set(setID).Blocks {
			if block.IsValid {
				f(l.geometry.BlockAddr(block.Tag, setID))
			}
		}
	}
}
