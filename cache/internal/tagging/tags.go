// Package tagging tracks which memory blocks reside in which cache lines and
// decides which line to evict when a set is full.
package tagging

// A Block is the bookkeeping information associated with one cache line.
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool
	IsDirty bool
}

// A Set is the group of lines that a certain memory block can be stored at.
// Blocks stay in insertion-slot order; OrderQueue holds way IDs from oldest
// to most recently placed and is maintained by the replacement policies.
type Set struct {
	Blocks     []Block
	OrderQueue []int
}

// Enqueue appends wayID at the most-recent end of the order queue.
func (s *Set) Enqueue(wayID int) {
	s.OrderQueue = append(s.OrderQueue, wayID)
}

// Requeue moves wayID to the most-recent end of the order queue.
func (s *Set) Requeue(wayID int) {
	s.Dequeue(wayID)
	s.Enqueue(wayID)
}

// Dequeue removes wayID from the order queue.
func (s *Set) Dequeue(wayID int) {
	queue := s.OrderQueue[:0]

	for _, w := range s.OrderQueue {
		if w != wayID {
			queue = append(queue, w)
		}
	}

	s.OrderQueue = queue
}

// TagArray stores the tags of the blocks resident in one cache level.
type TagArray interface {
	Lookup(setID int, tag uint64) (Block, bool)
	Update(block Block)
	FreeWay(setID int) (int, bool)
	Set(setID int) *Set
	Reset()
}

// NewTagArray creates a TagArray with all blocks invalid.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		NumSets: numSets,
		NumWays: numWays,
	}

	t.Reset()

	return t
}

type tagArrayImpl struct {
	NumSets int
	NumWays int
	Sets    []Set
}

// Lookup finds the valid block holding tag in the given set. If no such
// block is resident, the second return value is false.
func (t *tagArrayImpl) Lookup(setID int, tag uint64) (Block, bool) {
	set := &t.Sets[setID]
	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

// Update writes the block information back into its slot.
func (t *tagArrayImpl) Update(block Block) {
	t.Sets[block.SetID].Blocks[block.WayID] = block
}

// FreeWay returns an invalid way of the set, if one exists.
func (t *tagArrayImpl) FreeWay(setID int) (int, bool) {
	for _, block := range t.Sets[setID].Blocks {
		if !block.IsValid {
			return block.WayID, true
		}
	}

	return 0, false
}

// Set returns the set with the given ID.
func (t *tagArrayImpl) Set(setID int) *Set {
	return &t.Sets[setID]
}

// Reset marks all the blocks in the tag array invalid and empties the order
// queues.
func (t *tagArrayImpl) Reset() {
	t.Sets = make([]Set, t.NumSets)
	for i := 0; i < t.NumSets; i++ {
		for j := 0; j < t.NumWays; j++ {
			block := Block{
				SetID: i,
				WayID: j,
			}

			t.Sets[i].Blocks = append(t.Sets[i].Blocks, block)
		}
	}
}
