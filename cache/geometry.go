package cache

import "fmt"

// Geometry describes the set/way/block organization of one cache level.
type Geometry struct {
	TotalBytes    uint64
	BlockSize     uint64
	Associativity int
}

// NumSets returns the number of sets the geometry yields.
func (g Geometry) NumSets() uint64 {
	return g.TotalBytes / g.BlockSize / uint64(g.Associativity)
}

// Validate checks that the geometry describes a cache with a positive,
// integral number of sets and a power-of-two block size.
func (g Geometry) Validate() error {
	if g.BlockSize == 0 || g.BlockSize&(g.BlockSize-1) != 0 {
		return fmt.Errorf("block size %d is not a power of two", g.BlockSize)
	}

	if g.Associativity <= 0 {
		return fmt.Errorf("associativity %d is not positive", g.Associativity)
	}

	if g.TotalBytes == 0 || g.TotalBytes%g.BlockSize != 0 {
		return fmt.Errorf("total size %d is not a multiple of block size %d",
			g.TotalBytes, g.BlockSize)
	}

	numBlocks := g.TotalBytes / g.BlockSize
	if numBlocks%uint64(g.Associativity) != 0 {
		return fmt.Errorf("%d blocks cannot form full %d-way sets",
			numBlocks, g.Associativity)
	}

	return nil
}

// Decode splits an address into the block tag, the set index, and the offset
// within the block. Any address is accepted.
func (g Geometry) Decode(addr uint64) (tag uint64, setID int, offset uint64) {
	offset = addr % g.BlockSize
	blockNumber := addr / g.BlockSize
	setID = int(blockNumber % g.NumSets())
	tag = blockNumber / g.NumSets()

	return
}

// BlockAddr reconstructs the block-aligned address of the line identified by
// tag and set index.
func (g Geometry) BlockAddr(tag uint64, setID int) uint64 {
	return (tag*g.NumSets() + uint64(setID)) * g.BlockSize
}
