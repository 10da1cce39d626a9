package cache

import (
	"github.com/sarchlab/cachetrace/cache/internal/tagging"
)

// Config describes one cache level as loaded from a configuration file.
// Configs are validated by the configuration loader before they reach the
// core; see the config package.
type Config struct {
	Name          string
	TotalBytes    uint64
	BlockSize     uint64
	Associativity int
	Policy        string
	WritePolicy   string
}

// IsValidPolicy reports whether token names a supported replacement policy
// (FIFO, LRU, or MRU).
func IsValidPolicy(token string) bool {
	return tagging.IsValidPolicy(token)
}

// A Builder can build cache levels.
type Builder struct {
	name          string
	totalBytes    uint64
	blockSize     uint64
	associativity int
	policy        string
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name:          "L1",
		totalBytes:    16 * 1024,
		blockSize:     64,
		associativity: 4,
		policy:        "LRU",
	}
}

// WithName sets the label of the level to build.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithTotalBytes sets the capacity of the level to build.
func (b Builder) WithTotalBytes(totalBytes uint64) Builder {
	b.totalBytes = totalBytes
	return b
}

// WithBlockSize sets the block size of the level to build.
func (b Builder) WithBlockSize(blockSize uint64) Builder {
	b.blockSize = blockSize
	return b
}

// WithAssociativity sets the way associativity of the level to build.
func (b Builder) WithAssociativity(associativity int) Builder {
	b.associativity = associativity
	return b
}

// WithPolicy sets the replacement policy (FIFO, LRU, or MRU) of the level to
// build.
func (b Builder) WithPolicy(policy string) Builder {
	b.policy = policy
	return b
}

// WithConfig copies all parameters from a validated Config.
func (b Builder) WithConfig(c Config) Builder {
	b.name = c.Name
	b.totalBytes = c.TotalBytes
	b.blockSize = c.BlockSize
	b.associativity = c.Associativity
	b.policy = c.Policy

	return b
}

// Build builds a cache level. It panics on an invalid geometry or policy;
// configurations must be validated before they reach the builder.
func (b Builder) Build() *Level {
	geometry := Geometry{
		TotalBytes:    b.totalBytes,
		BlockSize:     b.blockSize,
		Associativity: b.associativity,
	}
	if err := geometry.Validate(); err != nil {
		panic(err)
	}

	policy, err := tagging.NewPolicy(b.policy)
	if err != nil {
		panic(err)
	}

	return &Level{
		name:     b.name,
		geometry: geometry,
		tags:     tagging.NewTagArray(int(geometry.NumSets()), b.associativity),
		policy:   policy,
	}
}
