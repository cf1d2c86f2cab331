package markov

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// pcgStream is the fixed second half of the PCG state, so a single uint64 is
// enough to reproduce a walk.
const pcgStream = 0x9e3779b97f4a7c15

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// NewSource returns a deterministic random source for seed. Two generators
// over the same model with sources of equal seeds produce identical walks.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, pcgStream)
}
