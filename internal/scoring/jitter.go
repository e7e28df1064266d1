package scoring

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields uniform values in [0,1). *rand.Rand satisfies it, but is not
// safe for concurrent use; wrap it with NewSource for shared scorers.
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe source. A zero seed seeds from the clock.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// FixedSource always returns the same value. 0.5 yields zero jitter.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// jitter maps a uniform draw onto [-magnitude, +magnitude).
func jitter(src Source, magnitude float64) float64 {
	if src == nil || magnitude == 0 {
		return 0
	}
	return (2*src.Float64() - 1) * magnitude
}
