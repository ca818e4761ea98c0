package seed

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Weighted pairs a value with its relative likelihood.
type Weighted[T any] struct {
	Value  T
	Weight int
}

// Sampler wraps a seeded source so demo runs are reproducible.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler seeds from the clock when seed is zero.
func NewSampler(seed int64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns a value with probability proportional to its weight.
// Non-positive weights are never chosen; an all-zero table yields the zero value.
func Pick[T any](s *Sampler, choices []Weighted[T]) T {
	total := 0
	for _, c := range choices {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	var zero T
	if total == 0 {
		return zero
	}
	n := s.rng.Intn(total)
	for _, c := range choices {
		if c.Weight <= 0 {
			continue
		}
		if n < c.Weight {
			return c.Value
		}
		n -= c.Weight
	}
	return zero
}

// Element picks uniformly.
func Element[T any](s *Sampler, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[s.rng.Intn(len(items))]
}

// Between returns an int in [min, max].
func (s *Sampler) Between(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

// Chance reports true with probability p.
func (s *Sampler) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Amount returns a multiple of step in [min, max].
func (s *Sampler) Amount(min, max, step int64) decimal.Decimal {
	if step <= 0 {
		step = 1
	}
	slots := (max - min) / step
	if slots <= 0 {
		return decimal.NewFromInt(min)
	}
	return decimal.NewFromInt(min + s.rng.Int63n(slots+1)*step)
}

// DaysAgo returns a time between 0 and maxDays before now.
func (s *Sampler) DaysAgo(now time.Time, maxDays int) time.Time {
	return now.AddDate(0, 0, -s.Between(0, maxDays))
}

// Digits returns n random decimal digits.
func (s *Sampler) Digits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + s.rng.Intn(10))
	}
	return string(b)
}
