// Package identity issues numeric record identifiers and human-readable
// ticket numbers.
package identity

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Sequence hands out strictly increasing positive identifiers. Values are
// never reused, even after the record they were issued for is deleted.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a sequence whose first value is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Observe advances the sequence past id so that externally supplied
// identifiers are never handed out again.
func (s *Sequence) Observe(id int64) {
	for {
		cur := s.last.Load()
		if id <= cur || s.last.CompareAndSwap(cur, id) {
			return
		}
	}
}

const numberLayout = "20060102150405"

// NumberGenerator derives ticket numbers such as TKT-20250101120000 from a
// timestamp. Numbers have second granularity; callers that need uniqueness
// use Candidate to disambiguate.
type NumberGenerator struct {
	prefix string
}

// NewNumberGenerator builds a generator using prefix, defaulting to TKT.
func NewNumberGenerator(prefix string) *NumberGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "TKT"
	}
	return &NumberGenerator{prefix: prefix}
}

// Generate returns the base ticket number for now.
func (g *NumberGenerator) Generate(now time.Time) string {
	return g.prefix + "-" + now.Format(numberLayout)
}

// Candidate returns the attempt-th candidate for now. Attempt 1 is the base
// number, later attempts carry a -N suffix.
func (g *NumberGenerator) Candidate(now time.Time, attempt int) string {
	base := g.Generate(now)
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}
