package identity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Next(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, int64(1), seq.Next())
	assert.Equal(t, int64(2), seq.Next())
	assert.Equal(t, int64(3), seq.Next())
}

func TestSequence_ConcurrentUnique(t *testing.T) {
	seq := NewSequence()
	const workers, perWorker = 8, 250

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := seq.Next()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker+1), seq.Next())
}

func TestSequence_Observe(t *testing.T) {
	seq := NewSequence()
	seq.Observe(10)
	assert.Equal(t, int64(11), seq.Next())

	seq.Observe(5)
	assert.Equal(t, int64(12), seq.Next())
}

func TestNumberGenerator(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 5, 7, 999, time.UTC)

	gen := NewNumberGenerator("")
	assert.Equal(t, "TKT-20250309140507", gen.Generate(now))
	assert.Equal(t, "TKT-20250309140507", gen.Candidate(now, 1))
	assert.Equal(t, "TKT-20250309140507-2", gen.Candidate(now, 2))

	custom := NewNumberGenerator(" CC ")
	assert.Equal(t, "CC-20250309140507", custom.Generate(now))
}
