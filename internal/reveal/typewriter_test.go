package reveal

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestRevealedCountTable(t *testing.T) {
	const (
		delay = 300 * time.Millisecond
		speed = 40 * time.Millisecond
	)

	tests := []struct {
		name    string
		total   int
		elapsed time.Duration
		want    int
	}{
		{"before delay", 10, 299 * time.Millisecond, 0},
		{"at delay", 10, 300 * time.Millisecond, 0},
		{"one step in", 10, 340 * time.Millisecond, 1},
		{"mid text", 10, 300*time.Millisecond + 5*speed, 5},
		{"clamped at total", 10, 10 * time.Second, 10},
		{"empty text", 0, time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RevealedCount(tt.total, delay, speed, tt.elapsed))
		})
	}
}

func TestRevealedCountProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	delay := 300 * time.Millisecond
	speed := 40 * time.Millisecond

	properties.Property("count is clamped to [0, total]", prop.ForAll(
		func(total int, elapsedMs int) bool {
			n := RevealedCount(total, delay, speed, time.Duration(elapsedMs)*time.Millisecond)
			return n >= 0 && n <= total
		},
		gen.IntRange(0, 10000),
		gen.IntRange(0, 1000000),
	))

	properties.Property("count is monotonic in elapsed time", prop.ForAll(
		func(total int, a, b int) bool {
			if a > b {
				a, b = b, a
			}
			na := RevealedCount(total, delay, speed, time.Duration(a)*time.Millisecond)
			nb := RevealedCount(total, delay, speed, time.Duration(b)*time.Millisecond)
			return na <= nb
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 100000),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t)
}

func TestTypewriterCurrentIsRuneSafe(t *testing.T) {
	tw := NewTypewriter("héllo 🎂", 0, 10*time.Millisecond)

	// Drive the clock manually.
	base := time.Now()
	tw.start = base
	tw.now = func() time.Time { return base.Add(35 * time.Millisecond) }

	// 3 runes revealed, never a split UTF-8 sequence.
	assert.Equal(t, "hél", tw.Current())
	assert.False(t, tw.Done())

	tw.now = func() time.Time { return base.Add(time.Hour) }
	assert.Equal(t, "héllo 🎂", tw.Current())
	assert.True(t, tw.Done())
}

func TestTypewriterRunDeliversFullTextOnce(t *testing.T) {
	tw := NewTypewriter("abc", 0, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var prefixes []string
	finals := 0
	tw.Run(ctx, time.Millisecond, func(prefix string, done bool) {
		prefixes = append(prefixes, prefix)
		if done {
			finals = finals + 1
		}
	})

	assert.Equal(t, 1, finals)
	assert.Equal(t, "abc", prefixes[len(prefixes)-1])
	// Prefixes only ever grow.
	for i := 1; i < len(prefixes); i++ {
		assert.GreaterOrEqual(t, len(prefixes[i]), len(prefixes[i-1]))
	}
}

func TestTypewriterRunStopsOnCancel(t *testing.T) {
	tw := NewTypewriter("slow text", time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	tw.Run(ctx, time.Millisecond, func(string, bool) { calls++ })

	// Nothing was revealed before cancellation, and the zero-length
	// prefix is reported at most once.
	assert.LessOrEqual(t, calls, 1)
}
