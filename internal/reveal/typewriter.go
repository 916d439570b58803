package reveal

import (
	"context"
	"time"
)

// Typewriter default tuning, matching the memory message rendering.
const (
	DefaultTypeDelay = 300 * time.Millisecond
	DefaultTypeSpeed = 40 * time.Millisecond
)

// RevealedCount returns how many characters of a text of length total are
// revealed at the given elapsed wall-clock time. The count is derived from
// elapsed time rather than accumulated ticks, so rendering stays correct
// under irregular tick rates:
//
//	clamp(floor((elapsed-delay)/speed), 0, total)
func RevealedCount(total int, delay, speed time.Duration, elapsed time.Duration) int {
	if elapsed < delay || total == 0 {
		return 0
	}
	if speed <= 0 {
		return total
	}
	n := int((elapsed - delay) / speed)
	if n > total {
		return total
	}
	return n
}

// Typewriter reveals a text prefix synchronized to elapsed time. A
// Typewriter is bound to one text/delay/speed triple; changing any of them
// means constructing a new one, which restarts the effect from empty.
type Typewriter struct {
	runes []rune
	delay time.Duration
	speed time.Duration
	start time.Time
	now   func() time.Time
}

// NewTypewriter creates a typewriter over text, started now.
func NewTypewriter(text string, delay, speed time.Duration) *Typewriter {
	tw := &Typewriter{
		runes: []rune(text),
		delay: delay,
		speed: speed,
		now:   time.Now,
	}
	tw.start = tw.now()
	return tw
}

// Current returns the revealed prefix at this moment.
func (t *Typewriter) Current() string {
	n := RevealedCount(len(t.runes), t.delay, t.speed, t.now().Sub(t.start))
	return string(t.runes[:n])
}

// Done reports whether the full text is revealed.
func (t *Typewriter) Done() bool {
	return RevealedCount(len(t.runes), t.delay, t.speed, t.now().Sub(t.start)) == len(t.runes)
}

// Run ticks the typewriter and delivers each growing prefix to fn until the
// text is fully revealed or the context is cancelled. After cancellation no
// further calls to fn are made, so a torn-down view receives no stale
// updates. The final full text is delivered exactly once.
func (t *Typewriter) Run(ctx context.Context, tick time.Duration, fn func(prefix string, done bool)) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := RevealedCount(len(t.runes), t.delay, t.speed, t.now().Sub(t.start))
			if n == last {
				continue
			}
			last = n
			done := n == len(t.runes)
			fn(string(t.runes[:n]), done)
			if done {
				return
			}
		}
	}
}
