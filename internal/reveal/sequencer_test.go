package reveal

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepsakelabs/giftvault/internal/models"
)

// manualScheduler queues callbacks and fires them on demand, so tests
// control timing.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	stopped bool
}

func (s *manualScheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
	return func() {}
}

func (s *manualScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.stopped = true
}

// fire runs the oldest pending callback.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	fn := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()
	fn()
}

// recordingView records every callback for assertions.
type recordingView struct {
	mu       sync.Mutex
	phases   []Phase
	memories []models.Memory
	parities []bool
}

func (v *recordingView) ShowPhase(p Phase) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.phases = append(v.phases, p)
}

func (v *recordingView) ShowMemory(m models.Memory, index, total int, mediaLeft bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.memories = append(v.memories, m)
	v.parities = append(v.parities, mediaLeft)
}

// countingPlayer counts playback starts and stops.
type countingPlayer struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (p *countingPlayer) PlayLoop(payload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	return nil
}

func (p *countingPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func memoriesConfig(n int) *models.VaultConfig {
	cfg := &models.VaultConfig{
		SchemaVersion: models.SchemaVersion,
		BirthdayDate:  "2025-02-21",
		SecretKeyHash: "hash",
	}
	for i := 0; i < n; i++ {
		cfg.AddMemory(models.Memory{
			ID:      fmt.Sprintf("m%d", i),
			Number:  i + 1,
			Message: fmt.Sprintf("memory %d", i),
		})
	}
	return cfg
}

func TestSequencerEntrySequence(t *testing.T) {
	sched := &manualScheduler{}
	view := &recordingView{}
	seq := NewSequencer(memoriesConfig(3), view, nil, WithScheduler(sched))

	seq.Start()
	assert.Equal(t, PhaseBlackfade, seq.Phase())

	sched.fire()
	assert.Equal(t, PhaseGreeting, seq.Phase())

	sched.fire()
	assert.Equal(t, PhaseMemories, seq.Phase())
	assert.Equal(t, 0, seq.Cursor())

	assert.Equal(t, []Phase{PhaseBlackfade, PhaseGreeting, PhaseMemories}, view.phases)
	require.Len(t, view.memories, 1)
	assert.Equal(t, "m0", view.memories[0].ID)
	assert.True(t, view.parities[0], "first memory shows media on the left")
}

func TestSequencerFullWalk(t *testing.T) {
	sched := &manualScheduler{}
	view := &recordingView{}
	seq := NewSequencer(memoriesConfig(3), view, nil, WithScheduler(sched))

	seq.Start()
	sched.fire()
	sched.fire()

	require.NoError(t, seq.Next())
	assert.Equal(t, 1, seq.Cursor())
	require.NoError(t, seq.Next())
	assert.Equal(t, 2, seq.Cursor())

	// Past the last memory the phase leaves memories.
	require.NoError(t, seq.Next())
	assert.Equal(t, PhaseSurprise, seq.Phase())

	require.NoError(t, seq.OpenLetter())
	assert.Equal(t, PhaseLetter, seq.Phase())

	require.NoError(t, seq.Explore())
	assert.Equal(t, PhaseDashboard, seq.Phase())

	// Layout parity alternates with the index.
	assert.Equal(t, []bool{true, false, true}, view.parities)
}

func TestSequencerCursorProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("N-1 advances stay in memories, the N-th leaves", prop.ForAll(
		func(n int) bool {
			sched := &manualScheduler{}
			seq := NewSequencer(memoriesConfig(n), &recordingView{}, nil, WithScheduler(sched))
			seq.Start()
			sched.fire()
			sched.fire()

			for i := 0; i < n-1; i++ {
				if err := seq.Next(); err != nil {
					return false
				}
				if seq.Phase() != PhaseMemories || seq.Cursor() != i+1 {
					return false
				}
			}
			if err := seq.Next(); err != nil {
				return false
			}
			return seq.Phase() == PhaseSurprise
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}

func TestSequencerIgnoresOutOfPhaseActions(t *testing.T) {
	sched := &manualScheduler{}
	seq := NewSequencer(memoriesConfig(2), &recordingView{}, nil, WithScheduler(sched))

	seq.Start()
	// Still in blackfade: user actions are no-ops, not errors.
	require.NoError(t, seq.Next())
	require.NoError(t, seq.OpenLetter())
	require.NoError(t, seq.Explore())
	assert.Equal(t, PhaseBlackfade, seq.Phase())
	assert.Equal(t, 0, seq.Cursor())
}

func TestSequencerSingleMusicInstance(t *testing.T) {
	cfg := memoriesConfig(2)
	cfg.Audio.BackgroundMusic = "data:audio/mpeg;base64,AAAA"

	sched := &manualScheduler{}
	player := &countingPlayer{}
	seq := NewSequencer(cfg, &recordingView{}, nil, WithScheduler(sched), WithPlayer(player))

	seq.Start()
	sched.fire() // greeting: music starts
	sched.fire() // memories
	require.NoError(t, seq.Next())
	require.NoError(t, seq.Next()) // surprise
	require.NoError(t, seq.OpenLetter())

	assert.Equal(t, 1, player.starts)
	assert.Equal(t, 0, player.stops)

	require.NoError(t, seq.Explore()) // dashboard: music released
	assert.Equal(t, 1, player.starts)
	assert.Equal(t, 1, player.stops)
}

func TestSequencerStop(t *testing.T) {
	cfg := memoriesConfig(2)
	cfg.Audio.BackgroundMusic = "data:audio/mpeg;base64,AAAA"

	sched := &manualScheduler{}
	player := &countingPlayer{}
	seq := NewSequencer(cfg, &recordingView{}, nil, WithScheduler(sched), WithPlayer(player))

	seq.Start()
	sched.fire() // greeting

	seq.Stop()
	assert.True(t, sched.stopped)
	assert.Equal(t, 1, player.stops)

	assert.ErrorIs(t, seq.Next(), ErrStopped)
	assert.ErrorIs(t, seq.OpenLetter(), ErrStopped)
}

func TestSequencerExpandedAndVideoFlags(t *testing.T) {
	cfg := memoriesConfig(2)
	cfg.Memories[0].ExpandedMessage = "more"
	cfg.Memories[1].VideoURL = "data:video/mp4;base64,AAAA"

	sched := &manualScheduler{}
	seq := NewSequencer(cfg, &recordingView{}, nil, WithScheduler(sched))
	seq.Start()
	sched.fire()
	sched.fire()

	assert.Equal(t, "more", seq.ShowExpanded())
	assert.Equal(t, "", seq.ActivateVideo())

	require.NoError(t, seq.Next())
	assert.Equal(t, "", seq.ShowExpanded())
	assert.Equal(t, "data:video/mp4;base64,AAAA", seq.ActivateVideo())
}
