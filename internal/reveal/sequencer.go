package reveal

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/keepsakelabs/giftvault/internal/models"
)

// Phase timing constants.
const (
	// BlackfadeDuration is how long the dark loading beat lasts.
	BlackfadeDuration = 500 * time.Millisecond
	// GreetingDuration is how long the greeting is displayed.
	GreetingDuration = 2 * time.Second
)

// ErrStopped is returned by actions taken after the sequencer was torn down.
var ErrStopped = errors.New("sequencer stopped")

// Player is the background-audio playback surface. The sequencer is the
// exclusive owner: it starts at most one looping instance and releases it on
// reaching the dashboard.
type Player interface {
	// PlayLoop starts looping playback of a data-URL payload at a moderate
	// fixed volume.
	PlayLoop(payload string) error
	// Stop halts playback and releases the instance.
	Stop()
}

// View receives sequencer callbacks. Implementations render phases; they
// must not call back into the sequencer from within a callback.
type View interface {
	// ShowPhase is invoked on every phase transition.
	ShowPhase(p Phase)
	// ShowMemory is invoked when the memories cursor lands on a memory.
	// mediaLeft conveys the alternating layout parity.
	ShowMemory(m models.Memory, index, total int, mediaLeft bool)
}

// Sequencer drives the reveal phase machine. Transitions are strictly
// sequential: state is committed under the mutex before any callback runs.
type Sequencer struct {
	mu sync.Mutex

	cfg   *models.VaultConfig
	view  View
	sched Scheduler
	audio Player
	log   *slog.Logger

	phase  Phase
	cursor int
	// Per-memory flags, reset on every cursor move.
	expandedShown bool
	videoActive   bool

	musicOn bool
	stopped bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithScheduler replaces the default timer-backed scheduler (for tests).
func WithScheduler(s Scheduler) Option {
	return func(sq *Sequencer) { sq.sched = s }
}

// WithPlayer attaches a background-audio player.
func WithPlayer(p Player) Option {
	return func(sq *Sequencer) { sq.audio = p }
}

// NewSequencer builds a sequencer over the given configuration.
func NewSequencer(cfg *models.VaultConfig, view View, log *slog.Logger, opts ...Option) *Sequencer {
	sq := &Sequencer{
		cfg:   cfg,
		view:  view,
		sched: NewTimerScheduler(),
		log:   log,
		phase: PhaseLocked,
	}
	for _, o := range opts {
		o(sq)
	}
	return sq
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Cursor returns the current memory index.
func (s *Sequencer) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Start enters the flow at blackfade and schedules the timed transitions
// into greeting and memories.
func (s *Sequencer) Start() {
	s.transition(PhaseBlackfade)
	s.sched.After(BlackfadeDuration, func() {
		s.transition(PhaseGreeting)
		s.sched.After(GreetingDuration, func() {
			s.transition(PhaseMemories)
		})
	})
}

// StartLocked enters the flow at locked. The caller owns the eligibility
// poll and calls Start once the gate reports eligible.
func (s *Sequencer) StartLocked() {
	s.transition(PhaseLocked)
}

// Next handles the per-memory action: advance the cursor, or leave the
// memories phase after the last memory.
func (s *Sequencer) Next() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.phase != PhaseMemories {
		s.mu.Unlock()
		return nil
	}
	if s.cursor < len(s.cfg.Memories)-1 {
		s.cursor++
		s.expandedShown = false
		s.videoActive = false
		m := s.cfg.Memories[s.cursor]
		idx, total := s.cursor, len(s.cfg.Memories)
		s.mu.Unlock()
		s.view.ShowMemory(m, idx, total, idx%2 == 0)
		return nil
	}
	s.mu.Unlock()
	s.transition(PhaseSurprise)
	return nil
}

// OpenLetter is the explicit action leaving the surprise phase.
func (s *Sequencer) OpenLetter() error {
	return s.userAdvance(PhaseSurprise, PhaseLetter)
}

// Explore is the explicit action leaving the letter phase.
func (s *Sequencer) Explore() error {
	return s.userAdvance(PhaseLetter, PhaseDashboard)
}

func (s *Sequencer) userAdvance(from, to Phase) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.phase != from {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	s.transition(to)
	return nil
}

// ShowExpanded marks the current memory's expanded message as shown and
// returns its text, or "" if the memory has none.
func (s *Sequencer) ShowExpanded() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseMemories {
		return ""
	}
	m := s.cfg.Memories[s.cursor]
	if m.ExpandedMessage == "" {
		return ""
	}
	s.expandedShown = true
	return m.ExpandedMessage
}

// ActivateVideo marks the current memory's video player active and returns
// the payload, or "" if the memory has no video.
func (s *Sequencer) ActivateVideo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseMemories {
		return ""
	}
	m := s.cfg.Memories[s.cursor]
	if m.VideoURL == "" {
		return ""
	}
	s.videoActive = true
	return m.VideoURL
}

// Stop tears the sequencer down: all pending timers are cancelled and audio
// is released. Further actions return ErrStopped.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	musicOn := s.musicOn
	s.musicOn = false
	s.mu.Unlock()

	s.sched.StopAll()
	if musicOn && s.audio != nil {
		s.audio.Stop()
	}
}

// transition commits the phase change, then runs side effects (audio,
// callbacks). Illegal transitions are dropped with a warning rather than
// panicking a live view.
func (s *Sequencer) transition(to Phase) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.phase != to && !s.phase.CanAdvanceTo(to) {
		from := s.phase
		s.mu.Unlock()
		if s.log != nil {
			s.log.Warn("dropping illegal phase transition", "from", from.String(), "to", to.String())
		}
		return
	}
	s.phase = to
	entering := to == PhaseMemories
	var mem models.Memory
	var idx, total int
	if entering {
		s.cursor = 0
		s.expandedShown = false
		s.videoActive = false
		if len(s.cfg.Memories) > 0 {
			mem, idx, total = s.cfg.Memories[0], 0, len(s.cfg.Memories)
		} else {
			entering = false
		}
	}
	s.mu.Unlock()

	s.syncAudio(to)
	s.view.ShowPhase(to)
	if entering {
		s.view.ShowMemory(mem, idx, total, true)
	}
}

// syncAudio keeps exactly one looping playback instance alive during the
// music phases and releases it on the dashboard.
func (s *Sequencer) syncAudio(p Phase) {
	if s.audio == nil || s.cfg.Audio.BackgroundMusic == "" {
		return
	}

	s.mu.Lock()
	want := p.WantsMusic()
	have := s.musicOn
	s.musicOn = want
	s.mu.Unlock()

	switch {
	case want && !have:
		if err := s.audio.PlayLoop(s.cfg.Audio.BackgroundMusic); err != nil {
			if s.log != nil {
				s.log.Warn("background music failed to start", "error", err)
			}
			s.mu.Lock()
			s.musicOn = false
			s.mu.Unlock()
		}
	case !want && have:
		s.audio.Stop()
	}
}
