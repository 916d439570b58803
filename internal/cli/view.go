package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/keepsakelabs/giftvault/internal/media"
	"github.com/keepsakelabs/giftvault/internal/models"
	"github.com/keepsakelabs/giftvault/internal/reveal"
)

// terminalView renders reveal phases as terminal output. Message text
// is typed out character by character using the reveal typewriter.
type terminalView struct {
	ctx    context.Context
	out    io.Writer
	letter string
}

func newTerminalView(ctx context.Context, out io.Writer, letter string) *terminalView {
	return &terminalView{ctx: ctx, out: out, letter: letter}
}

func (v *terminalView) ShowPhase(p reveal.Phase) {
	switch p {
	case reveal.PhaseLocked:
		fmt.Fprintln(v.out, "\n  [ locked ]")
	case reveal.PhaseBlackfade:
		fmt.Fprintln(v.out, "\n  ...")
	case reveal.PhaseGreeting:
		fmt.Fprintln(v.out, "\n  *** HAPPY BIRTHDAY! ***")
	case reveal.PhaseMemories:
		fmt.Fprintln(v.out, "\n  --- our memories ---")
	case reveal.PhaseSurprise:
		fmt.Fprintln(v.out, "\n  There's one more thing... a letter, sealed for today.")
	case reveal.PhaseLetter:
		fmt.Fprintln(v.out, "\n  --- the letter ---")
		v.typeOut(v.letter)
	case reveal.PhaseDashboard:
		fmt.Fprintln(v.out, "\n  Welcome to your vault. Everything stays here for you.")
	}
}

func (v *terminalView) ShowMemory(m models.Memory, index, total int, mediaLeft bool) {
	side := "right"
	if mediaLeft {
		side = "left"
	}
	fmt.Fprintf(v.out, "\nMemory %d of %d", index+1, total)
	if m.HasMedia() {
		fmt.Fprintf(v.out, "  (media on the %s)", side)
	}
	fmt.Fprintln(v.out)
	if m.PhotoURL != "" {
		v.showMediaTag("photo", m.PhotoURL)
	}
	v.typeOut(m.Message)
}

// typeOut types text with the standard delay and speed. Prefixes grow
// monotonically, so only the delta is printed per tick.
func (v *terminalView) typeOut(text string) {
	tw := reveal.NewTypewriter(text, reveal.DefaultTypeDelay, reveal.DefaultTypeSpeed)
	printed := 0
	tw.Run(v.ctx, reveal.DefaultTypeSpeed, func(prefix string, done bool) {
		fmt.Fprint(v.out, prefix[printed:])
		printed = len(prefix)
	})
	fmt.Fprintln(v.out)
}

func (v *terminalView) showVideo(payload string) {
	v.showMediaTag("video", payload)
}

func (v *terminalView) showMediaTag(kind, payload string) {
	mime, data, err := media.Decode(payload)
	if err != nil {
		fmt.Fprintf(v.out, "  [%s unavailable]\n", kind)
		return
	}
	fmt.Fprintf(v.out, "  [%s %s, %.1f MB]\n", kind, mime, float64(len(data))/1024/1024)
}

// terminalPlayer satisfies reveal.Player for a terminal session, where
// playback reduces to a status line.
type terminalPlayer struct {
	out io.Writer
}

func newTerminalPlayer(out io.Writer) *terminalPlayer {
	return &terminalPlayer{out: out}
}

func (p *terminalPlayer) PlayLoop(payload string) error {
	mime, _, err := media.Decode(payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "  [music on: %s, looping]\n", mime)
	return nil
}

func (p *terminalPlayer) Stop() {
	fmt.Fprintln(p.out, "  [music off]")
}
