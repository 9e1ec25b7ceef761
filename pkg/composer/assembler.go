package composer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/james-see/codecomposer/pkg/errs"
	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/token"
)

// state is the assembler's position in a generation run
type state int

const (
	stateAwaitingTokens state = iota
	stateEmittingBar
	stateFinalizing
	stateDone
)

func (s state) String() string {
	return [...]string{"awaiting_tokens", "emitting_bar", "finalizing", "done"}[s]
}

// Composer generates compositions against a style registry
type Composer struct {
	styles *style.Registry
	logger *slog.Logger
}

// Option configures a Composer
type Option func(*Composer)

// WithStyles replaces the built-in style registry
func WithStyles(reg *style.Registry) Option {
	return func(c *Composer) { c.styles = reg }
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) { c.logger = logger }
}

// New creates a Composer
func New(opts ...Option) *Composer {
	c := &Composer{
		styles: style.Default(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Styles returns the registry the composer resolves styles from
func (c *Composer) Styles() *style.Registry {
	return c.styles
}

// Compose generates a composition with the built-in styles
func Compose(ctx context.Context, tokens []token.Token, opts Options) (*Composition, error) {
	return New().Compose(ctx, tokens, opts)
}

// assembly is the mutable state of one run; it never escapes Compose
type assembly struct {
	settings
	tokens []token.Token
	root   *rhythm.Source
	bars   []Bar
	state  state
	logger *slog.Logger
}

func (a *assembly) transition(to state) {
	a.logger.Debug("assembler state", "from", a.state, "to", to)
	a.state = to
}

// Compose resolves options, then plans every bar and assembles both voices.
// Configuration and input errors are returned before any bar is generated.
func (c *Composer) Compose(ctx context.Context, tokens []token.Token, opts Options) (*Composition, error) {
	s, err := resolve(c.styles, opts)
	if err != nil {
		return nil, err
	}
	for _, w := range s.harmony.Warnings {
		c.logger.Warn("progression substituted", "warning", w)
	}

	a := &assembly{
		settings: s,
		tokens:   tokens,
		root:     rhythm.NewSource(s.seed),
		logger:   c.logger,
	}
	if err := a.run(ctx); err != nil {
		return nil, err
	}

	comp := a.finalize()
	c.logger.Debug("composition assembled",
		"bars", len(comp.Bars), "tokens", len(tokens), "style", s.style.Name, "seed", s.seed)
	return comp, nil
}

func (a *assembly) run(ctx context.Context) error {
	a.transition(stateAwaitingTokens)
	if len(a.tokens) == 0 {
		a.transition(stateFinalizing)
		return nil
	}

	owned := len(a.tokens) * a.barsPerToken
	total := owned
	if rem := total % a.barsPerPhrase; rem != 0 {
		total += a.barsPerPhrase - rem
	}
	a.bars = make([]Bar, total)
	tails := make([]motif, len(a.tokens))

	a.transition(stateEmittingBar)
	if a.parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range a.tokens {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				tail, err := a.planToken(i)
				tails[i] = tail
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for i := range a.tokens {
			if err := ctx.Err(); err != nil {
				return err
			}
			tail, err := a.planToken(i)
			if err != nil {
				return err
			}
			tails[i] = tail
		}
	}

	// phrase padding continues the last token's motif
	m := tails[len(tails)-1]
	for b := owned; b < total; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if m, err = a.planBar(b, -1, m); err != nil {
			return err
		}
	}

	a.transition(stateFinalizing)
	return a.checkSync()
}

// planToken fills the bars owned by token i and returns the motif its last bar ended on
func (a *assembly) planToken(i int) (motif, error) {
	first := i * a.barsPerToken
	m := motif{
		contour: drawContour(a.style, a.root.Derive(first, rhythm.StreamMotif)),
		cursor:  tokenSeed(a.tokens[i]),
	}
	for b := first; b < first+a.barsPerToken; b++ {
		var err error
		if m, err = a.planBar(b, i, m); err != nil {
			return motif{}, err
		}
	}
	return m, nil
}

// planBar generates both voices of bar b; each bar writes only its own slot of a.bars
func (a *assembly) planBar(b, tokenIndex int, m motif) (motif, error) {
	chord := a.harmony.Progression.At(b)

	durations, err := rhythm.GenerateBarDurations(a.style.Rhythm, a.style.SwingRatio, a.root.Derive(b, rhythm.StreamRhythm))
	if err != nil {
		return motif{}, fmt.Errorf("failed to generate rhythm for bar %d: %w", b, err)
	}

	pool := pitchPool(chord, a.harmony.Scale, a.style.BlueNoteProbability, a.octave, a.root.Derive(b, rhythm.StreamBlueNotes))
	melody, next := melodyBar(durations, pool, chord, m)

	acc, err := accompanimentBar(a.bassPattern, chord, a.octave-1, melody, b)
	if err != nil {
		return motif{}, err
	}

	var tok *token.Token
	if tokenIndex >= 0 {
		t := a.tokens[tokenIndex]
		tok = &t
	}

	a.bars[b] = Bar{
		Index:         b,
		Phrase:        b / a.barsPerPhrase,
		TokenIndex:    tokenIndex,
		Token:         tok,
		Chord:         chord,
		Contour:       m.contour,
		Melody:        melody,
		Accompaniment: acc,
	}
	a.logger.Debug("bar planned",
		"bar", b, "token", tokenIndex, "chord", chord.Symbol, "contour", m.contour, "slots", len(melody))
	return next, nil
}

// checkSync verifies both voices reach every bar line together
func (a *assembly) checkSync() error {
	var melodyTotal, accTotal rhythm.Duration
	for b, bar := range a.bars {
		for _, s := range bar.Melody {
			melodyTotal += s.Duration
		}
		for _, s := range bar.Accompaniment {
			accTotal += s.Duration
		}
		want := rhythm.Duration(b+1) * rhythm.Bar
		if melodyTotal != want || accTotal != want {
			return errs.NewInternal("assembler", b,
				"voices out of sync: melody at %d, accompaniment at %d, bar line at %d", melodyTotal, accTotal, want)
		}
	}
	return nil
}

// finalize flattens bars into voices and seals the composition
func (a *assembly) finalize() *Composition {
	comp := &Composition{
		Metadata:      a.metadata(len(a.tokens), len(a.bars)),
		Bars:          a.bars,
		Melody:        Voice{Name: VoiceMelody, Notes: flatten(a.bars, func(b Bar) []Slot { return b.Melody })},
		Accompaniment: Voice{Name: VoiceAccompaniment, Notes: flatten(a.bars, func(b Bar) []Slot { return b.Accompaniment })},
	}
	if comp.Bars == nil {
		comp.Bars = []Bar{}
	}
	a.transition(stateDone)
	return comp
}

func flatten(bars []Bar, slots func(Bar) []Slot) []Note {
	notes := []Note{}
	for _, bar := range bars {
		for _, s := range slots(bar) {
			for _, p := range s.Pitches {
				notes = append(notes, Note{
					Pitch:    p,
					Start:    bar.Start() + s.Offset,
					Duration: s.Duration,
					Velocity: s.Velocity,
					Bar:      bar.Index,
				})
			}
		}
	}
	return notes
}
