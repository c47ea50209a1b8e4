package sink

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/tickflow/sink/templates"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

//go:generate go run github.com/valyala/quicktemplate/qtc -dir=templates

// Func adapts a function to a sink.
type Func func(value int) error

func (f Func) Render(value int) error {
	return f(value)
}

// Recorder keeps every rendered value.
type Recorder struct {
	mu     sync.Mutex
	values []int
}

func (r *Recorder) Render(value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
	return nil
}

func (r *Recorder) Values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.values)
}

// Terminal replaces the visible output with the latest value. On a TTY the
// current line is redrawn in place, elsewhere each change is a new line.
// Frames identical to the one on screen are not written again. The frame on
// screen is remembered only as the xxhash fingerprint of its final colored
// text, so a frame is rendered into a reused buffer and never retained.
type Terminal struct {
	w       io.Writer
	label   string
	inPlace bool
	colors  text.Colors
	buf     bytes.Buffer
	last    uint64
	drawn   bool
	redraws int
}

type Option func(*Terminal)

// WithLabel prefixes every frame.
func WithLabel(label string) Option {
	return func(t *Terminal) {
		t.label = label
	}
}

func WithColors(colors ...text.Color) Option {
	return func(t *Terminal) {
		t.colors = colors
	}
}

func WithInPlace(inPlace bool) Option {
	return func(t *Terminal) {
		t.inPlace = inPlace
	}
}

// NewTerminal writes to f, redrawing in place and in color when f is a
// terminal.
func NewTerminal(f *os.File, opts ...Option) *Terminal {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	t := &Terminal{
		w:       f,
		inPlace: tty,
	}
	if tty {
		t.colors = text.Colors{text.Bold, text.FgHiGreen}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewWriter writes one plain line per change to w.
func NewWriter(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{w: w}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) Render(value int) error {
	t.buf.Reset()
	templates.WriteFrame(&t.buf, t.label, value)
	frame := t.buf.String()
	if len(t.colors) > 0 {
		frame = t.colors.Sprint(frame)
	}

	sum := xxhash.Sum64String(frame)
	if t.drawn && sum == t.last {
		return nil
	}
	t.last, t.drawn = sum, true
	t.redraws++

	if t.inPlace {
		_, err := fmt.Fprint(t.w, "\r\x1b[2K", frame)
		return err
	}
	_, err := fmt.Fprintln(t.w, frame)
	return err
}

// Redraws counts frames actually written.
func (t *Terminal) Redraws() int {
	return t.redraws
}

// Close ends an in-place line so later output starts on a fresh one.
func (t *Terminal) Close() error {
	if !t.inPlace || !t.drawn {
		return nil
	}
	_, err := fmt.Fprintln(t.w)
	return err
}
