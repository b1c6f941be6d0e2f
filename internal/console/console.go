// Package console implements line-oriented terminal IO for the host loop
// and dispatched code.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const clearSequence = "\033[H\033[2J"

type line struct {
	text string
	err  error
}

// Console prints to an io.Writer and reads lines from an io.Reader.
//
// A single goroutine reads input and hands lines to ReadLine, so a read can
// be abandoned on context cancellation without losing the next line.
type Console struct {
	in  io.Reader
	out io.Writer

	mu       sync.Mutex
	terminal bool

	start sync.Once
	lines chan line

	headerStyle lipgloss.Style
}

// Option configures a Console.
type Option func(*Console)

// WithTerminal overrides terminal detection on the output.
func WithTerminal(isTerminal bool) Option {
	return func(c *Console) {
		c.terminal = isTerminal
	}
}

// New creates a console. Screen clearing is enabled only when out is a
// terminal.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:       in,
		out:      out,
		terminal: isTerminal(out),
		lines:    make(chan line),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.NormalBorder(), true, false).
			Foreground(lipgloss.Color("86")).
			Padding(0, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the output writer.
func (c *Console) Writer() io.Writer {
	return c.out
}

// IsTerminal reports whether output goes to a terminal.
func (c *Console) IsTerminal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Println writes the operands followed by a newline.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output.
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Clear clears the screen. It does nothing when the output is not a
// terminal, so captured output stays readable.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		io.WriteString(c.out, clearSequence)
	}
}

// Header prints title framed as the menu header, followed by a blank line.
func (c *Console) Header(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		fmt.Fprintln(c.out, c.headerStyle.Render(title))
	} else {
		rule := strings.Repeat("-", 22)
		fmt.Fprintf(c.out, "%s\n%s\n%s\n", rule, title, rule)
	}
	fmt.Fprintln(c.out)
}

// ReadLine prints prompt and waits for the next input line. It returns
// context.Cause(ctx) when ctx is done first, and io.EOF once input is
// exhausted. Trailing carriage returns are stripped.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	c.start.Do(func() { go c.readLoop() })

	if prompt != "" {
		c.Printf("%s: ", prompt)
	}

	select {
	case <-ctx.Done():
		return "", context.Cause(ctx)
	case l, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

func (c *Console) readLoop() {
	defer close(c.lines)

	r := bufio.NewReader(c.in)
	for {
		text, err := r.ReadString('\n')
		if text != "" {
			c.lines <- line{text: strings.TrimRight(text, "\r\n")}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.lines <- line{err: err}
			}
			return
		}
	}
}
