// Package selection implements choosers for ambiguous GPX documents.
package selection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"calmh.dev/gpx-route/internal/resolve"
	"github.com/mattn/go-isatty"
)

// Prompt asks on Out and reads the answer from In, one line at a time.
type Prompt struct {
	In  io.Reader
	Out io.Writer

	sc *bufio.Scanner
}

func (p *Prompt) Choose(ctx context.Context, cands []resolve.Candidate) (resolve.Label, bool, error) {
	if p.sc == nil {
		p.sc = bufio.NewScanner(p.In)
	}

	fmt.Fprintln(p.Out, "The file contains more than one possible path:")
	for i, c := range cands {
		fmt.Fprintf(p.Out, "  %d) %s\n", i+1, Describe(c))
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		fmt.Fprint(p.Out, "Choose a path (number or name, empty to cancel): ")
		if !p.sc.Scan() {
			fmt.Fprintln(p.Out)
			if err := p.sc.Err(); err != nil {
				return "", false, err
			}
			return "", false, nil
		}

		answer := strings.TrimSpace(p.sc.Text())
		switch strings.ToLower(answer) {
		case "", "q", "quit", "cancel":
			return "", false, nil
		}

		c, err := pick(cands, answer)
		if err != nil {
			fmt.Fprintln(p.Out, err)
			continue
		}
		if c.Empty() {
			fmt.Fprintf(p.Out, "The %s candidate has no points.\n", c.Label)
			continue
		}
		return c.Label, true, nil
	}
}

func pick(cands []resolve.Candidate, answer string) (resolve.Candidate, error) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(cands) {
			return resolve.Candidate{}, fmt.Errorf("no such choice: %d", n)
		}
		return cands[n-1], nil
	}

	l, err := resolve.ParseLabel(answer)
	if err != nil {
		return resolve.Candidate{}, fmt.Errorf("no such choice: %q", answer)
	}
	for _, c := range cands {
		if c.Label == l {
			return c, nil
		}
	}
	return resolve.Candidate{}, fmt.Errorf("no such choice: %q", answer)
}

// Describe renders a candidate on one line.
func Describe(c resolve.Candidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-9s %4d points", c.Label, len(c.Coordinates))
	if len(c.Coordinates) > 1 {
		fmt.Fprintf(&sb, ", %.1f NM", c.LengthNM())
	}
	if len(c.Names) > 0 {
		names := c.Names
		more := ""
		if len(names) > 3 {
			more = fmt.Sprintf(" and %d more", len(names)-3)
			names = names[:3]
		}
		fmt.Fprintf(&sb, " (%s%s)", strings.Join(names, ", "), more)
	}
	return sb.String()
}

// Fixed always chooses the same label.
type Fixed resolve.Label

func (f Fixed) Choose(context.Context, []resolve.Candidate) (resolve.Label, bool, error) {
	return resolve.Label(f), true, nil
}

var ErrNoChooser = errors.New("document is ambiguous and no selection is possible")

// Refuse fails every choice with ErrNoChooser.
type Refuse struct{}

func (Refuse) Choose(context.Context, []resolve.Candidate) (resolve.Label, bool, error) {
	return "", false, ErrNoChooser
}

// ForTerminal returns the chooser for a command line run: the given
// choice if there is one, a prompt when in is a terminal, otherwise a
// refusal.
func ForTerminal(choice string, in *os.File, out io.Writer) (resolve.Chooser, error) {
	if choice != "" {
		l, err := resolve.ParseLabel(choice)
		if err != nil {
			return nil, err
		}
		return Fixed(l), nil
	}
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return &Prompt{In: in, Out: out}, nil
	}
	return Refuse{}, nil
}
