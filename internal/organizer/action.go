package organizer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ActionKind names a mutating filesystem operation.
type ActionKind string

const (
	ActionMove      ActionKind = "move"
	ActionDelete    ActionKind = "delete"
	ActionRemoveDir ActionKind = "remove-dir"
)

// Action describes one mutation offered to a Decider.
type Action struct {
	Kind        ActionKind
	Path        string
	Destination string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("%s --> %s", a.Path, a.Destination)
	case ActionRemoveDir:
		return "remove empty directory " + a.Path
	default:
		return "delete " + a.Path
	}
}

// Mode controls whether actions are applied and whether each one is
// confirmed first.
type Mode struct {
	DryRun  bool
	Confirm bool
}

// Decider approves or declines individual actions in confirm mode.
type Decider interface {
	Confirm(ctx context.Context, action Action) (bool, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, action Action) (bool, error)

func (f DeciderFunc) Confirm(ctx context.Context, action Action) (bool, error) {
	return f(ctx, action)
}

// StaticDecider answers every action the same way.
type StaticDecider bool

func (d StaticDecider) Confirm(context.Context, Action) (bool, error) {
	return bool(d), nil
}

// PromptDecider asks on out and reads y/n answers from in. Anything other
// than y or yes is re-asked; end of input declines.
type PromptDecider struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptDecider builds a PromptDecider.
func NewPromptDecider(in io.Reader, out io.Writer) *PromptDecider {
	return &PromptDecider{in: bufio.NewReader(in), out: out}
}

func (p *PromptDecider) Confirm(ctx context.Context, action Action) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(p.out, "%s ? [y/n] ", action); err != nil {
			return false, err
		}
		line, err := p.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err == io.EOF {
			fmt.Fprintln(p.out)
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}
