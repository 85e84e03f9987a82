package segment

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command is a Segmenter that shells out to an external tokenizer process
// per line: the raw line goes to stdin, the tokenized line comes back on
// stdout.
type Command struct {
	argv []string
}

// NewCommand creates a Command segmenter from an argv vector.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 {
		return nil, errors.New("segmenter command is empty")
	}
	return &Command{argv: argv}, nil
}

// Segment implements Segmenter.
func (c *Command) Segment(ctx context.Context, text string) (string, error) {
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run segmenter %s: %w", c.argv[0], err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}
