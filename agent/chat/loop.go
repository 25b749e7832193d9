package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/bluecastapp/bluecast/agent/agents/orchestrator"
)

const prompt = "you> "

// Loop drives a line-oriented conversation against the orchestrator:
// one line in, one reply out, until EOF or an exit command.
type Loop struct {
	orch      *orchestratorx.Orchestrator
	userID    string
	sessionID string

	in  io.Reader
	out io.Writer
}

func NewLoop(orch *orchestratorx.Orchestrator, userID, sessionID string, in io.Reader, out io.Writer) (*Loop, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}
	if in == nil || out == nil {
		return nil, errors.New("input and output streams are required")
	}
	return &Loop{
		orch:      orch,
		userID:    userID,
		sessionID: sessionID,
		in:        in,
		out:       out,
	}, nil
}

func isExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Run reads lines until EOF or an exit command. Per-turn failures are
// reported inline and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	fmt.Fprintln(l.out, "Tell me about the waves you like, and I'll find you a surf window. Type 'exit' to leave.")

	scanner := bufio.NewScanner(l.in)
	for {
		fmt.Fprint(l.out, prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExitCommand(line) {
			fmt.Fprintln(l.out, "See you in the water.")
			return nil
		}

		reply, err := l.orch.HandleTurn(ctx, l.userID, l.sessionID, line)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(l.out, "Something went wrong with that one. Try again?")
			continue
		}
		fmt.Fprintln(l.out, reply)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
