package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
	logx "github.com/tanpawarit/career-mentor-ai/pkg/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the mentor in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		logx.Redirect(os.Stderr)

		a, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		named := sessionID != ""
		if !named {
			sessionID = uuid.NewString()
		}

		ctx := context.Background()
		welcome, turns, err := openSession(ctx, a.orchestrator, sessionID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", welcome)
		if turns > 0 {
			fmt.Fprintf(out, "[resumed session %s, %d earlier turns]\n\n", sessionID, turns)
		}

		sink := contractx.SinkFunc(func(_ context.Context, fragment string) error {
			_, err := fmt.Fprint(out, fragment)
			return err
		})

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "you> ")
			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "/quit" || text == "/exit" {
				break
			}

			// Ctrl-C cancels the running turn only.
			turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
			res, err := a.orchestrator.HandleMessage(turnCtx, sessionID, text, sink)
			stop()
			switch {
			case errors.Is(err, contractx.ErrTurnCanceled):
				fmt.Fprintln(out, "\n[canceled]")
				continue
			case err != nil:
				return err
			}
			fmt.Fprintf(out, "\n[%s]\n\n", res.Specialist)
		}

		if err := scanner.Err(); err != nil {
			return err
		}
		if named {
			return nil
		}
		return a.orchestrator.EndSession(ctx, sessionID)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "session to resume or create; kept after exit (random and discarded when empty)")
}

type sessionOpener interface {
	Welcome() string
	StartSession(ctx context.Context, sessionID string) (string, error)
	History(ctx context.Context, sessionID string) (statex.History, error)
}

// openSession resumes sessionID when it already has a history and starts a
// fresh one otherwise. turns is the number of earlier exchanges.
func openSession(ctx context.Context, svc sessionOpener, sessionID string) (string, int, error) {
	h, err := svc.History(ctx, sessionID)
	switch {
	case err == nil:
		return svc.Welcome(), h.Turns(), nil
	case !errors.Is(err, contractx.ErrSessionNotFound):
		return "", 0, err
	}
	welcome, err := svc.StartSession(ctx, sessionID)
	return welcome, 0, err
}
