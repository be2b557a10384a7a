package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talenttrack/hr-assistant/internal/capability"
	"github.com/talenttrack/hr-assistant/internal/engine"
	"github.com/talenttrack/hr-assistant/internal/logger"
	"github.com/talenttrack/hr-assistant/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive conversation with the HR assistant",
	Long: `Starts an interactive loop that keeps conversation history and routing
state across turns. Type "exit" or "quit" (or press Ctrl-C) to leave.`,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().String("user-id", "", "identity of the caller, required for candidate role")
	replCmd.Flags().String("role", string(capability.RoleCandidate), "caller role: admin or candidate")

	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user-id")
	role, _ := cmd.Flags().GetString("role")

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	ctx := cmd.Context()

	eng, closeStore, err := buildEngine(ctx, config, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		history session.History
		state   = &session.State{}
	)

	prompt := promptui.Prompt{Label: "You"}

	for {
		utterance, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		utterance = strings.TrimSpace(utterance)
		switch strings.ToLower(utterance) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		result, err := eng.HandleTurn(ctx, &engine.TurnRequest{
			Utterance: utterance,
			Role:      capability.Role(strings.ToLower(strings.TrimSpace(role))),
			CallerID:  userID,
			History:   history,
			State:     state,
		})
		if err != nil {
			return err
		}

		fmt.Printf("\nAssistant: %s\n\n", result.Text)

		if result.Status == engine.StatusError {
			// Failed turns keep the prior context so the user can retry.
			log.Debug("turn failed, keeping previous context", zap.Int("history_len", len(history)))
			continue
		}

		history = result.History
		state = result.State
	}
}
