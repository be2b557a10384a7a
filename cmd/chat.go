package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talenttrack/hr-assistant/internal/capability"
	"github.com/talenttrack/hr-assistant/internal/engine"
	"github.com/talenttrack/hr-assistant/internal/logger"
	"github.com/talenttrack/hr-assistant/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run a single turn and print the result as JSON",
	Long: `Runs one conversational turn against the HR assistant and prints a JSON
document with the status, the final text, the updated conversation history,
and the capability invocations made. Prior history is passed in with
--history as a JSON array of {"role": ..., "content": ...} turns, so a
caller can hold a conversation across invocations.`,
	RunE: runChat,
}

// chatOutput is the invocation contract for scripted callers. Logs go to the
// configured logger; this document is the only thing written to stdout.
type chatOutput struct {
	Status              string                  `json:"status"`
	FinalResponse       string                  `json:"final_response"`
	ConversationHistory session.History         `json:"conversation_history"`
	ToolCalls           []capability.Invocation `json:"tool_calls"`
}

func init() {
	chatCmd.Flags().String("message", "", "the user message for this turn (required)")
	chatCmd.Flags().String("user-id", "", "identity of the caller, required for candidate role")
	chatCmd.Flags().String("role", string(capability.RoleCandidate), "caller role: admin or candidate")
	chatCmd.Flags().String("history", "", "prior conversation history as a JSON array of turns")

	if err := chatCmd.MarkFlagRequired("message"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	message, _ := cmd.Flags().GetString("message")
	userID, _ := cmd.Flags().GetString("user-id")
	role, _ := cmd.Flags().GetString("role")
	rawHistory, _ := cmd.Flags().GetString("history")

	history, err := parseHistory(rawHistory)
	if err != nil {
		return err
	}

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

	result, err := eng.HandleTurn(ctx, &engine.TurnRequest{
		Utterance: message,
		Role:      capability.Role(strings.ToLower(strings.TrimSpace(role))),
		CallerID:  userID,
		History:   history,
		State:     engine.RestoreState(history),
	})
	if err != nil {
		return err
	}

	return writeOutput(os.Stdout, result)
}

func parseHistory(raw string) (session.History, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var history session.History
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("parsing --history: %w", err)
	}
	return history, nil
}

func writeOutput(w io.Writer, result *engine.TurnResult) error {
	output := chatOutput{
		Status:              result.Status,
		FinalResponse:       result.Text,
		ConversationHistory: result.History,
		ToolCalls:           result.Invocations,
	}
	if output.ConversationHistory == nil {
		output.ConversationHistory = session.History{}
	}
	if output.ToolCalls == nil {
		output.ToolCalls = []capability.Invocation{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
