package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

var (
	conversationFile string
	focalQuestion    string
)

// resolveCmd resolves a single conversation to a context bundle.
var resolveCmd = &cobra.Command{
	Use:   "resolve [message...]",
	Short: "Resolve a conversation to a bill and supporting documents",
	Long: `Resolve runs the full context pipeline over a conversation and prints
the resulting bundle as JSON.

The conversation comes either from positional arguments (each argument
becomes one user turn) or from a YAML file via --file:

    - role: user
      content: what is the status of HR 8127?
    - role: assistant
      content: H.R. 8127 is in committee.
    - role: user
      content: who sponsored it?`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conversation, err := loadConversation(args)
		if err != nil {
			return err
		}
		if len(conversation) == 0 {
			return fmt.Errorf("no conversation given: pass messages as arguments or use --file")
		}

		question := focalQuestion
		if question == "" {
			question = conversation[len(conversation)-1].Content
		}

		st, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		logger.Debug("resolving conversation",
			zap.Int("turns", len(conversation)),
			zap.String("congress", cfg.Resolution.ActiveCongress))

		bundle := st.assembler.Assemble(cmd.Context(), conversation, question)

		out, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode bundle: %w", err)
		}
		fmt.Println(string(out))

		if !bundle.HasBill() && !bundle.HasDocuments() {
			logger.Info("no context resolved for conversation")
		}
		return nil
	},
}

// loadConversation builds the conversation from --file or from args.
func loadConversation(args []string) ([]types.ConversationMessage, error) {
	if conversationFile != "" {
		data, err := os.ReadFile(conversationFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read conversation file: %w", err)
		}
		var conversation []types.ConversationMessage
		if err := yaml.Unmarshal(data, &conversation); err != nil {
			return nil, fmt.Errorf("failed to parse conversation file: %w", err)
		}
		for i, msg := range conversation {
			if msg.Role != types.RoleUser && msg.Role != types.RoleAssistant && msg.Role != types.RoleSystem {
				return nil, fmt.Errorf("message %d has unknown role %q", i, msg.Role)
			}
		}
		return conversation, nil
	}

	var conversation []types.ConversationMessage
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		conversation = append(conversation, types.ConversationMessage{
			Role:    types.RoleUser,
			Content: arg,
		})
	}
	return conversation, nil
}
