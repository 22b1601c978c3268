package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saihaj/DOGE-AI-sub000/internal/config"
	"github.com/saihaj/DOGE-AI-sub000/internal/resolve"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// chatCmd runs an interactive loop, resolving context after every turn.
// The config file is watched while the loop runs, so an active congress
// rollover takes effect without restarting the session.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session that resolves context after each message",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var mu sync.Mutex
		assembler := st.assembler

		watcher, err := config.NewWatcher(configPath)
		if err != nil {
			logger.Warn("config watching unavailable", zap.Error(err))
		} else {
			defer watcher.Stop()
			go func() {
				err := watcher.Watch(ctx, func(next *config.Config) {
					if err := next.Validate(); err != nil {
						logger.Warn("ignoring invalid config change", zap.Error(err))
						return
					}
					rcfg := resolve.Config{
						DistanceThreshold: next.Resolution.DistanceThreshold,
						CandidateLimit:    next.Resolution.CandidateLimit,
						ActiveCongress:    next.Resolution.ActiveCongress,
						AgentStepCap:      next.Resolution.AgentStepCap,
					}
					chain := resolve.NewChain(st.store, st.embedder, st.client, rcfg)
					docs := resolve.NewDocumentRetriever(st.store, st.embedder, st.client, rcfg)
					mu.Lock()
					assembler = resolve.NewAssembler(chain, docs)
					mu.Unlock()
					logger.Info("config reloaded",
						zap.String("congress", next.Resolution.ActiveCongress))
				})
				if err != nil && ctx.Err() == nil {
					logger.Warn("config watcher stopped", zap.Error(err))
				}
			}()
		}

		fmt.Println("billctx chat - type a message, 'exit' to quit")

		var conversation []types.ConversationMessage
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}

			conversation = append(conversation, types.ConversationMessage{
				Role:    types.RoleUser,
				Content: line,
			})

			mu.Lock()
			current := assembler
			mu.Unlock()
			bundle := current.Assemble(ctx, conversation, line)

			if bundle.HasBill() {
				fmt.Printf("bill: %s (%s, congress %s)\n",
					bundle.Bill.Title, bundle.Bill.ID, bundle.Bill.Congress)
			} else {
				fmt.Println("bill: none resolved")
			}
			if bundle.HasDocuments() {
				fmt.Printf("documents: %d chars of supporting text\n", len(bundle.Documents))
			} else {
				fmt.Println("documents: none")
			}
		}
		return scanner.Err()
	},
}
