package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/saihaj/DOGE-AI-sub000/internal/store"
	"github.com/saihaj/DOGE-AI-sub000/internal/types"
)

// seedFile is the YAML shape accepted by the seed command. Chunks without
// an embedding are embedded during loading.
type seedFile struct {
	Bills []struct {
		ID           string `yaml:"id"`
		Number       int    `yaml:"number"`
		Congress     string `yaml:"congress"`
		Title        string `yaml:"title"`
		Summary      string `yaml:"summary"`
		Content      string `yaml:"content"`
		IntroducedAt string `yaml:"introduced_at"`
	} `yaml:"bills"`
	Documents []struct {
		ID      string `yaml:"id"`
		Title   string `yaml:"title"`
		URL     string `yaml:"url"`
		Source  string `yaml:"source"`
		Content string `yaml:"content"`
	} `yaml:"documents"`
	Chunks []struct {
		ID       string `yaml:"id"`
		ParentID string `yaml:"parent_id"`
		Source   string `yaml:"source"`
		Congress string `yaml:"congress"`
		Text     string `yaml:"text"`
	} `yaml:"chunks"`
}

// seedCmd loads bills, documents and chunks from a YAML fixture file.
var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load bills, documents and chunks from a YAML fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read fixture: %w", err)
		}
		var fixture seedFile
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			return fmt.Errorf("failed to parse fixture: %w", err)
		}

		st, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()

		for _, b := range fixture.Bills {
			var introduced time.Time
			if b.IntroducedAt != "" {
				introduced, err = time.Parse("2006-01-02", b.IntroducedAt)
				if err != nil {
					return fmt.Errorf("bill %s has bad introduced_at %q: %w", b.ID, b.IntroducedAt, err)
				}
			}
			bill := types.Bill{
				ID:           b.ID,
				Number:       b.Number,
				Congress:     b.Congress,
				Title:        b.Title,
				Summary:      b.Summary,
				Content:      b.Content,
				IntroducedAt: introduced,
			}
			if err := st.store.InsertBill(ctx, bill); err != nil {
				return fmt.Errorf("failed to insert bill %s: %w", b.ID, err)
			}
		}

		for _, d := range fixture.Documents {
			doc := types.Document{
				ID:      d.ID,
				Title:   d.Title,
				URL:     d.URL,
				Source:  d.Source,
				Content: d.Content,
			}
			if err := st.store.InsertDocument(ctx, doc); err != nil {
				return fmt.Errorf("failed to insert document %s: %w", d.ID, err)
			}
		}

		if len(fixture.Chunks) > 0 {
			texts := make([]string, len(fixture.Chunks))
			for i, c := range fixture.Chunks {
				texts[i] = c.Text
			}
			embeddings, err := st.embedder.EmbedBatch(ctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed chunks: %w", err)
			}
			if len(embeddings) != len(fixture.Chunks) {
				return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors",
					len(fixture.Chunks), len(embeddings))
			}
			for i, c := range fixture.Chunks {
				source := c.Source
				if source == "" {
					source = store.SourceBill
				}
				id := c.ID
				if id == "" {
					id = uuid.NewString()
				}
				chunk := types.Chunk{
					ID:        id,
					ParentID:  c.ParentID,
					Source:    source,
					Congress:  c.Congress,
					Text:      c.Text,
					Embedding: embeddings[i],
				}
				if err := st.store.InsertChunk(ctx, chunk); err != nil {
					return fmt.Errorf("failed to insert chunk %s: %w", id, err)
				}
			}
		}

		logger.Info("fixture loaded",
			zap.Int("bills", len(fixture.Bills)),
			zap.Int("documents", len(fixture.Documents)),
			zap.Int("chunks", len(fixture.Chunks)))
		fmt.Printf("loaded %d bills, %d documents, %d chunks\n",
			len(fixture.Bills), len(fixture.Documents), len(fixture.Chunks))
		return nil
	},
}
