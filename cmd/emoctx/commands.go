package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/emocontext/plugin/ai"
	aicontext "github.com/hrygo/emocontext/plugin/ai/context"
	"github.com/hrygo/emocontext/plugin/ai/metrics"
	"github.com/hrygo/emocontext/store"
)

// withPipeline opens the store, runs fn against a wired pipeline and closes
// everything afterwards.
func withPipeline(cmd *cobra.Command, fn func(*pipeline) error) error {
	prof, err := loadProfile()
	if err != nil {
		return err
	}
	cfg, err := ai.NewConfigFromProfile(prof)
	if err != nil {
		return errors.Wrap(err, "invalid pipeline configuration")
	}
	s, err := openStore(cmd, prof)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Warn("failed to close store", slog.String("error", err.Error()))
		}
	}()

	p := newPipeline(s, cfg)
	defer p.Close()
	return fn(p)
}

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import emotional memory records from a JSON or YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecordsFile(file)
			if err != nil {
				return err
			}
			return withPipeline(cmd, func(p *pipeline) error {
				ctx := cmd.Context()
				touched := make(map[string]struct{})
				for _, r := range records {
					if _, err := p.memory.SaveRecord(ctx, r); err != nil {
						return errors.Wrapf(err, "failed to save record %q", r.ID)
					}
					for _, participant := range r.Participants {
						touched[participant.ID] = struct{}{}
					}
				}
				for id := range touched {
					if err := p.assembler.InvalidateParticipant(ctx, id); err != nil {
						return err
					}
				}
				slog.Info("imported records",
					slog.Int("records", len(records)),
					slog.Int("participants", len(touched)),
				)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "records file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type assembleFlags struct {
	participant string
	goal        string
	detail      string
	maxTokens   int
	metricsFile string
}

func (f *assembleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.participant, "participant", "", "participant id")
	cmd.Flags().StringVar(&f.goal, "goal", "", "conversation goal")
	cmd.Flags().StringVar(&f.detail, "detail", "standard", "detail level (brief, standard or detailed)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "token ceiling, 0 uses the configured default")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	_ = cmd.MarkFlagRequired("participant")
}

func (f *assembleFlags) request() (*aicontext.AssembleRequest, error) {
	level, err := aicontext.ParseDetailLevel(f.detail)
	if err != nil {
		return nil, err
	}
	return &aicontext.AssembleRequest{
		ParticipantID:    f.participant,
		ConversationGoal: f.goal,
		DetailLevel:      level,
		MaxTokens:        f.maxTokens,
	}, nil
}

func (f *assembleFlags) run(cmd *cobra.Command, render func(io.Writer, *aicontext.Bundle) error) error {
	req, err := f.request()
	if err != nil {
		return err
	}
	return withPipeline(cmd, func(p *pipeline) error {
		bundle, err := p.assembler.Assemble(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := render(cmd.OutOrStdout(), bundle); err != nil {
			return err
		}
		return p.writeMetrics(f.metricsFile)
	})
}

func newAssembleCmd() *cobra.Command {
	f := &assembleFlags{}
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble a context bundle for a participant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.run(cmd, func(w io.Writer, b *aicontext.Bundle) error {
				return writeJSON(w, b)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newQualityCmd() *cobra.Command {
	f := &assembleFlags{}
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Report the quality metrics of an assembled context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.run(cmd, func(w io.Writer, b *aicontext.Bundle) error {
				return writeJSON(w, b.Optimization)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var since time.Duration
	var purge bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show persisted assembly metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd, func(p *pipeline) error {
				stats, err := p.metrics.GetStats(cmd.Context(), metrics.TimeRange{Start: time.Now().Add(-since)})
				if err != nil {
					return err
				}
				if purge {
					before := time.Now().Add(-since)
					if err := purgeMetrics(cmd, p, before); err != nil {
						return err
					}
				}
				return writeJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "window to report")
	cmd.Flags().BoolVar(&purge, "purge", false, "delete persisted metrics older than the window")
	return cmd
}

func purgeMetrics(cmd *cobra.Command, p *pipeline, before time.Time) error {
	return p.store.DeleteAssemblyMetrics(cmd.Context(), &store.DeleteAssemblyMetrics{BeforeTime: &before})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
