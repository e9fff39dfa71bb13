package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/outreach"
	"github.com/sells-group/prospector/pkg/anthropic"
)

var outreachOut string

var outreachCmd = &cobra.Command{
	Use:   "outreach <run-id>",
	Short: "Draft outreach emails for a run's contacts",
	Long:  "Generates one personalized first-touch email per discovered contact using the configured Anthropic model.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Anthropic.Key == "" {
			return eris.New("outreach requires anthropic.key (PROSPECTOR_ANTHROPIC_KEY)")
		}

		st, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("run persistence is not configured: set store.driver")
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		if len(run.Persons) == 0 {
			return eris.Errorf("run %s has no contacts", run.ID)
		}

		gen := outreach.NewGenerator(
			anthropic.NewClient(cfg.Anthropic.Key),
			cfg.Anthropic.Model,
			int64(cfg.Anthropic.MaxTokens),
		)

		drafts, err := gen.DraftAll(ctx, run.Persons, run.Context)
		if err != nil {
			return err
		}
		zap.L().Info("outreach drafting complete",
			zap.Int("drafts", len(drafts)),
			zap.Int("contacts", len(run.Persons)))

		out := os.Stdout
		if outreachOut != "" {
			f, err := os.Create(outreachOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", outreachOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(drafts)
	},
}

func init() {
	outreachCmd.Flags().StringVarP(&outreachOut, "out", "o", "", "write drafts JSON to file (default: stdout)")
	rootCmd.AddCommand(outreachCmd)
}
