package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/contacts"
	"github.com/sells-group/prospector/internal/export"
	"github.com/sells-group/prospector/internal/importer"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/store"
)

var findFlags struct {
	file      string
	companies []string
	providers []string
	roles     []string
	seniority string
	market    string
	segment   string
	product   string
	out       string
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Discover contacts at target companies",
	Long:  "Reads a company list from a file or flags, queries the enabled providers in parallel, and prints the merged, deduplicated contact list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		companies, err := loadCompanies()
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return eris.New("no companies given: use --file or --company")
		}

		req := contacts.FindRequest{
			Companies: companies,
			Context: model.SearchContext{
				TargetRoles:     findFlags.roles,
				TargetSeniority: findFlags.seniority,
				Market:          findFlags.market,
				Segment:         findFlags.segment,
				ProductContext:  findFlags.product,
			},
			Providers: selectedProviders(),
		}

		st, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		var runID string
		if st != nil {
			run, err := st.CreateRun(ctx, req.Companies, req.Context)
			if err != nil {
				return err
			}
			runID = run.ID
		}

		resp := newAggregator(cfg).Find(ctx, req)

		if runID != "" {
			recordRun(ctx, st, runID, *resp)
		}

		if err := writeFindOutput(resp); err != nil {
			if runID != "" {
				if ferr := st.FailRun(ctx, runID, err.Error()); ferr != nil {
					zap.L().Error("record run failed", zap.String("run_id", runID), zap.Error(ferr))
				}
			}
			return err
		}
		return nil
	},
}

// recordRun marks the run failed when aggregation reported a request-level
// error, complete otherwise.
func recordRun(ctx context.Context, st store.Store, runID string, resp contacts.FindResponse) {
	var err error
	if resp.Error != "" {
		err = st.FailRun(ctx, runID, resp.Error)
	} else {
		err = st.CompleteRun(ctx, runID, resp.Persons)
	}
	if err != nil {
		zap.L().Error("record run failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	zap.L().Info("run recorded", zap.String("run_id", runID))
}

func loadCompanies() ([]model.Company, error) {
	if findFlags.file != "" {
		return importer.ReadCompanies(findFlags.file)
	}

	var companies []model.Company
	for _, arg := range findFlags.companies {
		name, domain, _ := strings.Cut(arg, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, eris.Errorf("invalid --company value %q, want name[:domain]", arg)
		}
		c := model.Company{Name: name, Domain: strings.TrimSpace(domain)}
		if c.Domain != "" {
			c.ID = c.Domain
		} else {
			c.ID = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
		}
		companies = append(companies, c)
	}
	return companies, nil
}

func selectedProviders() map[string]bool {
	if len(findFlags.providers) == 0 {
		return allProviders()
	}
	enabled := map[string]bool{}
	for _, name := range findFlags.providers {
		enabled[strings.TrimSpace(name)] = true
	}
	return enabled
}

func writeFindOutput(resp *contacts.FindResponse) error {
	switch {
	case findFlags.out == "":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return eris.Wrap(err, "encode response")
		}
	case strings.HasSuffix(findFlags.out, ".xlsx"):
		if err := export.WriteXLSX(findFlags.out, resp.Persons); err != nil {
			return err
		}
	default:
		f, err := os.Create(findFlags.out)
		if err != nil {
			return eris.Wrapf(err, "create %s", findFlags.out)
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteCSV(f, resp.Persons); err != nil {
			return err
		}
	}

	zap.L().Info("discovery complete",
		zap.Int("contacts", len(resp.Persons)),
		zap.Strings("providers_used", resp.Summary.ProvidersUsed))
	return nil
}

func init() {
	findCmd.Flags().StringVarP(&findFlags.file, "file", "f", "", "company list file (.csv or .xlsx)")
	findCmd.Flags().StringArrayVar(&findFlags.companies, "company", nil, "company as name[:domain], repeatable")
	findCmd.Flags().StringSliceVar(&findFlags.providers, "providers", nil, "providers to query (default: all configured)")
	findCmd.Flags().StringSliceVar(&findFlags.roles, "roles", nil, "target job roles")
	findCmd.Flags().StringVar(&findFlags.seniority, "seniority", "", "preferred seniority (c-suite, director, senior)")
	findCmd.Flags().StringVar(&findFlags.market, "market", "", "target market")
	findCmd.Flags().StringVar(&findFlags.segment, "segment", "", "target segment")
	findCmd.Flags().StringVar(&findFlags.product, "product", "", "what you are selling, for AI research context")
	findCmd.Flags().StringVarP(&findFlags.out, "out", "o", "", "output file (.csv or .xlsx; default: JSON to stdout)")
	rootCmd.AddCommand(findCmd)
}
