package main

import (
	"fmt"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/export"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/notion"
	sfpkg "github.com/sells-group/prospector/pkg/salesforce"
)

var exportFlags struct {
	to  string
	out string
}

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a recorded run's contacts",
	Long:  "Exports the contacts of a completed discovery run to a CSV/XLSX file, a Notion contact database, or Salesforce Leads.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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
			return eris.Errorf("run %s has no contacts to export", run.ID)
		}

		switch exportFlags.to {
		case "csv":
			return exportFile(run.Persons, ".csv")
		case "xlsx":
			return exportFile(run.Persons, ".xlsx")
		case "notion":
			return exportNotion(cmd, run.Persons)
		case "salesforce":
			return exportSalesforce(cmd, run.Persons)
		default:
			return eris.Errorf("unknown export target %q, want csv, xlsx, notion, or salesforce", exportFlags.to)
		}
	},
}

func exportFile(persons []model.Person, ext string) error {
	path := exportFlags.out
	if path == "" {
		path = "contacts" + ext
	}

	if ext == ".xlsx" {
		if err := export.WriteXLSX(path, persons); err != nil {
			return err
		}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close() //nolint:errcheck
		if err := export.WriteCSV(f, persons); err != nil {
			return err
		}
	}

	zap.L().Info("export complete", zap.String("path", path), zap.Int("contacts", len(persons)))
	return nil
}

func exportNotion(cmd *cobra.Command, persons []model.Person) error {
	if cfg.Notion.Token == "" || cfg.Notion.ContactDB == "" {
		return eris.New("notion export requires notion.token and notion.contact_db")
	}

	client := notion.NewClient(cfg.Notion.Token)
	created, err := notion.ExportContacts(cmd.Context(), client, cfg.Notion.ContactDB, persons)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "created %d of %d contacts in Notion\n", created, len(persons))
	return nil
}

func exportSalesforce(cmd *cobra.Command, persons []model.Person) error {
	client, err := initSalesforce()
	if err != nil {
		return err
	}

	accepted, err := export.PushLeads(cmd.Context(), client, persons)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "created %d of %d leads in Salesforce\n", accepted, len(persons))
	return nil
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (PROSPECTOR_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.to, "to", "csv", "export target: csv, xlsx, notion, salesforce")
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "output file for csv/xlsx targets")
	rootCmd.AddCommand(exportCmd)
}
