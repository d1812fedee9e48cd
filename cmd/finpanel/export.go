package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"finpanel/internal/sheets"
	gsheet "finpanel/internal/sheets/google"
	"finpanel/internal/sheets/memory"
)

type exportCmd struct {
	view   viewFlags
	dryRun bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the dashboard to Google Sheets" }
func (*exportCmd) Usage() string {
	return `finpanel export [-now <date>] [-dry-run]

  Writes the dashboard to GOOGLE_EXPORT_SHEET of GOOGLE_SPREADSHEET_ID.
  With -dry-run the rows are printed instead.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.view.register(f)
	f.BoolVar(&c.dryRun, "dry-run", false, "print the rows instead of writing them")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, view, err := c.view.dashboard(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	var exporter sheets.DashboardExporter
	mem := memory.New(e.cfg.GoogleExportSheet)
	switch {
	case c.dryRun:
		exporter = mem
	case !e.cfg.ExportEnabled():
		fmt.Fprintln(os.Stderr, "Error: GOOGLE_SPREADSHEET_ID is not set (use -dry-run to preview)")
		return subcommands.ExitUsageError
	default:
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   e.cfg.GoogleSpreadsheetID,
			SheetName:       e.cfg.GoogleExportSheet,
			CredentialsJSON: e.cfg.GoogleServiceAccountJSON,
			CredentialsFile: e.cfg.GoogleServiceAccountFile,
		}, e.logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		exporter = client
	}

	rng, err := exporter.Export(ctx, view.Dashboard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.dryRun {
		last, _ := mem.Last()
		for _, row := range last.Rows {
			for i, v := range row {
				if i > 0 {
					fmt.Print("\t")
				}
				fmt.Print(v)
			}
			fmt.Println()
		}
	}
	fmt.Fprintf(os.Stderr, "Exported %s (%s)\n", view.Period, rng)
	return subcommands.ExitSuccess
}
