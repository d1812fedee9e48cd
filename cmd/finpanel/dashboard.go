package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"finpanel/internal/report"
)

type dashboardCmd struct {
	view viewFlags
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display the financial dashboard" }
func (*dashboardCmd) Usage() string {
	return `finpanel dashboard [-now <date>] [-json]

  Fetches the ledger and displays the monthly rollup, breakdowns, bills,
  budget status and savings goals.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) { c.view.register(f) }

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, view, err := c.view.dashboard(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	return c.view.print(e, view, func(r *report.Renderer) (string, error) {
		return r.Dashboard(view.Dashboard)
	})
}

type installmentsCmd struct {
	view viewFlags
}

func (*installmentsCmd) Name() string     { return "installments" }
func (*installmentsCmd) Synopsis() string { return "list detected installment series" }
func (*installmentsCmd) Usage() string {
	return `finpanel installments [-json]

  Lists bills grouped by issuer when an issuer has more than one bill.
`
}

func (c *installmentsCmd) SetFlags(f *flag.FlagSet) { c.view.register(f) }

func (c *installmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, view, err := c.view.dashboard(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	return c.view.print(e, view.Installments, func(r *report.Renderer) (string, error) {
		return r.Installments(view.Installments)
	})
}

type portfolioCmd struct {
	view viewFlags
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the investment portfolio" }
func (*portfolioCmd) Usage() string {
	return `finpanel portfolio [-json]

  Displays invested and current value per investment type and holding.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) { c.view.register(f) }

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, view, err := c.view.dashboard(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	return c.view.print(e, view.Portfolio, func(r *report.Renderer) (string, error) {
		return r.Portfolio(view.Portfolio)
	})
}
