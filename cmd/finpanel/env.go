package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"finpanel/internal/cli"
	"finpanel/internal/config"
	"finpanel/internal/core"
	"finpanel/internal/log"
	"finpanel/internal/report"
	"finpanel/internal/services"
)

var commands = []subcommands.Command{
	&dashboardCmd{},
	&installmentsCmd{},
	&portfolioCmd{},
	&remindersCmd{},
	&exportCmd{},
	&eventCmd{},
}

// viewFlags are shared by every command that renders a dashboard.
type viewFlags struct {
	now    string
	json   bool
	width  int
	dotenv string
}

func (v *viewFlags) register(f *flag.FlagSet) {
	f.StringVar(&v.now, "now", "", "evaluate at this date (YYYY-MM-DD or RFC 3339, defaults to now)")
	f.BoolVar(&v.json, "json", false, "print JSON instead of markdown")
	f.IntVar(&v.width, "width", 100, "terminal word wrap width")
	f.StringVar(&v.dotenv, "env", "", "load this .env file instead of ./.env")
}

// env is the process state a command works with.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	dash   *cli.Dashboards
	loc    *time.Location
}

func openEnv(ctx context.Context, dotenv string) (*env, error) {
	if dotenv != "" {
		cli.LoadEnvFile(dotenv)
	} else {
		cli.LoadEnvFile()
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level).WithComponent(log.ComponentCLI)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	dash, err := cli.OpenDashboards(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, dash: dash, loc: loc}, nil
}

func (e *env) close() {
	if err := e.dash.Close(); err != nil {
		e.logger.Warn("Failed to close dashboards", log.FieldError, err)
	}
}

func (e *env) parseNow(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Now().In(e.loc), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(e.loc), nil
	}
	if t, err := time.ParseInLocation(core.DateLayout, v, e.loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid -now %q: want YYYY-MM-DD or RFC 3339", v)
}

// dashboard opens the environment and computes the dashboard at -now.
func (v *viewFlags) dashboard(ctx context.Context) (*env, services.DashboardView, error) {
	e, err := openEnv(ctx, v.dotenv)
	if err != nil {
		return nil, services.DashboardView{}, err
	}
	now, err := e.parseNow(v.now)
	if err != nil {
		e.close()
		return nil, services.DashboardView{}, err
	}
	view, err := e.dash.Service.Dashboard(ctx, now)
	if err != nil {
		e.close()
		return nil, services.DashboardView{}, err
	}
	return e, view, nil
}

// print writes data as JSON or renders it through render and glamour.
func (v *viewFlags) print(e *env, data any, render func(*report.Renderer) (string, error)) subcommands.ExitStatus {
	if v.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	r, err := report.New(e.cfg.DisplayCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := render(r)
	if err != nil {
		e.logger.Error("Failed to render report", log.FieldOperation, log.OpRender, log.FieldError, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md, v.width)
	return subcommands.ExitSuccess
}

func printMarkdown(md string, width int) {
	out, err := report.Terminal(md, width)
	if err != nil {
		// fall back to the raw markdown
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
