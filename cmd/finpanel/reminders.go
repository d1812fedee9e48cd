package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"finpanel/internal/report"
	"finpanel/internal/services"
)

type remindersCmd struct {
	view viewFlags
}

func (*remindersCmd) Name() string     { return "reminders" }
func (*remindersCmd) Synopsis() string { return "preview the notifications due now" }
func (*remindersCmd) Usage() string {
	return `finpanel reminders [-now <date>] [-json]

  Lists the bill reminders, overdue notices and budget alert the worker
  would publish, without publishing or marking anything.
`
}

func (c *remindersCmd) SetFlags(f *flag.FlagSet) { c.view.register(f) }

func (c *remindersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx, c.view.dotenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	now, err := e.parseNow(c.view.now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	res, err := e.dash.Service.Snapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	svc := services.NewNotificationService(nil, nil, e.cfg.ReminderDays, e.cfg.DisplayCurrency, e.logger)
	msgs := svc.Candidates(res.Snapshot, now)

	return c.view.print(e, msgs, func(*report.Renderer) (string, error) {
		var b strings.Builder
		b.WriteString("# Notifications\n\n")
		if len(msgs) == 0 {
			b.WriteString("Nothing due.\n")
		}
		for _, m := range msgs {
			fmt.Fprintf(&b, "- **%s** %s (`%s`)\n", m.Title, m.Body, m.Key)
		}
		return b.String(), nil
	})
}
