package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"finpanel/internal/amqp"
	"finpanel/internal/cli"
	"finpanel/internal/config"
	"finpanel/internal/log"
)

type eventCmd struct {
	eventType string
	recordID  string
	dotenv    string
}

func (*eventCmd) Name() string     { return "event" }
func (*eventCmd) Synopsis() string { return "publish a ledger change event" }
func (*eventCmd) Usage() string {
	return `finpanel event -type <type> [-id <record>]

  Publishes a ledger event so running workers refresh immediately.
  Types: bill.created, bill.updated, bill.deleted, finance.changed,
  investment.changed, goal.changed.
`
}

func (c *eventCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.eventType, "type", string(amqp.EventFinanceChanged), "event type")
	f.StringVar(&c.recordID, "id", "", "id of the changed record")
	f.StringVar(&c.dotenv, "env", "", "load this .env file instead of ./.env")
}

func (c *eventCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ev := amqp.NewLedgerEvent(amqp.EventType(c.eventType), c.recordID)
	if !ev.Type.Known() {
		fmt.Fprintf(os.Stderr, "Error: unknown event type %q\n", c.eventType)
		return subcommands.ExitUsageError
	}

	if c.dotenv != "" {
		cli.LoadEnvFile(c.dotenv)
	} else {
		cli.LoadEnvFile()
	}
	logger := cli.SetupLogger("warn").WithComponent(log.ComponentCLI)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.AMQPURL == "" {
		fmt.Fprintln(os.Stderr, "Error: AMQP_URL is not set")
		return subcommands.ExitUsageError
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPNotifyQueue, cfg.AMQPEventsQueue, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	if err := client.PublishLedgerEvent(ctx, ev); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Published %s (%s)\n", ev.Type, ev.ID)
	return subcommands.ExitSuccess
}
