package day

import (
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/constants"
)

type LogCmd struct {
	Date string `help:"Date to show log entries for (YYYY-MM-DD), defaults to today."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}

	entries, err := ctx.Service.GetLogEntries(ctx.Patient, date)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Printf("No log entries for %s\n", date)
		return nil
	}

	fmt.Printf("Log for %s:\n", date)
	for _, e := range entries {
		fmt.Printf("  %s  %s  instance %s", e.CreatedAt.Format("15:04"), e.Outcome, shortID(e.InstanceID))
		if v, ok := e.Payload["value"]; ok {
			fmt.Printf("  value=%v", v)
		}
		if e.Note != "" {
			fmt.Printf("  %q", e.Note)
		}
		fmt.Println()
	}
	return nil
}
