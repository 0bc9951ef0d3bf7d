package day

import (
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/constants"
)

type RemindCmd struct {
	Date string `help:"Date to plan reminders for (YYYY-MM-DD), defaults to today."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}

	alerts, err := ctx.Service.PlanReminders(ctx.Patient, date, time.Local)
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Printf("No reminders planned for %s\n", date)
		return nil
	}

	fmt.Printf("Planned reminders for %s:\n", date)
	for _, a := range alerts {
		kind := "reminder"
		if a.Attempt > 0 {
			kind = fmt.Sprintf("follow-up %d", a.Attempt)
		}
		fmt.Printf("  %s  %s (%s)  %s\n", a.At.Format("15:04"), a.ItemName, a.Window, kind)
	}
	return nil
}
