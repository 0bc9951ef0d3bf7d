package day

import (
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/constants"
)

type SuppressCmd struct {
	ID string `arg:"" help:"Instance ID (or unique prefix) to hide or unhide for the day."`

	Date string `help:"Date to apply the suppression to (YYYY-MM-DD), defaults to today."`
}

func (c *SuppressCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}

	inst, err := findInstance(ctx, date, c.ID)
	if err != nil {
		return err
	}

	hidden, err := ctx.Service.ToggleSuppression(ctx.Patient, date, inst.Window, inst.ItemID)
	if err != nil {
		return err
	}

	if hidden {
		fmt.Printf("Hidden %s (%s) for %s. It returns tomorrow.\n", inst.ItemName, inst.Window, date)
	} else {
		fmt.Printf("Unhidden %s (%s) for %s.\n", inst.ItemName, inst.Window, date)
	}
	return nil
}

type SuppressResetCmd struct {
	Date string `help:"Date to reset (YYYY-MM-DD), defaults to today."`
}

func (c *SuppressResetCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}

	if err := ctx.Service.ResetSuppression(ctx.Patient, date); err != nil {
		return err
	}
	fmt.Printf("Cleared all hidden entries for %s.\n", date)
	return nil
}
