package day

import (
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/models"
)

type CompleteCmd struct {
	ID string `arg:"" help:"Instance ID (or unique prefix) to complete."`

	Date  string `help:"Date the instance belongs to (YYYY-MM-DD), defaults to today."`
	Value string `help:"Measured value for vitals, e.g. '120/80'."`
	Note  string `help:"Free-form note to attach to the log entry."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}

	inst, err := findInstance(ctx, date, c.ID)
	if err != nil {
		return err
	}

	var payload map[string]any
	if c.Value != "" {
		payload = map[string]any{"value": c.Value}
	}

	result, err := ctx.Service.CompleteInstance(inst.ID, outcomeFor(inst.Bucket), payload, c.Note, models.AuditMeta{
		Surface: "cli",
		Action:  "complete",
	})
	if err != nil {
		return err
	}
	if !result.Applied {
		fmt.Printf("%s is already %s, nothing to do\n", inst.ItemName, result.Instance.Status)
		return nil
	}

	fmt.Printf("✓ %s (%s, %s)\n", inst.ItemName, inst.Window, date)
	return nil
}

// outcomeFor maps a bucket to its natural completion outcome.
func outcomeFor(bt models.BucketType) models.Outcome {
	switch bt {
	case models.BucketMedications:
		return models.OutcomeTaken
	case models.BucketVitals:
		return models.OutcomeMeasured
	default:
		return models.OutcomeLogged
	}
}

type SkipCmd struct {
	ID string `arg:"" help:"Instance ID (or unique prefix) to skip."`

	Date string `help:"Date the instance belongs to (YYYY-MM-DD), defaults to today."`
	Note string `help:"Reason for skipping."`
}

func (c *SkipCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format(constants.DateFormat)
	}

	inst, err := findInstance(ctx, date, c.ID)
	if err != nil {
		return err
	}

	result, err := ctx.Service.SkipInstance(inst.ID, c.Note, models.AuditMeta{
		Surface: "cli",
		Action:  "skip",
	})
	if err != nil {
		return err
	}
	if !result.Applied {
		fmt.Printf("%s is already %s, nothing to do\n", inst.ItemName, result.Instance.Status)
		return nil
	}

	fmt.Printf("Skipped %s (%s, %s)\n", inst.ItemName, inst.Window, date)
	return nil
}

type SweepCmd struct{}

func (c *SweepCmd) Run(ctx *cli.Context) error {
	count, err := ctx.Service.SweepMissed(ctx.Patient)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("No overdue entries to mark missed.")
		return nil
	}
	fmt.Printf("Marked %d overdue entr%s as missed.\n", count, pluralY(count))
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
