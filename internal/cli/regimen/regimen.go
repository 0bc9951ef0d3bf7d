package regimen

import (
	"fmt"
	"strings"

	"github.com/mwhitaker/caretrack/internal/care"
	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/models"
)

// parseBucket resolves a user-supplied bucket name to its closed-set type.
func parseBucket(s string) (models.BucketType, error) {
	bt := models.BucketType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range models.AllBucketTypes() {
		if bt == known {
			return bt, nil
		}
	}
	var names []string
	for _, known := range models.AllBucketTypes() {
		names = append(names, string(known))
	}
	return "", fmt.Errorf("unknown bucket %q (expected one of: %s)", s, strings.Join(names, ", "))
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	regimen, err := ctx.Service.GetRegimen(ctx.Patient)
	if err != nil {
		return err
	}

	fmt.Printf("Regimen for %s (version %d)\n\n", regimen.PatientID, regimen.Version)
	for _, bt := range models.AllBucketTypes() {
		bucket := regimen.Buckets[bt]
		state := "disabled"
		if bucket.EffectiveEnabled() {
			state = "enabled"
		}
		fmt.Printf("%-13s %s, %s", bt, state, bucket.Priority)
		if len(bucket.TimesOfDay) > 0 {
			var times []string
			for _, t := range bucket.TimesOfDay {
				times = append(times, string(t))
			}
			fmt.Printf(", %s", strings.Join(times, "/"))
		}
		if len(bucket.CustomTimes) > 0 {
			fmt.Printf(", at %s", strings.Join(bucket.CustomTimes, ","))
		}
		if !bucket.NotificationsEnabled {
			fmt.Printf(", notifications off")
		}
		fmt.Println()

		for _, item := range bucket.Items {
			fmt.Printf("  %s  %s", item.ID, item.Name)
			if item.Dosage != "" {
				fmt.Printf(" (%s)", item.Dosage)
			}
			fmt.Printf("  %s", cli.FormatSchedule(item.Schedule))
			if item.Schedule.EndCondition == models.EndUntilSupply {
				fmt.Printf("  %d day(s) of supply left", item.SupplyRemaining())
			}
			fmt.Println()
		}
	}
	return nil
}

type EnableCmd struct {
	Bucket string `arg:"" help:"Bucket to enable (medications, vitals, meals, ...)."`
}

func (c *EnableCmd) Run(ctx *cli.Context) error {
	bt, err := parseBucket(c.Bucket)
	if err != nil {
		return err
	}
	enabled := true
	if _, err := ctx.Service.UpdateBucket(ctx.Patient, bt, care.BucketPatch{Enabled: &enabled}); err != nil {
		return err
	}
	fmt.Printf("Enabled %s tracking\n", bt)
	return nil
}

type DisableCmd struct {
	Bucket string `arg:"" help:"Bucket to disable."`
}

func (c *DisableCmd) Run(ctx *cli.Context) error {
	bt, err := parseBucket(c.Bucket)
	if err != nil {
		return err
	}
	enabled := false
	if _, err := ctx.Service.UpdateBucket(ctx.Patient, bt, care.BucketPatch{Enabled: &enabled}); err != nil {
		return err
	}
	if bt == models.BucketWellness {
		fmt.Println("Note: wellness check-ins stay active even when the bucket is disabled")
		return nil
	}
	fmt.Printf("Disabled %s tracking\n", bt)
	return nil
}

type SetCmd struct {
	Bucket      string   `arg:"" help:"Bucket to update."`
	Priority    string   `help:"Bucket priority: required, recommended, or optional." enum:"required,recommended,optional," default:""`
	Times       []string `help:"Coarse times of day: morning, afternoon, evening, night." sep:","`
	CustomTimes []string `name:"at" help:"Custom HH:MM times." sep:","`
	Notify      string   `help:"Turn notifications on or off." enum:"on,off," default:""`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	bt, err := parseBucket(c.Bucket)
	if err != nil {
		return err
	}

	var patch care.BucketPatch
	if c.Priority != "" {
		p := models.Priority(c.Priority)
		patch.Priority = &p
	}
	if len(c.Times) > 0 {
		var times []models.TimeOfDay
		for _, t := range c.Times {
			tod := models.TimeOfDay(strings.ToLower(strings.TrimSpace(t)))
			if tod.ClockTime() == "" {
				return fmt.Errorf("unknown time of day %q", t)
			}
			times = append(times, tod)
		}
		patch.TimesOfDay = times
	}
	if len(c.CustomTimes) > 0 {
		patch.CustomTimes = c.CustomTimes
	}
	if c.Notify != "" {
		on := c.Notify == "on"
		patch.NotificationsEnabled = &on
	}

	regimen, err := ctx.Service.UpdateBucket(ctx.Patient, bt, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s (regimen version %d)\n", bt, regimen.Version)
	return nil
}
