package regimen

import (
	"fmt"
	"strings"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/models"
)

type ItemAddCmd struct {
	Bucket string `arg:"" help:"Bucket to add the item to (medications, vitals, appointments)."`
	Name   string `arg:"" help:"Item name, e.g. the medication name."`

	Dosage string `help:"Dosage description, e.g. '10mg'."`
	Unit   string `help:"Measurement unit for vitals, e.g. 'mmHg'."`
	Time   string `help:"Custom HH:MM time overriding the bucket's times."`

	Frequency string `help:"Recurrence: daily, every_other_day, weekly, or custom." enum:"daily,every_other_day,weekly,custom" default:"daily"`
	Weekdays  string `help:"Comma-separated weekdays for weekly/custom frequency, e.g. 'mon,thu'."`
	Anchor    string `help:"Anchor date (YYYY-MM-DD) for every_other_day alternation."`

	End     string `help:"End condition: ongoing, until_supply, or end_date." enum:"ongoing,until_supply,end_date" default:"ongoing"`
	EndDate string `help:"Last active date (YYYY-MM-DD) for the end_date condition."`
	Supply  int    `help:"Days of supply on hand for the until_supply condition."`

	ReminderOffset   int `help:"Minutes before the scheduled time to send the primary reminder."`
	FollowUpInterval int `help:"Minutes between follow-up reminders while the dose stays pending."`
	FollowUpMax      int `help:"Maximum number of follow-up reminders."`
}

func (c *ItemAddCmd) Run(ctx *cli.Context) error {
	bt, err := parseBucket(c.Bucket)
	if err != nil {
		return err
	}

	item := models.TrackedItem{
		Name:       c.Name,
		Dosage:     c.Dosage,
		Unit:       c.Unit,
		CustomTime: c.Time,
		Schedule: models.Schedule{
			Frequency:    models.Frequency(c.Frequency),
			AnchorDate:   c.Anchor,
			EndCondition: models.EndCondition(c.End),
			EndDate:      c.EndDate,
		},
		DaysOfSupply:        c.Supply,
		ReminderOffsetMin:   c.ReminderOffset,
		FollowUpIntervalMin: c.FollowUpInterval,
		FollowUpMaxAttempts: c.FollowUpMax,
	}

	if c.Weekdays != "" {
		weekdays, err := cli.ParseWeekdays(c.Weekdays)
		if err != nil {
			return err
		}
		item.Schedule.Weekdays = weekdays
	}

	regimen, err := ctx.Service.AddItem(ctx.Patient, bt, item)
	if err != nil {
		return err
	}

	bucket := regimen.Buckets[bt]
	added := bucket.Items[len(bucket.Items)-1]
	fmt.Printf("Added %s to %s (id: %s)\n", added.Name, bt, added.ID)
	return nil
}

type ItemListCmd struct {
	Bucket string `arg:"" optional:"" help:"Limit the listing to one bucket."`
}

func (c *ItemListCmd) Run(ctx *cli.Context) error {
	regimen, err := ctx.Service.GetRegimen(ctx.Patient)
	if err != nil {
		return err
	}

	buckets := models.AllBucketTypes()
	if c.Bucket != "" {
		bt, err := parseBucket(c.Bucket)
		if err != nil {
			return err
		}
		buckets = []models.BucketType{bt}
	}

	found := 0
	for _, bt := range buckets {
		for _, item := range regimen.Buckets[bt].Items {
			found++
			fmt.Printf("%s  [%s] %s", item.ID, bt, item.Name)
			if item.Dosage != "" {
				fmt.Printf(" (%s)", item.Dosage)
			}
			if item.CustomTime != "" {
				fmt.Printf(" at %s", item.CustomTime)
			}
			fmt.Printf("  %s", cli.FormatSchedule(item.Schedule))
			if item.Schedule.EndCondition == models.EndUntilSupply {
				fmt.Printf("  %d day(s) of supply left", item.SupplyRemaining())
			}
			fmt.Println()
		}
	}
	if found == 0 {
		fmt.Println("No tracked items. Add one with 'caretrack item add'.")
	}
	return nil
}

type ItemRemoveCmd struct {
	ID string `arg:"" help:"ID of the item to remove."`
}

func (c *ItemRemoveCmd) Run(ctx *cli.Context) error {
	regimen, err := ctx.Service.GetRegimen(ctx.Patient)
	if err != nil {
		return err
	}

	for _, bt := range models.AllBucketTypes() {
		for _, item := range regimen.Buckets[bt].Items {
			if item.ID == c.ID || strings.HasPrefix(item.ID, c.ID) {
				if _, err := ctx.Service.RemoveItem(ctx.Patient, bt, item.ID); err != nil {
					return err
				}
				fmt.Printf("Removed %s from %s\n", item.Name, bt)
				return nil
			}
		}
	}
	return fmt.Errorf("no tracked item with id %s", c.ID)
}
