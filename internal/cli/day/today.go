package day

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/windows"
)

type TodayCmd struct {
	Date string `help:"Date to show (YYYY-MM-DD), defaults to today."`
	All  bool   `help:"Include hidden (suppressed) entries."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	now := time.Now()
	date := c.Date
	if date == "" {
		date = now.Format(constants.DateFormat)
	}

	var instances []models.DailyCareInstance
	var err error
	if c.All {
		instances, err = ctx.Service.EnsureInstances(ctx.Patient, date)
	} else {
		instances, err = ctx.Service.VisibleInstances(ctx.Patient, date)
	}
	if err != nil {
		return err
	}

	if len(instances) == 0 {
		fmt.Printf("Nothing scheduled for %s\n", date)
		return nil
	}

	groups := windows.GroupByWindow(date, instances, now)
	for _, g := range groups {
		fmt.Printf("%s (%d/%d, %s)\n", titleCase(string(g.Window)), g.Done, g.Total, g.State)
		for _, inst := range g.Instances {
			fmt.Printf("  %s %s  %s", cli.StatusGlyph(inst.Status), inst.ScheduledAt, inst.ItemName)
			if inst.Detail != "" {
				fmt.Printf(" (%s)", inst.Detail)
			}
			fmt.Printf("  [%s]\n", shortID(inst.ID))
		}
		fmt.Println()
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findInstance resolves a possibly-abbreviated instance ID against a
// day's instances.
func findInstance(ctx *cli.Context, date, id string) (models.DailyCareInstance, error) {
	instances, err := ctx.Service.ListDailyInstances(ctx.Patient, date)
	if err != nil {
		return models.DailyCareInstance{}, err
	}

	var matches []models.DailyCareInstance
	for _, inst := range instances {
		if inst.ID == id {
			return inst, nil
		}
		if strings.HasPrefix(inst.ID, id) {
			matches = append(matches, inst)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.DailyCareInstance{}, fmt.Errorf("no care entry with id %s on %s", id, date)
	default:
		return models.DailyCareInstance{}, fmt.Errorf("id %s is ambiguous (%d matches)", id, len(matches))
	}
}
