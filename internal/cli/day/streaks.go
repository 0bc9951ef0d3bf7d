package day

import (
	"fmt"

	"github.com/mwhitaker/caretrack/internal/cli"
)

type StreaksCmd struct{}

func (c *StreaksCmd) Run(ctx *cli.Context) error {
	streaks, err := ctx.Service.GetStreaks(ctx.Patient)
	if err != nil {
		return err
	}

	if len(streaks) == 0 {
		fmt.Println("No streaks yet. Complete a care entry to start one.")
	} else {
		fmt.Println("Streaks:")
		for _, s := range streaks {
			fmt.Printf("  %-13s current %d, longest %d (last %s)\n", s.Category, s.Current, s.Longest, s.LastDate)
		}
	}

	achievements, err := ctx.Service.GetAchievements(ctx.Patient)
	if err != nil {
		return err
	}
	if len(achievements) > 0 {
		fmt.Println()
		fmt.Println("Achievements:")
		for _, a := range achievements {
			fmt.Printf("  %d-day %s streak (earned %s)\n", a.Threshold, a.Category, a.AwardedAt.Format("2006-01-02"))
		}
	}
	return nil
}
