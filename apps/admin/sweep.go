package main

import (
	"context"
	"fmt"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
)

// sweep marks the absentees of date, or of every due day when date is zero.
func (cli *commandLine) sweep(date core.Date) error {
	ctx := context.Background()

	var results []attendance.SweepResult
	if date.IsZero() {
		var err error
		if results, err = cli.attSvc.RunDueSweep(ctx); err != nil {
			return err
		}
	} else {
		res, err := cli.attSvc.Sweep(ctx, date)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		fmt.Fprintln(cli.writer(), "nothing to sweep")
	}
	for _, res := range results {
		if res.Skipped != "" {
			fmt.Fprintf(cli.writer(), "%s: skipped (%s)\n", res.Date, res.Skipped)
			continue
		}
		fmt.Fprintf(cli.writer(), "%s: absent=%d on_leave=%d\n", res.Date, res.Absent, res.OnLeave)
	}
	return nil
}
