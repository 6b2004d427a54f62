package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amnesthesia/dz-app/internal/session"
)

func newLoadsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "loads",
		Short: "List today's loads",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			printViews(e.session.Views(time.Now().UTC()))
			return nil
		},
	}
}

func newWatchCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll the load list and reprint it on every refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pollErr := make(chan error, 1)
			go func() {
				pollErr <- e.poller.Run(ctx)
			}()

			ticker := time.NewTicker(e.cfg.PollInterval())
			defer ticker.Stop()

			printViews(e.session.Views(time.Now().UTC()))
			for {
				select {
				case <-ticker.C:
					printViews(e.session.Views(time.Now().UTC()))
				case err := <-pollErr:
					if ctx.Err() != nil {
						return nil
					}
					return err
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}

func printViews(views []session.LoadView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LOAD\tNAME\tPLANE\tSLOTS\tSTATE\tCOUNTDOWN")
	for _, v := range views {
		countdown := "-"
		if v.CountdownRemaining > 0 {
			countdown = v.CountdownRemaining.Round(time.Second).String()
		}
		fmt.Fprintf(w, "#%d\t%s\t%s\t%d/%d\t%s\t%s\n",
			v.LoadNumber, v.Name, v.PlaneName, v.SlotCount, v.MaxSlots, v.State, countdown)
	}
	w.Flush()
}
