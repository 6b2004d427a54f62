package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amnesthesia/dz-app/internal/app"
)

func newCreateLoadCmd(cfgPath *string) *cobra.Command {
	var (
		name    string
		planeID string
		open    bool
	)

	cmd := &cobra.Command{
		Use:   "create-load",
		Short: "Create a new load on a plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			load, err := e.loads.CreateLoad(cmd.Context(), app.CreateLoadInput{
				Name:    name,
				PlaneID: planeID,
				IsOpen:  open,
			})
			if err != nil {
				return describe(err)
			}
			fmt.Printf("created load #%d (%s) with %d slots\n", load.LoadNumber, load.ID, load.MaxSlots)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&planeID, "plane", "", "plane id")
	cmd.Flags().BoolVar(&open, "open", true, "accept public manifesting")
	return cmd
}

func newCallCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "call <load-id> <minutes>",
		Short: "Schedule a dispatch call (5, 10, 15 or 20 minutes)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := time.ParseDuration(args[1] + "m")
			if err != nil {
				return fmt.Errorf("invalid minutes %q", args[1])
			}

			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			load, err := e.loads.ScheduleCall(cmd.Context(), args[0], minutes)
			if err != nil {
				return describe(err)
			}
			fmt.Printf("load #%d dispatches at %s\n", load.LoadNumber, load.DispatchAt.Format(time.Kitchen))
			return nil
		},
	}
}

func newCancelCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <load-id>",
		Short: "Cancel a pending dispatch call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			load, err := e.loads.CancelCall(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Printf("dispatch call cancelled for load #%d\n", load.LoadNumber)
			return nil
		},
	}
}

func newLandedCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "landed <load-id>",
		Short: "Mark a dispatch-due load as landed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			load, err := e.loads.MarkLanded(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			fmt.Printf("load #%d has landed\n", load.LoadNumber)
			return nil
		},
	}
}

func newCrewCmd(cfgPath *string) *cobra.Command {
	var pilot, gca, loadMaster string

	cmd := &cobra.Command{
		Use:   "crew <load-id>",
		Short: "Assign pilot, GCA or load master",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pilot == "" && gca == "" && loadMaster == "" {
				return fmt.Errorf("nothing to assign")
			}

			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			if pilot != "" {
				if _, err := e.loads.AssignPilot(ctx, args[0], pilot); err != nil {
					return describe(err)
				}
			}
			if gca != "" {
				if _, err := e.loads.AssignGCA(ctx, args[0], gca); err != nil {
					return describe(err)
				}
			}
			if loadMaster != "" {
				if _, err := e.loads.AssignLoadMaster(ctx, args[0], loadMaster); err != nil {
					return describe(err)
				}
			}
			fmt.Println("crew updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&pilot, "pilot", "", "pilot dropzone user id")
	cmd.Flags().StringVar(&gca, "gca", "", "GCA dropzone user id")
	cmd.Flags().StringVar(&loadMaster, "load-master", "", "load master dropzone user id")
	return cmd
}

func newPlaneCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plane <load-id> <plane-id>",
		Short: "Reassign the load's aircraft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			dz := e.session.Dropzone()
			for _, p := range dz.Planes {
				if p.ID == args[1] {
					load, err := e.loads.AssignPlane(cmd.Context(), args[0], p)
					if err != nil {
						return describe(err)
					}
					fmt.Printf("load #%d is now on %s\n", load.LoadNumber, p.Name)
					return nil
				}
			}
			return fmt.Errorf("plane %s not found at this dropzone", args[1])
		},
	}
}
