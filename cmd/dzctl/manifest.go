package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Amnesthesia/dz-app/internal/app"
	"github.com/Amnesthesia/dz-app/internal/domain"
)

func newManifestCmd(cfgPath *string) *cobra.Command {
	var (
		userID          string
		jumpType        string
		ticketType      string
		extras          []string
		passengerName   string
		passengerWeight float64
	)

	cmd := &cobra.Command{
		Use:   "manifest <load-id>",
		Short: "Manifest a participant on a load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			slot, err := e.manifest.Allocate(cmd.Context(), app.AllocateInput{
				LoadID: args[0],
				UserID: userID,
				Config: domain.ActivityConfig{
					JumpTypeID:   jumpType,
					TicketTypeID: ticketType,
					ExtraIDs:     extras,
				},
				PassengerName:       passengerName,
				PassengerExitWeight: passengerWeight,
			})
			if err != nil {
				return describe(err)
			}
			fmt.Printf("manifested %s on load %s (slot %s)\n", slot.UserName, slot.LoadID, slot.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "dropzone user to manifest (defaults to yourself)")
	cmd.Flags().StringVar(&jumpType, "jump-type", "", "jump type id")
	cmd.Flags().StringVar(&ticketType, "ticket-type", "", "ticket type id")
	cmd.Flags().StringSliceVar(&extras, "extra", nil, "extra id (repeatable)")
	cmd.Flags().StringVar(&passengerName, "passenger-name", "", "tandem passenger name")
	cmd.Flags().Float64Var(&passengerWeight, "passenger-weight", 0, "tandem passenger exit weight")
	return cmd
}

func newGroupCmd(cfgPath *string) *cobra.Command {
	var (
		userIDs    []string
		jumpType   string
		ticketType string
		extras     []string
	)

	cmd := &cobra.Command{
		Use:   "group <load-id>",
		Short: "Manifest a group sharing one jump configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			members := make([]app.SlotUser, len(userIDs))
			for i, id := range userIDs {
				members[i] = app.SlotUser{UserID: id}
			}

			result, err := e.groups.Manifest(cmd.Context(), app.GroupInput{
				LoadID:  args[0],
				Members: members,
				Config: domain.ActivityConfig{
					JumpTypeID:   jumpType,
					TicketTypeID: ticketType,
					ExtraIDs:     extras,
				},
			})
			if err != nil {
				return describe(err)
			}
			fmt.Printf("manifested %d jumpers as group %d on load %s\n",
				len(result.SlotIDs), result.GroupNumber, result.Load.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&userIDs, "user", nil, "dropzone user id (repeatable)")
	cmd.Flags().StringVar(&jumpType, "jump-type", "", "jump type id")
	cmd.Flags().StringVar(&ticketType, "ticket-type", "", "ticket type id")
	cmd.Flags().StringSliceVar(&extras, "extra", nil, "extra id (repeatable)")
	return cmd
}

func newUnmanifestCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unmanifest <load-id> <slot-id>",
		Short: "Take a slot off a load",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.manifest.Deallocate(cmd.Context(), app.DeallocateInput{
				LoadID: args[0],
				SlotID: args[1],
			}); err != nil {
				return describe(err)
			}
			fmt.Printf("slot %s removed from load %s\n", args[1], args[0])
			return nil
		},
	}
}

// describe unpacks field errors and eligibility reasons into readable CLI
// output; other errors pass through.
func describe(err error) error {
	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
		}
		return errors.New("validation failed")
	}
	var ineligible app.IneligibleError
	if errors.As(err, &ineligible) {
		for _, r := range ineligible.Reasons {
			fmt.Fprintf(os.Stderr, "  %s\n", r.Message)
		}
		return fmt.Errorf("user %s is not eligible to manifest", ineligible.UserID)
	}
	return err
}
