package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wolfman30/dental-booking/internal/bookings"
	"github.com/wolfman30/dental-booking/internal/intake"
	"github.com/wolfman30/dental-booking/internal/schedule"
)

type serviceOpener func(ctx context.Context) (*bookings.Service, func(), error)

func newRootCmd(open serviceOpener) *cobra.Command {
	var (
		svc     *bookings.Service
		closeFn func()
	)
	root := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Inspect and manage clinic bookings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, c, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open booking store: %w", err)
			}
			svc, closeFn = s, c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeFn != nil {
				closeFn()
			}
		},
	}
	service := func() *bookings.Service { return svc }

	root.AddCommand(slotsCmd(service))
	root.AddCommand(listCmd(service))
	root.AddCommand(setStatusCmd(service))
	root.AddCommand(lookupCmd(service))
	root.AddCommand(seedCmd(service))
	return root
}

func slotsCmd(svc func() *bookings.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Show slot availability for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("date")
			day := svc().Engine().Today()
			if raw != "" {
				parsed, err := schedule.ParseDate(raw)
				if err != nil {
					return err
				}
				day = parsed
			}
			slots, err := svc().Availability(cmd.Context(), day)
			if err != nil && !isStale(err) {
				return err
			}
			out := cmd.OutOrStdout()
			staleNote(out, err)
			if gateErr := svc().Engine().CheckDate(schedule.AppointmentProfile, day); gateErr != nil {
				fmt.Fprintf(out, "note: %s\n", intake.GateMessage(gateErr))
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "TIME\tSTATUS\n")
			for _, s := range slots {
				status := "open"
				if !s.Available {
					status = string(s.Reason)
				}
				fmt.Fprintf(tw, "%s\t%s\n", s.Time, status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("date", "", "Date as YYYY-MM-DD (default today)")
	return cmd
}

func listCmd(svc func() *bookings.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings as shown on the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, _ := cmd.Flags().GetString("tab")
			view, err := svc().Dashboard(cmd.Context())
			if err != nil && !isStale(err) {
				return err
			}
			out := cmd.OutOrStdout()
			staleNote(out, err)

			var rows []bookings.Booking
			switch strings.ToLower(tab) {
			case "upcoming":
				rows = view.Upcoming
			case "past":
				rows = view.Past
			case "all":
				rows = append(append(rows, view.Upcoming...), view.Past...)
			default:
				return fmt.Errorf("unknown tab %q (upcoming, past, all)", tab)
			}
			fmt.Fprintf(out, "backend: %s  today: %d  pending: %d  total: %d\n",
				svc().ActiveBackend(), view.Stats.Today, view.Stats.Pending, view.Stats.Total)
			printBookings(out, rows)
			return nil
		},
	}
	cmd.Flags().String("tab", "upcoming", "Which bookings to show: upcoming, past or all")
	return cmd
}

func setStatusCmd(svc func() *bookings.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Move a booking to confirmed, completed or cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := bookings.ParseStatus(args[1])
			if err != nil {
				return err
			}
			b, err := svc().SetStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", b.ID, b.Status)
			return nil
		},
	}
}

func lookupCmd(svc func() *bookings.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <phone>",
		Short: "Show a patient's bookings by mobile number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := intake.ValidateLookupPhone(args[0]); err != nil {
				return err
			}
			history, err := svc().PatientBookings(cmd.Context(), args[0])
			if err != nil && !isStale(err) {
				return err
			}
			out := cmd.OutOrStdout()
			staleNote(out, err)
			fmt.Fprintf(out, "Upcoming for %s:\n", intake.FormatPhone(args[0]))
			printBookings(out, history.Upcoming)
			fmt.Fprintln(out, "History:")
			printBookings(out, history.History)
			return nil
		},
	}
}

func seedCmd(svc func() *bookings.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the demo booking when the store is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := svc()
			today := s.Engine().Today()
			seeded, err := s.SeedDemo(cmd.Context(), today)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "demo booking added")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "store not empty, nothing to do")
			}
			return nil
		},
	}
}

func printBookings(out io.Writer, rows []bookings.Booking) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tDATE\tTIME\tSTATUS\tNAME\tPHONE\tSERVICE\n")
	for _, b := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Date, b.Time, b.Status, b.Name, b.Phone, b.Service)
	}
	_ = tw.Flush()
}

func staleNote(out io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(out, "warning: showing cached bookings (%v)\n", err)
	}
}

func isStale(err error) bool {
	var persist *bookings.PersistenceError
	return errors.As(err, &persist)
}
