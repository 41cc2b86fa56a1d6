package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/internal/geo"
	"github.com/smartwaste/pickup/internal/tui"
	"github.com/smartwaste/pickup/pkg/domain"
)

// mapZoom is the OpenStreetMap zoom for printed center links.
const mapZoom = 15

func newTypesCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List waste types and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			ctx, cancel := e.ctx()
			defer cancel()
			types, err := e.client.ListWasteTypes(ctx)
			if err != nil {
				return apiError(err, "Could not load waste types.")
			}
			rows := make([][]string, 0, len(types))
			for _, t := range types {
				rows = append(rows, []string{strconv.Itoa(t.ID), t.Name, "₹" + t.PricePerKg.String(), t.Description})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "PRICE/KG", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func newCentersCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "centers",
		Short: "List collection centers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			ctx, cancel := e.ctx()
			defer cancel()
			centers, err := e.client.ListCenters(ctx)
			if err != nil {
				return apiError(err, "Could not load centers.")
			}
			if len(centers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No collection centers available.")
				return nil
			}
			rows := make([][]string, 0, len(centers))
			for _, c := range centers {
				rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Address, c.Location().String()})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "ADDRESS", "LOCATION"}, rows)
			return nil
		},
	}
}

// locate returns the coordinate given by --lat/--lng, or looks it up.
func locate(cmd *cobra.Command, e *env) (domain.Coordinate, error) {
	flags := cmd.Flags()
	if flags.Changed("lat") || flags.Changed("lng") {
		lat, _ := flags.GetFloat64("lat") //nolint:errcheck
		lng, _ := flags.GetFloat64("lng") //nolint:errcheck
		return domain.Coordinate{Lat: lat, Lng: lng}, nil
	}
	ctx, cancel := e.ctx()
	defer cancel()
	res := geo.Resolve(ctx, e.locator, e.log)
	if !res.Found {
		return domain.Coordinate{}, errors.New("location unavailable; pass --lat and --lng or set location.lat/location.lng in config.yaml")
	}
	return res.User, nil
}

func nearestCenter(e *env, loc domain.Coordinate) (domain.Center, error) {
	ctx, cancel := e.ctx()
	defer cancel()
	resp, err := e.client.NearestCenter(ctx, loc)
	if err != nil {
		return domain.Center{}, apiError(err, "Could not find the nearest center.")
	}
	return resp.Center, nil
}

func newNearestCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Find the collection center closest to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			loc, err := locate(cmd, e)
			if err != nil {
				return err
			}
			c, err := nearestCenter(e, loc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n  %s\n", headerStyle.Render(c.Name))
			printRows(out,
				"ID", strconv.Itoa(c.ID),
				"Address", c.Address,
				"Location", c.Location().String(),
				"Map", c.Location().MapURL(mapZoom),
				"You", loc.String(),
			)
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().Float64("lat", 0, "your latitude")
	cmd.Flags().Float64("lng", 0, "your longitude")
	return cmd
}

func newBookingsCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings [id]",
		Short: "List your bookings or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			if _, err := e.guard.Require(); err != nil {
				return err
			}
			ctx, cancel := e.ctx()
			defer cancel()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid booking id %q", args[0])
				}
				bk, err := e.client.GetBooking(ctx, id)
				if err != nil {
					return apiError(err, "Could not load booking.")
				}
				fmt.Fprintf(out, "\n  %s\n", headerStyle.Render(fmt.Sprintf("Booking #%d", bk.ID)))
				fmt.Fprintln(out, tui.BookingDetail(*bk))
				return nil
			}

			bookings, err := e.client.BookingHistory(ctx)
			if err != nil {
				return apiError(err, "Could not load bookings.")
			}
			if len(bookings) == 0 {
				fmt.Fprintln(out, "No bookings found.")
				return nil
			}
			rows := make([][]string, 0, len(bookings))
			for _, b := range bookings {
				rows = append(rows, []string{
					strconv.Itoa(b.ID),
					b.WasteTypeName(),
					b.QuantityKg.String(),
					b.PickupDate + " " + b.PickupTime,
					tui.StatusStyle(b.Status).Render(domain.StatusLabel(b.Status)),
					tui.PaymentStyle(b.PaymentStatus).Render(strings.ToUpper(b.PaymentStatus)),
					"₹" + b.TotalPrice.String(),
				})
			}
			printTable(out, []string{"ID", "WASTE TYPE", "KG", "PICKUP", "STATUS", "PAYMENT", "TOTAL"}, rows)

			s := domain.Summarize(bookings)
			fmt.Fprintf(out, "  %d bookings, %d pending, %d completed, ₹%s spent\n", s.Total, s.Pending, s.Completed, s.TotalSpent)
			return nil
		},
	}
}

func newBookCmd(get func() *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a waste pickup",
		Long: `Book a pickup from flags, or open the booking wizard with -i.

Examples:
  pickup book -i --type 2
  pickup book --type 2 --quantity 5 --date 2026-03-11 --time 10:30 --address "12 Market Road" --nearest
  pickup book --type 1 --quantity 2.5 --date 2026-03-11 --time 09:00 --address "Fort Road" --center 3 --image bag.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			if _, err := e.guard.Require(); err != nil {
				return err
			}
			flags := cmd.Flags()
			typeID, _ := flags.GetInt("type") //nolint:errcheck

			if interactive, _ := flags.GetBool("interactive"); interactive { //nolint:errcheck
				return e.runTUI(tui.NewApp(e.deps()).WithBooking(typeID))
			}

			str := func(name string) string {
				v, _ := flags.GetString(name) //nolint:errcheck
				return strings.TrimSpace(v)
			}
			in := forms.Booking{
				WasteTypeID: typeID,
				Quantity:    str("quantity"),
				PickupDate:  str("date"),
				PickupTime:  str("time"),
				Address:     str("address"),
				ImagePath:   str("image"),
			}
			if err := e.forms.CheckBooking(in); err != nil {
				return err
			}

			ctx, cancel := e.ctx()
			defer cancel()
			types, err := e.client.ListWasteTypes(ctx)
			if err != nil {
				return apiError(err, "Could not load waste types.")
			}
			wt, ok := domain.FindWasteType(types, typeID)
			if !ok {
				return fmt.Errorf("unknown waste type %d, see \"pickup types\"", typeID)
			}

			out := cmd.OutOrStdout()
			centerID, _ := flags.GetInt("center") //nolint:errcheck
			if nearest, _ := flags.GetBool("nearest"); nearest && centerID == 0 { //nolint:errcheck
				loc, err := locate(cmd, e)
				if err != nil {
					return err
				}
				c, err := nearestCenter(e, loc)
				if err != nil {
					return err
				}
				centerID = c.ID
				fmt.Fprintf(out, "Nearest center: %s\n", c.Name)
			}
			fmt.Fprintf(out, "Estimated price: ₹%s\n", forms.Estimate(in.Quantity, &wt))

			bk, err := e.client.CreateBooking(ctx, in.Request(centerID))
			if err != nil {
				e.log.Warn("create booking failed", zap.Error(err))
				return apiError(err, "Error creating booking.")
			}
			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Booking #%d created.", bk.ID)))
			fmt.Fprintln(out, tui.BookingDetail(*bk))
			return nil
		},
	}
	cmd.Flags().BoolP("interactive", "i", false, "open the booking wizard")
	cmd.Flags().IntP("type", "t", 0, "waste type id (see pickup types)")
	cmd.Flags().StringP("quantity", "q", "", "quantity in kg")
	cmd.Flags().String("date", "", "pickup date, YYYY-MM-DD")
	cmd.Flags().String("time", "", "pickup time, HH:MM")
	cmd.Flags().String("address", "", "pickup address")
	cmd.Flags().Int("center", 0, "collection center id (see pickup centers)")
	cmd.Flags().Bool("nearest", false, "use the center nearest to your location")
	cmd.Flags().Float64("lat", 0, "your latitude, with --nearest")
	cmd.Flags().Float64("lng", 0, "your longitude, with --nearest")
	cmd.Flags().String("image", "", "path to a photo of the waste")
	return cmd
}
