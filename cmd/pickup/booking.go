package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"pickup/internal/domain/entity"
	"pickup/internal/domain/service"
	"pickup/internal/domain/wizard"
	"pickup/internal/usecase"

	"github.com/pkg/errors"
)

func (c *cli) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	wasteType := fs.Int64("type", 0, "Waste type id (see 'pickup types')")
	quantity := fs.Float64("qty", 0, "Quantity in kg")
	date := fs.String("date", "", "Pickup date, YYYY-MM-DD")
	at := fs.String("time", "", "Pickup time, HH:MM")
	address := fs.String("address", "", "Pickup address (default: your profile address)")
	image := fs.String("image", "", "Optional photo: a file path or bucket URL")
	center := fs.Int64("center", 0, "Collection center id (default: nearest)")
	pay := fs.Bool("pay", false, "Continue to payment after booking")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := c.session.RequireUser()
	if err != nil {
		return err
	}
	if *address == "" {
		*address = user.Address
	}

	w, err := c.bookings.StartWizard(ctx, *wasteType)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Edit(func(d *wizard.Details) {
		if *wasteType != 0 {
			d.WasteTypeID = *wasteType
		}
		d.QuantityKg = *quantity
		d.PickupDate = *date
		d.PickupTime = *at
		d.Address = *address
		d.ImageLocation = *image
	}); err != nil {
		return err
	}

	if amount, ok := w.Estimate(); ok {
		fmt.Fprintf(c.out, "Estimated total: %s\n", entity.FormatRupees(amount))
	}

	if _, err := w.Advance(ctx); err != nil {
		var incomplete *wizard.IncompleteError
		if errors.As(err, &incomplete) {
			printIncomplete(c.out, incomplete)
		}

		return err
	}

	fmt.Fprintln(c.out, "Finding collection centers...")
	selection, err := w.AwaitCenters(ctx)
	if err != nil {
		return err
	}
	if selection.LoadErr != nil {
		c.report(selection.LoadErr)
	}
	if *center != 0 {
		if err := w.Choose(*center); err != nil {
			return err
		}
	}

	state, ok := w.State().(wizard.SelectingCenter)
	if !ok {
		return errors.New("booking wizard left center selection")
	}
	printCenters(c.out, selection.Centers, state.CenterID)
	if state.Nearest != nil {
		fmt.Fprintf(c.out, "Nearest: %s (%.2f km)\n", state.Nearest.Center.Name, state.Nearest.DistanceKm)
	}
	c.printMap(selection.Centers, state.CenterID, state.Location)

	id, err := w.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nBooking #%d created.\n", id)

	if !*pay {
		fmt.Fprintf(c.out, "Pay with: pickup pay -id %d\n", id)

		return nil
	}

	return c.payBooking(ctx, id)
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}

	bookings, err := c.bookings.History(ctx)
	if err != nil {
		return c.degrade(err)
	}
	printBookings(c.out, bookings)

	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Booking id")
	receipt := fs.String("receipt", "", "Scanned receipt QR payload instead of -id")
	qrOut := fs.String("qr", "", "Write the receipt QR code as PNG to this path")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireArgs(fs, 0); err != nil {
		return err
	}

	bookingID := *id
	if *receipt != "" {
		parsed, err := c.qr.ParseReceiptQR(*receipt)
		if err != nil {
			return err
		}
		bookingID = parsed
	}
	if bookingID == 0 {
		fs.Usage()

		return errUsage
	}

	booking, err := c.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	printBooking(c.out, booking)

	if *qrOut != "" {
		png, err := c.qr.GenerateReceiptQR(booking.ID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*qrOut, png, 0o600); err != nil {
			return errors.Wrap(err, "write receipt QR")
		}
		fmt.Fprintf(c.out, "Receipt QR written to %s\n", *qrOut)
	}

	return nil
}

func (c *cli) dashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}

	dashboard, err := c.bookings.Dashboard(ctx)
	if err != nil {
		if user, userErr := c.session.RequireUser(); userErr == nil {
			if degraded := c.degrade(err); degraded != nil {
				return degraded
			}
			printDashboard(c.out, &usecase.Dashboard{User: user})

			return nil
		}

		return err
	}
	printDashboard(c.out, dashboard)

	return nil
}

func (c *cli) pay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Booking id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == 0 && fs.NArg() == 1 {
		parsed, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			fs.Usage()

			return errUsage
		}
		*id = parsed
	}
	if *id == 0 {
		fs.Usage()

		return errUsage
	}

	return c.payBooking(ctx, *id)
}

func (c *cli) payBooking(ctx context.Context, id int64) error {
	result, err := c.payments.Pay(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrCheckoutDismissed) {
			fmt.Fprintln(c.out, "Payment cancelled. Booking is unchanged; run the command again to retry.")

			return nil
		}

		return err
	}

	fmt.Fprintf(c.out, "Payment successful for booking #%d (%s, payment %s).\n",
		result.BookingID, entity.FormatRupees(result.Amount), result.PaymentID)

	return nil
}
