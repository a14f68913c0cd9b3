package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"pickup/internal/domain/entity"
	"pickup/internal/domain/wizard"
	"pickup/internal/usecase"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func printUser(w io.Writer, u *entity.User) {
	fmt.Fprintf(w, "Name:    %s\n", orDash(u.Name))
	fmt.Fprintf(w, "Email:   %s\n", u.Email)
	fmt.Fprintf(w, "Phone:   %s\n", orDash(u.Phone))
	fmt.Fprintf(w, "Address: %s\n", orDash(u.Address))
}

func printWasteTypes(w io.Writer, types []entity.WasteType) {
	if len(types) == 0 {
		fmt.Fprintln(w, "No waste types available.")

		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE/KG\tDESCRIPTION")
	for _, t := range types {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Name, entity.FormatRupees(t.PricePerKg.Float64()), t.Description)
	}
	_ = tw.Flush()
	fmt.Fprintln(w, "\nBook one with: pickup book -type <id> ...")
}

func printCenters(w io.Writer, centers []entity.Center, selectedID int64) {
	if len(centers) == 0 {
		fmt.Fprintln(w, "No collection centers found.")

		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "\tID\tNAME\tADDRESS\tCONTACT")
	for _, c := range centers {
		mark := ""
		if c.ID == selectedID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", mark, c.ID, c.Name, c.Address, orDash(c.ContactInfo))
	}
	_ = tw.Flush()
}

func printRankedCenters(w io.Writer, ranked []entity.NearestCenter) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDISTANCE\tADDRESS")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%.2f km\t%s\n", r.Center.ID, r.Center.Name, r.DistanceKm, r.Center.Address)
	}
	_ = tw.Flush()
}

func printBookings(w io.Writer, bookings []entity.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(w, "No bookings yet. Book one with: pickup book")

		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tWASTE\tQTY\tPICKUP\tSTATUS\tPAYMENT\tTOTAL")
	for i := range bookings {
		b := &bookings[i]
		fmt.Fprintf(tw, "%d\t%s\t%s kg\t%s %s\t%s\t%s\t%s\n",
			b.ID, orDash(b.WasteTypeName()), b.QuantityKg, b.PickupDate, b.PickupTime,
			b.Status.Label(), b.PaymentStatus.Label(), entity.FormatRupees(b.TotalPrice.Float64()))
	}
	_ = tw.Flush()
}

func printBooking(w io.Writer, b *entity.Booking) {
	fmt.Fprintf(w, "Booking #%d\n", b.ID)
	fmt.Fprintf(w, "  Waste type: %s\n", orDash(b.WasteTypeName()))
	fmt.Fprintf(w, "  Quantity:   %s kg\n", b.QuantityKg)
	fmt.Fprintf(w, "  Pickup:     %s at %s\n", b.PickupDate, b.PickupTime)
	fmt.Fprintf(w, "  Address:    %s\n", b.Address)
	fmt.Fprintf(w, "  Center:     %s\n", b.CenterName())
	fmt.Fprintf(w, "  Status:     %s\n", b.Status.Label())
	fmt.Fprintf(w, "  Payment:    %s\n", b.PaymentStatus.Label())
	fmt.Fprintf(w, "  Total:      %s\n", entity.FormatRupees(b.TotalPrice.Float64()))
	if !b.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Booked:     %s\n", b.CreatedAt.Local().Format(time.DateTime))
	}
	if b.WasteImage != "" {
		fmt.Fprintf(w, "  Image:      %s\n", b.WasteImage)
	}
	if !b.IsPaid() && b.Status.IsOpen() {
		fmt.Fprintf(w, "\nPay with: pickup pay -id %d\n", b.ID)
	}
}

func printDashboard(w io.Writer, d *usecase.Dashboard) {
	fmt.Fprintf(w, "Welcome, %s!\n\n", d.User.DisplayName())

	tw := newTable(w)
	fmt.Fprintf(tw, "Total bookings\t%d\n", d.Stats.Total)
	fmt.Fprintf(tw, "Pending\t%d\n", d.Stats.Open)
	fmt.Fprintf(tw, "Completed\t%d\n", d.Stats.Completed)
	fmt.Fprintf(tw, "Total spent\t%s\n", entity.FormatRupees(d.Stats.TotalSpent))
	_ = tw.Flush()

	fmt.Fprintln(w, "\nRecent bookings:")
	printBookings(w, d.Recent)
}

func printIncomplete(w io.Writer, e *wizard.IncompleteError) {
	if len(e.Missing) > 0 {
		fmt.Fprintf(w, "Missing: %s\n", strings.Join(e.Missing, ", "))
	}
	for _, field := range slices.Sorted(maps.Keys(e.Invalid)) {
		fmt.Fprintf(w, "%s: %s\n", field, strings.Join(e.Invalid[field], " "))
	}
}
