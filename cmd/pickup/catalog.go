package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

func (c *cli) types(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("types", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}

	types, err := c.catalog.ListWasteTypes(ctx)
	if err != nil {
		return c.degrade(err)
	}
	printWasteTypes(c.out, types)

	return nil
}

func (c *cli) centers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("centers", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "Latitude to sort by distance from")
	lng := fs.Float64("lng", 0, "Longitude to sort by distance from")
	here := fs.Bool("here", false, "Sort by distance from your approximate position")
	if err := parse(fs, args); err != nil {
		return err
	}

	var from *orb.Point
	switch {
	case *here:
		p := c.locate(ctx)
		from = &p
	case *lat != 0 || *lng != 0:
		from = &orb.Point{*lng, *lat}
	}

	if from == nil {
		centers, err := c.catalog.ListCenters(ctx)
		if err != nil {
			return c.degrade(err)
		}
		printCenters(c.out, centers, 0)
		c.printMap(centers, 0, nil)

		return nil
	}

	ranked, err := c.catalog.RankCenters(ctx, *from)
	if err != nil {
		return c.degrade(err)
	}
	printRankedCenters(c.out, ranked)

	centers := make([]entity.Center, 0, len(ranked))
	for _, r := range ranked {
		centers = append(centers, r.Center)
	}
	c.printMap(centers, ranked[0].Center.ID, from)

	return nil
}

func (c *cli) nearest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("nearest", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "Latitude (default: your approximate position)")
	lng := fs.Float64("lng", 0, "Longitude (default: your approximate position)")
	if err := parse(fs, args); err != nil {
		return err
	}

	p := orb.Point{*lng, *lat}
	if *lat == 0 && *lng == 0 {
		p = c.locate(ctx)
	}

	nearest, err := c.catalog.NearestCenter(ctx, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Nearest center: %s (%.2f km)\n", nearest.Center.Name, nearest.DistanceKm)
	if nearest.Center.Address != "" {
		fmt.Fprintf(c.out, "Address:        %s\n", nearest.Center.Address)
	}
	if nearest.Center.ContactInfo != "" {
		fmt.Fprintf(c.out, "Contact:        %s\n", nearest.Center.ContactInfo)
	}

	return nil
}

// locate returns the user's approximate position or the default coordinate.
func (c *cli) locate(ctx context.Context) orb.Point {
	p, err := c.geolocator.Locate(ctx)
	if err != nil {
		c.logger.Debug("Using default coordinate", slog.Any("error", err))

		return c.geolocator.Fallback()
	}

	return p
}

func (c *cli) printMap(centers []entity.Center, selectedID int64, user *orb.Point) {
	if url := c.catalog.CenterMap(centers, selectedID, user); url != "" {
		fmt.Fprintf(c.out, "\nMap: %s\n", url)
	}
}

// degrade turns a failed read into an inline message. Only a missing or
// expired login fails the command.
func (c *cli) degrade(err error) error {
	if errors.Is(err, domainerrors.ErrLoginRequired) || errors.Is(err, domainerrors.ErrUnauthorized) {
		return err
	}
	c.report(err)
	fmt.Fprintln(c.out, "Nothing to show.")

	return nil
}
