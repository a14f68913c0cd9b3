package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	deliverycontext "pickup/internal/delivery/context"
	domainerrors "pickup/internal/domain/errors"
	"pickup/internal/domain/service"
	"pickup/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// errUsage marks a bad command line; the flag set already printed why.
var errUsage = errors.New("invalid usage")

type cliParams struct {
	fx.In

	Logger     *slog.Logger
	Session    usecase.SessionUsecase
	Profile    usecase.ProfileUsecase
	Catalog    usecase.CatalogUsecase
	Bookings   usecase.BookingUsecase
	Payments   usecase.PaymentUsecase
	Geolocator service.Geolocator
	QRCode     service.QRCodeService
	Output     io.Writer `name:"console"`
}

// cli maps subcommands onto the use cases.
type cli struct {
	logger     *slog.Logger
	session    usecase.SessionUsecase
	profile    usecase.ProfileUsecase
	catalog    usecase.CatalogUsecase
	bookings   usecase.BookingUsecase
	payments   usecase.PaymentUsecase
	geolocator service.Geolocator
	qr         service.QRCodeService
	out        io.Writer
	errOut     io.Writer
	in         *bufio.Reader
}

func newCLI(params cliParams) *cli {
	return &cli{
		logger:     params.Logger,
		session:    params.Session,
		profile:    params.Profile,
		catalog:    params.Catalog,
		bookings:   params.Bookings,
		payments:   params.Payments,
		geolocator: params.Geolocator,
		qr:         params.QRCode,
		out:        params.Output,
		errOut:     os.Stderr,
		in:         bufio.NewReader(os.Stdin),
	}
}

type command struct {
	summary string
	run     func(c *cli, ctx context.Context, args []string) error
}

//nolint:gochecknoglobals
var commands = map[string]command{
	"login":     {summary: "Log in with email and password", run: (*cli).login},
	"logout":    {summary: "Forget the stored session", run: (*cli).logout},
	"register":  {summary: "Create an account", run: (*cli).register},
	"me":        {summary: "Show the logged-in user and token details", run: (*cli).me},
	"profile":   {summary: "Update name, phone or address", run: (*cli).updateProfile},
	"types":     {summary: "List waste types and prices", run: (*cli).types},
	"centers":   {summary: "List collection centers, optionally by distance", run: (*cli).centers},
	"nearest":   {summary: "Find the nearest collection center", run: (*cli).nearest},
	"book":      {summary: "Book a pickup", run: (*cli).book},
	"history":   {summary: "List your bookings", run: (*cli).history},
	"show":      {summary: "Show one booking", run: (*cli).show},
	"dashboard": {summary: "Show booking statistics", run: (*cli).dashboard},
	"pay":       {summary: "Pay for a booking", run: (*cli).pay},
}

// run executes one subcommand and returns the process exit code.
func (c *cli) run(ctx context.Context, name string, args []string) int {
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(c.errOut, "Unknown command %q\n\n", name)
		printUsage(c.errOut)

		return 2
	}

	ctx = deliverycontext.StartCommand(ctx, c.logger, name)
	logger := deliverycontext.GetLoggerOrDefault(ctx, c.logger)

	if err := c.session.Restore(ctx); err != nil {
		logger.Warn("Could not restore session", slog.Any("error", err))
	}

	if err := cmd.run(c, ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		c.report(err)
		logger.Debug("Command failed", slog.Any("error", err))

		return 1
	}

	return 0
}

// report prints err the way a form shows it inline.
func (c *cli) report(err error) {
	var validationErr *domainerrors.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 1 {
		fmt.Fprintln(c.errOut, "Please correct the following:")
		for _, line := range strings.Split(validationErr.Details(), ", ") {
			fmt.Fprintf(c.errOut, "  %s\n", line)
		}

		return
	}

	fmt.Fprintf(c.errOut, "Error: %s\n", domainerrors.UserMessage(err))

	var paymentErr *domainerrors.PaymentError
	if errors.As(err, &paymentErr) && paymentErr.Retryable() {
		fmt.Fprintf(c.errOut, "Booking #%d is unchanged; you can retry the payment.\n", paymentErr.BookingID)
	}
}

// parse parses args into fs, reporting flag errors as errUsage.
func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	return nil
}

// prompt reads one line from stdin when a required value was not passed.
func (c *cli) prompt(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read input")
	}

	return strings.TrimSpace(line), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pickup <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range []string{
		"login", "logout", "register", "me", "profile",
		"types", "centers", "nearest",
		"book", "history", "show", "dashboard", "pay",
	} {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pickup <command> -h' for command flags.")
}
