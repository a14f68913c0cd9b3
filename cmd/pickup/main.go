package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"pickup/config"
	"pickup/internal/infra/api"
	"pickup/internal/infra/attachment"
	"pickup/internal/infra/auth"
	"pickup/internal/infra/checkout"
	"pickup/internal/infra/geo"
	logs "pickup/internal/infra/log"
	"pickup/internal/infra/qrcode"
	"pickup/internal/infra/tokenstore"
	"pickup/internal/usecase/impl"

	"go.uber.org/fx"
)

func main() {
	if len(os.Args) < 2 || isHelp(os.Args[1]) {
		printUsage(os.Stdout)

		if len(os.Args) < 2 {
			os.Exit(2)
		}

		return
	}

	var app *cli
	container := fx.New(
		fx.NopLogger,
		injectInfra(),
		injectService(),
		injectUsecase(),
		fx.Provide(newCLI),
		fx.Populate(&app),
	)
	if err := container.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := container.Start(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := app.run(ctx, os.Args[1], os.Args[2:])

	stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	_ = container.Stop(stopCtx)
	cancel()
	stop()

	os.Exit(code)
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		fx.Annotate(
			func() io.Writer { return os.Stdout },
			fx.ResultTags(`name:"console"`),
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		tokenstore.Module,
		geo.Module,
		attachment.Module,
		checkout.Module,
		fx.Provide(
			api.NewGateway,
			auth.NewJWTInspector,
			qrcode.NewFromConfig,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewProfileService,
			impl.NewCatalogService,
			impl.NewBookingService,
			impl.NewPaymentService,
		),
	)
}

func isHelp(arg string) bool {
	switch arg {
	case "help", "-h", "-help", "--help":
		return true
	default:
		return false
	}
}
