package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pickup/internal/usecase"
	"pickup/internal/util"

	"github.com/pkg/errors"
)

const passwordEnv = "PICKUP_PASSWORD"

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (or set "+passwordEnv+")")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *email == "" {
		v, err := c.prompt("Email")
		if err != nil {
			return err
		}
		*email = v
	}
	if *password == "" {
		*password = os.Getenv(passwordEnv)
	}
	if *password == "" {
		v, err := c.prompt("Password")
		if err != nil {
			return err
		}
		*password = v
	}

	user, err := c.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Welcome, %s!\n", user.DisplayName())

	return nil
}

func (c *cli) logout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := c.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out.")

	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	input := &usecase.RegisterInput{}
	fs.StringVar(&input.Email, "email", "", "Account email")
	fs.StringVar(&input.Name, "name", "", "Full name")
	fs.StringVar(&input.Phone, "phone", "", "Phone number")
	fs.StringVar(&input.Address, "address", "", "Default pickup address")
	fs.StringVar(&input.Password, "password", "", "Password, at least 6 characters")
	fs.StringVar(&input.Password2, "password2", "", "Password confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := c.session.Register(ctx, input); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Registration successful! Please log in.")

	return nil
}

func (c *cli) me(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("me", flag.ContinueOnError)
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := c.session.RequireUser()
	if err != nil {
		return err
	}

	printUser(c.out, user)

	info, err := c.session.SessionInfo()
	if err != nil {
		c.logger.Debug("Token details unavailable", slog.Any("error", err))

		return nil
	}
	if !info.ExpiresAt.IsZero() {
		left := time.Until(info.ExpiresAt)
		if info.Expired {
			fmt.Fprintf(c.out, "Token:   expired at %s\n", info.ExpiresAt.Local().Format(time.DateTime))
		} else {
			fmt.Fprintf(c.out, "Token:   expires in %s\n", util.FormatDuration(left))
		}
	}

	return nil
}

func (c *cli) updateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	name := fs.String("name", "", "Full name")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Default pickup address")
	if err := parse(fs, args); err != nil {
		return err
	}

	input := &usecase.UpdateProfileInput{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			input.Name = name
		case "phone":
			input.Phone = phone
		case "address":
			input.Address = address
		}
	})

	user, err := c.profile.UpdateProfile(ctx, input)
	if err != nil {
		return err
	}
	if input.IsEmpty() {
		printUser(c.out, user)

		return nil
	}

	fmt.Fprintln(c.out, "Profile updated successfully!")
	printUser(c.out, user)

	return nil
}

// requireArgs rejects stray positional arguments.
func requireArgs(fs *flag.FlagSet, n int) error {
	if fs.NArg() != n {
		fs.Usage()

		return errors.Wrapf(errUsage, "%s expects %d argument(s)", fs.Name(), n)
	}

	return nil
}
