package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/api/httpapi"
	"github.com/jrsteele09/go-storefront-client/cart"
	"github.com/jrsteele09/go-storefront-client/internal/config"
	"github.com/jrsteele09/go-storefront-client/session"
	"github.com/jrsteele09/go-storefront-client/session/refresh"
	"github.com/jrsteele09/go-storefront-client/session/tokenstore"
)

const usage = `usage: storefront <command>

commands:
  status                      show the current session state
  login <email> <password>    sign in and persist the session
  logout                      sign out (revokes the refresh token, best effort)
  add <product-id> <qty>      add a product to the cart
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	_ = godotenv.Load()
	cfg := config.New()
	log := newLogger(cfg)

	store := tokenstore.NewFileStore(cfg.GetTokenFilePath(), log)
	client := httpapi.NewClient(cfg, log)

	coordinator, err := refresh.NewCoordinator(store, client, log)
	if err != nil {
		return err
	}
	controller, err := session.NewController(store, coordinator, client, log, session.WithExpiryCheck())
	if err != nil {
		return err
	}
	cartStore, err := cart.NewStore(client, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		displayAppname(cfg.GetAppName())
		controller.Initialize(ctx)
		printSession(controller.Observe())
		return nil
	case "login":
		if len(args) != 3 {
			return errors.New("login needs <email> <password>")
		}
		controller.Initialize(ctx)
		if err := controller.Login(ctx, api.Credentials{Email: args[1], Password: args[2]}); err != nil {
			return err
		}
		printSession(controller.Observe())
		return nil
	case "logout":
		controller.Initialize(ctx)
		controller.Logout(ctx)
		fmt.Println("signed out")
		return nil
	case "add":
		if len(args) != 3 {
			return errors.New("add needs <product-id> <qty>")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.Wrap(err, "quantity")
		}
		controller.Initialize(ctx)
		if err := cartStore.Add(ctx, cart.AddInput{ProductID: args[1], Quantity: qty}); err != nil {
			return err
		}
		for _, line := range cartStore.Observe() {
			fmt.Printf("%s x%d\n", line.ProductID, line.Quantity)
		}
		return nil
	default:
		fmt.Print(usage)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func newLogger(cfg config.EnvConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func printSession(snap session.Snapshot) {
	if !snap.IsAuthenticated {
		fmt.Println("not signed in")
		return
	}
	if snap.User != nil {
		fmt.Printf("signed in as %s\n", snap.User.Email)
		return
	}
	fmt.Println("signed in")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
