package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"travel-agency/cmd"
	"travel-agency/internal/dto/request"
	"travel-agency/pkg/database"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "ledgerctl",
		Usage: "Operate the booking and payment ledgers",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending database migrations",
				Action: func(c *cli.Context) error {
					return withRuntime(c, func(rt *cmd.Runtime) error {
						applied, err := database.Migrate(c.Context, rt.DB)
						if err != nil {
							return err
						}
						if len(applied) == 0 {
							fmt.Println("Schema is up to date")
						}
						for _, name := range applied {
							fmt.Printf("applied\t%s\n", name)
						}
						return nil
					})
				},
			},
			{
				Name:      "reconcile",
				ArgsUsage: "[booking_number]",
				Usage:     "re-derive booking status from payments",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "reconcile every non-cancelled booking"},
				},
				Action: func(c *cli.Context) error {
					number := c.Args().First()
					if !c.Bool("all") && number == "" {
						return errors.New("pass a booking number or --all")
					}

					return withRuntime(c, func(rt *cmd.Runtime) error {
						if c.Bool("all") {
							checked, changed, err := rt.Service.Payment.ReconcileAll(c.Context)
							fmt.Printf("checked\t%d\nchanged\t%d\n", checked, changed)
							return err
						}

						booking, err := rt.Service.Booking.GetBookingByNumber(c.Context, number)
						if err != nil {
							return err
						}
						status, changed, err := rt.Service.Payment.ReconcileBooking(c.Context, uuid.MustParse(booking.ID))
						if err != nil {
							return err
						}
						fmt.Printf("%s\t%s\tchanged=%t\n", number, status, changed)
						return nil
					})
				},
			},
			{
				Name:  "clean-sessions",
				Usage: "delete expired and revoked sessions",
				Action: func(c *cli.Context) error {
					return withRuntime(c, func(rt *cmd.Runtime) error {
						n, err := rt.Service.Auth.CleanExpiredSessions(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("deleted\t%d\n", n)
						return nil
					})
				},
			},
			{
				Name:      "availability",
				ArgsUsage: "<package_id>",
				Usage:     "show availability of a package for a date or a date range",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "single date, YYYY-MM-DD"},
					&cli.StringFlag{Name: "from", Usage: "range start, YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "range end, YYYY-MM-DD"},
				},
				Action: func(c *cli.Context) error {
					packageID, err := uuid.Parse(c.Args().First())
					if err != nil {
						return fmt.Errorf("invalid package id: %w", err)
					}

					return withRuntime(c, func(rt *cmd.Runtime) error {
						if date := c.String("date"); date != "" {
							resp, err := rt.Service.Booking.CheckAvailability(c.Context, packageID, date)
							if err != nil {
								return err
							}
							fmt.Printf("%s\tavailable=%t\tbooked=%d\tremaining=%d\n",
								resp.Date, resp.Available, resp.BookedTravelers, resp.RemainingCapacity)
							return nil
						}

						resp, err := rt.Service.Booking.AvailableDates(c.Context, packageID, &request.AvailableDatesRequest{
							StartDate: c.String("from"),
							EndDate:   c.String("to"),
						})
						if err != nil {
							return err
						}
						for _, d := range resp.Dates {
							fmt.Println(d)
						}
						return nil
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withRuntime(c *cli.Context, fn func(rt *cmd.Runtime) error) error {
	config, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	rt, err := cmd.Bootstrap(c.Context, config, logger.With(zap.String("component", "ledgerctl")))
	if err != nil {
		return err
	}
	defer rt.Close()

	return fn(rt)
}
