package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/application/usecase"
	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/persistence/postgres"
	grpcpresentation "github.com/bibbank/creditrisk/internal/presentation/grpc"
	pgutil "github.com/bibbank/creditrisk/pkg/postgres"
)

const (
	defaultBackfillActor = "system-backfill"
	defaultCLIActor      = "riskctl"
	rpcTimeout           = 30 * time.Second
)

var classifyCmd = &cli.Command{
	Name:  "classify",
	Usage: "Classify a credit type and delinquency without touching any state",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "credit-type", Usage: "Credit type label", Required: true},
		&cli.StringFlag{Name: "days", Usage: "Maximum days overdue (free text)"},
		&cli.FloatFlag{Name: "probability", Usage: "Raw model probability to reconcile"},
		&cli.FloatFlag{Name: "threshold", Usage: "Approval threshold", Value: grpcpresentation.DefaultApprovalThreshold},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		req := &grpcpresentation.ClassifyRequest{
			CreditType:  cmd.String("credit-type"),
			DaysOverdue: cmd.String("days"),
		}
		if cmd.IsSet("probability") {
			p, t := cmd.Float("probability"), cmd.Float("threshold")
			req.RawProbability, req.Threshold = &p, &t
		}
		resp, err := grpcpresentation.EvaluateClassification(req)
		if err != nil {
			return err
		}
		return encode(cmd, resp)
	},
}

var migrateCmd = &cli.Command{
	Name:      "migrate",
	Usage:     "Apply or roll back the database schema",
	ArgsUsage: "up|down",
	Action: func(_ context.Context, cmd *cli.Command) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dsn := cfg.Postgres().DSN()

		dir := cmd.Args().First()
		switch dir {
		case "up", "":
			dir = "up"
			err = postgres.Migrate(dsn)
		case "down":
			err = postgres.MigrateDown(dsn)
		default:
			return fmt.Errorf("unknown migration direction: %s", dir)
		}
		if err != nil {
			return err
		}
		slog.Info("migrations applied", "direction", dir)
		return nil
	},
}

var reconcileCmd = &cli.Command{
	Name:  "reconcile",
	Usage: "Recompute every stored category from its delinquency and audit the changes",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "actor", Usage: "Actor recorded on the ledgers", Value: defaultBackfillActor},
		&cli.IntFlag{Name: "workers", Usage: "Concurrent customers (defaults to RECONCILE_WORKERS)"},
		&cli.IntFlag{Name: "batch-size", Usage: "Profiles read per page (defaults to RECONCILE_BATCH_SIZE)"},
		&cli.BoolFlag{Name: "remote", Usage: "Ask the running service instead of connecting to the database"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Bool("remote") {
			return withClient(ctx, cmd, func(ctx context.Context, c *grpcpresentation.Client) error {
				resp, err := c.Reconcile(ctx, &grpcpresentation.ReconcileRequest{
					Actor:     cmd.String("actor"),
					Workers:   int32(cmd.Int("workers")),
					BatchSize: int32(cmd.Int("batch-size")),
				})
				if err != nil {
					return err
				}
				return encode(cmd, resp)
			})
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		pool, err := pgutil.NewPool(ctx, cfg.Postgres())
		if err != nil {
			return err
		}
		defer pool.Close()

		logger := slog.Default()
		store := postgres.NewStore(pool)
		recorder := usecase.NewAuditRecorder(store, port.SystemClock{}, nil, logger)
		uc := usecase.NewReconcileCategories(store, store, recorder, logger)

		req := dto.ReconcileRequest{
			Actor:     cmd.String("actor"),
			Workers:   cfg.Reconcile.Workers,
			BatchSize: cfg.Reconcile.BatchSize,
		}
		if cmd.IsSet("workers") {
			req.Workers = cmd.Int("workers")
		}
		if cmd.IsSet("batch-size") {
			req.BatchSize = cmd.Int("batch-size")
		}

		resp, err := uc.Execute(ctx, req)
		if err != nil {
			return err
		}
		return encode(cmd, resp)
	},
}

var scoreCmd = &cli.Command{
	Name:  "score",
	Usage: "Score a stored customer through the service",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "customer", Usage: "Customer key", Required: true},
		&cli.StringFlag{Name: "actor", Usage: "Actor recorded on the ledgers", Value: defaultCLIActor},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return withClient(ctx, cmd, func(ctx context.Context, c *grpcpresentation.Client) error {
			resp, err := c.ScoreCustomer(ctx, &grpcpresentation.ScoreCustomerRequest{
				CustomerKey: cmd.String("customer"),
				Actor:       cmd.String("actor"),
			})
			if err != nil {
				return err
			}
			return encode(cmd, resp.Score)
		})
	},
}

var historyFlags = []cli.Flag{
	&cli.StringFlag{Name: "customer", Usage: "Customer key", Required: true},
	&cli.IntFlag{Name: "limit", Usage: "Maximum records", Value: 50},
	&cli.IntFlag{Name: "offset", Usage: "Records to skip"},
}

var historyCmd = &cli.Command{
	Name:  "history",
	Usage: "Show a customer's audit ledgers, newest first",
	Commands: []*cli.Command{
		{
			Name:  "transitions",
			Usage: "Category transitions",
			Flags: historyFlags,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withClient(ctx, cmd, func(ctx context.Context, c *grpcpresentation.Client) error {
					resp, err := c.ListTransitions(ctx, &grpcpresentation.ListTransitionsRequest{
						CustomerKey: cmd.String("customer"),
						Limit:       int32(cmd.Int("limit")),
						Offset:      int32(cmd.Int("offset")),
					})
					if err != nil {
						return err
					}
					return encode(cmd, resp.Transitions)
				})
			},
		},
		{
			Name:  "edits",
			Usage: "Field edits",
			Flags: historyFlags,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withClient(ctx, cmd, func(ctx context.Context, c *grpcpresentation.Client) error {
					resp, err := c.ListFieldEdits(ctx, &grpcpresentation.ListFieldEditsRequest{
						CustomerKey: cmd.String("customer"),
						Limit:       int32(cmd.Int("limit")),
						Offset:      int32(cmd.Int("offset")),
					})
					if err != nil {
						return err
					}
					return encode(cmd, resp.Edits)
				})
			},
		},
	},
}

var artifactCmd = &cli.Command{
	Name:  "artifact",
	Usage: "Describe the classifier artifact the service is using",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return withClient(ctx, cmd, func(ctx context.Context, c *grpcpresentation.Client) error {
			resp, err := c.GetArtifact(ctx)
			if err != nil {
				return err
			}
			return encode(cmd, resp)
		})
	},
}

var reloadCmd = &cli.Command{
	Name:  "reload",
	Usage: "Make the service re-read its classifier artifact",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return withClient(ctx, cmd, func(ctx context.Context, c *grpcpresentation.Client) error {
			resp, err := c.ReloadArtifact(ctx)
			if err != nil {
				return err
			}
			return encode(cmd, resp)
		})
	},
}

func withClient(ctx context.Context, cmd *cli.Command, fn func(context.Context, *grpcpresentation.Client) error) error {
	client, err := grpcpresentation.Dial(cmd.String(addrFlag.Name), grpcpresentation.ClientOptions{
		TLS:        cmd.Bool(tlsFlag.Name),
		CAFile:     cmd.String(caFileFlag.Name),
		ServerName: cmd.String(serverNameFlag.Name),
	})
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()
	return fn(ctx, client)
}
