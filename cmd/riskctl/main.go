// Command riskctl is the operator CLI for the credit risk service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/bibbank/creditrisk/pkg/observability"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

var (
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	addrFlag = &cli.StringFlag{
		Name:    "addr",
		Usage:   "Risk service gRPC address",
		Value:   "localhost:9095",
		Sources: cli.EnvVars("RISK_ADDR"),
	}

	tlsFlag = &cli.BoolFlag{
		Name:    "tls",
		Usage:   "Use TLS for the gRPC connection",
		Sources: cli.EnvVars("RISK_TLS"),
	}

	caFileFlag = &cli.StringFlag{
		Name:    "ca-file",
		Usage:   "CA bundle used to verify the server (defaults to system roots)",
		Sources: cli.EnvVars("RISK_CA_FILE"),
	}

	serverNameFlag = &cli.StringFlag{
		Name:  "server-name",
		Usage: "Expected server name in the TLS certificate",
	}
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "riskctl",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:   "Operate the credit risk scoring service",
		Writer:  out,
		Flags: []cli.Flag{
			debugFlag,
			formatFlag,
			addrFlag,
			tlsFlag,
			caFileFlag,
			serverNameFlag,
		},
		Commands: []*cli.Command{
			classifyCmd,
			migrateCmd,
			reconcileCmd,
			scoreCmd,
			historyCmd,
			artifactCmd,
			reloadCmd,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := "info"
			if cmd.Bool(debugFlag.Name) {
				level = "debug"
			}
			observability.InitLogger(observability.LogConfig{
				Output: os.Stderr,
				Level:  level,
				Format: "text",
			})

			switch f := cmd.String(formatFlag.Name); f {
			case formatJSON, formatYAML, "yml":
			default:
				return ctx, fmt.Errorf("unsupported output format: %s", f)
			}
			return ctx, nil
		},
	}
}

func encode(cmd *cli.Command, v any) error {
	out := cmd.Root().Writer
	switch cmd.String(formatFlag.Name) {
	case formatYAML, "yml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(toPlain(v))
	default:
		e := json.NewEncoder(out)
		e.SetIndent("", "  ")
		return e.Encode(v)
	}
}

// toPlain round-trips v through JSON so YAML output uses the json field names.
func toPlain(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var plain any
	if err := json.Unmarshal(data, &plain); err != nil {
		return v
	}
	return plain
}
