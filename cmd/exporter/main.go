package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hyperlane-ops/network-exporter/pkg/contract"
	"github.com/hyperlane-ops/network-exporter/pkg/metrics"
	"github.com/hyperlane-ops/network-exporter/pkg/network"
	"github.com/hyperlane-ops/network-exporter/pkg/refresher"
	"github.com/hyperlane-ops/network-exporter/pkg/store"
	"github.com/hyperlane-ops/network-exporter/pkg/utils"
)

const (
	defaultInterval   = 30 * time.Second
	defaultRPCTimeout = 10 * time.Second
	defaultPort       = 39339
	shutdownTimeout   = 10 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "exporter",
		Usage: "Export Hyperlane merkle tree hook checkpoints as Prometheus metrics",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the exporter",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Enable verbose logging",
					},
					&cli.StringFlag{
						Name:     "ethereum-rpc",
						Aliases:  []string{"e"},
						Usage:    "Ethereum RPC base URL",
						EnvVars:  []string{"ETHEREUM_RPC"},
						Required: true,
					},
					&cli.DurationFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "How often to read the checkpoint from the contract",
						EnvVars: []string{"INTERVAL"},
						Value:   defaultInterval,
					},
					&cli.DurationFlag{
						Name:    "rpc-timeout",
						Usage:   "Timeout for a single RPC call",
						EnvVars: []string{"RPC_TIMEOUT"},
						Value:   defaultRPCTimeout,
					},
					&cli.StringFlag{
						Name:    "host",
						Aliases: []string{"H"},
						Usage:   "Listen on this host (all interfaces if empty)",
						EnvVars: []string{"HOST"},
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"P"},
						Usage:   "Listen on this port",
						EnvVars: []string{"PORT"},
						Value:   defaultPort,
					},
				},
				Action: run,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	verbose := c.Bool("verbose")
	rpcURL := c.String("ethereum-rpc")
	interval := c.Duration("interval")
	rpcTimeout := c.Duration("rpc-timeout")
	host := c.String("host")
	port := c.Int("port")

	sugar, err := utils.NewSugaredLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	sugar.Infow("config",
		"verbose", verbose,
		"interval", interval,
		"rpcTimeout", rpcTimeout,
		"host", host,
		"port", port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to dial rpc: %w", err)
	}
	defer client.Close()

	// The network label is fixed for the process lifetime. Failure here is
	// fatal: metrics must never be served under a wrong or unknown label.
	resolveCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
	nw, err := network.Resolve(resolveCtx, client)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to resolve network: %w", err)
	}
	sugar.Infow("discovered Ethereum network", "network", nw)

	st := store.New()

	reader, err := contract.NewReader(client, nw.MerkleTreeHookAddress())
	if err != nil {
		return fmt.Errorf("failed to create contract reader: %w", err)
	}

	ref, err := refresher.New(sugar, reader, st, interval, rpcTimeout)
	if err != nil {
		return fmt.Errorf("failed to create refresher: %w", err)
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(nw.String(), st)); err != nil {
		return fmt.Errorf("failed to register collector: %w", err)
	}

	srv := metrics.NewServer(net.JoinHostPort(host, strconv.Itoa(port)), reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ref.Run(gctx)
	})
	g.Go(func() error {
		errCh := srv.Start()
		select {
		case <-gctx.Done():
			shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shCtx)
		case err := <-errCh:
			return err
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		sugar.Infow("exiting due to context cancellation")
		return nil
	}
	if err != nil {
		sugar.Errorw("run failed", "error", err)
		return err
	}

	sugar.Info("shutting down")
	return nil
}
