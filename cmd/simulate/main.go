package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/netrixframework/dtnroute/apiserver"
	"github.com/netrixframework/dtnroute/config"
	"github.com/netrixframework/dtnroute/log"
	"github.com/netrixframework/dtnroute/routing"
	"github.com/netrixframework/dtnroute/sim"
	"github.com/netrixframework/dtnroute/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type flags struct {
	engine string
	ticks  int
	nodes  int
	seed   int64
	serve  bool
	report string
}

// loadConfig reads the config file when present and applies the flags that were set.
// A missing file falls back to the defaults unless the path was given explicitly.
// The engine flag selects the defaults the file is applied over.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	changed := cmd.Flags().Changed
	kind := ""
	if changed("engine") {
		kind = f.engine
	}

	var conf *config.Config
	if _, err := os.Stat(config.ConfigPath); err == nil {
		conf, err = config.ParseConfigWithKind(config.ConfigPath, kind)
		if err != nil {
			return nil, err
		}
	} else if changed("config") {
		return nil, fmt.Errorf("config file %s: %s", config.ConfigPath, err)
	} else {
		conf = config.DefaultConfig(f.engine)
	}

	if changed("ticks") {
		conf.Sim.Ticks = f.ticks
	}
	if changed("nodes") {
		conf.Sim.Nodes = f.nodes
	}
	if changed("seed") {
		conf.Sim.Seed = f.seed
		conf.Engine.Seed = f.seed
	}
	if changed("report") {
		conf.Sim.ReportPath = f.report
	}
	return conf, nil
}

// SimulateCmd returns the command that runs a simulation with one of the engines
func SimulateCmd() *cobra.Command {
	f := flags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated opportunistic network with the configured engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			termCh := util.Term()

			conf, err := loadConfig(cmd, f)
			if err != nil {
				return fmt.Errorf("failed to parse config: %s", err)
			}
			log.Init(conf.LogConfig)
			if conf.LogConfig.Path == "" {
				log.DefaultLogger.SetOutput(cmd.ErrOrStderr())
			}
			defer log.Destroy()

			registry := prometheus.NewRegistry()
			metrics, err := routing.NewMetrics(registry)
			if err != nil {
				return fmt.Errorf("failed to register metrics: %s", err)
			}
			router, err := routing.NewRouter(conf.Engine, log.DefaultLogger, metrics)
			if err != nil {
				return fmt.Errorf("failed to initialize engine: %s", err)
			}
			world, err := sim.NewWorld(conf.Sim, router, log.DefaultLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize simulation: %s", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				select {
				case <-termCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			var server *apiserver.APIServer
			if f.serve {
				server = apiserver.NewAPIServer(conf.APIServerAddr, world, registry, log.DefaultLogger)
				server.Start()
			}

			if err := world.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			report := world.Report()
			log.With(log.LogParams{
				"run_id":         report.RunID,
				"delivered":      report.Delivered,
				"created":        report.Created,
				"delivery_ratio": report.DeliveryRatio,
				"mean_latency":   report.MeanLatency,
				"forwards":       report.Routing.Forwards,
			}).Info("Simulation report")
			if conf.Sim.ReportPath != "" {
				if err := report.Write(conf.Sim.ReportPath); err != nil {
					return fmt.Errorf("failed to write report: %s", err)
				}
			}

			if server != nil {
				log.Info("Serving the simulation state until interrupted")
				<-ctx.Done()
				server.Stop()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.engine, "engine", "e", config.HeuristicEngine, "Decision engine, heuristic or reinforcement")
	cmd.Flags().IntVarP(&f.ticks, "ticks", "t", 0, "Number of ticks to simulate")
	cmd.Flags().IntVarP(&f.nodes, "nodes", "n", 0, "Number of nodes in the network")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed of the simulation and the engines")
	cmd.Flags().BoolVar(&f.serve, "serve", false, "Serve the state of the simulation until interrupted")
	cmd.Flags().StringVarP(&f.report, "report", "r", "", "Path to write the JSON report to")
	return cmd
}

// DefaultsCmd prints the default configuration of an engine
func DefaultsCmd() *cobra.Command {
	var engine string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default configuration of an engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := config.DefaultConfig(engine)
			if _, err := routing.GetEngine(conf.Engine, nil); err != nil {
				return err
			}
			bytes, err := json.MarshalIndent(conf, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bytes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&engine, "engine", "e", config.HeuristicEngine, "Decision engine, heuristic or reinforcement")
	return cmd
}
