package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scitags/rdma-res-go/cmd/subcmd"
	"github.com/scitags/rdma-res-go/enrichment"
	"github.com/scitags/rdma-res-go/exporter"
	"github.com/scitags/rdma-res-go/filter"
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/render"
	"github.com/scitags/rdma-res-go/res"
	"github.com/scitags/rdma-res-go/types"
)

var (
	confPath     string
	logLevelFlag string
	logTimeFlag  bool
	jsonFlag     bool
	detailsFlag  bool
	devFlag      string
	portFlag     uint32
	procfsFlag   string

	conf = &Config{LogLevel: "info"}

	builtCommit = "dev"
)

var (
	rootCmd = &cobra.Command{
		Use:   "rdma-res",
		Short: "Show the resources tracked by the kernel's RDMA subsystem.",
		Long: "rdma-res queries the RDMA netlink interface for protection domains, memory regions,\n" +
			"completion queues, connection manager IDs and queue pairs.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if confPath != "" {
				c, err := ReadConf(confPath)
				if err != nil {
					return err
				}
				conf = c
			}

			if cmd.Flags().Changed("log-level") || conf.LogLevel == "" {
				conf.LogLevel = logLevelFlag
			}
			if cmd.Flags().Changed("details") {
				conf.Details = detailsFlag
			}

			setupLogging(conf.LogLevel)
			slog.Debug("loaded the configuration", "conf", conf)

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Get the built version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("built commit: %s\n", builtCommit)
		},
	}

	showCmd = &cobra.Command{
		Use:   "show <pd|mr|cq|cm_id|qp> [name=value...]",
		Short: "Show the resources of a given kind.",
		Long: "Show the resources of a given kind. Records can be filtered with name=value pairs where\n" +
			"value is a comma separated list. Numeric fields also accept ranges such as 10-20.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := types.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown resource kind %q", args[0])
			}

			pairs, err := filter.ParsePairs(args[1:])
			if err != nil {
				return err
			}

			conn, err := netlink.Dial()
			if err != nil {
				return err
			}
			defer conn.Close()

			// Process names are looked up once per run.
			comm, err := enrichment.NewCommCache(procfsFlag, 0)
			if err != nil {
				return err
			}

			return show(res.NewClient(conn), res.Query{
				Kind:    kind,
				Device:  devFlag,
				Port:    portFlag,
				Filters: pairs,
			}, render.New(os.Stdout, render.Options{
				JSON:    jsonFlag,
				Details: conf.Details,
				Comm:    comm,
			}))
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Publish the resources over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := exporter.DefaultConfig
			if conf.Exporter != nil {
				c = *conf.Exporter
			}
			if cmd.Flags().Changed("procfs") {
				c.Procfs = procfsFlag
			}

			conn, err := netlink.Dial()
			if err != nil {
				return err
			}
			defer conn.Close()

			comm, err := enrichment.NewCommCache(c.Procfs, time.Duration(c.CommTTL)*time.Millisecond)
			if err != nil {
				return err
			}

			e, err := exporter.New(&c, res.NewClient(conn), comm)
			if err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			doneChan := make(chan struct{})
			go e.Run(doneChan)

			slog.Info("serving resources", "address", c.BindAddress, "port", c.BindPort)

			sig := <-sigChan
			slog.Debug("caught a signal", "signal", sig)

			close(doneChan)
			return e.Cleanup()
		},
	}
)

// show renders every record q selects. Output produced before a fatal error
// is kept, except for invalid filters which are caught before any output.
func show(c *res.Client, q res.Query, r *render.Renderer) error {
	stats, err := c.Show(q, r)
	if err != nil && errors.Is(err, filter.ErrInvalid) {
		return err
	}

	if ferr := r.Flush(); ferr != nil {
		return fmt.Errorf("error flushing the output: %w", ferr)
	}

	slog.Debug("query stats", "stats", stats)

	return err
}

func init() {
	// Disable completion please!
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&confPath, "conf", "", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "one of trace, debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&logTimeFlag, "log-time", false, "include timestamps in log records")
	rootCmd.PersistentFlags().BoolVarP(&detailsFlag, "details", "d", false, "include vendor driver attributes")
	rootCmd.PersistentFlags().StringVar(&procfsFlag, "procfs", "/proc", "procfs mount point for process name lookups")

	showCmd.Flags().BoolVarP(&jsonFlag, "json", "j", false, "render records as a JSON array")
	showCmd.Flags().StringVar(&devFlag, "dev", "", "restrict the query to a single device")
	showCmd.Flags().Uint32Var(&portFlag, "port", 0, "restrict cm_id and qp queries to a single port")

	// Add the different sub-commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(subcmd.Devices)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
