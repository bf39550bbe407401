package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/ipif/bus"
	"github.com/sarchlab/ipif/config"
	"github.com/sarchlab/ipif/datarecording"
	"github.com/sarchlab/ipif/device"
	"github.com/sarchlab/ipif/id"
	"github.com/sarchlab/ipif/monitoring"
	"github.com/sarchlab/ipif/regs"
	"github.com/sarchlab/ipif/selftest"
	"github.com/sarchlab/ipif/tracing"
	"github.com/spf13/cobra"
)

// deviceStride is the distance between the base addresses of served
// devices.
const deviceStride = 0x10000

var serveArgs struct {
	base    string
	devices int
	width   int
	port    int
	record  string
	open    bool
	faulty  int
	faults  faultFlags
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a bus of simulated IPIFs over HTTP.",
	Long: "`serve` maps several simulated IPIFs on a bus and starts the " +
		"monitoring server. Self-tests are started with " +
		"POST /api/selftest/{name}. The server runs until interrupted.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := buildServedBus(cmd.Flags().Changed, cfg)
		if err != nil {
			return err
		}

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = serveArgs.port
		}

		record := cfg.Record
		if cmd.Flags().Changed("record") {
			record = serveArgs.record
		}

		monitor := monitoring.NewMonitor(b).
			WithPortNumber(port).
			WithLogger(slog.Default())
		monitor.RegisterTestHook(selftest.NewLogHook(slog.Default()))

		if record != "" {
			id.UseParallelGenerator()

			recorder, err := datarecording.New(record)
			if err != nil {
				return err
			}

			monitor.RegisterTestHook(tracing.NewResultTracer(recorder))
		}

		url := monitor.StartServer()
		fmt.Fprintln(cmd.OutOrStdout(), url)

		if serveArgs.open {
			err = browser.OpenURL(url)
			if err != nil {
				slog.Warn("cannot open browser", "err", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		<-ctx.Done()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringVar(&serveArgs.base, "base", "0x40000000",
		"Base address of the first device (IPIF_BASE)")
	flags.IntVar(&serveArgs.devices, "devices", 4, "Number of devices")
	flags.IntVar(&serveArgs.width, "width", 32,
		"Number of implemented IP interrupt bits (IPIF_WIDTH)")
	flags.IntVar(&serveArgs.port, "port", 0,
		"Port of the server, 0 for a random port (IPIF_PORT)")
	flags.StringVar(&serveArgs.record, "record", "",
		"Record results into <record>.sqlite3 (IPIF_RECORD)")
	flags.BoolVar(&serveArgs.open, "open", false,
		"Open the server in a browser")
	flags.IntVar(&serveArgs.faulty, "faulty", 0,
		"Apply the fault flags to the first N devices")
	addFaultFlags(serveCmd, &serveArgs.faults)
}

// buildServedBus maps the served devices one deviceStride apart, named
// IPIF[0], IPIF[1], ...
func buildServedBus(
	changed func(string) bool,
	c config.Config,
) (*bus.Bus, error) {
	base := c.Base
	if changed("base") {
		var err error

		base, err = config.ParseAddress(serveArgs.base)
		if err != nil {
			return nil, fmt.Errorf("--base: %w", err)
		}
	}

	width := c.Width
	if changed("width") {
		width = serveArgs.width
	}

	if width < 0 || width > regs.MaxInterruptWidth {
		return nil, fmt.Errorf("width %d is out of range [0, %d]",
			width, regs.MaxInterruptWidth)
	}

	if serveArgs.devices < 1 {
		return nil, fmt.Errorf("--devices must be at least 1")
	}

	faults, err := serveArgs.faults.faults()
	if err != nil {
		return nil, err
	}

	b := bus.New()

	for i := 0; i < serveArgs.devices; i++ {
		builder := device.MakeBuilder().WithIPWidth(width)
		if i < serveArgs.faulty {
			builder = builder.WithFaults(faults)
		}

		b.Map(base+uint64(i)*deviceStride,
			builder.Build(fmt.Sprintf("IPIF[%d]", i)))
	}

	return b, nil
}
