package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/ipif/bus"
	"github.com/sarchlab/ipif/config"
	"github.com/sarchlab/ipif/datarecording"
	"github.com/sarchlab/ipif/device"
	"github.com/sarchlab/ipif/id"
	"github.com/sarchlab/ipif/regs"
	"github.com/sarchlab/ipif/selftest"
	"github.com/sarchlab/ipif/tracing"
	"github.com/spf13/cobra"
)

type runFlags struct {
	base           string
	width          int
	statusReset    string
	record         string
	trace          bool
	resetOnFailure bool
	repeat         int
	faults         faultFlags
}

type runOptions struct {
	base           uint64
	width          int
	statusReset    uint32
	faults         device.Faults
	record         string
	trace          bool
	resetOnFailure bool
	repeat         int
}

var runArgs runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interrupt self-test on a simulated IPIF.",
	Long: "`run` maps one simulated IPIF on a bus, runs the self-test on it " +
		"and prints the status. The command exits with 1 if any run fails.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := runArgs.options(cmd.Flags().Changed, cfg)
		if err != nil {
			return err
		}

		if opts.record != "" {
			id.UseParallelGenerator()
		} else {
			id.UseSequentialGenerator()
		}

		passed, err := runSelfTests(opts, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		if !passed {
			exitCode = 1
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringVar(&runArgs.base, "base", "0x40000000",
		"Base address of the device (IPIF_BASE)")
	flags.IntVar(&runArgs.width, "width", 32,
		"Number of implemented IP interrupt bits (IPIF_WIDTH)")
	flags.StringVar(&runArgs.statusReset, "status-reset", "0",
		"IP-defined IISR value after reset")
	flags.StringVar(&runArgs.record, "record", "",
		"Record accesses and results into <record>.sqlite3 (IPIF_RECORD)")
	flags.BoolVar(&runArgs.trace, "trace", false,
		"Print every register access")
	flags.BoolVar(&runArgs.resetOnFailure, "reset-on-failure", false,
		"Reset the device after a failing run")
	flags.IntVar(&runArgs.repeat, "repeat", 1, "Number of runs")
	addFaultFlags(runCmd, &runArgs.faults)
}

// options validates the flags. Flags not set on the command line fall back
// to c.
func (f runFlags) options(
	changed func(string) bool,
	c config.Config,
) (runOptions, error) {
	opts := runOptions{
		base:           c.Base,
		width:          c.Width,
		record:         c.Record,
		trace:          f.trace,
		resetOnFailure: f.resetOnFailure,
		repeat:         f.repeat,
	}

	var err error

	if changed("base") {
		opts.base, err = config.ParseAddress(f.base)
		if err != nil {
			return runOptions{}, fmt.Errorf("--base: %w", err)
		}
	}

	if changed("width") {
		opts.width = f.width
	}

	if changed("record") {
		opts.record = f.record
	}

	opts.statusReset, err = parseWord("status-reset", f.statusReset)
	if err != nil {
		return runOptions{}, err
	}

	opts.faults, err = f.faults.faults()
	if err != nil {
		return runOptions{}, err
	}

	if opts.width < 0 || opts.width > regs.MaxInterruptWidth {
		return runOptions{}, fmt.Errorf("width %d is out of range [0, %d]",
			opts.width, regs.MaxInterruptWidth)
	}

	if opts.base%4 != 0 {
		return runOptions{}, fmt.Errorf(
			"base address 0x%x is not word aligned", opts.base)
	}

	if opts.repeat < 1 {
		return runOptions{}, fmt.Errorf("--repeat must be at least 1")
	}

	return opts, nil
}

// runSelfTests builds a one-device system and runs the self-test on it. It
// returns false if any run fails. Run IDs come from the process-wide id
// generator, sequential unless the caller picked another kind.
func runSelfTests(opts runOptions, out io.Writer) (bool, error) {
	dev := device.MakeBuilder().
		WithIPWidth(opts.width).
		WithIPStatusResetValue(opts.statusReset).
		WithFaults(opts.faults).
		Build("IPIF")

	b := bus.New()
	b.Map(opts.base, dev)

	var recorder datarecording.DataRecorder
	if opts.record != "" {
		var err error

		recorder, err = datarecording.New(opts.record)
		if err != nil {
			return false, err
		}
		defer recorder.Close()
	}

	tester := selftest.NewTester("IPIF.SelfTest")
	tester.AcceptHook(selftest.NewLogHook(slog.Default()))
	tester.AcceptHook(tracing.NewResultTracer(recorder))

	var accesses *tracing.AccessTracer
	if opts.trace || recorder != nil {
		accesses = tracing.NewAccessTracer(recorder)
		dev.AcceptHook(accesses)
	}

	registers := regs.OnBus(b, opts.base)
	failures := 0

	for i := 0; i < opts.repeat; i++ {
		status := tester.Run(registers, opts.width)
		fmt.Fprintf(out, "%s at 0x%08x: %s\n", dev.Name(), opts.base, status)

		if status.OK() {
			continue
		}

		failures++

		if opts.resetOnFailure {
			registers.Reset()
		}
	}

	if opts.repeat > 1 {
		fmt.Fprintf(out, "%d of %d runs passed\n",
			opts.repeat-failures, opts.repeat)
	}

	if opts.trace {
		printAccesses(out, accesses.Accesses())
	}

	return failures == 0, nil
}

func printAccesses(out io.Writer, records []tracing.AccessRecord) {
	for _, r := range records {
		fmt.Fprintf(out, "%6d %-5s %-6s 0x%08x\n",
			r.Seq, r.Kind, r.Register, r.Value)
	}
}
