// Package cli handles command line interface logic
package cli

import (
	"errors"

	"github.com/retroenv/nanddecode/internal/options"
	"github.com/retroenv/nanddecode/internal/simulation"
	"github.com/spf13/cobra"
)

// Handlers are called by the commands with the parsed options.
type Handlers struct {
	Decode   func(cmd *cobra.Command, opts options.Decode) error
	Simulate func(cmd *cobra.Command, opts options.Simulate) error
}

// NewRootCommand creates the root command and its decode and simulate sub commands.
// Flag defaults are taken from the environment.
func NewRootCommand(env Environment, handlers Handlers) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:   "nanddecode",
		Short: "Decode NAND flash bus captures.",
		Long: `nanddecode decodes logic analyzer captures of a parallel NAND flash bus ` +
			`into command, address and data bytes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var flags options.Flags
	debug, err := env.bool("DEBUG", false)
	if err != nil {
		return nil, err
	}
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", debug, "enable debugging options for extended logging")
	root.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "perform operations quietly")

	decodeCmd, err := newDecodeCommand(env, &flags, handlers.Decode)
	if err != nil {
		return nil, err
	}
	simulateCmd, err := newSimulateCommand(env, &flags, handlers.Simulate)
	if err != nil {
		return nil, err
	}
	root.AddCommand(decodeCmd, simulateCmd)

	return root, nil
}

func addChannelFlags(cmd *cobra.Command, env Environment, opts *options.Channels) {
	cmd.Flags().StringVar(&opts.Archive, "channels", env.string("CHANNELS", ""),
		"channel numbers of CE_n CLE ALE WE_n DQS DQ0..DQ7 separated by spaces, -1 for unused lines")
	cmd.Flags().StringVar(&opts.File, "channel-file", env.string("CHANNEL_FILE", ""),
		"YAML file assigning channel numbers to the bus lines")
}

func newDecodeCommand(env Environment, flags *options.Flags,
	handler func(*cobra.Command, options.Decode) error) (*cobra.Command, error) {

	var opts options.Decode
	cmd := &cobra.Command{
		Use:   "decode <capture.csv>",
		Short: "Decode a capture into NAND bus transactions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Flags = *flags
			opts.Input = args[0]
			if opts.Database != "" {
				opts.SQLite = true
			}
			return handler(cmd, opts)
		},
	}

	sampleRate, err := env.float("SAMPLE_RATE", 0)
	if err != nil {
		return nil, err
	}
	monitorPort, err := env.int("MONITOR_PORT", 0)
	if err != nil {
		return nil, err
	}

	addChannelFlags(cmd, env, &opts.Channels)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "name of the export file, printed on console if no name given")
	cmd.Flags().Float64Var(&opts.SampleRate, "sample-rate", sampleRate, "sample rate in Hz, required for captures with a time column")
	cmd.Flags().BoolVar(&opts.Frames, "frames", false, "output a table of all frames and markers instead of the transactions")
	cmd.Flags().BoolVar(&opts.SQLite, "sqlite", false, "store the results in a SQLite database")
	cmd.Flags().StringVar(&opts.Database, "database", env.string("DATABASE", ""), "name of the SQLite database, implies --sqlite")
	cmd.Flags().BoolVar(&opts.Monitor, "monitor", false, "serve the decoding progress over HTTP")
	cmd.Flags().IntVar(&opts.MonitorPort, "monitor-port", monitorPort, "port of the monitoring server, random if 0")

	return cmd, nil
}

func newSimulateCommand(env Environment, flags *options.Flags,
	handler func(*cobra.Command, options.Simulate) error) (*cobra.Command, error) {

	var opts options.Simulate
	cmd := &cobra.Command{
		Use:   "simulate <script.txt>",
		Short: "Simulate a capture from a transaction script.",
		Long: `simulate generates a capture of the NAND bus from a script with one transaction per line, ` +
			`for example "CMD:00 ADDR:0000010000 CMD:30" or "CMD:80 ADDR:0102 DATA:aabb".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Flags = *flags
			opts.Script = args[0]
			if opts.Output == "" {
				return errors.New("an output file has to be given")
			}
			return handler(cmd, opts)
		},
	}

	timing := simulation.DefaultTiming()
	addChannelFlags(cmd, env, &opts.Channels)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "name of the capture file to write")
	cmd.Flags().Uint64Var(&opts.Idle, "idle", timing.Idle, "samples of CE_n high time between transactions")
	cmd.Flags().Uint64Var(&opts.Setup, "setup", timing.Setup, "samples between CE_n edges and the first or last cycle")
	cmd.Flags().Uint64Var(&opts.Strobe, "strobe", timing.Strobe, "samples of WE_n low time")
	cmd.Flags().Uint64Var(&opts.Hold, "hold", timing.Hold, "samples between WE_n rising and CLE or ALE deassertion")
	cmd.Flags().Uint64Var(&opts.Half, "half", timing.Half, "samples of a DQS half period")

	return cmd, nil
}
