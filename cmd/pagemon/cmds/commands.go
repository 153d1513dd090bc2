package cmds

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kk-code-lab/pagemon/internal/app"
	"github.com/kk-code-lab/pagemon/internal/config"
	"github.com/kk-code-lab/pagemon/internal/logflags"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	"github.com/kk-code-lab/pagemon/internal/procfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flags holds the raw command line. Values only override the config file when
// the flag was given explicitly.
type flags struct {
	pid        int
	name       string
	delay      int
	ticks      int
	zoom       int
	autoZoom   bool
	readAll    bool
	vmStats    bool
	maxPages   uint64
	configPath string
	saveConfig bool
	procRoot   string

	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path where logs should go.
	logDest string
}

const pagemonLongDesc = `pagemon shows the virtual memory of a running process as a live grid.

Each cell of the page view is one page (or a group of pages when zoomed):
  A  present, mapped from a file or shared
  R  present in RAM
  D  present and written since the last soft-dirty reset
  S  swapped out
  .  not present

Enter switches to a hex dump of the memory under the cursor. Press ? inside
the viewer for all key bindings.

Settings are read from $XDG_CONFIG_HOME/pagemon/config.yml when it exists;
command line flags take precedence.`

// New returns the root command. run is called with the resolved options once
// flags and the config file have been merged.
func New(run func(config.Options) error) *cobra.Command {
	var f flags
	rootCommand := &cobra.Command{
		Use:          "pagemon [flags] [pid|name]",
		Short:        "pagemon monitors the memory pages of a running process.",
		Long:         pagemonLongDesc,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.saveConfig {
				return saveOptions(cmd, &f)
			}
			opts, err := resolveOptions(cmd.Flags(), &f, args)
			if err != nil {
				return err
			}
			closer, err := logflags.Setup(f.log, f.logOutput, f.logDest)
			if err != nil {
				return pmerr.Wrap(pmerr.BadOption, err, "cannot set up logging")
			}
			defer closer.Close()
			return run(opts)
		},
	}

	fl := rootCommand.Flags()
	fl.IntVarP(&f.pid, "pid", "p", 0, "Process ID to monitor.")
	fl.StringVarP(&f.name, "name", "n", "", "Name of the process to monitor.")
	fl.IntVarP(&f.delay, "delay", "d", config.DefaultDelayMicro, "Delay between refreshes, in microseconds.")
	fl.IntVarP(&f.ticks, "ticks", "t", config.DefaultResetTicks, "Refreshes between soft-dirty resets.")
	fl.IntVarP(&f.zoom, "zoom", "z", config.MinZoom, "Pages per cell in the page view.")
	fl.BoolVarP(&f.autoZoom, "auto-zoom", "a", false, "Pick the zoom so the whole address space fits on screen.")
	fl.BoolVarP(&f.readAll, "read-all", "r", false, "Read every mapped page once before starting.")
	fl.BoolVarP(&f.vmStats, "vmstats", "v", false, "Show the VM statistics overlay.")
	fl.Uint64Var(&f.maxPages, "max-pages", 0, "Refuse to index more pages than this (0 for the built-in limit).")
	fl.StringVar(&f.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/pagemon/config.yml).")
	fl.BoolVar(&f.saveConfig, "save-config", false, "Write the effective settings to the config file and exit.")
	fl.StringVar(&f.procRoot, "proc-root", "", "Mount point of procfs.")
	_ = fl.MarkHidden("proc-root")
	fl.BoolVar(&f.log, "log", false, "Enable logging.")
	fl.StringVar(&f.logOutput, "log-output", "", "Comma separated list of components that should produce debug output (app, index, procfs).")
	fl.StringVar(&f.logDest, "log-dest", "", "Writes logs to the specified file (default "+logflags.DefaultLogDest()+").")

	return rootCommand
}

func configPath(f *flags) string {
	if f.configPath != "" {
		return f.configPath
	}
	if p, err := config.DefaultPath(); err == nil {
		return p
	}
	return ""
}

// mergeOptions loads the config file and applies the flags given explicitly.
func mergeOptions(fl *pflag.FlagSet, f *flags) (config.Options, error) {
	opts, err := config.Load(configPath(f))
	if err != nil {
		return opts, err
	}

	if fl.Changed("delay") {
		opts.DelayMicro = f.delay
	}
	if fl.Changed("ticks") {
		opts.ResetTicks = f.ticks
	}
	if fl.Changed("zoom") {
		opts.Zoom = f.zoom
	}
	if fl.Changed("auto-zoom") {
		opts.AutoZoom = f.autoZoom
	}
	if fl.Changed("read-all") {
		opts.ReadAll = f.readAll
	}
	if fl.Changed("vmstats") {
		opts.VMStats = f.vmStats
	}
	if fl.Changed("max-pages") {
		opts.MaxPages = f.maxPages
	}
	if fl.Changed("proc-root") {
		opts.ProcRoot = f.procRoot
	}
	return opts, nil
}

// saveOptions writes the merged settings back to the config file.
func saveOptions(cmd *cobra.Command, f *flags) error {
	path := configPath(f)
	if path == "" {
		return pmerr.New(pmerr.BadOption, "no config path, use --config")
	}
	opts, err := mergeOptions(cmd.Flags(), f)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, opts); err != nil {
		return pmerr.Wrap(pmerr.BadOption, err, "cannot write config %s", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// resolveOptions merges the config file, explicit flags and the positional
// target into validated options with a PID.
func resolveOptions(fl *pflag.FlagSet, f *flags, args []string) (config.Options, error) {
	opts, err := mergeOptions(fl, f)
	if err != nil {
		return opts, err
	}
	opts.PID = f.pid
	opts.Name = f.name

	if len(args) == 1 {
		if opts.PID != 0 || opts.Name != "" {
			return opts, pmerr.New(pmerr.BadOption, "target given both as argument and flag")
		}
		if pid, err := strconv.Atoi(args[0]); err == nil {
			opts.PID = pid
		} else {
			opts.Name = args[0]
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}

	switch {
	case opts.PID != 0 && opts.Name != "":
		return opts, pmerr.New(pmerr.BadOption, "--pid and --name are mutually exclusive")
	case opts.Name != "":
		pid, err := procfs.FindPIDByName(opts.ProcRoot, opts.Name, os.Getpid())
		if err != nil {
			return opts, err
		}
		opts.PID = pid
	case opts.PID == 0:
		return opts, pmerr.New(pmerr.NoPID, "no process given, use --pid or --name")
	}
	return opts, nil
}

// runViewer is the production run function: it attaches to the target and
// drives the UI until it exits.
func runViewer(opts config.Options) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return pmerr.New(pmerr.BadOption, "stdout is not a terminal")
	}
	application, err := app.NewApplication(opts)
	if err != nil {
		return err
	}
	return application.Run()
}

// Execute runs the command line and returns the process exit status.
func Execute(args []string) int {
	cmd := New(runViewer)
	cmd.SetArgs(args)
	cmd.SilenceErrors = true
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	reportError(stderrWriter(), err)
	return exitCode(err)
}

// exitCode maps command errors onto exit statuses. Usage errors raised by
// cobra itself count as bad options.
func exitCode(err error) int {
	var pe *pmerr.Error
	if err != nil && !errors.As(err, &pe) {
		return pmerr.BadOption.ExitCode()
	}
	return pmerr.ExitCode(err)
}

func stderrWriter() io.Writer {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return colorable.NewColorableStderr()
	}
	return colorable.NewNonColorable(os.Stderr)
}

// reportError prints err. A target that exited is reported plainly, anything
// else in red.
func reportError(w io.Writer, err error) {
	if pmerr.Is(err, pmerr.NoProcess) {
		fmt.Fprintf(w, "pagemon: %v\n", err)
		return
	}
	fmt.Fprintf(w, "\x1b[1;31mpagemon: %v\x1b[0m\n", err)
}
