package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/config"
	"github.com/backmassage/pixmaster/internal/logging"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	flags      config.Config // Raw flag values; applied only when set.
	configFile string
	envFile    string
	noColor    bool

	out io.Writer
}

func newApp() *app {
	return &app{flags: config.DefaultConfig(), envFile: ".env", out: os.Stdout}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pixmaster",
		Short:         "Losslessly optimize PNG, JPEG and GIF images with external tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file")
	pf.StringVar(&a.flags.RootDir, "root", "", "root working directory (must exist)")
	pf.StringVar(&a.flags.ToolsDir, "tools", "", "directory holding the optimizer executables")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "debug logging")
	pf.Var(config.NewColorValue(&a.flags.ColorMode), "color", "color output: auto, always or never")
	pf.BoolVar(&a.noColor, "no-color", false, "same as --color=never")
	pf.StringVar(&a.flags.LogFile, "log", "", "append log lines to this file")

	root.AddCommand(newOptimizeCmd(a), newAnalyzeCmd(a), newCheckCmd(a), newVersionCmd(a))
	return root
}

// resolveConfig layers defaults, the YAML file, the .env file and
// environment, then any flag the user set on cmd.
func (a *app) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()

	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	if a.configFile != "" {
		if err := config.LoadFile(a.configFile, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("root") {
		cfg.RootDir = config.NormalizeDirArg(a.flags.RootDir)
	}
	if f.Changed("tools") {
		cfg.ToolsDir = config.NormalizeDirArg(a.flags.ToolsDir)
	}
	if f.Changed("verbose") {
		cfg.Verbose = a.flags.Verbose
	}
	if f.Changed("color") {
		cfg.ColorMode = a.flags.ColorMode
	}
	if a.noColor {
		cfg.ColorMode = config.ColorNever
	}
	if f.Changed("log") {
		cfg.LogFile = a.flags.LogFile
	}
	if f.Changed("mode") {
		cfg.Mode = a.flags.Mode
	}
	if f.Changed("webp") {
		cfg.WebP = a.flags.WebP
	}
	if f.Changed("timeout") {
		cfg.ToolTimeout = a.flags.ToolTimeout
	}
	if f.Changed("workers") {
		cfg.Workers = a.flags.Workers
	}
	if f.Changed("max-procs") {
		cfg.MaxProcesses = a.flags.MaxProcesses
	}
	if f.Changed("tolerance") {
		cfg.VisualTolerance = a.flags.VisualTolerance
	}
	if f.Changed("report") {
		cfg.ReportFile = a.flags.ReportFile
	}
	if f.Changed("ref") {
		cfg.Ref = a.flags.Ref
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setup resolves the config and opens the logger. The caller closes it.
func (a *app) setup(cmd *cobra.Command) (config.Config, *logging.Logger, error) {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// batchFlags registers the flags shared by optimize and analyze.
func (a *app) batchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Var(config.NewModeValue(&a.flags.Mode), "mode", "GIF conversion mode: all, none or ie6safe")
	f.BoolVar(&a.flags.WebP, "webp", false, "also produce browser-specific WebP files")
}
