package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/backmassage/pixmaster/internal/check"
	"github.com/backmassage/pixmaster/internal/display"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which optimizer executables are available",
		Long: `Look up every optimizer (advpng, pngout, optipng, gifsicle, jpegtran,
jfifremove, cwebp, gif2webp) in the tools directory.

Exit codes:
  0 - At least one tool is usable
  1 - The tools directory is missing or holds no usable tool`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer log.Close()

			if cfg.ToolsDir == "" {
				return errors.New("--tools is required")
			}
			display.PrintBanner(a.out)
			check.RunCheck(cfg.ToolsDir, log)
			_, err = check.CheckTools(cfg.ToolsDir)
			return err
		},
	}
}
