/*
Copyright © 2026 the carbonstock authors.
This file is part of carbonstock.

carbonstock is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

carbonstock is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with carbonstock.  If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"

	"github.com/landcarbon/carbonstock"
	"github.com/landcarbon/carbonstock/cstockutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	debug      bool
	logger     *zap.Logger
)

func init() {
	Root.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to the TOML configuration file.")
	Root.PersistentFlags().BoolVar(&debug, "debug", false,
		"Print debugging information.")
	Root.AddCommand(runCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "carbonstock",
	Short: "Carbon stock indicators from land-use model results.",
	Long: `carbonstock calculates carbon stock by cell, time, land type and
carbon pool from the results of a land-use model run. Stocks can be
reconstructed with carbon densities held at a reference year and without
regrowth of age-class resolved land, and can be rolled up to regions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if debug {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	DisableAutoGenTag: true,
}

// runCmd calculates the indicator specified in the configuration file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate a carbon stock indicator.",
	Long: `Calculate the carbon stock indicator specified in the configuration
file and write it to the configured output. If no output is configured,
the indicator is printed as a table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return labelErr(fmt.Errorf("please set the --config flag and run again, " +
				"i.e. carbonstock run --config=/path/to/config.toml"))
		}
		return labelErr(Run(cmd, configFile, logger))
	},
	DisableAutoGenTag: true,
}

// Run calculates the indicator configured in the file at configPath.
func Run(cmd *cobra.Command, configPath string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := cstockutil.ReadConfigFile(configPath)
	if err != nil {
		return err
	}
	opts, err := cfg.Options(log)
	if err != nil {
		return err
	}
	src, err := cstockutil.OpenNetCDF(cfg.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	log.Info("calculating carbon stock",
		zap.String("input", cfg.Input),
		zap.String("level", cfg.Level),
		zap.Bool("fix_climate", cfg.FixClimate),
		zap.Bool("regrowth", cfg.Regrowth))
	out, err := carbonstock.CarbonStock(src, opts)
	if err != nil {
		return err
	}
	if cfg.Output == "" {
		_, err = carbonstock.NewTable(out, cfg.SI).Tabbed(cmd.OutOrStdout())
		return err
	}
	log.Info("wrote carbon stock", zap.String("output", cfg.Output))
	return nil
}

// labelErr labels an error as coming from carbonstock.
func labelErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("carbonstock: %w", err)
}
