/*
Copyright © 2018 the RCE authors.
This file is part of RCE.

RCE is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RCE is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RCE.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package rceutil holds the command-line interface of the RCE model.
package rceutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/rcemodel/rce"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to RCE.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the simulation log file. If
              empty, logging goes to the standard output only.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Variant",
			usage: `
              Variant specifies the atmosphere variant to simulate. The
              available variants are fixed-vmr, fixed-rh, fixed-ts,
              convective, conup, fixed-moist-convective, and
              moist-convective.`,
			shorthand:  "v",
			defaultVal: "convective",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Timestep",
			usage: `
              Timestep is the model timestep in days.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MaxSteps",
			usage: `
              MaxSteps is the maximum number of timesteps to run. If < 1,
              the simulation runs until equilibrium is reached.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the equilibrium criterion: the largest per-level
              temperature change [K] over a check interval below which the
              column is considered converged.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "UpwellingVelocity",
			usage: `
              UpwellingVelocity is the stratospheric upwelling velocity
              [m/s] for the variants that model dynamic cooling. If 0,
              each variant uses its own default.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitialConditions",
			usage: `
              InitialConditions is the path to a netCDF column state file
              to start the simulation from. If empty, the initial column
              is built from ProfileFile instead.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ProfileFile",
			usage: `
              ProfileFile is the path to a TOML scenario file describing
              an idealized initial atmosphere. If empty, a default
              present-day profile is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the final column state will be
              written.`,
			defaultVal: "output.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Radiation.Tau",
			usage: `
              Radiation.Tau is the Newtonian cooling relaxation timescale
              in days.`,
			defaultVal: 40.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Radiation.SurfaceT",
			usage: `
              Radiation.SurfaceT is the surface temperature [K] of the
              radiative-equilibrium profile that the column is relaxed
              toward.`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Radiation.LapseRate",
			usage: `
              Radiation.LapseRate is the lapse rate [K/m] of the
              radiative-equilibrium profile. Values steeper than the
              critical lapse rate drive convection.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Radiation.MinT",
			usage: `
              Radiation.MinT is the temperature floor [K] of the
              radiative-equilibrium profile.`,
			defaultVal: 200.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.Enabled",
			usage: `
              VolcanoAerosol.Enabled specifies whether to include a
              volcanic aerosol layer in the radiative forcing.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.DataDir",
			usage: `
              VolcanoAerosol.DataDir is the directory holding the aerosol
              forcing netCDF files.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.MonthsAfterEruption",
			usage: `
              VolcanoAerosol.MonthsAfterEruption selects the forcing
              month, in [0, 18].`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.LevelShift",
			usage: `
              VolcanoAerosol.LevelShift moves the aerosol layer vertically
              relative to the observed layer [km].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.SWForcing",
			usage: `
              VolcanoAerosol.SWForcing specifies whether to include the
              shortwave aerosol forcing.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.LWForcing",
			usage: `
              VolcanoAerosol.LWForcing specifies whether to include the
              longwave aerosol forcing.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.Scattering",
			usage: `
              VolcanoAerosol.Scattering specifies whether to include the
              scattering component of the shortwave forcing.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VolcanoAerosol.Absorption",
			usage: `
              VolcanoAerosol.Absorption specifies whether to include the
              absorption component of the shortwave forcing.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RCE")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("rce: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "rce",
	Short: "A single-column radiative-convective equilibrium model.",
	Long: `RCE simulates the temperature and humidity structure of a single
atmospheric column as it relaxes toward radiative-convective equilibrium.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'RCE_var' where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of RCE.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("RCE v%s\n", rce.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model to equilibrium.",
	Long: `run steps an atmosphere variant forward in time until the column
temperature stops changing or the maximum number of timesteps is reached,
then writes the final column state to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		aerosol, err := aerosolFromConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(
			cmd,
			Cfg.GetString("LogFile"),
			Cfg.GetString("Variant"),
			Cfg.GetFloat64("Timestep"),
			Cfg.GetInt("MaxSteps"),
			Cfg.GetFloat64("Tolerance"),
			Cfg.GetFloat64("UpwellingVelocity"),
			Cfg.GetString("InitialConditions"),
			Cfg.GetString("ProfileFile"),
			Cfg.GetString("OutputFile"),
			radiationFromConfig(Cfg),
			aerosol,
		)
	},
	DisableAutoGenTag: true,
}

// aerosolFromConfig builds the configured aerosol layer. Configuration
// file values go through cast because TOML decodes numbers as int64.
func aerosolFromConfig(cfg *viper.Viper) (rce.Aerosol, error) {
	if !cfg.GetBool("VolcanoAerosol.Enabled") {
		return rce.NoAerosol{}, nil
	}
	months, err := cast.ToIntE(cfg.Get("VolcanoAerosol.MonthsAfterEruption"))
	if err != nil {
		return nil, fmt.Errorf("rce: invalid VolcanoAerosol.MonthsAfterEruption: %v", err)
	}
	return rce.NewVolcanoAerosol(rce.AerosolConfig{
		DataDir:             cfg.GetString("VolcanoAerosol.DataDir"),
		MonthsAfterEruption: months,
		LevelShift:          cfg.GetFloat64("VolcanoAerosol.LevelShift"),
		SWForcing:           cfg.GetBool("VolcanoAerosol.SWForcing"),
		LWForcing:           cfg.GetBool("VolcanoAerosol.LWForcing"),
		Scattering:          cfg.GetBool("VolcanoAerosol.Scattering"),
		Absorption:          cfg.GetBool("VolcanoAerosol.Absorption"),
	})
}
