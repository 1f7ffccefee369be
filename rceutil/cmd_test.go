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

package rceutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcemodel/rce"
)

func TestDefaults(t *testing.T) {
	if got := Cfg.GetString("Variant"); got != "convective" {
		t.Errorf("default variant %q, want convective", got)
	}
	if got := Cfg.GetFloat64("Timestep"); got != 1 {
		t.Errorf("default timestep %g, want 1", got)
	}
	if got := Cfg.GetInt("MaxSteps"); got != 0 {
		t.Errorf("default max steps %d, want 0", got)
	}
	if got := Cfg.GetString("OutputFile"); got != "output.nc" {
		t.Errorf("default output file %q, want output.nc", got)
	}
	if Cfg.GetBool("VolcanoAerosol.Enabled") {
		t.Error("the volcanic aerosol should be disabled by default")
	}
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	contents := `
Variant = "conup"
Timestep = 0.5
MaxSteps = 100
`
	if err := os.WriteFile(file, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	Cfg.Set("config", file)
	defer Cfg.Set("config", "")
	if err := setConfig(); err != nil {
		t.Fatal(err)
	}
	if got := Cfg.GetString("Variant"); got != "conup" {
		t.Errorf("variant %q, want conup", got)
	}
	if got := Cfg.GetFloat64("Timestep"); got != 0.5 {
		t.Errorf("timestep %g, want 0.5", got)
	}
	if got := Cfg.GetInt("MaxSteps"); got != 100 {
		t.Errorf("max steps %d, want 100", got)
	}
}

func TestConfigFileMissing(t *testing.T) {
	Cfg.Set("config", filepath.Join(t.TempDir(), "nonexistent.toml"))
	defer Cfg.Set("config", "")
	if err := setConfig(); err == nil {
		t.Error("a missing configuration file should error")
	}
}

func TestVersionCmd(t *testing.T) {
	Cfg.Set("config", "")
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestAerosolFromConfig(t *testing.T) {
	a, err := aerosolFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.(rce.NoAerosol); !ok {
		t.Errorf("disabled aerosol should be NoAerosol, got %T", a)
	}

	Cfg.Set("VolcanoAerosol.Enabled", true)
	Cfg.Set("VolcanoAerosol.Scattering", false)
	Cfg.Set("VolcanoAerosol.Absorption", false)
	defer func() {
		Cfg.Set("VolcanoAerosol.Enabled", false)
		Cfg.Set("VolcanoAerosol.Scattering", true)
		Cfg.Set("VolcanoAerosol.Absorption", true)
	}()
	if _, err := aerosolFromConfig(Cfg); err == nil {
		t.Error("shortwave forcing without scattering or absorption should error")
	}
}

func TestRunSimulation(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.toml")
	if err := os.WriteFile(profile, []byte("NumLevels = 30\n"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.nc")

	err := Run(runCmd, "", "fixed-vmr", 1, 3, 0.01, 0, "", profile, output,
		RadiationConfig{SurfaceT: 300, LapseRate: 0.01, MinT: 200, Tau: 40},
		rce.NoAerosol{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := rce.ReadColumn(output)
	if err != nil {
		t.Fatal(err)
	}
	if c.NumLevels() != 30 {
		t.Errorf("output column has %d levels, want 30", c.NumLevels())
	}
}
