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

package rce

import (
	"fmt"
	"math"
	"os"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/cdf"
)

// dataVersion is checked when reading column state files to make sure
// the file layout matches this version of the model.
const dataVersion = "1.0"

type columnVar struct {
	name, desc, units string
	data              []float64
}

// profileVars lists the full-level profiles of c together with the
// descriptions and units from the struct tags.
func (c *Column) profileVars() []columnVar {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	var o []columnVar
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		desc := f.Tag.Get("desc")
		if desc == "" {
			continue
		}
		o = append(o, columnVar{
			name:  f.Name,
			desc:  desc,
			units: f.Tag.Get("units"),
			data:  v.Field(i).Interface().([]float64),
		})
	}
	return o
}

// Write writes the column state to a netCDF file at the given path.
func (c *Column) Write(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rce: creating output file: %v", err)
	}
	defer w.Close()

	n := c.NumLevels()
	h := cdf.NewHeader([]string{"level", "halflevel"}, []int{n, n + 1})
	h.AddAttribute("", "comment", "RCE single-column atmosphere state file")
	h.AddAttribute("", "data_version", dataVersion)

	h.AddVariable("plev", []string{"level"}, []float32{0})
	h.AddAttribute("plev", "description", "Pressure at full levels")
	h.AddAttribute("plev", "units", "Pa")
	h.AddVariable("phlev", []string{"halflevel"}, []float32{0})
	h.AddAttribute("phlev", "description", "Pressure at half levels")
	h.AddAttribute("phlev", "units", "Pa")
	for _, v := range c.profileVars() {
		h.AddVariable(v.name, []string{"level"}, []float32{0})
		h.AddAttribute(v.name, "description", v.desc)
		h.AddAttribute(v.name, "units", v.units)
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	if err := writeNCF(f, "plev", c.Plev); err != nil {
		return err
	}
	if err := writeNCF(f, "phlev", c.Phlev); err != nil {
		return err
	}
	for _, v := range c.profileVars() {
		if err := writeNCF(f, v.name, v.data); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, Var string, data []float64) error {
	data32 := make([]float32, len(data))
	for i, e := range data {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("rce: writing variable %s to netcdf file: %v", Var, err)
	}
	return nil
}

// ReadColumn reads a column state previously written with Write from
// the netCDF file at the given path. The half-level grid is rederived
// from the full-level pressures.
func ReadColumn(path string) (*Column, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rce: opening column state file: %v", err)
	}
	defer r.Close()
	ff, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("rce: reading column state file %s: %v", path, err)
	}

	version, ok := ff.Header.GetAttribute("", "data_version").(string)
	if !ok || version != dataVersion {
		return nil, fmt.Errorf("rce: column state file %s has data version %v "+
			"but version %s is required", path, version, dataVersion)
	}

	plev, err := readProfileVar(ff, "plev")
	if err != nil {
		return nil, fmt.Errorf("rce: column state file %s: %v", path, err)
	}
	T, err := readProfileVar(ff, "T")
	if err != nil {
		return nil, fmt.Errorf("rce: column state file %s: %v", path, err)
	}
	z, err := readProfileVar(ff, "Z")
	if err != nil {
		return nil, fmt.Errorf("rce: column state file %s: %v", path, err)
	}
	gases := make(map[string][]float64)
	for _, name := range GasNames {
		if len(ff.Header.Lengths(name)) == 0 {
			continue
		}
		gas, err := readProfileVar(ff, name)
		if err != nil {
			return nil, fmt.Errorf("rce: column state file %s: %v", path, err)
		}
		gases[name] = gas
	}
	return NewColumn(plev, T, z, gases)
}

// ProfileConfig describes an idealized initial atmosphere for building
// a column from a scenario file instead of from saved state.
type ProfileConfig struct {
	// NumLevels is the number of full pressure levels.
	NumLevels int

	// SurfacePressure and TopPressure bound the logarithmically
	// spaced pressure grid [Pa].
	SurfacePressure float64
	TopPressure     float64

	// SurfaceTemperature [K] and LapseRate [K/m] define the initial
	// temperature profile. The temperature is not allowed to drop
	// below 195 K.
	SurfaceTemperature float64
	LapseRate          float64

	// RelativeHumidity sets the initial tropospheric water vapor.
	RelativeHumidity float64

	// Uniform trace-gas volume mixing ratios.
	CO2, CH4, N2O, CO, O3 float64
}

// DefaultProfileConfig returns an idealized present-day atmosphere.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		NumLevels:          150,
		SurfacePressure:    1000e2,
		TopPressure:        10,
		SurfaceTemperature: 288,
		LapseRate:          0.0065,
		RelativeHumidity:   0.8,
		CO2:                348e-6,
		CH4:                1650e-9,
		N2O:                306e-9,
	}
}

// ReadProfileFile reads a TOML scenario file describing an idealized
// initial atmosphere and builds the corresponding column. Fields
// missing from the file keep the DefaultProfileConfig values.
func ReadProfileFile(filename string) (*Column, error) {
	cfg := DefaultProfileConfig()
	if _, err := toml.DecodeFile(filename, &cfg); err != nil {
		return nil, fmt.Errorf("rce: reading profile file %s: %v", filename, err)
	}
	return cfg.Column()
}

// Column builds the initial column described by the configuration.
// The temperature and height profiles are solved together: heights
// follow hydrostatic balance for the current temperatures and
// temperatures follow the configured lapse rate on the current
// heights, iterated to consistency.
func (cfg ProfileConfig) Column() (*Column, error) {
	const minT = 195 // [K] temperature floor aloft

	if cfg.NumLevels < 3 {
		return nil, fmt.Errorf("rce: a column needs at least 3 pressure levels, got %d",
			cfg.NumLevels)
	}
	if cfg.TopPressure <= 0 || cfg.SurfacePressure <= cfg.TopPressure {
		return nil, fmt.Errorf("rce: pressure bounds must satisfy 0 < top < surface, "+
			"got surface %g Pa and top %g Pa", cfg.SurfacePressure, cfg.TopPressure)
	}

	n := cfg.NumLevels
	plev := make([]float64, n)
	lnPs, lnPt := math.Log(cfg.SurfacePressure), math.Log(cfg.TopPressure)
	for i := range plev {
		frac := float64(i) / float64(n-1)
		plev[i] = math.Exp(lnPs + frac*(lnPt-lnPs))
	}

	T := make([]float64, n)
	z := make([]float64, n)
	for i := range T {
		T[i] = cfg.SurfaceTemperature
	}
	c, err := NewColumn(plev, T, z, nil)
	if err != nil {
		return nil, err
	}
	for iter := 0; iter < 5; iter++ {
		HydrostaticHeight(c)
		for i := range c.T {
			c.T[i] = math.Max(cfg.SurfaceTemperature-cfg.LapseRate*c.Z[i], minT)
		}
	}
	HydrostaticHeight(c)

	rh := make([]float64, n)
	for i := range rh {
		rh[i] = cfg.RelativeHumidity
	}
	c.SetRelativeHumidity(rh)
	c.ClipStratosphericHumidity()

	for i := 0; i < n; i++ {
		c.CO2[i] = cfg.CO2
		c.CH4[i] = cfg.CH4
		c.N2O[i] = cfg.N2O
		c.CO[i] = cfg.CO
		c.O3[i] = cfg.O3
	}
	return c, nil
}
