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
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Aerosol supplies aerosol optical properties to the radiation scheme.
// UpdateForcing is called once per timestep; implementations that hold
// a constant forcing load their data on the first call and are no-ops
// afterwards.
type Aerosol interface {
	UpdateForcing(c *Column) error
}

// NoAerosol is an aerosol-free atmosphere.
type NoAerosol struct{}

// UpdateForcing does nothing.
func (NoAerosol) UpdateForcing(*Column) error { return nil }

// AerosolConfig configures a volcanic aerosol layer.
type AerosolConfig struct {
	// DataDir is the directory holding the forcing netCDF files
	// (extEarth.nc, extSun.nc, gSun.nc, omegaSun.nc).
	DataDir string

	// MonthsAfterEruption selects the forcing month, in [0, 18].
	MonthsAfterEruption int

	// LevelShift moves the aerosol layer vertically relative to the
	// observed layer [km].
	LevelShift float64

	SWForcing bool // include the shortwave forcing files
	LWForcing bool // include the longwave forcing files

	// Scattering and Absorption select the shortwave components. At
	// least one must be enabled when SWForcing is.
	Scattering bool
	Absorption bool
}

// VolcanoAerosol holds CMIP6-style volcanic aerosol optical properties
// per waveband and model level. The forcing data is loaded from netCDF
// files on the first UpdateForcing call, interpolated onto the column
// height grid, and kept fixed for the rest of the run.
type VolcanoAerosol struct {
	ExtinctionSW *sparse.DenseArray // optical thickness [band, level]
	SSAlbedoSW   *sparse.DenseArray // single-scattering albedo [band, level]
	AsymmetrySW  *sparse.DenseArray // asymmetry factor [band, level]
	ExtinctionLW *sparse.DenseArray // optical thickness [band, level]

	cfg    AerosolConfig
	loaded bool
}

// NewVolcanoAerosol validates the configuration and returns an unloaded
// volcanic aerosol layer.
func NewVolcanoAerosol(cfg AerosolConfig) (*VolcanoAerosol, error) {
	if cfg.SWForcing && !cfg.Scattering && !cfg.Absorption {
		return nil, fmt.Errorf("rce: aerosol scattering and absorption cannot both be disabled")
	}
	if cfg.MonthsAfterEruption < 0 || cfg.MonthsAfterEruption > 18 {
		return nil, fmt.Errorf("rce: aerosol months after eruption must be in [0, 18], got %d",
			cfg.MonthsAfterEruption)
	}
	return &VolcanoAerosol{cfg: cfg}, nil
}

// UpdateForcing loads the forcing data on the first call and
// interpolates it onto the heights of the given column. The aerosol
// layer is held constant afterwards.
func (v *VolcanoAerosol) UpdateForcing(c *Column) error {
	if v.loaded {
		return nil
	}
	heights := make([]float64, c.NumLevels()) // [km]
	for i, z := range c.Z {
		heights[i] = z / 1000
	}
	// Extinctions are per length of input grid spacing; rescale to the
	// model's local level spacing.
	scaling := gradient(heights)

	if v.cfg.LWForcing {
		ext, err := v.readBands("extEarth.nc", "ext_earth", heights, scaling)
		if err != nil {
			return err
		}
		v.ExtinctionLW = ext
	}
	if v.cfg.SWForcing {
		ext, err := v.readBands("extSun.nc", "ext_sun", heights, scaling)
		if err != nil {
			return err
		}
		asym, err := v.readBands("gSun.nc", "g_sun", heights, nil)
		if err != nil {
			return err
		}
		ssa, err := v.readBands("omegaSun.nc", "omega_sun", heights, nil)
		if err != nil {
			return err
		}
		v.ExtinctionSW, v.AsymmetrySW, v.SSAlbedoSW = ext, asym, ssa
		v.splitScatteringAbsorption()
	}
	v.loaded = true
	return nil
}

// splitScatteringAbsorption reduces the shortwave properties to the
// scattering-only or absorption-only component when one of the two is
// disabled: absorption keeps ext·(1−ssa) with ssa = 0, scattering keeps
// ext·ssa with ssa = 1.
func (v *VolcanoAerosol) splitScatteringAbsorption() {
	switch {
	case v.cfg.Scattering && v.cfg.Absorption:
		return
	case v.cfg.Absorption:
		for i, ext := range v.ExtinctionSW.Elements {
			v.ExtinctionSW.Elements[i] = ext * (1 - v.SSAlbedoSW.Elements[i])
			v.SSAlbedoSW.Elements[i] = 0
		}
	case v.cfg.Scattering:
		for i, ext := range v.ExtinctionSW.Elements {
			v.ExtinctionSW.Elements[i] = ext * v.SSAlbedoSW.Elements[i]
			v.SSAlbedoSW.Elements[i] = 1
		}
	}
}

// readBands reads the per-band altitude profiles of varName for the
// configured month from a forcing file and interpolates them onto the
// column height grid [km], applying the configured level shift. If
// scaling is non-nil the interpolated values are multiplied by it
// per level.
func (v *VolcanoAerosol) readBands(fileName, varName string, heights, scaling []float64) (*sparse.DenseArray, error) {
	file := filepath.Join(v.cfg.DataDir, fileName)
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("rce: opening aerosol forcing file: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("rce: reading aerosol forcing file %s: %v", file, err)
	}

	altitude, err := readProfileVar(ff, "altitude")
	if err != nil {
		return nil, fmt.Errorf("rce: aerosol forcing file %s: %v", file, err)
	}
	for i := range altitude {
		altitude[i] += v.cfg.LevelShift
	}

	dims := ff.Header.Lengths(varName)
	if len(dims) != 3 {
		return nil, fmt.Errorf("rce: aerosol forcing variable %s in %s has %d dimensions, want 3",
			varName, file, len(dims))
	}
	nMonths, nBands, nAlt := dims[0], dims[1], dims[2]
	if v.cfg.MonthsAfterEruption >= nMonths {
		return nil, fmt.Errorf("rce: aerosol forcing file %s has %d months, want month %d",
			file, nMonths, v.cfg.MonthsAfterEruption)
	}
	if nAlt != len(altitude) {
		return nil, fmt.Errorf("rce: aerosol forcing variable %s in %s has %d altitudes, "+
			"altitude coordinate has %d", varName, file, nAlt, len(altitude))
	}
	start := []int{v.cfg.MonthsAfterEruption, 0, 0}
	end := []int{v.cfg.MonthsAfterEruption + 1, nBands, nAlt}
	r := ff.Reader(varName, start, end)
	buf := r.Zero(nBands * nAlt)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("rce: reading aerosol forcing variable %s from %s: %v",
			varName, file, err)
	}
	raw, ok := buf.([]float32)
	if !ok {
		return nil, fmt.Errorf("rce: aerosol forcing variable %s in %s is not float32",
			varName, file)
	}

	out := sparse.ZerosDense(nBands, len(heights))
	profile := make([]float64, nAlt)
	for band := 0; band < nBands; band++ {
		for i := 0; i < nAlt; i++ {
			profile[i] = float64(raw[band*nAlt+i])
		}
		for lev, h := range heights {
			val := interpLinear(altitude, profile, h, 0)
			if scaling != nil {
				val *= scaling[lev]
			}
			out.Set(val, band, lev)
		}
	}
	return out, nil
}

// readProfileVar reads a one-dimensional float32 variable in full.
func readProfileVar(ff *cdf.File, varName string) ([]float64, error) {
	dims := ff.Header.Lengths(varName)
	if len(dims) == 0 {
		return nil, fmt.Errorf("variable %s not in file", varName)
	}
	r := ff.Reader(varName, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", varName, err)
	}
	raw, ok := buf.([]float32)
	if !ok {
		return nil, fmt.Errorf("variable %s is not float32", varName)
	}
	o := make([]float64, len(raw))
	for i, val := range raw {
		o[i] = float64(val)
	}
	return o, nil
}
