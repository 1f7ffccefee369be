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

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// GasNames are the names of the trace-gas volume mixing ratio profiles
// stored in a Column, in the order the radiation scheme expects them.
var GasNames = []string{"H2O", "O3", "CO2", "N2O", "CO", "CH4"}

// Defaults for the unstable-layer search.
const (
	defaultCriticalLapse = 0.0065 // [K/m]
	defaultSearchPmin    = 10e2   // [Pa]; levels at lower pressure are never flagged unstable
)

// Column holds the state of a single atmospheric column on a fixed
// pressure grid. Index 0 is the surface (highest pressure); the last
// index is the top of the atmosphere. Plev and Phlev are fixed for the
// lifetime of the column; T, Z, and H2O are mutated by the adjustment
// steps each timestep.
type Column struct {
	Plev  []float64 // pressure at full levels [Pa], monotonically decreasing
	Phlev []float64 // pressure at half levels [Pa], len(Plev)+1

	T []float64 `desc:"Temperature" units:"K"`
	Z []float64 `desc:"Geometric height" units:"m"`

	H2O []float64 `desc:"Water vapor" units:"VMR"`
	O3  []float64 `desc:"Ozone" units:"VMR"`
	CO2 []float64 `desc:"Carbon dioxide" units:"VMR"`
	N2O []float64 `desc:"Nitrous oxide" units:"VMR"`
	CO  []float64 `desc:"Carbon monoxide" units:"VMR"`
	CH4 []float64 `desc:"Methane" units:"VMR"`
}

// NewColumn creates a column from a full-level pressure grid [Pa],
// a temperature profile [K], a height profile [m], and trace-gas volume
// mixing ratio profiles keyed by the names in GasNames. Missing gases
// are filled with zeros. The half-level grid is derived here and is
// immutable afterwards.
func NewColumn(plev, T, z []float64, gases map[string][]float64) (*Column, error) {
	n := len(plev)
	if n < 3 {
		return nil, fmt.Errorf("rce: a column needs at least 3 pressure levels, got %d", n)
	}
	for i := 1; i < n; i++ {
		if plev[i] >= plev[i-1] {
			return nil, fmt.Errorf("rce: pressure levels must decrease monotonically "+
				"(level %d: %g Pa, level %d: %g Pa)", i-1, plev[i-1], i, plev[i])
		}
	}
	if len(T) != n || len(z) != n {
		return nil, fmt.Errorf("rce: profile length mismatch: plev has %d levels, "+
			"T has %d, z has %d", n, len(T), len(z))
	}
	c := &Column{
		Plev:  append([]float64(nil), plev...),
		Phlev: halfLevels(plev),
		T:     append([]float64(nil), T...),
		Z:     append([]float64(nil), z...),
	}
	for _, name := range GasNames {
		profile := make([]float64, n)
		if gas, ok := gases[name]; ok {
			if len(gas) != n {
				return nil, fmt.Errorf("rce: gas %s has %d levels, want %d", name, len(gas), n)
			}
			copy(profile, gas)
		}
		*c.gas(name) = profile
	}
	return c, nil
}

// halfLevels derives the half-level pressure grid from the full-level
// grid: midpoints between consecutive full levels, with both boundary
// values linearly extrapolated.
func halfLevels(plev []float64) []float64 {
	n := len(plev)
	phlev := make([]float64, n+1)
	for i := 1; i < n; i++ {
		phlev[i] = 0.5 * (plev[i-1] + plev[i])
	}
	phlev[0] = plev[0] + (plev[0] - phlev[1])
	phlev[n] = plev[n-1] - (phlev[n-1] - plev[n-1])
	return phlev
}

// NumLevels returns the number of full pressure levels.
func (c *Column) NumLevels() int { return len(c.Plev) }

// gas returns a pointer to the mixing ratio profile with the given name.
func (c *Column) gas(name string) *[]float64 {
	switch name {
	case "H2O":
		return &c.H2O
	case "O3":
		return &c.O3
	case "CO2":
		return &c.CO2
	case "N2O":
		return &c.N2O
	case "CO":
		return &c.CO
	case "CH4":
		return &c.CH4
	}
	panic(fmt.Sprintf("rce: unknown gas %s", name))
}

// RelativeHumidity derives the relative humidity profile from the
// stored water vapor mixing ratio, pressure, and temperature.
func (c *Column) RelativeHumidity() []float64 {
	rh := make([]float64, len(c.T))
	for i := range rh {
		rh[i] = c.H2O[i] * c.Plev[i] / eSat(c.T[i])
	}
	return rh
}

// SetRelativeHumidity overwrites the water vapor mixing ratio so that
// the given relative humidity profile is reproduced exactly at the
// current temperature. Unphysical results are reported but kept.
func (c *Column) SetRelativeHumidity(rh []float64) {
	log.Debug("rce: adjusting water vapor to preserve relative humidity")
	for i := range rh {
		vmr := rh[i] * eSat(c.T[i]) / c.Plev[i]
		if vmr < 0 || vmr > 0.5 {
			log.WithFields(log.Fields{
				"level": i,
				"vmr":   vmr,
			}).Warn("rce: unphysical water vapor mixing ratio after humidity restoration")
		}
		c.H2O[i] = vmr
	}
}

// LapseRate returns the temperature lapse rate Γ = −dT/dz [K/m] at each
// full level. First differences between adjacent levels are averaged
// onto the interior levels and the edge values are repeated at both
// boundaries, so the result has the same length as T.
func (c *Column) LapseRate() []float64 {
	n := len(c.T)
	d := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		d[i] = -(c.T[i+1] - c.T[i]) / (c.Z[i+1] - c.Z[i])
	}
	lapse := make([]float64, n)
	for i := 1; i < n-1; i++ {
		lapse[i] = 0.5 * (d[i-1] + d[i])
	}
	lapse[0] = lapse[1]
	lapse[n-1] = lapse[n-2]
	return lapse
}

// FirstUnstableLayer scans from the top of the atmosphere downward and
// returns the index of the first level whose lapse rate exceeds
// critLapse [K/m] at a pressure greater than pmin [Pa], along with
// whether such a level exists. The two lowest levels are never checked.
func (c *Column) FirstUnstableLayer(critLapse, pmin float64) (int, bool) {
	lapse := c.LapseRate()
	for n := len(lapse) - 1; n > 1; n-- {
		if lapse[n] > critLapse && c.Plev[n] > pmin {
			return n, true
		}
	}
	return 0, false
}

// ColdPointIndex returns the index of the cold-point tropopause, the
// level of minimum temperature. Ties go to the lowest index.
func (c *Column) ColdPointIndex() int {
	return floats.MinIdx(c.T)
}

// ClipStratosphericHumidity fixes the water vapor mixing ratio at and
// above the cold point to the cold-point value, emulating freeze-drying
// at the tropopause.
func (c *Column) ClipStratosphericHumidity() {
	cp := c.ColdPointIndex()
	for i := cp; i < len(c.H2O); i++ {
		c.H2O[i] = c.H2O[cp]
	}
}
