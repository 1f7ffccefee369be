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

import "errors"

// ErrNoConvectiveTop is returned when the energy-balance crossing
// condition is not satisfied anywhere within the column, in which case
// convective adjustment must be skipped for the timestep.
var ErrNoConvectiveTop = errors.New("rce: convective-top search exhausted the column")

// varyingSearchStart is the lowest candidate top level for the
// height-varying lapse rate search.
const varyingSearchStart = 10

// heatCapacityDensity returns ρ·Cp at each full level [J/m³/K].
func heatCapacityDensity(c *Column) []float64 {
	rcp := make([]float64, len(c.Plev))
	for i := range rcp {
		rcp[i] = airDensity(c.Plev[i], c.T[i]) * cpAir
	}
	return rcp
}

// ConvectiveTop finds the top level of the convective layer for a fixed
// lapse rate [K/m] such that column-integrated static energy is
// conserved by the adjustment. The search starts at the first unstable
// layer; a stable column returns ok=false with no error. If the
// crossing condition is never satisfied before the top of the grid,
// ErrNoConvectiveTop is returned and no level index is valid.
func ConvectiveTop(c *Column, lapse float64) (ctop int, ok bool, err error) {
	start, unstable := c.FirstUnstableLayer(defaultCriticalLapse, defaultSearchPmin)
	if !unstable {
		return 0, false, nil
	}
	n := c.NumLevels()
	rcp := heatCapacityDensity(c)
	energy := make([]float64, n) // ρ·Cp·(T + z·Γ)
	for i := 0; i < n; i++ {
		energy[i] = rcp[i] * (c.T[i] + c.Z[i]*lapse)
	}
	for a := start; a < n; a++ {
		term2 := trapz(c.Z[:a], energy[:a])
		term1 := (c.T[a] + c.Z[a]*lapse) * trapz(c.Z[:a], rcp[:a])
		if term1-term2 > 0 {
			return a, true, nil
		}
	}
	return 0, false, ErrNoConvectiveTop
}

// ConvectiveTopProfile is the height-varying lapse rate [K/m per level]
// counterpart of ConvectiveTop. The search starts at a fixed low level
// and evaluates a nested integral of the lapse rate profile between
// each sub-level and the candidate top.
func ConvectiveTopProfile(c *Column, lapse []float64) (ctop int, ok bool, err error) {
	n := c.NumLevels()
	if n <= varyingSearchStart {
		return 0, false, ErrNoConvectiveTop
	}
	rcp := heatCapacityDensity(c)
	rcpT := make([]float64, n)
	for i := 0; i < n; i++ {
		rcpT[i] = rcp[i] * c.T[i]
	}
	for a := varyingSearchStart; a < n; a++ {
		term2 := trapz(c.Z[:a], rcpT[:a])
		term1 := c.T[a] * trapz(c.Z[:a], rcp[:a])
		inner := make([]float64, a)
		for b := 0; b < a; b++ {
			inner[b] = rcp[b] * trapz(c.Z[b:a], lapse[b:a])
		}
		term3 := trapz(c.Z[:a], inner)
		if term1+term3-term2 > 0 {
			return a, true, nil
		}
	}
	return 0, false, ErrNoConvectiveTop
}

// ConvectiveAdjustment rewrites the temperature profile below the
// convective top to follow the given fixed lapse rate, anchored at the
// top level. The new profile is materialized completely before being
// committed, so a failure cannot leave the column half-adjusted.
func ConvectiveAdjustment(c *Column, ctop int, lapse float64) {
	tNew := append([]float64(nil), c.T...)
	for level := 0; level < ctop; level++ {
		tNew[level] = c.T[ctop] - (c.Z[level]-c.Z[ctop])*lapse
	}
	copy(c.T, tNew)
}

// ConvectiveAdjustmentProfile is the height-varying counterpart of
// ConvectiveAdjustment: below the top, the temperature at each level is
// the top temperature plus the integrated lapse rate between them.
func ConvectiveAdjustmentProfile(c *Column, ctop int, lapse []float64) {
	tNew := append([]float64(nil), c.T...)
	for level := 0; level < ctop; level++ {
		tNew[level] = c.T[ctop] + trapz(c.Z[level:ctop], lapse[level:ctop])
	}
	copy(c.T, tNew)
}

// SurfaceAnchoredAdjustment overwrites the temperature profile with a
// reference profile anchored at a fixed surface temperature and lapse
// rate, below the first level (searching from the top down) at which
// the reference profile still exceeds the current temperature.
func SurfaceAnchoredAdjustment(c *Column, lapse, surfaceT float64) {
	n := c.NumLevels()
	ref := make([]float64, n)
	for level := 0; level < n; level++ {
		ref[level] = surfaceT - lapse*(c.Z[level]-c.Z[0])
	}
	a := n - 1
	for a > 0 && ref[a] < c.T[a] {
		a--
	}
	copy(c.T[:a], ref[:a])
}
