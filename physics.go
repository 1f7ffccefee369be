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
	"math"

	"gonum.org/v1/gonum/integrate"
)

// Physical constants [SI units].
const (
	gravity     = 9.80665 // standard gravity [m/s²]
	cpAir       = 1003.5  // isobaric mass heat capacity of dry air [J/kg/K]
	rAir        = 287.058 // specific gas constant of dry air [J/kg/K]
	zeroCelsius = 273.15  // [K]
)

const secondsPerDay = 24. * 60. * 60.

// eSat returns the saturation water vapor pressure over a plane liquid
// surface [Pa], using the Magnus formula (WMO 2008).
func eSat(T float64) float64 {
	return 610.94 * math.Exp(17.625*(T-zeroCelsius)/(T-zeroCelsius+243.04))
}

// airDensity returns dry-air density [kg/m³] from the ideal gas law.
func airDensity(p, T float64) float64 {
	return p / (rAir * T)
}

// trapz integrates y over x using the trapezoid rule. Slices with fewer
// than two points integrate to zero.
func trapz(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return integrate.Trapezoidal(x, y)
}

// gradient returns central-difference gradients of y, with one-sided
// differences at the edges.
func gradient(y []float64) []float64 {
	n := len(y)
	o := make([]float64, n)
	if n < 2 {
		return o
	}
	o[0] = y[1] - y[0]
	o[n-1] = y[n-1] - y[n-2]
	for i := 1; i < n-1; i++ {
		o[i] = (y[i+1] - y[i-1]) / 2
	}
	return o
}

// interpLinear linearly interpolates the series defined by xs and ys
// (xs ascending) at point x, returning fill outside the data range.
func interpLinear(xs, ys []float64, x, fill float64) float64 {
	n := len(xs)
	if n == 0 || x < xs[0] || x > xs[n-1] {
		return fill
	}
	i := 1
	for i < n && xs[i] < x {
		i++
	}
	if i == n {
		return ys[n-1]
	}
	frac := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + frac*(ys[i]-ys[i-1])
}

// HydrostaticHeight recomputes the geometric height of each full
// pressure level from the current temperature profile using the
// hypsometric equation. The surface level is anchored relative to the
// bottom half-level.
func HydrostaticHeight(c *Column) {
	c.Z[0] = rAir * c.T[0] / gravity * math.Log(c.Phlev[0]/c.Plev[0])
	for i := 1; i < len(c.Plev); i++ {
		tm := 0.5 * (c.T[i-1] + c.T[i])
		c.Z[i] = c.Z[i-1] + rAir*tm/gravity*math.Log(c.Plev[i-1]/c.Plev[i])
	}
}
