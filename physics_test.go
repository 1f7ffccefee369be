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
	"testing"
)

func TestESat(t *testing.T) {
	if got := eSat(zeroCelsius); absDifferent(got, 610.94, 1e-9) {
		t.Errorf("saturation pressure at 0°C is %g Pa, want 610.94 Pa", got)
	}
	// Saturation pressure roughly doubles per 10 K near the surface.
	ratio := eSat(293.15) / eSat(283.15)
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("saturation pressure ratio over 10 K is %g, want about 2", ratio)
	}
}

func TestTrapz(t *testing.T) {
	if got := trapz([]float64{1}, []float64{5}); got != 0 {
		t.Errorf("single-point integral is %g, want 0", got)
	}
	if got := trapz(nil, nil); got != 0 {
		t.Errorf("empty integral is %g, want 0", got)
	}
	// The trapezoid rule is exact for linear functions.
	x := []float64{0, 1, 3, 4}
	y := []float64{0, 2, 6, 8} // y = 2x
	if got := trapz(x, y); different(got, 16, 1e-12) {
		t.Errorf("integral of 2x over [0,4] is %g, want 16", got)
	}
}

func TestGradient(t *testing.T) {
	g := gradient([]float64{1, 3, 5, 7})
	for i, v := range g {
		if absDifferent(v, 2, 1e-12) {
			t.Errorf("gradient element %d is %g, want 2", i, v)
		}
	}
	if g := gradient([]float64{1}); len(g) != 1 || g[0] != 0 {
		t.Errorf("single-element gradient is %v, want [0]", g)
	}
}

func TestInterpLinear(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 10, 40}
	if got := interpLinear(xs, ys, 0.5, -1); absDifferent(got, 5, 1e-12) {
		t.Errorf("interpolation at 0.5 is %g, want 5", got)
	}
	if got := interpLinear(xs, ys, 2, -1); absDifferent(got, 40, 1e-12) {
		t.Errorf("interpolation at the last knot is %g, want 40", got)
	}
	if got := interpLinear(xs, ys, -0.1, -1); got != -1 {
		t.Errorf("interpolation below the range is %g, want the fill value -1", got)
	}
	if got := interpLinear(xs, ys, 2.1, -1); got != -1 {
		t.Errorf("interpolation above the range is %g, want the fill value -1", got)
	}
}

func TestHydrostaticHeight(t *testing.T) {
	const tolerance = 1e-12

	plev := []float64{1000e2, 900e2, 800e2, 700e2}
	T := []float64{250, 250, 250, 250}
	c, err := NewColumn(plev, T, make([]float64, 4), nil)
	if err != nil {
		t.Fatal(err)
	}
	HydrostaticHeight(c)

	// In an isothermal column the hypsometric equation gives the layer
	// thickness directly.
	if want := rAir * 250 / gravity * math.Log(c.Phlev[0]/plev[0]); different(c.Z[0], want, tolerance) {
		t.Errorf("surface height %g m, want %g m", c.Z[0], want)
	}
	for i := 1; i < len(plev); i++ {
		want := rAir * 250 / gravity * math.Log(plev[i-1]/plev[i])
		if got := c.Z[i] - c.Z[i-1]; different(got, want, tolerance) {
			t.Errorf("layer %d thickness %g m, want %g m", i, got, want)
		}
	}
}
