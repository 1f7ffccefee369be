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
	"strings"
	"testing"
)

func constantHeating(n int, q float64) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = q
	}
	return o
}

// The fixed-VMR variant follows the radiative heating exactly and
// touches nothing else.
func TestFixedVMR(t *testing.T) {
	const tolerance = 1e-12

	c := testColumn(t, 30, 1000e2, 100e2, 290, 0.0065)
	tOld := append([]float64(nil), c.T...)
	h2oOld := append([]float64(nil), c.H2O...)

	a := FixedVMR()
	if err := a.Adjust(c, constantHeating(30, 1), 2); err != nil {
		t.Fatal(err)
	}
	for i := range c.T {
		if different(c.T[i], tOld[i]+2, tolerance) {
			t.Errorf("level %d: temperature %g, want %g", i, c.T[i], tOld[i]+2)
		}
		if c.H2O[i] != h2oOld[i] {
			t.Errorf("level %d: water vapor changed from %g to %g", i, h2oOld[i], c.H2O[i])
		}
	}
}

// The fixed-RH variant rewrites the water vapor mixing ratio so that
// the relative humidity survives the heating unchanged.
func TestFixedRH(t *testing.T) {
	const tolerance = 1e-9

	c := testColumn(t, 30, 1000e2, 100e2, 290, 0.0065)
	rhOld := c.RelativeHumidity()
	h2oOld := append([]float64(nil), c.H2O...)

	a := FixedRH()
	if err := a.Adjust(c, constantHeating(30, 5), 1); err != nil {
		t.Fatal(err)
	}

	cp := c.ColdPointIndex()
	rh := c.RelativeHumidity()
	changed := false
	for i := 0; i < cp; i++ {
		if different(rh[i], rhOld[i], tolerance) {
			t.Errorf("level %d: relative humidity %g, want %g", i, rh[i], rhOld[i])
		}
		if c.H2O[i] != h2oOld[i] {
			changed = true
		}
	}
	if !changed {
		t.Error("heating by 5 K should change the water vapor mixing ratio")
	}
	// Above the cold point the mixing ratio is clipped to the cold
	// point value.
	for i := cp; i < c.NumLevels(); i++ {
		if c.H2O[i] != c.H2O[cp] {
			t.Errorf("level %d: water vapor %g above the cold point, want the "+
				"cold point value %g", i, c.H2O[i], c.H2O[cp])
		}
	}
}

// A supercritical column run through the convective variant ends up on
// the critical lapse rate below the convective top.
func TestConvectiveVariant(t *testing.T) {
	c := testColumn(t, 60, 1000e2, 50e2, 280, 0.008)
	a := Convective()
	if err := a.Adjust(c, constantHeating(60, 0), 1); err != nil {
		t.Fatal(err)
	}

	lapse := c.LapseRate()
	onCritical := 0
	for i := 2; i < c.NumLevels()-2; i++ {
		if !different(lapse[i], fixedConvectiveLapse, 1e-6) {
			onCritical++
		}
		if lapse[i] > fixedConvectiveLapse+1e-9 {
			t.Errorf("level %d: lapse rate %g exceeds the critical %g after adjustment",
				i, lapse[i], fixedConvectiveLapse)
		}
	}
	if onCritical == 0 {
		t.Error("no level sits on the critical lapse rate after adjustment")
	}
}

// A stable column passes through the convective variant changed only by
// the radiative heating.
func TestConvectiveVariantStable(t *testing.T) {
	const tolerance = 1e-12

	c := testColumn(t, 30, 1000e2, 100e2, 260, 0.004)
	tOld := append([]float64(nil), c.T...)

	a := Convective()
	if err := a.Adjust(c, constantHeating(30, 1), 1); err != nil {
		t.Fatal(err)
	}
	for i := range c.T {
		if different(c.T[i], tOld[i]+1, tolerance) {
			t.Errorf("level %d: temperature %g, want %g", i, c.T[i], tOld[i]+1)
		}
	}
}

func TestAdjusterPreScaled(t *testing.T) {
	c := testColumn(t, 30, 1000e2, 100e2, 290, 0.0065)
	a := FixedVMR()
	a.PreScaled = true
	if err := a.Adjust(c, constantHeating(30, 1), 2); err == nil {
		t.Error("pre-scaled heating rates with a non-unit timestep should error")
	}
	if err := a.Adjust(c, constantHeating(30, 1), 1); err != nil {
		t.Errorf("pre-scaled heating rates with a unit timestep should work: %v", err)
	}
}

func TestAdjusterHeatingRateLength(t *testing.T) {
	c := testColumn(t, 30, 1000e2, 100e2, 290, 0.0065)
	if err := FixedVMR().Adjust(c, constantHeating(29, 1), 1); err == nil {
		t.Error("a heating rate length mismatch should error")
	}
}

func TestFixedMoistConvectiveLevelCheck(t *testing.T) {
	c := testColumn(t, 30, 1000e2, 100e2, 290, 0.0065)
	a := FixedMoistConvective(0)
	err := a.Adjust(c, constantHeating(30, 0), 1)
	if err == nil {
		t.Fatal("a 30-level column should not work with the 150-level fixed adiabat")
	}
	if !strings.Contains(err.Error(), "150") {
		t.Errorf("error %q should mention the expected level count", err)
	}
}

func TestAdjusterByName(t *testing.T) {
	for _, name := range []string{"fixed-vmr", "fixed-rh", "fixed-ts", "convective",
		"conup", "fixed-moist-convective", "moist-convective"} {
		a, err := AdjusterByName(name, 0)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if a.Name() != name {
			t.Errorf("variant %q reports name %q", name, a.Name())
		}
	}
	if _, err := AdjusterByName("radiative-slab", 0); err == nil {
		t.Error("an unknown variant name should error")
	}
}

// The moist-adiabatic target lapse rate is evaluated from the column as
// it stands at the start of the step, not from the already heated
// profile.
func TestMoistConvectiveLapseFromStepStart(t *testing.T) {
	const tolerance = 1e-12
	q := constantHeating(60, 20)

	// Reference ordering: lapse rate and relative humidity from the
	// unheated column, then heating, top search, upwelling and
	// adjustment.
	ref := testColumn(t, 60, 1000e2, 50e2, 280, 0.008)
	lapse := MoistAdiabaticLapse(ref)
	rh := ref.RelativeHumidity()
	for i := range ref.T {
		ref.T[i] += q[i]
	}
	ctop, ok, err := ConvectiveTopProfile(ref, lapse)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("the heated column should have a convective top")
	}
	UpwellingCooling(ref, ctop, DefaultMoistVelocity, 1)
	ConvectiveAdjustmentProfile(ref, ctop, lapse)
	ref.SetRelativeHumidity(rh)
	ref.ClipStratosphericHumidity()

	c := testColumn(t, 60, 1000e2, 50e2, 280, 0.008)
	if err := MoistConvective(0).Adjust(c, q, 1); err != nil {
		t.Fatal(err)
	}
	for i := range c.T {
		if different(c.T[i], ref.T[i], tolerance) {
			t.Errorf("level %d: temperature %g, want %g", i, c.T[i], ref.T[i])
		}
		if different(c.H2O[i], ref.H2O[i], tolerance) {
			t.Errorf("level %d: water vapor %g, want %g", i, c.H2O[i], ref.H2O[i])
		}
	}

	// The same steps driven by the lapse rate of the already heated
	// profile give a different column, so the agreement above is not
	// vacuous.
	alt := testColumn(t, 60, 1000e2, 50e2, 280, 0.008)
	rhAlt := alt.RelativeHumidity()
	for i := range alt.T {
		alt.T[i] += q[i]
	}
	lapseAlt := MoistAdiabaticLapse(alt)
	if ctopAlt, okAlt, err := ConvectiveTopProfile(alt, lapseAlt); err == nil && okAlt {
		UpwellingCooling(alt, ctopAlt, DefaultMoistVelocity, 1)
		ConvectiveAdjustmentProfile(alt, ctopAlt, lapseAlt)
	}
	alt.SetRelativeHumidity(rhAlt)
	alt.ClipStratosphericHumidity()
	maxDiff := 0.
	for i := range c.T {
		if d := math.Abs(c.T[i] - alt.T[i]); d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff < 0.1 {
		t.Errorf("the two lapse rate orderings differ by at most %g K; "+
			"they should diverge", maxDiff)
	}
}
