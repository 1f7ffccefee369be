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
)

// An AdjustStep performs one piece of the per-timestep adjustment of a
// column. heatingRate is the radiative heating at each full level
// [K/day] and Δt is the timestep [days].
type AdjustStep func(c *Column, heatingRate []float64, Δt float64) error

// Default stratospheric upwelling velocities [m/s] per model variant.
const (
	DefaultConUpVelocity      = 0.0001
	DefaultFixedMoistVelocity = 0.0005
	DefaultMoistVelocity      = 0.004
)

// Parameters of the fixed-lapse-rate convective variants.
const (
	fixedConvectiveLapse = 0.0065 // [K/m]
	anchorSurfaceT       = 305.   // [K]
	anchorLapse          = 0.0065 // [K/m]
)

// An Adjuster applies one convective/humidity closure policy to a
// column, one atomic transition per Adjust call. Variants differ only
// in which steps are composed and in what order.
type Adjuster struct {
	name  string
	steps []AdjustStep

	// PreScaled declares that heating rates passed to Adjust have
	// already been multiplied by the timestep upstream. Adjust then
	// requires Δt == 1 and returns an error otherwise, so the two
	// scaling conventions cannot be silently mixed.
	PreScaled bool
}

// NewAdjuster composes adjustment steps into a named policy.
func NewAdjuster(name string, steps ...AdjustStep) *Adjuster {
	return &Adjuster{name: name, steps: steps}
}

// Name returns the variant name of this policy.
func (a *Adjuster) Name() string { return a.name }

// Adjust mutates the column in place over one timestep. heatingRate
// must hold one value per full level, in K/day (or pre-scaled K if
// PreScaled is set).
func (a *Adjuster) Adjust(c *Column, heatingRate []float64, Δt float64) error {
	if len(heatingRate) != c.NumLevels() {
		return fmt.Errorf("rce: %s: heating rate has %d levels, column has %d",
			a.name, len(heatingRate), c.NumLevels())
	}
	if a.PreScaled && Δt != 1 {
		return fmt.Errorf("rce: %s: pre-scaled heating rates require a unit timestep, got %g",
			a.name, Δt)
	}
	for _, f := range a.steps {
		if err := f(c, heatingRate, Δt); err != nil {
			return fmt.Errorf("rce: %s: %v", a.name, err)
		}
	}
	return nil
}

// Heating returns a step that applies the radiative heating rate to the
// temperature profile.
func Heating() AdjustStep {
	return func(c *Column, heatingRate []float64, Δt float64) error {
		for i := range c.T {
			c.T[i] += heatingRate[i] * Δt
		}
		return nil
	}
}

// PreserveRH returns a step that saves the relative humidity profile,
// runs the given steps, restores the saved profile by rewriting the
// water vapor mixing ratio, and clips stratospheric humidity above the
// cold point.
func PreserveRH(steps ...AdjustStep) AdjustStep {
	return func(c *Column, heatingRate []float64, Δt float64) error {
		rh := c.RelativeHumidity()
		for _, f := range steps {
			if err := f(c, heatingRate, Δt); err != nil {
				return err
			}
		}
		c.SetRelativeHumidity(rh)
		c.ClipStratosphericHumidity()
		return nil
	}
}

// Convection returns a step that locates the convective top for a fixed
// lapse rate and rewrites the temperature profile below it. If w > 0,
// upwelling cooling is applied above the top before the convective
// overwrite. A stable column or an exhausted top search leaves the
// column purely radiatively adjusted for the step.
func Convection(lapse, w float64) AdjustStep {
	return func(c *Column, _ []float64, Δt float64) error {
		ctop, ok, err := ConvectiveTop(c, lapse)
		if err == ErrNoConvectiveTop {
			log.Warn("rce: convective-top search ran off the top of the column; skipping convective adjustment")
			return nil
		}
		if !ok {
			return nil
		}
		if w > 0 {
			UpwellingCooling(c, ctop, w, Δt)
		}
		ConvectiveAdjustment(c, ctop, lapse)
		return nil
	}
}

// MoistConvection is the height-varying lapse rate counterpart of
// Convection: lapseFunc recomputes the target lapse rate profile from
// the column state each step, before the enclosed steps run, so heating
// applied by those steps does not feed back into the same step's
// target. Upwelling cooling is always applied between the top search
// and the convective overwrite.
func MoistConvection(lapseFunc func(*Column) ([]float64, error), w float64, steps ...AdjustStep) AdjustStep {
	return func(c *Column, heatingRate []float64, Δt float64) error {
		lapse, err := lapseFunc(c)
		if err != nil {
			return err
		}
		for _, f := range steps {
			if err := f(c, heatingRate, Δt); err != nil {
				return err
			}
		}
		ctop, ok, err := ConvectiveTopProfile(c, lapse)
		if err == ErrNoConvectiveTop {
			log.Warn("rce: convective-top search ran off the top of the column; skipping convective adjustment")
			return nil
		}
		if !ok {
			return nil
		}
		UpwellingCooling(c, ctop, w, Δt)
		ConvectiveAdjustmentProfile(c, ctop, lapse)
		return nil
	}
}

// SurfaceAnchor returns a step applying the fixed-surface-temperature
// convective overwrite.
func SurfaceAnchor(lapse, surfaceT float64) AdjustStep {
	return func(c *Column, _ []float64, _ float64) error {
		SurfaceAnchoredAdjustment(c, lapse, surfaceT)
		return nil
	}
}

// FixedVMR is an atmosphere that only follows the radiative heating;
// neither humidity nor convection is adjusted.
func FixedVMR() *Adjuster {
	return NewAdjuster("fixed-vmr", Heating())
}

// FixedRH preserves the initial relative humidity profile across the
// radiative heating by rewriting the water vapor mixing ratio.
func FixedRH() *Adjuster {
	return NewAdjuster("fixed-rh", PreserveRH(Heating()))
}

// FixedSurfaceTemperature combines radiative heating with a convective
// overwrite toward a reference profile anchored at a fixed surface
// temperature.
func FixedSurfaceTemperature() *Adjuster {
	return NewAdjuster("fixed-ts", Heating(), SurfaceAnchor(anchorLapse, anchorSurfaceT))
}

// Convective preserves relative humidity and applies a fixed-lapse-rate
// convective adjustment with an energy-conserving top search.
func Convective() *Adjuster {
	return NewAdjuster("convective",
		PreserveRH(Heating(), Convection(fixedConvectiveLapse, 0)))
}

// ConUp is Convective plus a stratospheric upwelling cooling term with
// velocity w [m/s] (DefaultConUpVelocity if w <= 0).
func ConUp(w float64) *Adjuster {
	if w <= 0 {
		w = DefaultConUpVelocity
	}
	return NewAdjuster("conup",
		PreserveRH(Heating(), Convection(fixedConvectiveLapse, w)))
}

// FixedMoistConvective adjusts toward a precomputed 150-level
// moist-adiabatic lapse rate profile. The column must have exactly as
// many levels as the profile.
func FixedMoistConvective(w float64) *Adjuster {
	if w <= 0 {
		w = DefaultFixedMoistVelocity
	}
	lapseFunc := func(c *Column) ([]float64, error) {
		lapse := FixedMoistAdiabat()
		if c.NumLevels() != len(lapse) {
			return nil, fmt.Errorf("the fixed moist adiabat has %d levels but the column has %d",
				len(lapse), c.NumLevels())
		}
		return lapse, nil
	}
	return NewAdjuster("fixed-moist-convective",
		PreserveRH(MoistConvection(lapseFunc, w, Heating())))
}

// MoistConvective recomputes the moist-adiabatic lapse rate every step
// from the temperature and humidity at the start of the step, before
// the radiative heating is applied, and adjusts toward it.
func MoistConvective(w float64) *Adjuster {
	if w <= 0 {
		w = DefaultMoistVelocity
	}
	lapseFunc := func(c *Column) ([]float64, error) {
		return MoistAdiabaticLapse(c), nil
	}
	return NewAdjuster("moist-convective",
		PreserveRH(MoistConvection(lapseFunc, w, Heating())))
}

// AdjusterByName returns the adjustment policy with the given variant
// name. w overrides the variant's upwelling velocity where one applies;
// pass w <= 0 for the default.
func AdjusterByName(name string, w float64) (*Adjuster, error) {
	switch name {
	case "fixed-vmr":
		return FixedVMR(), nil
	case "fixed-rh":
		return FixedRH(), nil
	case "fixed-ts":
		return FixedSurfaceTemperature(), nil
	case "convective":
		return Convective(), nil
	case "conup":
		return ConUp(w), nil
	case "fixed-moist-convective":
		return FixedMoistConvective(w), nil
	case "moist-convective":
		return MoistConvective(w), nil
	}
	return nil, fmt.Errorf("rce: unknown atmosphere variant %q (valid: fixed-vmr, fixed-rh, "+
		"fixed-ts, convective, conup, fixed-moist-convective, moist-convective)", name)
}
