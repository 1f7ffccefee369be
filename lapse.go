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

// Constants for the moist-adiabatic lapse rate.
const (
	latentHeatVaporization = 2501000. // [J/kg]
	moistGasConstant       = 287.     // [J/kg/K]
	molarMassRatio         = 0.62197  // water to dry air
)

// MoistAdiabaticLapse computes the moist-adiabatic lapse rate profile
// [K/m] from the current temperature and water vapor mixing ratio:
//
//	Γ = g·(1 + Lv·q/R/T) / (Cp + Lv²·q·ε/R/T²)
func MoistAdiabaticLapse(c *Column) []float64 {
	lapse := make([]float64, len(c.T))
	for i := range lapse {
		q, T := c.H2O[i], c.T[i]
		num := gravity * (1 + latentHeatVaporization*q/moistGasConstant/T)
		den := cpAir + latentHeatVaporization*latentHeatVaporization*q*molarMassRatio/moistGasConstant/(T*T)
		lapse[i] = num / den
	}
	return lapse
}

// FixedMoistAdiabat returns a copy of a precomputed 150-level
// moist-adiabatic lapse rate profile [K/m], valid for the standard
// 150-level pressure grid.
func FixedMoistAdiabat() []float64 {
	return append([]float64(nil), fixedMoistLapse...)
}

var fixedMoistLapse = []float64{
	0.003498, 0.003498, 0.003598, 0.003777, 0.003924,
	0.004085, 0.004514, 0.005101, 0.005637, 0.006281,
	0.006493, 0.006739, 0.007079, 0.007453, 0.007753,
	0.00808, 0.008324, 0.008585, 0.008792, 0.009,
	0.009169, 0.009321, 0.009447, 0.009537, 0.009624,
	0.009661, 0.009698, 0.00972, 0.009736, 0.00975,
	0.009753, 0.009757, 0.009759, 0.009761, 0.009762,
	0.009763, 0.009764, 0.009764, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009765, 0.009766, 0.009766,
	0.009766, 0.009766, 0.009766, 0.009766, 0.009767,
	0.009767, 0.009767, 0.009767, 0.009766, 0.009766,
	0.009766, 0.009766, 0.009766, 0.009766, 0.009766,
	0.009766, 0.009766, 0.009766, 0.009766, 0.009766,
	0.009766, 0.009766, 0.009765, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009765, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009765, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009765, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009765, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009765, 0.009765, 0.009765,
	0.009764, 0.009764, 0.009764, 0.009764, 0.009764,
	0.009764, 0.009764, 0.009764, 0.009764, 0.009764,
	0.009764, 0.009765, 0.009765, 0.009765, 0.009765,
	0.009765, 0.009765, 0.009764, 0.009764, 0.009764,
	0.009764, 0.009764, 0.009764, 0.009764, 0.009764,
	0.009764, 0.009764, 0.009764, 0.009764, 0.009764,
	0.009764, 0.009764, 0.009764, 0.009764, 0.009764,
	0.009763, 0.009763, 0.009763, 0.009763, 0.009763,
	0.009763, 0.009763, 0.009763, 0.009763, 0.009763,
	0.009763, 0.009763, 0.009763, 0.009763, 0.009763,
	0.009763, 0.009763, 0.009763, 0.009763, 0.009763,
}
