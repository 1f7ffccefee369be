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

import "fmt"

// Radiation computes radiative heating rates for the current column
// state. Implementations wrap full radiative transfer schemes; the
// adjustment engine only depends on this contract.
type Radiation interface {
	// HeatingRate returns the net radiative heating rate [K/day] at
	// each full pressure level.
	HeatingRate(c *Column) ([]float64, error)
}

// NewtonianCooling is a minimal radiation scheme that relaxes the
// temperature profile toward a reference profile with a fixed
// relaxation timescale. It stands in for a full radiative transfer
// model in tests and quick equilibrium experiments.
type NewtonianCooling struct {
	Teq []float64 // reference temperature profile [K]
	Tau float64   // relaxation timescale [days]
}

// HeatingRate returns (Teq − T) / τ at each level.
func (r *NewtonianCooling) HeatingRate(c *Column) ([]float64, error) {
	if len(r.Teq) != c.NumLevels() {
		return nil, fmt.Errorf("rce: radiation reference profile has %d levels, column has %d",
			len(r.Teq), c.NumLevels())
	}
	if r.Tau <= 0 {
		return nil, fmt.Errorf("rce: radiation relaxation timescale must be positive, got %g", r.Tau)
	}
	q := make([]float64, c.NumLevels())
	for i := range q {
		q[i] = (r.Teq[i] - c.T[i]) / r.Tau
	}
	return q, nil
}
