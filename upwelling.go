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

// UpwellingCooling applies a cooling term above the convective top that
// parameterizes large-scale stratospheric upwelling with velocity w
// [m/s]: Q = −w·(g/Cp − Γ) [K/s], where Γ is the current lapse rate of
// the column. The term is zero below ctop. Δt is in days.
func UpwellingCooling(c *Column, ctop int, w, Δt float64) {
	lapse := c.LapseRate()
	for i := ctop; i < len(c.T); i++ {
		q := -w * (gravity/cpAir - lapse[i]) * secondsPerDay // [K/day]
		c.T[i] += q * Δt
	}
}
