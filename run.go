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
	"math"
	"time"

	"github.com/GaryBoone/GoStats/stats"
)

// Version gives the version number.
const Version = "1.0.0"

// ModelManipulator is a function that operates on the whole model state.
type ModelManipulator func(m *RCE) error

// RCE holds the current state of a radiative-convective equilibrium
// simulation. The model is specified by the functions in InitFuncs,
// RunFuncs, and CleanupFuncs, which are run in order by Init, Run, and
// Cleanup, respectively. The simulation is finished when a RunFunc sets
// Done to true.
type RCE struct {
	Column *Column

	// Dt is the timestep [days].
	Dt float64

	// StepNumber is the number of timesteps that have been run.
	StepNumber int

	// Done specifies whether the simulation is finished.
	Done bool

	// heatingRate is the radiative heating rate [K/day] calculated
	// during the current timestep.
	heatingRate []float64

	InitFuncs    []ModelManipulator
	RunFuncs     []ModelManipulator
	CleanupFuncs []ModelManipulator
}

// Init initializes the simulation by running InitFuncs.
func (m *RCE) Init() error {
	if m.Column == nil {
		return fmt.Errorf("rce: model column is not specified")
	}
	if m.Dt <= 0 {
		return fmt.Errorf("rce: model timestep is %g days but must be positive", m.Dt)
	}
	for _, f := range m.InitFuncs {
		if err := f(m); err != nil {
			return err
		}
	}
	return nil
}

// Run repeatedly runs RunFuncs until Done is set to true.
func (m *RCE) Run() error {
	for !m.Done {
		m.StepNumber++
		for _, f := range m.RunFuncs {
			if err := f(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running CleanupFuncs.
func (m *RCE) Cleanup() error {
	for _, f := range m.CleanupFuncs {
		if err := f(m); err != nil {
			return err
		}
	}
	return nil
}

// HeatingRate returns the radiative heating rate [K/day] from the most
// recent timestep.
func (m *RCE) HeatingRate() []float64 {
	return m.heatingRate
}

// UpdateHeight returns a function that recalculates the hydrostatic
// level heights from the current temperature profile.
func UpdateHeight() ModelManipulator {
	return func(m *RCE) error {
		HydrostaticHeight(m.Column)
		return nil
	}
}

// Radiate returns a function that calculates the radiative heating
// rate of the column.
func Radiate(r Radiation) ModelManipulator {
	return func(m *RCE) error {
		q, err := r.HeatingRate(m.Column)
		if err != nil {
			return err
		}
		if len(q) != m.Column.NumLevels() {
			return fmt.Errorf("rce: radiation returned %d heating rates for %d levels",
				len(q), m.Column.NumLevels())
		}
		m.heatingRate = q
		return nil
	}
}

// Adjustment returns a function that applies the radiative heating and
// the convective adjustment of the given atmosphere variant.
func Adjustment(a *Adjuster) ModelManipulator {
	return func(m *RCE) error {
		if m.heatingRate == nil {
			return fmt.Errorf("rce: adjustment requires a heating rate; " +
				"run Radiate first")
		}
		return a.Adjust(m.Column, m.heatingRate, m.Dt)
	}
}

// UpdateAerosol returns a function that updates the aerosol forcing
// for the current column state.
func UpdateAerosol(a Aerosol) ModelManipulator {
	return func(m *RCE) error {
		return a.UpdateForcing(m.Column)
	}
}

// SimulationStatus holds information about the progress of a
// simulation.
type SimulationStatus struct {
	Step       int
	Walltime   time.Duration
	Δwalltime  time.Duration
	Day        float64
	SurfaceT   float64
	ColdPointT float64
}

func (s *SimulationStatus) String() string {
	return fmt.Sprintf("Step %-5d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
		"day=%-6.4g  Tsfc=%6.2fK  Tcp=%6.2fK",
		s.Step, s.Walltime.Hours(), s.Δwalltime.Seconds(),
		s.Day, s.SurfaceT, s.ColdPointT)
}

// Log returns a function that sends simulation status messages to c.
func Log(c chan *SimulationStatus) ModelManipulator {
	startTime := time.Now()
	stepTime := time.Now()

	return func(m *RCE) error {
		c <- &SimulationStatus{
			Step:       m.StepNumber,
			Walltime:   time.Since(startTime),
			Δwalltime:  time.Since(stepTime),
			Day:        float64(m.StepNumber) * m.Dt,
			SurfaceT:   m.Column.T[0],
			ColdPointT: m.Column.T[m.Column.ColdPointIndex()],
		}
		stepTime = time.Now()
		return nil
	}
}

// ConvergenceStatus holds the result of an equilibrium check.
type ConvergenceStatus struct {
	Step      int
	MaxChange float64 // largest per-level temperature change [K]

	// MeanChange and SDChange summarize the temperature drift over
	// all checks so far.
	MeanChange float64
	SDChange   float64

	Converged bool
}

func (c ConvergenceStatus) String() string {
	if c.Converged {
		return fmt.Sprintf("Step %d: equilibrium reached, max ΔT = %.2g K", c.Step, c.MaxChange)
	}
	return fmt.Sprintf("Step %d: max ΔT = %.2g K from last check (mean %.2g ± %.2g K)",
		c.Step, c.MaxChange, c.MeanChange, c.SDChange)
}

// EquilibriumCheck returns a function that checks whether the model
// has reached radiative-convective equilibrium and sets the Done flag
// if it has. The column is considered in equilibrium when the largest
// per-level temperature change over a check interval stays below
// tolerance [K]. If maxSteps > 0 the simulation is also finished after
// that many timesteps regardless of convergence. If c is not nil,
// status messages are sent to it.
func EquilibriumCheck(maxSteps int, tolerance float64, c chan ConvergenceStatus) ModelManipulator {

	const checkPeriod = 10 // timesteps between convergence checks

	var tOld []float64
	var drift stats.Stats
	stepsSinceCheck := 0

	return func(m *RCE) error {
		if maxSteps > 0 && m.StepNumber >= maxSteps {
			m.Done = true
		}
		if tOld == nil {
			tOld = make([]float64, m.Column.NumLevels())
			copy(tOld, m.Column.T)
			return nil
		}
		stepsSinceCheck++

		if stepsSinceCheck < checkPeriod {
			return nil
		}
		stepsSinceCheck = 0

		maxChange := 0.
		for i, t := range m.Column.T {
			if d := math.Abs(t - tOld[i]); d > maxChange {
				maxChange = d
			}
		}
		copy(tOld, m.Column.T)
		drift.Update(maxChange)

		status := ConvergenceStatus{
			Step:       m.StepNumber,
			MaxChange:  maxChange,
			MeanChange: drift.Mean(),
			SDChange:   drift.SampleStandardDeviation(),
		}
		if maxChange < tolerance {
			status.Converged = true
			m.Done = true
		}
		if c != nil {
			c <- status
		}
		return nil
	}
}

// Output returns a function that writes the final column state to a
// netCDF file at the given path.
func Output(path string) ModelManipulator {
	return func(m *RCE) error {
		return m.Column.Write(path)
	}
}
