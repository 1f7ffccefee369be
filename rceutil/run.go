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

package rceutil

import (
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/lnashier/viper"
	"github.com/rcemodel/rce"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RadiationConfig describes the radiative-equilibrium profile that
// Newtonian cooling relaxes the column toward: a linear lapse from
// SurfaceT [K] down to the floor MinT [K], with relaxation timescale
// Tau [days].
type RadiationConfig struct {
	SurfaceT  float64
	LapseRate float64
	MinT      float64
	Tau       float64
}

func radiationFromConfig(cfg *viper.Viper) RadiationConfig {
	return RadiationConfig{
		SurfaceT:  cfg.GetFloat64("Radiation.SurfaceT"),
		LapseRate: cfg.GetFloat64("Radiation.LapseRate"),
		MinT:      cfg.GetFloat64("Radiation.MinT"),
		Tau:       cfg.GetFloat64("Radiation.Tau"),
	}
}

// newtonianCooling builds the Newtonian cooling scheme for the given
// column, evaluating the equilibrium profile on the column's initial
// heights.
func (rc RadiationConfig) newtonianCooling(c *rce.Column) (*rce.NewtonianCooling, error) {
	if rc.Tau <= 0 {
		return nil, fmt.Errorf("rce: radiation relaxation timescale is %g days "+
			"but must be positive", rc.Tau)
	}
	teq := make([]float64, c.NumLevels())
	for i, z := range c.Z {
		teq[i] = math.Max(rc.SurfaceT-rc.LapseRate*z, rc.MinT)
	}
	return &rce.NewtonianCooling{Teq: teq, Tau: rc.Tau}, nil
}

// initialColumn loads the starting column: from a saved netCDF state if
// initialConditions is set, otherwise from a TOML scenario file if
// profileFile is set, otherwise from the default idealized profile.
func initialColumn(initialConditions, profileFile string) (*rce.Column, error) {
	if initialConditions != "" {
		return rce.ReadColumn(initialConditions)
	}
	if profileFile != "" {
		return rce.ReadProfileFile(profileFile)
	}
	return rce.DefaultProfileConfig().Column()
}

// Run runs an RCE simulation.
//
// variant names the atmosphere variant to simulate and w is the
// stratospheric upwelling velocity [m/s] (0 selects the variant
// default). dt is the timestep [days]. The simulation is finished when
// the largest per-level temperature change stays below tolerance [K],
// or after maxSteps timesteps if maxSteps > 0. The final column state
// is written to outputFile.
func Run(cmd *cobra.Command, logFile, variant string, dt float64, maxSteps int,
	tolerance, w float64, initialConditions, profileFile, outputFile string,
	radiation RadiationConfig, aerosol rce.Aerosol) error {

	startTime := time.Now()

	// Start functions to receive and print log messages.
	logOutput := cmd.OutOrStdout()
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return fmt.Errorf("rce: problem creating log file: %v", err)
		}
		defer f.Close()
		logOutput = io.MultiWriter(logOutput, f)
	}
	log.SetOutput(logOutput)

	cConverge := make(chan rce.ConvergenceStatus)
	cLog := make(chan *rce.SimulationStatus)
	cLogTick := time.Tick(2 * time.Second)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		for msg := range cConverge {
			log.Println(msg.String())
		}
		wg.Done()
	}()
	go func() {
		for msg := range cLog {
			select {
			case <-cLogTick:
				log.Println(msg.String())
			default:
				runtime.Gosched()
			}
		}
		wg.Done()
	}()
	defer func() { // Wait for the logging to finish.
		close(cConverge)
		close(cLog)
		wg.Wait()
	}()

	log.Println("Loading initial conditions...")
	c, err := initialColumn(initialConditions, profileFile)
	if err != nil {
		return err
	}

	adjuster, err := rce.AdjusterByName(variant, w)
	if err != nil {
		return err
	}
	cooling, err := radiation.newtonianCooling(c)
	if err != nil {
		return err
	}

	d := &rce.RCE{
		Column: c,
		Dt:     dt,
		InitFuncs: []rce.ModelManipulator{
			rce.UpdateHeight(),
			rce.UpdateAerosol(aerosol),
		},
		RunFuncs: []rce.ModelManipulator{
			rce.Log(cLog),
			rce.UpdateHeight(),
			rce.Radiate(cooling),
			rce.Adjustment(adjuster),
			rce.EquilibriumCheck(maxSteps, tolerance, cConverge),
		},
		CleanupFuncs: []rce.ModelManipulator{
			rce.Output(outputFile),
		},
	}

	log.Println("Initializing model...")
	if err := d.Init(); err != nil {
		return fmt.Errorf("rce: problem initializing model: %v", err)
	}
	log.Printf("Running the %s variant...", adjuster.Name())
	if err := d.Run(); err != nil {
		return fmt.Errorf("rce: problem running simulation: %v", err)
	}
	if err := d.Cleanup(); err != nil {
		return fmt.Errorf("rce: problem shutting down model: %v", err)
	}
	log.Printf("Simulation finished after %d steps in %v.",
		d.StepNumber, time.Since(startTime).Round(time.Millisecond))
	return nil
}
