// cmd/ftreplicator/read.go
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

const (
	readFlagHost     = "host"
	readFlagPort     = "port"
	readFlagTimeout  = "timeout"
	readFlagRaw      = "raw"
	readFlagZero     = "zero"
	readFlagCount    = "count"
	readFlagInterval = "interval"
)

func readCommand(st *appState) *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "print readings from one sensor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: readFlagHost, Usage: "sensor address", Required: true},
			&cli.IntFlag{Name: readFlagPort, Usage: "sensor port", Value: netft.DefaultPort},
			&cli.DurationFlag{Name: readFlagTimeout, Usage: "per-request receive timeout", Value: netft.DefaultTimeout},
			&cli.BoolFlag{Name: readFlagRaw, Usage: "skip bias correction"},
			&cli.BoolFlag{Name: readFlagZero, Usage: "zero the sensor before reading"},
			&cli.IntFlag{Name: readFlagCount, Aliases: []string{"n"}, Usage: "number of readings", Value: 1},
			&cli.DurationFlag{Name: readFlagInterval, Usage: "delay between readings", Value: 100 * time.Millisecond},
		},
		Action: func(c *cli.Context) error {
			s, err := netft.Dial(c.Context, netft.Config{
				Host:    c.String(readFlagHost),
				Port:    c.Int(readFlagPort),
				Timeout: c.Duration(readFlagTimeout),
			}, st.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			cal, _ := s.Calibration()
			fmt.Fprintf(c.App.Writer, "calibration: force=%s torque=%s counts/force=%d counts/torque=%d\n",
				cal.ForceUnitName(), cal.TorqueUnitName(), cal.CountsPerForce, cal.CountsPerTorque)

			if c.Bool(readFlagZero) {
				ok, err := s.Zero()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(c.App.Writer, "zero: no sample (timeout), bias unchanged")
				}
			}

			for i := 0; i < c.Int(readFlagCount); i++ {
				if i > 0 {
					select {
					case <-c.Context.Done():
						return nil
					case <-time.After(c.Duration(readFlagInterval)):
					}
				}
				smp, err := s.ReadSample(c.Bool(readFlagRaw))
				if err != nil {
					return err
				}
				printSample(c.App.Writer, cal, smp)
			}
			return nil
		},
	}
}

func printSample(w io.Writer, cal netft.CalibrationInfo, smp *netft.Sample) {
	if smp == nil {
		fmt.Fprintln(w, "no sample (timeout)")
		return
	}
	fmt.Fprintf(w, "force[%s]=%.6g %.6g %.6g torque[%s]=%.6g %.6g %.6g\n",
		cal.ForceUnitName(), smp.Force.X, smp.Force.Y, smp.Force.Z,
		cal.TorqueUnitName(), smp.Torque.X, smp.Torque.Y, smp.Torque.Z)
}
