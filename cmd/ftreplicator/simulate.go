// cmd/ftreplicator/simulate.go
package main

import (
	"github.com/urfave/cli/v2"

	"github.com/tamzrod/netft-replicator/internal/netft"
	"github.com/tamzrod/netft-replicator/internal/netft/netfttest"
)

const simFlagListen = "listen"

// simCalibration reports N / N-m with 1e6 counts per unit.
var simCalibration = netft.CalibrationInfo{
	ForceUnit:       2,
	TorqueUnit:      3,
	CountsPerForce:  1000000,
	CountsPerTorque: 1000000,
	ForceScale:      [3]int16{1000, 1000, 1000},
	TorqueScale:     [3]int16{100, 100, 100},
}

func simulateCommand(st *appState) *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "serve a fake NetFT device for testing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: simFlagListen, Usage: "listen address", Value: "127.0.0.1:49151"},
		},
		Action: func(c *cli.Context) error {
			srv, err := netfttest.NewServer(c.String(simFlagListen), simCalibration)
			if err != nil {
				return err
			}
			defer srv.Close()

			// 1 N, 2 N, 3 N and 0.1 N-m on every torque axis
			srv.SetSample(netft.RawSample{
				Force:  [3]int16{1000, 2000, 3000},
				Torque: [3]int16{1000, 1000, 1000},
			})

			st.logger.Infow("simulator listening", "addr", srv.Addr().String())
			<-c.Context.Done()
			return nil
		},
	}
}
