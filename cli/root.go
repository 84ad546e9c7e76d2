// Package cli wires the client flows into a terminal frontend. Each
// subcommand stands in for one screen of the mobile app; the heavy
// lifting lives in the flow packages.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/iamMohdZiya/appAttendence/api"
	"github.com/iamMohdZiya/appAttendence/config"
	"github.com/iamMohdZiya/appAttendence/export"
	"github.com/iamMohdZiya/appAttendence/location"
	"github.com/iamMohdZiya/appAttendence/logger"
	"github.com/iamMohdZiya/appAttendence/store"
)

// app is the wiring shared by all subcommands.
type app struct {
	cfg      config.Config
	store    *store.Store
	api      *api.Client
	loc      location.Provider
	exporter export.CSVExporter
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:   cfg,
		store: st,
		api:   api.NewClient(cfg.BaseURL, cfg.HTTPTimeout, st),
		loc: location.Static{
			Granted: cfg.LocationGranted,
			Fix: location.Fix{
				Lat:      cfg.Lat,
				Lng:      cfg.Lng,
				Accuracy: cfg.Accuracy,
			},
		},
		exporter: export.CSVExporter{Dir: cfg.ExportDir},
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "presenzo",
		Short:         "Presenzo attendance client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newProfileCmd(),
		newCoursesCmd(),
		newActiveCmd(),
		newSessionCmd(),
		newScanCmd(),
		newHistoryCmd(),
		newReportCmd(),
		newDevserverCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}
