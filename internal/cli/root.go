package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the "tripctl" command. Persistent flags override app's
// Config; the app is opened before any subcommand runs.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Plan trips, track expenses and export itineraries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.Open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.Config.APIURL, "api-url", app.Config.APIURL, "backend base URL ($TRIPWISE_API_URL)")
	flags.StringVar(&app.Config.StorePath, "store", app.Config.StorePath, "local SQLite store")
	flags.BoolVarP(&app.Config.Verbose, "verbose", "v", app.Config.Verbose, "log requests and background syncs")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newPlanCmd(app),
		newItineraryCmd(app),
		newExpenseCmd(app),
		newMapCmd(app),
	)

	return root
}
