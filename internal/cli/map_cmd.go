package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tripwise/internal/models/request_models"
	"tripwise/pkg/mapview"
)

func newMapCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Geocoding, places, routes and weather",
	}
	cmd.AddCommand(
		newMapGeocodeCmd(app),
		newMapSearchCmd(app),
		newMapRouteCmd(app),
		newMapWeatherCmd(app),
		newMapMarkersCmd(app),
	)
	return cmd
}

func newMapGeocodeCmd(app *App) *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address to coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.Maps.Geocode(cmd.Context(), args[0], city)
			if err != nil {
				return err
			}
			app.Printer.Printf("%.6f,%.6f  %s", g.Lng, g.Lat, g.FormattedAddress)
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "restrict to a city")
	return cmd
}

func newMapSearchCmd(app *App) *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "search <keywords>",
		Short: "Search points of interest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			places, err := app.Maps.Search(cmd.Context(), args[0], city)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(places))
			for _, p := range places {
				rows = append(rows, []string{p.Name, p.Type, p.Address, fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)})
			}
			app.Printer.Table([]string{"NAME", "TYPE", "ADDRESS", "LOCATION"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "restrict to a city")
	return cmd
}

func newMapRouteCmd(app *App) *cobra.Command {
	var q request_models.RouteQuery
	cmd := &cobra.Command{
		Use:   "route <origin> <destination>",
		Short: "Plan a route between two places",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Origin, q.Destination = args[0], args[1]
			r, err := app.Maps.Route(cmd.Context(), q)
			if err != nil {
				return err
			}
			app.Printer.Printf("%s: %.1f km, %d min", r.Mode, r.Distance/1000, r.Duration/60)
			for i, s := range r.Steps {
				app.Printer.Printf("%2d. %s", i+1, s.Instruction)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Mode, "mode", "driving", "driving, walking or transit")
	cmd.Flags().StringVar(&q.City, "city", "", "city for free-text places (required for transit)")
	return cmd
}

func newMapWeatherCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "weather <city>",
		Short: "Current weather",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.Maps.Weather(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.Printer.Printf("%s: %s %s°C, wind %s %s, humidity %s%% (%s)",
				w.City, w.Weather, w.Temperature, w.WindDirection, w.WindPower, w.Humidity, w.ReportTime)
			return nil
		},
	}
}

func newMapMarkersCmd(app *App) *cobra.Command {
	var png string
	cmd := &cobra.Command{
		Use:   "markers <id|preview>",
		Short: "Geocode every stop of an itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, app, args[0])
			if err != nil {
				return err
			}
			res, err := mapview.PlaceMarkers(ctx, c.Document(), app.Maps, app.Logger.Named("mapview"))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(res.Markers))
			for _, m := range res.Markers {
				rows = append(rows, []string{fmt.Sprintf("%d:%d", m.Day, m.Index), m.Title, m.Location, fmt.Sprintf("%.6f,%.6f", m.Lng, m.Lat)})
			}
			app.Printer.Table([]string{"REF", "TITLE", "LOCATION", "COORDINATES"}, rows)
			for _, s := range res.Failed {
				app.Printer.Warning(fmt.Sprintf("could not place %s (day %d)", s.Location, s.Day))
			}

			if png == "" || res.CenterLocation() == "" {
				return nil
			}
			img, err := app.Maps.StaticMap(ctx, request_models.StaticMapQuery{Location: res.CenterLocation(), Markers: res.StaticMarkers()})
			if err != nil {
				return err
			}
			if err := os.WriteFile(png, img, 0o644); err != nil {
				return err
			}
			app.Printer.Success("wrote " + png)
			return nil
		},
	}
	cmd.Flags().StringVar(&png, "png", "", "also save a static map image here")
	return cmd
}
