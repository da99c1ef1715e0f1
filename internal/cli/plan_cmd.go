package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"tripwise/internal/models/request_models"
	"tripwise/pkg/apiclient"
	"tripwise/pkg/voice"
)

// previewKey is the draft slot of the last generated, unsaved itinerary.
const previewKey = "preview"

func newPlanCmd(app *App) *cobra.Command {
	var (
		req       request_models.GenerateItineraryRequest
		prefs     map[string]string
		voiceFile string
		language  string
		save      bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an itinerary",
		Long: "Generate a day-by-day itinerary. The result is kept as a local preview " +
			"until saved with --save or `tripctl itinerary save`.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req.Preferences = prefs

			if voiceFile != "" {
				capture := voice.NewCapture(voice.FileRecorder{Path: voiceFile}, app.Voice, app.Expenses, app.Printer, app.Logger)
				capture.SetLanguage(language)
				if err := capture.Start(ctx); err != nil {
					return err
				}
				text, err := capture.Transcribe(ctx)
				if err != nil {
					return err
				}
				app.Printer.Printf("heard: %s", text)
				if req.Preferences == nil {
					req.Preferences = map[string]string{}
				}
				req.Preferences["notes"] = strings.TrimSpace(req.Preferences["notes"] + " " + text)
			}

			doc, err := app.Planner.Generate(ctx, req)
			if err != nil {
				return fmt.Errorf("generating itinerary: %w", err)
			}

			c := app.Container()
			if err := c.SetPreview(doc); err != nil {
				return err
			}
			if err := app.Store.SaveDraft(ctx, previewKey, doc); err != nil {
				app.Logger.Warn("could not keep preview", zap.Error(err))
			}
			app.Printer.Document("", c.Document())

			if !save {
				app.Printer.Printf("")
				app.Printer.Printf("preview only: run `tripctl itinerary save` to keep it")
				return nil
			}
			id, err := c.Persist(ctx)
			if err != nil {
				return err
			}
			_ = app.Store.DeleteDraft(ctx, previewKey)
			app.Printer.Printf("saved as %s", id)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Destination, "destination", "", "where to go")
	f.StringVar(&req.StartDate, "start", "", "first day, YYYY-MM-DD")
	f.StringVar(&req.EndDate, "end", "", "last day, YYYY-MM-DD")
	f.Float64Var(&req.Budget, "budget", 0, "total budget in CNY")
	f.IntVar(&req.PeopleCount, "people", 1, "number of travelers")
	f.StringToStringVar(&prefs, "pref", nil, "preference as key=value, repeatable")
	f.StringVar(&voiceFile, "voice", "", "audio file describing the trip; its transcript is added to the preferences")
	f.StringVar(&language, "language", apiclient.DefaultLanguage, "transcription language")
	f.BoolVar(&save, "save", false, "save to the cloud immediately")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
