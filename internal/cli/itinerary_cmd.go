package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"tripwise/internal/models/request_models"
	"tripwise/pkg/itinerary"
	"tripwise/pkg/mapview"
	"tripwise/pkg/pdfexport"
)

const envPDFFont = "TRIPWISE_PDF_FONT"

func newItineraryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "itinerary",
		Aliases: []string{"it"},
		Short:   "Manage saved itineraries",
	}
	cmd.AddCommand(
		newItineraryListCmd(app),
		newItineraryShowCmd(app),
		newItinerarySaveCmd(app),
		newItineraryEditCmd(app),
		newItineraryDeleteCmd(app),
		newItinerarySimilarCmd(app),
		newItineraryExportCmd(app),
		newItineraryDraftsCmd(app),
	)
	return cmd
}

func newItineraryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your saved itineraries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := app.Planner.List(cmd.Context())
			if err != nil {
				return err
			}
			app.Printer.Records(recs)
			return nil
		},
	}
}

func newItineraryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|preview>",
		Short: "Print an itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			app.Printer.Document(c.ID(), c.Document())
			return nil
		},
	}
}

func newItinerarySaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the current preview to the cloud",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, app, previewKey)
			if err != nil {
				return err
			}
			id, err := c.Persist(ctx)
			if err != nil {
				return err
			}
			if err := app.Store.DeleteDraft(ctx, previewKey); err != nil {
				app.Logger.Warn("could not drop preview draft", zap.Error(err))
			}
			app.Printer.Printf("saved as %s", id)
			return nil
		},
	}
}

type editFlags struct {
	replaceFile string

	destination string
	startDate   string
	endDate     string
	budget      float64
	people      int

	summary  string
	tipsFile string
	amounts  map[string]string

	day   int
	theme string
	date  string

	item       string
	addItem    int
	deleteItem string

	itemTime, itemDuration, itemType, itemTitle string
	itemDesc, itemLocation, itemTips            string
	itemCost                                    float64
}

func newItineraryEditCmd(app *App) *cobra.Command {
	var ef editFlags
	cmd := &cobra.Command{
		Use:   "edit <id|preview>",
		Short: "Edit an itinerary and sync it",
		Long: "Apply edits in order: --replace, metadata, summary, tips, budget, day, " +
			"item patch, --add-item, --delete-item. Items are addressed as DAY:INDEX " +
			"(day 1-based, index 0-based) and indices shift after a delete.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			err = applyEdits(cmd, c, ef)
			c.Wait()
			if err != nil {
				return err
			}
			app.Printer.Document(c.ID(), c.Document())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&ef.replaceFile, "replace", "", "replace the whole document with this JSON file")
	f.StringVar(&ef.destination, "destination", "", "trip destination")
	f.StringVar(&ef.startDate, "start", "", "first day, YYYY-MM-DD")
	f.StringVar(&ef.endDate, "end", "", "last day, YYYY-MM-DD")
	f.Float64Var(&ef.budget, "total-budget", 0, "trip budget")
	f.IntVar(&ef.people, "people", 0, "number of travelers")
	f.StringVar(&ef.summary, "summary", "", "summary text")
	f.StringVar(&ef.tipsFile, "tips-file", "", "travel tips, one per line")
	f.StringToStringVar(&ef.amounts, "budget", nil, "budget category=amount, repeatable")
	f.IntVar(&ef.day, "day", 0, "day to retheme or redate (1-based)")
	f.StringVar(&ef.theme, "theme", "", "day theme, with --day")
	f.StringVar(&ef.date, "date", "", "day date, with --day")
	f.StringVar(&ef.item, "item", "", "item to patch, DAY:INDEX")
	f.IntVar(&ef.addItem, "add-item", 0, "append an item to this day")
	f.StringVar(&ef.deleteItem, "delete-item", "", "item to delete, DAY:INDEX")
	f.StringVar(&ef.itemTime, "time", "", "item time")
	f.StringVar(&ef.itemDuration, "duration", "", "item duration")
	f.StringVar(&ef.itemType, "type", "", "item type: attraction, restaurant, hotel, transportation, shopping, other")
	f.StringVar(&ef.itemTitle, "title", "", "item title")
	f.StringVar(&ef.itemDesc, "description", "", "item description")
	f.StringVar(&ef.itemLocation, "location", "", "item location")
	f.StringVar(&ef.itemTips, "item-tips", "", "item tips")
	f.Float64Var(&ef.itemCost, "cost", 0, "item estimated cost")
	return cmd
}

func applyEdits(cmd *cobra.Command, c *itinerary.Container, ef editFlags) error {
	changed := cmd.Flags().Changed
	applied := 0

	if ef.replaceFile != "" {
		data, err := os.ReadFile(ef.replaceFile)
		if err != nil {
			return err
		}
		if err := c.ReplaceWhole(string(data)); err != nil {
			return err
		}
		applied++
	}

	var meta itinerary.MetadataEdit
	metaChanged := false
	if changed("destination") {
		meta.Destination, metaChanged = &ef.destination, true
	}
	if changed("start") {
		meta.StartDate, metaChanged = &ef.startDate, true
	}
	if changed("end") {
		meta.EndDate, metaChanged = &ef.endDate, true
	}
	if changed("total-budget") {
		meta.Budget, metaChanged = &ef.budget, true
	}
	if changed("people") {
		meta.PeopleCount, metaChanged = &ef.people, true
	}
	var edits []itinerary.Edit
	if metaChanged {
		edits = append(edits, meta)
	}
	if changed("summary") {
		edits = append(edits, itinerary.SummaryEdit{Summary: ef.summary})
	}
	if ef.tipsFile != "" {
		data, err := os.ReadFile(ef.tipsFile)
		if err != nil {
			return err
		}
		edits = append(edits, itinerary.TravelTipsEdit{Text: string(data)})
	}
	if len(ef.amounts) > 0 {
		amounts := make(map[itinerary.Category]float64, len(ef.amounts))
		for k, v := range ef.amounts {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("budget %s: %q is not a number", k, v)
			}
			amounts[itinerary.Category(strings.ToLower(k))] = f
		}
		edits = append(edits, itinerary.BudgetEdit{Amounts: amounts})
	}
	if changed("theme") || changed("date") {
		de := itinerary.DayEdit{Day: ef.day}
		if changed("theme") {
			de.Theme = &ef.theme
		}
		if changed("date") {
			de.Date = &ef.date
		}
		edits = append(edits, de)
	}

	patch, err := itemPatch(changed, &ef)
	if err != nil {
		return err
	}
	if ef.item != "" {
		day, idx, err := parseItemRef(ef.item)
		if err != nil {
			return err
		}
		edits = append(edits, itinerary.ItemEdit{Day: day, Item: idx, Patch: patch})
	}

	for _, e := range edits {
		if err := c.Apply(e); err != nil {
			return err
		}
		applied++
	}

	if ef.addItem > 0 {
		if err := c.InsertItem(ef.addItem, newItem(patch)); err != nil {
			return err
		}
		applied++
	}
	if ef.deleteItem != "" {
		day, idx, err := parseItemRef(ef.deleteItem)
		if err != nil {
			return err
		}
		if err := c.DeleteItem(day, idx); err != nil {
			return err
		}
		applied++
	}

	if applied == 0 {
		return errors.New("nothing to edit: see `tripctl itinerary edit --help`")
	}
	return nil
}

func itemPatch(changed func(string) bool, ef *editFlags) (itinerary.ItemPatch, error) {
	var p itinerary.ItemPatch
	if changed("time") {
		p.Time = &ef.itemTime
	}
	if changed("duration") {
		p.Duration = &ef.itemDuration
	}
	if changed("type") {
		t, ok := itinerary.ParseActivityType(ef.itemType)
		if !ok {
			return p, fmt.Errorf("unknown item type %q", ef.itemType)
		}
		p.Type = &t
	}
	if changed("title") {
		p.Title = &ef.itemTitle
	}
	if changed("description") {
		p.Description = &ef.itemDesc
	}
	if changed("location") {
		p.Location = &ef.itemLocation
	}
	if changed("item-tips") {
		p.Tips = &ef.itemTips
	}
	if changed("cost") {
		p.EstimatedCost = &ef.itemCost
	}
	return p, nil
}

func newItem(p itinerary.ItemPatch) itinerary.Item {
	it := itinerary.Item{Type: itinerary.ActivityOther}
	if p.Time != nil {
		it.Time = *p.Time
	}
	if p.Duration != nil {
		it.Duration = *p.Duration
	}
	if p.Type != nil {
		it.Type = *p.Type
	}
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Location != nil {
		it.Location = *p.Location
	}
	if p.Tips != nil {
		it.Tips = *p.Tips
	}
	if p.EstimatedCost != nil {
		it.EstimatedCost = itinerary.Amount(*p.EstimatedCost)
	}
	return it
}

// parseItemRef reads "DAY:INDEX".
func parseItemRef(s string) (int, int, error) {
	d, i, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("item reference %q: want DAY:INDEX", s)
	}
	day, err := strconv.Atoi(d)
	if err != nil {
		return 0, 0, fmt.Errorf("item reference %q: bad day", s)
	}
	idx, err := strconv.Atoi(i)
	if err != nil {
		return 0, 0, fmt.Errorf("item reference %q: bad index", s)
	}
	return day, idx, nil
}

func newItineraryDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Planner.Delete(ctx, args[0]); err != nil {
				return err
			}
			_ = app.Store.DeleteDraft(ctx, args[0])
			app.Printer.Success("deleted " + args[0])
			return nil
		},
	}
}

func newItinerarySimilarCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "similar <id>",
		Short: "Find your itineraries most like this one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			similar, err := app.Planner.Similar(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(similar) == 0 {
				app.Printer.Printf("nothing similar yet")
				return nil
			}
			rows := make([][]string, 0, len(similar))
			for _, s := range similar {
				rows = append(rows, []string{s.ID, s.Destination, fmt.Sprintf("%.2f", s.Similarity), strings.Join(s.Keywords, " ")})
			}
			app.Printer.Table([]string{"ID", "DESTINATION", "SIMILARITY", "KEYWORDS"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "how many to show")
	return cmd
}

func newItineraryExportCmd(app *App) *cobra.Command {
	var (
		out      string
		local    bool
		shareURL string
	)
	cmd := &cobra.Command{
		Use:   "export <id|preview>",
		Short: "Export an itinerary to PDF",
		Long: "Download the server-rendered PDF, or with --local render it here, " +
			"geocoding each stop for the map. The preview is always rendered locally.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if out == "" {
				out = id + ".pdf"
			}

			var (
				data []byte
				err  error
			)
			if local || id == previewKey {
				data, err = renderLocalPDF(ctx, app, id, shareURL)
			} else {
				data, err = app.PDF.Download(ctx, id)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			app.Printer.Success(fmt.Sprintf("wrote %s (%d bytes)", out, len(data)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <id>.pdf)")
	cmd.Flags().BoolVar(&local, "local", false, "render locally instead of downloading")
	cmd.Flags().StringVar(&shareURL, "share-url", "", "link to encode as a QR code")
	return cmd
}

func renderLocalPDF(ctx context.Context, app *App, id, shareURL string) ([]byte, error) {
	c, err := openContainer(ctx, app, id)
	if err != nil {
		return nil, err
	}
	doc := c.Document()

	opts := pdfexport.Options{
		ShareURL:    shareURL,
		FontPath:    os.Getenv(envPDFFont),
		GeneratedAt: time.Now(),
		Logger:      app.Logger.Named("pdf"),
	}
	if markers, err := mapview.PlaceMarkers(ctx, doc, app.Maps, app.Logger.Named("mapview")); err != nil {
		app.Logger.Warn("placing markers", zap.Error(err))
	} else if center := markers.CenterLocation(); center != "" {
		img, err := app.Maps.StaticMap(ctx, request_models.StaticMapQuery{Location: center, Markers: markers.StaticMarkers()})
		if err != nil {
			app.Printer.Warning("map unavailable, exporting without it")
		} else {
			opts.MapImage = img
		}
		if len(markers.Failed) > 0 {
			app.Printer.Warning(fmt.Sprintf("%d stops could not be placed on the map", len(markers.Failed)))
		}
	}
	return pdfexport.Render(doc, opts)
}

func newItineraryDraftsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List locally kept drafts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			drafts, err := app.Store.Drafts(cmd.Context())
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				app.Printer.Printf("no drafts")
				return nil
			}
			rows := make([][]string, 0, len(drafts))
			for _, d := range drafts {
				rows = append(rows, []string{d.Key, d.Destination, d.UpdatedAt.Format(time.DateTime)})
			}
			app.Printer.Table([]string{"KEY", "DESTINATION", "EDITED"}, rows)
			return nil
		},
	}
}

// openContainer loads id from the backend, or the local preview draft.
func openContainer(ctx context.Context, app *App, id string) (*itinerary.Container, error) {
	c := app.Container()
	if id != previewKey {
		if err := c.Load(ctx, id); err != nil {
			return nil, err
		}
		return c, nil
	}

	d, err := app.Store.LoadDraft(ctx, previewKey)
	if errors.Is(err, itinerary.ErrNotFound) {
		return nil, errors.New("no preview: generate one with `tripctl plan`")
	}
	if err != nil {
		return nil, err
	}
	if err := c.SetPreview(d.Document); err != nil {
		return nil, err
	}
	return c, nil
}
