package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"tripwise/internal/models/request_models"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/apiclient"
	"tripwise/pkg/voice"
)

func newExpenseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"exp"},
		Short:   "Track spending against a trip budget",
	}
	cmd.AddCommand(
		newExpenseAddCmd(app),
		newExpenseVoiceCmd(app),
		newExpenseListCmd(app),
		newExpenseUpdateCmd(app),
		newExpenseDeleteCmd(app),
		newExpenseStatsCmd(app),
		newExpenseCompareCmd(app),
		newExpenseAnalyzeCmd(app),
	)
	return cmd
}

func addExpenseFlags(cmd *cobra.Command, req *request_models.CreateExpenseRequest) {
	f := cmd.Flags()
	f.StringVar(&req.ItineraryID, "itinerary", "", "itinerary the expense belongs to")
	f.StringVar(&req.Category, "category", "", "transportation, accommodation, food, attractions, shopping or other")
	f.Float64Var(&req.Amount, "amount", 0, "amount in CNY")
	f.StringVar(&req.Description, "description", "", "what it was")
	f.StringVar(&req.ExpenseDate, "date", "", "YYYY-MM-DD (default today)")
	f.StringVar(&req.Location, "location", "", "where")
	f.StringVar(&req.PaymentMethod, "payment", "", "payment method")
}

func newExpenseAddCmd(app *App) *cobra.Command {
	var req request_models.CreateExpenseRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := app.Expenses.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			app.Printer.Success(fmt.Sprintf("recorded %s %s (%s)", e.Category, money(e.Amount), e.ID))
			return nil
		},
	}
	addExpenseFlags(cmd, &req)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExpenseVoiceCmd(app *App) *cobra.Command {
	var (
		req      request_models.CreateExpenseRequest
		language string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "voice <audio-file>",
		Short: "Record an expense by voice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			capture := voice.NewCapture(voice.FileRecorder{Path: args[0]}, app.Voice, app.Expenses, app.Printer, app.Logger)
			capture.SetLanguage(language)
			if err := capture.Start(ctx); err != nil {
				return err
			}
			parsed, text, err := capture.ExpenseFromRecording(ctx)
			if err != nil {
				return err
			}
			app.Printer.Printf("heard: %s", text)
			app.Printer.Printf("parsed: %s %s %q at %s (confidence %.0f%%)",
				parsed.Category, money(parsed.Amount), parsed.Description, parsed.Location, parsed.Confidence*100)
			if dryRun {
				return nil
			}

			mergeParsed(&req, parsed)
			e, err := app.Expenses.Create(ctx, req)
			if err != nil {
				return err
			}
			app.Printer.Success(fmt.Sprintf("recorded %s %s (%s)", e.Category, money(e.Amount), e.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ItineraryID, "itinerary", "", "itinerary the expense belongs to")
	cmd.Flags().StringVar(&req.ExpenseDate, "date", "", "YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&language, "language", apiclient.DefaultLanguage, "transcription language")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the parse without saving")
	return cmd
}

func mergeParsed(req *request_models.CreateExpenseRequest, p *response_models.ParsedExpense) {
	req.Category = p.Category
	req.Amount = p.Amount
	req.Description = p.Description
	req.Location = p.Location
	req.PaymentMethod = p.PaymentMethod
	req.VoiceInput = true
}

func newExpenseListCmd(app *App) *cobra.Command {
	var q request_models.ExpenseQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app.Expenses.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			app.Printer.Expenses(list)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.ItineraryID, "itinerary", "", "only this itinerary")
	f.StringVar(&q.Category, "category", "", "only this category")
	f.StringVar(&q.StartDate, "from", "", "on or after YYYY-MM-DD")
	f.StringVar(&q.EndDate, "to", "", "on or before YYYY-MM-DD")
	return cmd
}

func newExpenseUpdateCmd(app *App) *cobra.Command {
	var c request_models.CreateExpenseRequest
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			var req request_models.UpdateExpenseRequest
			if changed("category") {
				req.Category = &c.Category
			}
			if changed("amount") {
				req.Amount = &c.Amount
			}
			if changed("description") {
				req.Description = &c.Description
			}
			if changed("date") {
				req.ExpenseDate = &c.ExpenseDate
			}
			if changed("location") {
				req.Location = &c.Location
			}
			if changed("payment") {
				req.PaymentMethod = &c.PaymentMethod
			}
			e, err := app.Expenses.Update(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			app.Printer.Success(fmt.Sprintf("updated %s: %s %s", e.ID, e.Category, money(e.Amount)))
			return nil
		},
	}
	addExpenseFlags(cmd, &c)
	_ = cmd.Flags().MarkHidden("itinerary")
	return cmd
}

func newExpenseDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Expenses.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Printer.Success("deleted " + args[0])
			return nil
		},
	}
}

func newExpenseStatsCmd(app *App) *cobra.Command {
	var itineraryID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize spending by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.Expenses.Stats(cmd.Context(), itineraryID)
			if err != nil {
				return err
			}
			app.Printer.Stats(stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&itineraryID, "itinerary", "", "only this itinerary")
	return cmd
}

func newExpenseCompareCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <itinerary-id>",
		Short: "Compare spending with the itinerary's budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := app.Expenses.BudgetComparison(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.Printer.Comparison(cmp)
			return nil
		},
	}
}

func newExpenseAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <itinerary-id>",
		Short: "Get saving suggestions and an overspend forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := app.Expenses.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.Printer.Analysis(analysis)
			return nil
		},
	}
}
