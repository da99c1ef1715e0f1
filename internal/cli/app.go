package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"tripwise/pkg/apiclient"
	"tripwise/pkg/gateway"
	"tripwise/pkg/itinerary"
	"tripwise/pkg/localstore"
	"tripwise/pkg/session"
)

const (
	DefaultAPIURL = "http://localhost:5000/api"
	envAPIURL     = "TRIPWISE_API_URL"
	envHome       = "TRIPWISE_HOME"
)

type Config struct {
	APIURL string
	// StorePath is the SQLite file holding the session and drafts.
	StorePath string
	Timeout   time.Duration
	Verbose   bool
	Color     bool
}

// ConfigFromEnv applies TRIPWISE_API_URL and TRIPWISE_HOME over the defaults.
func ConfigFromEnv() Config {
	cfg := Config{APIURL: DefaultAPIURL, Timeout: 2 * time.Minute}
	if v := os.Getenv(envAPIURL); v != "" {
		cfg.APIURL = v
	}
	home := os.Getenv(envHome)
	if home == "" {
		if dir, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(dir, ".tripwise")
		} else {
			home = ".tripwise"
		}
	}
	cfg.StorePath = filepath.Join(home, "tripwise.db")
	return cfg
}

// App holds what the commands share. Open builds it from Config once flags
// have been parsed.
type App struct {
	Config Config
	Out    io.Writer
	Err    io.Writer
	In     io.Reader

	Logger   *zap.Logger
	Printer  *Printer
	Store    *localstore.Store
	Session  *session.Context
	Planner  *apiclient.PlannerService
	Expenses *apiclient.ExpenseService
	Voice    *apiclient.VoiceService
	Maps     *apiclient.MapService
	PDF      *apiclient.PDFService
}

func NewApp(cfg Config, out, errOut io.Writer, in io.Reader) *App {
	return &App{Config: cfg, Out: out, Err: errOut, In: in}
}

func (a *App) Open(ctx context.Context) error {
	if a.Session != nil {
		return nil
	}
	a.Logger = newLogger(a.Err, a.Config.Verbose)
	a.Printer = NewPrinter(a.Out, a.Config.Color)

	store, err := localstore.Open(a.Config.StorePath)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	a.Store = store

	base := gateway.New(gateway.Config{
		BaseURL: a.Config.APIURL,
		Timeout: a.Config.Timeout,
		Logger:  a.Logger.Named("gateway"),
	})
	a.Session = session.New(apiclient.NewAuthService(base), store, a.Logger.Named("session"))
	authed := base.WithAuth(a.Session, a.Printer.PromptLogin)

	a.Planner = apiclient.NewPlannerService(authed)
	a.Expenses = apiclient.NewExpenseService(authed)
	a.Voice = apiclient.NewVoiceService(authed)
	a.Maps = apiclient.NewMapService(authed)
	a.PDF = apiclient.NewPDFService(authed)

	return a.Session.Init(ctx)
}

// Close releases the store; a later Open starts afresh.
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Teardown()
		a.Session = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("closing local store", zap.Error(err))
		}
		a.Store = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// Container returns an itinerary container wired to the backend, the session
// and the local draft store.
func (a *App) Container() *itinerary.Container {
	return itinerary.NewContainer(a.Planner, a.Session, a.Printer,
		itinerary.WithLocalSaver(a.Store),
		itinerary.WithSyncTimeout(a.Config.Timeout),
		itinerary.WithLogger(a.Logger.Named("itinerary")))
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}
