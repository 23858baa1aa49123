package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/luoyiti/web-video-player/internal/catalog"
	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/services"
	"github.com/luoyiti/web-video-player/internal/shared"
	"github.com/luoyiti/web-video-player/internal/snapshot"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	store      snapshot.Store
	gateway    services.Backend
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store and Gateway override the ones built from the config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      snapshot.Store
	Gateway    services.Backend
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		gateway:    opts.Gateway,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, catalogCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file and applies the log level.
//
// A missing default config file is not an error; an explicitly named one is.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := r.configPath
	if cmd.IsSet("config") {
		path = cmd.String("config")
	}
	r.configPath = path

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else if cmd.IsSet("config") {
			return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// snapshotStore returns the injected store or a file store at client.snapshot_path.
func (r *Runner) snapshotStore() (snapshot.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	path, err := shared.ExpandPath(r.config.Client.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("%w: client snapshot_path: %v", shared.ErrInvalidConfig, err)
	}
	r.store = snapshot.NewFileStore(path, r.config.Client.StorageKey, shared.WithLogger(r.logger, "component", "snapshot"))
	return r.store, nil
}

// backend returns the injected gateway, a gateway to client.backend_url, or nil when offline.
func (r *Runner) backend() services.Backend {
	if r.gateway != nil {
		return r.gateway
	}
	if r.config.Client.Offline {
		return nil
	}
	r.gateway = services.NewGateway(r.config.Client.BackendURL, r.config.Client.Timeout(), r.httpClient)
	return r.gateway
}

// newEngine builds a catalogue engine from the runner's config.
func (r *Runner) newEngine(onStatus func(catalog.Status)) (*catalog.Engine, error) {
	store, err := r.snapshotStore()
	if err != nil {
		return nil, err
	}

	defaults := models.EmptyState()
	if r.config.Client.SeedDemo {
		defaults = models.DefaultState()
	}

	return catalog.New(catalog.Options{
		Store:    store,
		Gateway:  r.backend(),
		Logger:   shared.WithLogger(r.logger, "component", "catalog"),
		Defaults: defaults,
		OnStatus: onStatus,
	}), nil
}

// openCatalog builds an engine, bootstraps it and waits for the initial sync.
func (r *Runner) openCatalog(ctx context.Context) (*catalog.Engine, error) {
	engine, err := r.newEngine(nil)
	if err != nil {
		return nil, err
	}
	engine.Bootstrap(ctx)
	engine.Wait()
	return engine, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeStatus prints the engine's status indicator.
func (r *Runner) writeStatus(engine *catalog.Engine) {
	status := engine.Status()
	if status.Message == "" {
		return
	}
	r.writePlain("[%s] %s\n", status.Level, status.Message)
}
