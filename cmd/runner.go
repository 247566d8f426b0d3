package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/photon/internal/media"
	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/repositories"
	"github.com/desertthunder/photon/internal/services"
	"github.com/desertthunder/photon/internal/shared"
	"github.com/desertthunder/photon/internal/store"
	"github.com/desertthunder/photon/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	lookup     func(string) string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	// Lookup reads environment variables (default: [os.Getenv]).
	Lookup func(string) string
	Logger *log.Logger
	Output io.Writer
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
	if opts.Lookup == nil {
		opts.Lookup = os.Getenv
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		lookup:     opts.Lookup,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, statusCommand, syncCommand, saveCommand, stateCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) colors() (models.ColorModel, error) {
	c, err := models.NewColorModel(r.config.Relay.ColorModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	return c, nil
}

func (r *Runner) relayClient() *services.RelayClient {
	return services.NewRelayClient(r.config.Client.ProxyURL, r.config.Client.Path, r.httpClient)
}

// openStorage returns the configured snapshot storage and a function releasing it.
func (r *Runner) openStorage(ctx context.Context) (store.Storage, func() error, error) {
	nop := func() error { return nil }

	switch r.config.Storage.Driver {
	case "memory":
		return store.NewMemoryStorage(), nop, nil
	case "sqlite":
		db, err := shared.NewDatabase(shared.ExpandHome(r.config.Database.Path))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", shared.ErrStorageRead, err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repositories.NewSnapshotRepository(db), db.Close, nil
	case "file", "":
		return store.NewFileStorage(r.config.Storage.Dir), nop, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, r.config.Storage.Driver)
	}
}

// session is a loaded store wired to the relay.
type session struct {
	store      *store.Store
	dispatcher *tasks.Dispatcher
	close      func() error
}

// sessionOpts tunes [Runner.openSession]. The zero value is a silent, syncing session.
type sessionOpts struct {
	player   media.Player
	progress chan<- tasks.ProgressUpdate
	// offline leaves the store without a syncer; edits are only saved locally.
	offline bool
}

// openSession builds a store on the configured storage, syncing through the relay client.
func (r *Runner) openSession(ctx context.Context, opts sessionOpts) (*session, error) {
	colors, err := r.colors()
	if err != nil {
		return nil, err
	}
	storage, closer, err := r.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	dispatcher := tasks.NewDispatcher(r.relayClient(), tasks.Options{
		Rate:     r.config.Client.SyncRate,
		Burst:    r.config.Client.SyncBurst,
		Logger:   shared.WithLogger(r.logger, "component", "sync"),
		Progress: opts.progress,
	})

	var syncer store.Syncer = dispatcher
	if opts.offline {
		syncer = nil
	}

	st := store.New(store.Options{
		Storage: storage,
		Syncer:  syncer,
		Player:  opts.player,
		Colors:  colors,
		Logger:  shared.WithLogger(r.logger, "component", "store"),
		Key:     r.config.Storage.Key,
	})
	st.Load(ctx)

	return &session{store: st, dispatcher: dispatcher, close: closer}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
