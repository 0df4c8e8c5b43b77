package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/vidyalab/sahayak/pkg/adapter"
	"github.com/vidyalab/sahayak/pkg/repository"
	"github.com/vidyalab/sahayak/pkg/scoring"
	"github.com/vidyalab/sahayak/pkg/usecase/memory"
	"github.com/vidyalab/sahayak/pkg/usecase/resolve"
	"github.com/vidyalab/sahayak/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel string

	// Store
	store             string
	firestoreProject  string
	firestoreDatabase string
	badgerPath        string
	cacheSize         int64

	// Scoring
	lexiconPath string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
	ragURL         string

	// Resolution
	resolveTimeout time.Duration
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("SAHAYAK_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Memory store backend (firestore, badger, memory)",
			Value:       "badger",
			Sources:     cli.EnvVars("SAHAYAK_STORE"),
			Destination: &cfg.store,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.firestoreProject,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.firestoreDatabase,
		},
		&cli.StringFlag{
			Name:        "badger-path",
			Usage:       "Directory for the local badger store",
			Value:       defaultBadgerPath(),
			Sources:     cli.EnvVars("SAHAYAK_BADGER_PATH"),
			Destination: &cfg.badgerPath,
		},
		&cli.IntFlag{
			Name:        "cache-size",
			Usage:       "Per-user record cache entries in front of the store (0 disables)",
			Value:       128,
			Sources:     cli.EnvVars("SAHAYAK_CACHE_SIZE"),
			Destination: &cfg.cacheSize,
		},
		&cli.StringFlag{
			Name:        "lexicon",
			Usage:       "Path to a YAML concept lexicon overriding the built-in lists",
			Sources:     cli.EnvVars("SAHAYAK_LEXICON"),
			Destination: &cfg.lexiconPath,
		},
	}
}

// llmFlags returns flags for the remote answer sources with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model used for direct answers",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "rag-url",
			Usage:       "Base URL of the RAG backend",
			Value:       "http://localhost:8000",
			Sources:     cli.EnvVars("SAHAYAK_RAG_URL"),
			Destination: &cfg.ragURL,
		},
		&cli.DurationFlag{
			Name:        "resolve-timeout",
			Usage:       "Deadline for each resolution branch",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("SAHAYAK_RESOLVE_TIMEOUT"),
			Destination: &cfg.resolveTimeout,
		},
	}
}

func defaultBadgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sahayak/memory"
	}
	return filepath.Join(home, ".sahayak", "memory")
}

// setupLogging configures the default logger from the log-level flag and
// attaches it to the context. Logs go to stderr so answers on stdout stay
// clean.
func (cfg *config) setupLogging(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates the memory store selected by the store flag
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	var repo repository.Repository

	switch cfg.store {
	case "firestore":
		r, err := repository.New(ctx, cfg.firestoreProject, cfg.firestoreDatabase)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		repo = r
	case "badger":
		r, err := repository.NewBadger(cfg.badgerPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open badger store", goerr.V("path", cfg.badgerPath))
		}
		repo = r
	case "memory":
		repo = repository.NewMemory()
	default:
		return nil, goerr.New("unknown store backend", goerr.V("store", cfg.store))
	}

	if cfg.cacheSize > 0 {
		cached, err := repository.NewCached(repo, int(cfg.cacheSize))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to wrap store with cache")
		}
		repo = cached
	}

	return repo, nil
}

// newLexicon loads the concept lexicon, falling back to the built-in lists
func (cfg *config) newLexicon() (*scoring.Lexicon, error) {
	if cfg.lexiconPath == "" {
		return scoring.DefaultLexicon(), nil
	}

	lx, err := scoring.LoadLexicon(cfg.lexiconPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load lexicon", goerr.V("path", cfg.lexiconPath))
	}
	return lx, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}
	return gemini, nil
}

// newRAG creates a new RAG adapter instance
func (cfg *config) newRAG() (adapter.RAG, error) {
	rag, err := adapter.NewRAG(cfg.ragURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rag client")
	}
	return rag, nil
}

// newResolver wires the full resolution stack. The returned repository must
// be closed by the caller.
func (cfg *config) newResolver(ctx context.Context) (*resolve.UseCase, repository.Repository, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	lx, err := cfg.newLexicon()
	if err != nil {
		_ = repo.Close()
		return nil, nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, nil, err
	}

	rag, err := cfg.newRAG()
	if err != nil {
		_ = repo.Close()
		return nil, nil, err
	}

	mem := memory.New(repo, memory.WithLexicon(lx))
	uc := resolve.New(repo, mem, gemini, rag,
		resolve.WithLexicon(lx),
		resolve.WithTimeout(cfg.resolveTimeout),
	)

	return uc, repo, nil
}
