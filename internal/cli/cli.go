package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/alluvial/pkg/buildinfo"
	apperr "github.com/matzehuels/alluvial/pkg/errors"
	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/observability"
	"github.com/matzehuels/alluvial/pkg/pipeline"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/layout"
	"github.com/matzehuels/alluvial/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "alluvial"

	// envStore names the environment variable that selects the override store.
	envStore = "ALLUVIAL_STORE"

	// envNamespace names the environment variable that scopes store keys.
	envNamespace = "ALLUVIAL_NAMESPACE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// storeURL is the --store flag value.
	storeURL string
	// logFormat is the --log-format flag value.
	logFormat string
	// namespace prefixes every record key; see --namespace.
	namespace string
	// ttl expires persisted records; zero keeps them.
	ttl time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Alluvial lays out multi-layer flow diagrams",
		Long:         `Alluvial is a CLI tool for turning layered flow data into alluvial diagrams: proportional node bands per layer, connected by curved bands whose thickness follows the flow.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseLogFormat(c.logFormat)
			if err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "--log-format")
			}
			c.Logger.SetFormatter(f)
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetPipelineHooks(hooks)
			observability.SetStoreHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.storeURL, "store", "", "override store URL (memory:, null:, file://dir, sqlite://path, redis://, mongodb://); env "+envStore)
	root.PersistentFlags().StringVar(&c.namespace, "namespace", "", "keep overrides in a separate key namespace; env "+envNamespace)
	root.PersistentFlags().DurationVar(&c.ttl, "ttl", 0, "expire persisted overrides after this long (0 keeps them)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log output format (text, logfmt, json)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.overridesCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	repo, err := c.openRepository(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(repo, c.Logger), nil
}

// openRepository opens the configured override store.
func (c *CLI) openRepository(ctx context.Context) (*store.Repository, error) {
	url, err := c.resolveStoreURL()
	if err != nil {
		return nil, err
	}
	if err := apperr.ValidateStoreURL(url); err != nil {
		return nil, err
	}
	if c.ttl < 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "--ttl must not be negative")
	}
	ns := c.resolveNamespace()
	if ns != "" {
		if err := apperr.ValidateDiagramKey(ns); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "namespace %q", ns)
		}
	}

	s, err := store.Open(ctx, url)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidStore, err, "open store %s", url)
	}
	opts := []store.RepositoryOption{store.WithLogger(c.Logger), store.WithTTL(c.ttl)}
	if ns != "" {
		opts = append(opts, store.WithKeyer(store.NewScopedKeyer(nil, ns+":")))
	}
	c.Logger.Debug("opened override store", "url", url, "namespace", ns, "ttl", c.ttl)
	return store.NewRepository(s, opts...), nil
}

// resolveNamespace returns the --namespace flag, else $ALLUVIAL_NAMESPACE.
func (c *CLI) resolveNamespace() string {
	if c.namespace != "" {
		return c.namespace
	}
	return os.Getenv(envNamespace)
}

// resolveStoreURL picks the store from the flag, the environment, or the
// default file store under the data directory.
func (c *CLI) resolveStoreURL() (string, error) {
	if c.storeURL != "" {
		return c.storeURL, nil
	}
	if env := os.Getenv(envStore); env != "" {
		return env, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", fmt.Errorf("get data dir: %w", err)
	}
	return "file://" + filepath.ToSlash(filepath.Join(dir, "overrides")), nil
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/alluvial/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadInput reads an input document, detecting the format from the extension.
func loadInput(path string) (*alio.Input, error) {
	return alio.ImportFile(path)
}

// loadRules reads a rules file, or returns nil when path is empty.
func loadRules(path string) (*layout.Rules, error) {
	if path == "" {
		return nil, nil
	}
	r, err := alio.ReadRulesFile(path)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseLayers parses a comma-separated list of layer indices.
func parseLayers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var layers []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "invalid layer index %q", part)
		}
		layers = append(layers, n)
	}
	return layers, nil
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
