// Package cli wires the cobra command surface: fetching, parsing,
// validating and rendering SDMX messages.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdmx-tools/sdmx-cli/internal/adapters/driven/config/file"
	"github.com/sdmx-tools/sdmx-cli/internal/adapters/driven/storage/memory"
	"github.com/sdmx-tools/sdmx-cli/internal/adapters/driven/storage/sqlite"
	"github.com/sdmx-tools/sdmx-cli/internal/connectors/filesystem"
	"github.com/sdmx-tools/sdmx-cli/internal/connectors/rest"
	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/core/services"
	"github.com/sdmx-tools/sdmx-cli/internal/logger"
	readerjson "github.com/sdmx-tools/sdmx-cli/internal/readers/sdmxjson"
	readerxml "github.com/sdmx-tools/sdmx-cli/internal/readers/sdmxml"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose  bool
	flagJSONLogs bool
	flagProvider string
	flagFile     string
	flagNoCache  bool
	flagCacheDir string
	flagConfig   string
)

var (
	providerStore *file.ProviderStore
	messages      *services.MessageService
	cache         driven.MessageCache
)

var rootCmd = &cobra.Command{
	Use:   "sdmx",
	Short: "Query SDMX 2.1 data and structural metadata",
	Long: `sdmx retrieves, validates and tabulates statistical data and
structural metadata from SDMX 2.1 web services or local message files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Initialize(flagVerbose, flagJSONLogs); err != nil {
			return err
		}
		store, err := file.NewProviderStore(flagConfig)
		if err != nil {
			return err
		}
		providerStore = store
		messages = services.NewMessageService(readerxml.New(), readerjson.New())
		if flagNoCache {
			cache = memory.NewCache()
			return nil
		}
		sqlCache, err := sqlite.NewStore(flagCacheDir)
		if err != nil {
			logger.Warn("message cache unavailable, continuing without persistence", "error", err)
			cache = memory.NewCache()
			return nil
		}
		cache = sqlCache
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cache != nil {
			cache.Close()
		}
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLogs, "json-logs", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "ECB", "provider id from the registry")
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "read from a local message file instead of a provider")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "skip the persistent message cache")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "message cache directory (default ~/.sdmx/data)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config-dir", "", "configuration directory (default ~/.sdmx)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// currentProvider resolves the --provider flag against the registry.
func currentProvider() (domain.Provider, error) {
	return providerStore.Get(flagProvider)
}

// retrieve fetches a descriptor through the cache: a hit replays the
// cached bytes, a miss goes to the wire and is stored on success.
func retrieve(ctx context.Context, req driven.RequestDescriptor) (*driven.RawMessage, error) {
	if flagFile != "" {
		fs := filesystem.New("")
		defer fs.Close()
		return fs.Fetch(ctx, driven.RequestDescriptor{Path: flagFile})
	}

	provider, err := currentProvider()
	if err != nil {
		return nil, err
	}
	key := provider.URL + "/" + req.Encode()

	if cached, err := cache.Get(ctx, key); err == nil {
		logger.Debug("cache hit", "key", key)
		return &driven.RawMessage{
			URL:         cached.Key,
			ContentType: cached.ContentType,
			Body:        cached.Body,
		}, nil
	}

	conn := rest.New(provider, rest.Config{})
	defer conn.Close()
	raw, err := conn.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(ctx, driven.CachedMessage{
		Key:         key,
		ContentType: raw.ContentType,
		Body:        raw.Body,
	}); err != nil {
		logger.Warn("caching message", "key", key, "error", err)
	}
	return raw, nil
}

// parseMessage decodes a raw message and, when the service deferred the
// result behind a footer link, polls that link for the real payload.
func parseMessage(ctx context.Context, raw *driven.RawMessage, opts driven.ReadOptions) (*domain.Message, error) {
	msg, err := messages.Parse(ctx, raw, opts)
	if err != nil {
		return nil, err
	}
	if msg.Footer == nil || flagFile != "" {
		return msg, nil
	}
	link := msg.Footer.RetrievalURL()
	if link == "" {
		return msg, nil
	}

	provider, err := currentProvider()
	if err != nil {
		return nil, err
	}
	conn := rest.New(provider, rest.Config{})
	defer conn.Close()
	deferred, err := conn.Poll(ctx, link, 6, 10*time.Second)
	if err != nil {
		return nil, err
	}
	return messages.Parse(ctx, deferred, opts)
}
