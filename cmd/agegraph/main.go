// Package main provides the agegraph CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graphbridge/agegraph/pkg/config"
	"github.com/graphbridge/agegraph/pkg/graph"
	"github.com/graphbridge/agegraph/pkg/server"
	"github.com/graphbridge/agegraph/pkg/translate"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agegraph",
		Short: "agegraph - graph access and query translation for Apache AGE",
		Long: `agegraph fronts a PostgreSQL database with the Apache AGE extension:
graph and node/edge CRUD, raw Cypher execution, schema sampling, and
natural-language query translation over an HTTP JSON API.`,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("agegraph v%s (%s)\n", version, commit)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)

	graphsCmd := &cobra.Command{
		Use:   "graphs",
		Short: "Graph catalog operations",
	}
	graphsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List graphs",
		RunE:  runGraphsList,
	})
	graphsCmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a graph",
		Args:  cobra.ExactArgs(1),
		RunE:  runGraphsCreate,
	})
	graphsCmd.AddCommand(&cobra.Command{
		Use:   "drop [name]",
		Short: "Drop a graph and all of its data",
		Args:  cobra.ExactArgs(1),
		RunE:  runGraphsDrop,
	})
	rootCmd.AddCommand(graphsCmd)

	indexesCmd := &cobra.Command{
		Use:   "create-indexes [graph]",
		Short: "Create id, property, and endpoint indexes on a graph's tables",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreateIndexes,
	}
	rootCmd.AddCommand(indexesCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo graphs",
	}
	seedSocialCmd := &cobra.Command{
		Use:   "social",
		Short: "Build the social_network demo graph",
		RunE:  runSeedSocial,
	}
	seedSocialCmd.Flags().Bool("recreate", false, "Drop the graph first if it exists")
	seedCmd.AddCommand(seedSocialCmd)

	seedRoadsCmd := &cobra.Command{
		Use:   "roads",
		Short: "Build the road demo graph",
		RunE:  runSeedRoads,
	}
	seedRoadsCmd.Flags().Bool("recreate", false, "Drop the graph first if it exists")
	seedCmd.AddCommand(seedRoadsCmd)
	rootCmd.AddCommand(seedCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path, _ = cmd.InheritedFlags().GetString("config")
	}
	return config.Load(path)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

// openStore loads config, builds the logger, and connects to Postgres.
// Shared by every command that touches the database.
func openStore(cmd *cobra.Command) (*config.Config, *zap.Logger, *graph.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := graph.Open(cmd.Context(), cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	var translator server.Translator
	if cfg.TranslationEnabled() {
		client, err := translate.NewChatClient(translate.ClientConfig{
			Endpoint:    cfg.OpenAI.Endpoint,
			APIKey:      cfg.OpenAI.APIKey,
			Deployment:  cfg.OpenAI.Deployment,
			APIVersion:  cfg.OpenAI.APIVersion,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		})
		if err != nil {
			return err
		}
		translator = translate.NewTranslator(client)
	} else {
		logger.Warn("translation disabled: no model endpoint configured")
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Server.Addr
	srvCfg.GraphDataCap = cfg.Limits.GraphDataCap
	srvCfg.NodeSample = cfg.Limits.NodeSample
	srvCfg.EdgeSample = cfg.Limits.EdgeSample

	srv, err := server.New(server.AdaptStore(store), translator, srvCfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Server.ShutdownTimeout)
}

func runGraphsList(cmd *cobra.Command, args []string) error {
	_, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	graphs, err := store.ListGraphs(cmd.Context())
	if err != nil {
		return err
	}
	if len(graphs) == 0 {
		fmt.Println("No graphs.")
		return nil
	}
	for _, g := range graphs {
		fmt.Println(g)
	}
	return nil
}

func runGraphsCreate(cmd *cobra.Command, args []string) error {
	_, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	if _, err := store.CreateGraph(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Created graph %q.\n", args[0])
	return nil
}

func runGraphsDrop(cmd *cobra.Command, args []string) error {
	_, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	if err := store.DropGraph(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Dropped graph %q.\n", args[0])
	return nil
}

func runCreateIndexes(cmd *cobra.Command, args []string) error {
	_, logger, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	created, err := store.CreateIndexes(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, name := range created {
		fmt.Printf("  %s\n", name)
	}
	fmt.Printf("Created %d indexes on %q.\n", len(created), args[0])
	return nil
}

// prepareSeedGraph creates (or recreates) the named graph and returns a
// session against it. Without recreate an existing graph is reused.
func prepareSeedGraph(ctx context.Context, store *graph.Store, name string, recreate bool) (*graph.Session, error) {
	if recreate {
		if err := store.DropGraph(ctx, name); err != nil && !errors.Is(err, graph.ErrGraphNotFound) {
			return nil, err
		}
	}
	sess, err := store.CreateGraph(ctx, name)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, graph.ErrDuplicateGraph) {
		return nil, err
	}
	return store.Session(ctx, name)
}
