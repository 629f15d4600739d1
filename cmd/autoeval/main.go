// Package main is the autoeval CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/autoeval/internal/analysis"
	"github.com/hyperjump/autoeval/internal/cli"
	"github.com/hyperjump/autoeval/internal/config"
	"github.com/hyperjump/autoeval/internal/ingest"
	"github.com/hyperjump/autoeval/internal/intake"
	"github.com/hyperjump/autoeval/internal/models"
	"github.com/hyperjump/autoeval/internal/server"
	"github.com/hyperjump/autoeval/internal/session"
	"github.com/hyperjump/autoeval/internal/storage"
	"github.com/hyperjump/autoeval/internal/watcher"
	"github.com/hyperjump/autoeval/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/autoeval/config.yaml"
	defaultServerURL  = "http://localhost:8000"
)

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence, and a missing default file yields the built-in defaults.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "summary":
		runSummary()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("autoeval version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components are the long-lived collaborators of the server.
type components struct {
	Sessions   *session.MemoryStore
	Ledger     *storage.SQLiteStorage
	Intake     *intake.Intake
	Dispatcher *analysis.Dispatcher
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	ledger, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open upload ledger: %w", err)
	}
	sessions := session.NewMemoryStore(cfg.Session.MaxSessions, cfg.Session.TTL, session.WithLogger(logger))
	in := intake.New(
		ingest.NewParser(cfg.Analysis.MaxRows),
		sessions,
		intake.WithLedger(ledger),
		intake.WithLogger(logger),
	)
	dispatcher := analysis.NewDispatcher(sessions,
		analysis.WithLogger(logger),
		analysis.WithClusterSeed(cfg.Analysis.ClusterSeed),
		analysis.WithMaxIterations(cfg.Analysis.MaxIterations),
	)
	return &components{Sessions: sessions, Ledger: ledger, Intake: in, Dispatcher: dispatcher}, nil
}

func (c *components) Close() error {
	return c.Ledger.Close()
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (analysis tracing, inbox events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(ctx context.Context, path string) error {
			_, err := comps.Intake.IngestFile(ctx, path, models.SourceWatch)
			return err
		},
		watcher.WithLogger(logger),
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start inbox watcher", zap.Error(err))
	}
	go watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		comps.Dispatcher,
		comps.Intake,
		comps.Sessions,
		comps.Ledger,
		cfg,
		logger,
		server.WithWatch(watchSvc, resolvedConfigPath),
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after the file argument
// to the front so that flag.Parse sees them: "autoeval analyze data.csv -type clustering".
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// fileAnalysis is the analysis of one ingested file.
type fileAnalysis struct {
	File     string                 `json:"file"`
	Analysis *models.AnalysisResult `json:"analysis"`
}

// analyzePath ingests path into throwaway sessions and runs one analysis per dataset.
// A directory contributes every supported file in it; unreadable files are skipped.
func analyzePath(ctx context.Context, cfg *config.Config, logger *zap.Logger, path, mode, viz string, recursive bool) ([]fileAnalysis, error) {
	sessions := session.NewMemoryStore(0, 0)
	in := intake.New(ingest.NewParser(cfg.Analysis.MaxRows), sessions, intake.WithLogger(logger))

	var ingested []*intake.Result
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		ingested, err = in.IngestDirectory(ctx, path, nil, recursive, models.SourceCLI)
		if err != nil {
			return nil, err
		}
		if len(ingested) == 0 {
			return nil, fmt.Errorf("no supported datasets in %s", path)
		}
	} else {
		res, err := in.IngestFile(ctx, path, models.SourceCLI)
		if err != nil {
			return nil, err
		}
		ingested = []*intake.Result{res}
	}

	d := analysis.NewDispatcher(sessions,
		analysis.WithLogger(logger),
		analysis.WithClusterSeed(cfg.Analysis.ClusterSeed),
		analysis.WithMaxIterations(cfg.Analysis.MaxIterations),
	)
	out := make([]fileAnalysis, 0, len(ingested))
	for _, res := range ingested {
		result, err := d.Analyze(ctx, res.SessionID, mode, viz)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", res.Dataset.Name, err)
		}
		out = append(out, fileAnalysis{File: res.Dataset.Name, Analysis: result})
	}
	return out, nil
}

// writeAnalyses prints a single analysis as-is; several get a per-file heading
// (text) or are wrapped in an array of {file, analysis} (json).
func writeAnalyses(w io.Writer, analyses []fileAnalysis, format cli.OutputFormat) error {
	if len(analyses) == 1 {
		return cli.WriteAnalysis(w, analyses[0].Analysis, format)
	}
	if format == cli.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analyses)
	}
	for i, a := range analyses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", a.File)
		if err := cli.WriteAnalysis(w, a.Analysis, format); err != nil {
			return err
		}
	}
	return nil
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	mode := fs.String("type", "descriptive", "analysis type: descriptive, correlation, clustering, prediction")
	viz := fs.String("viz", "auto", "visualization preference echoed in the result")
	outputFormat := fs.String("output", "text", "output format: text or json")
	recursive := fs.Bool("recursive", false, "when analyzing a directory, include subdirectories")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: autoeval analyze [flags] <file|directory>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	if *debug {
		if logger, err = utils.NewLogger(true); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	analyses, err := analyzePath(context.Background(), cfg, logger, fs.Arg(0), *mode, *viz, *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}
	if err := writeAnalyses(os.Stdout, analyses, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSummary() {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: autoeval summary [flags] <file>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	ds, err := ingest.NewParser(cfg.Analysis.MaxRows).ParseFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read dataset: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSummary(os.Stdout, ingest.Summarize(ds), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := writeStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (map[string]interface{}, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(serverURL, "/") + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var s map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return s, nil
}

// writeStatus prints top-level counters first, then the config block, each sorted by key.
func writeStatus(w io.Writer, status map[string]interface{}, format cli.OutputFormat) error {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	writeSorted := func(m map[string]interface{}) {
		keys := make([]string, 0, len(m))
		for k, v := range m {
			if _, nested := v.(map[string]interface{}); !nested && k != "status" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%-18s  %v\n", k+":", m[k])
		}
	}
	writeSorted(status)
	if cfg, ok := status["config"].(map[string]interface{}); ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		writeSorted(cfg)
	}
	return nil
}

func printUsage() {
	fmt.Println(`autoeval - Adaptive automated data evaluation

Usage:
  autoeval server [flags]            Start the HTTP server and web UI
  autoeval analyze [flags] <path>    Run one analysis on a CSV, Excel or JSON file, or on each in a directory
  autoeval summary [flags] <file>    Show columns, types, missing values and a preview
  autoeval status [flags]            Show live sessions and upload counts of a running server
  autoeval version                   Show version
  autoeval help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/autoeval/config.yaml)
  --debug            Enable debug logging

Analyze Flags:
  --type string      descriptive, correlation, clustering or prediction (default: descriptive)
  --viz string       Visualization preference (default: auto)
  --output string    Output format: text or json (default: text)
  --recursive        Include subdirectories when <path> is a directory
  --config string    Config file path (row limit, clustering seed)

Summary Flags:
  --output string    Output format: text or json (default: text)

Status Flags:
  --server string    Server URL (default: http://localhost:8000)
  --output string    Output format: text or json (default: text)

Examples:
  autoeval server
  autoeval summary sales.xlsx
  autoeval analyze -type correlation sales.csv
  autoeval analyze sales.csv -type clustering --output json
  autoeval analyze ./exports -type prediction
  autoeval status`)
}
