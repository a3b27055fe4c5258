package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"topicviz/internal/classifier"
	"topicviz/internal/config"
	"topicviz/internal/domain"
	"topicviz/internal/indexer"
	"topicviz/internal/output"
	"topicviz/internal/service"
	"topicviz/internal/summarizer"
	"topicviz/internal/table"
	"topicviz/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath   string
		dataDir   string
		listOnly  bool
		tableMode bool
		modelID   string
		kval      string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/topicviz/config.yaml if not provided)")
	flag.StringVar(&dataDir, "data", "", "Data directory (overrides config and "+config.DataDirEnv+")")
	flag.BoolVar(&listOnly, "list", false, "Print indexed model/k selections and exit")
	flag.BoolVar(&tableMode, "table", false, "Print the aggregated table for -model/-k and exit")
	flag.StringVar(&modelID, "model", "", "Model id for -table, e.g. positiveUHC")
	flag.StringVar(&kval, "k", "", "k value for -table")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	logger, closer, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	code := run(cfg, logger, listOnly, tableMode, modelID, kval)
	_ = closer.Close()
	if code != 0 {
		os.Exit(code)
	}
}

// run does the work of main and returns the process exit code, so the log
// file is closed on every path.
func run(cfg *config.AppConfig, logger *slog.Logger, listOnly, tableMode bool, modelID, kval string) int {
	cls := classifier.NewFilenameClassifier(cfg.Index.Models, logger)
	builder := indexer.NewBuilder(cls, indexer.Options{
		DocumentMarker: cfg.Index.DocumentMarker,
		LabelMarker:    cfg.Index.LabelMarker,
	}, logger)
	idx, err := builder.Build(cfg.DataDir)
	if err != nil {
		logger.Error("index failed", "error", err)
		fmt.Fprintf(os.Stderr, "index failed: %v\n", err)
		return 1
	}

	svc := service.NewDashboardService(idx, table.LabelOptions{
		MaxWords: cfg.Labels.MaxWords,
		Unknown:  cfg.Labels.Unknown,
	}, summarizer.NewFrequencySummarizer(), logger)

	switch {
	case listOnly:
		if err := output.WriteIndex(os.Stdout, idx.Keys(), idx.Lookup); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case tableMode:
		ds, err := svc.Aggregate(modelID, kval)
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Println("No data found.")
			return 1
		}
		if err != nil {
			logger.Error("aggregate failed", "model_id", modelID, "k", kval, "error", err)
			fmt.Fprintf(os.Stderr, "aggregate failed: %v\n", err)
			return 1
		}
		if err := output.WriteAggregated(os.Stdout, ds.Aggregated); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	m := tui.New(svc, cfg.Chart.Width)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("tui exited", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
