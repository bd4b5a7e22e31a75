// cmd/docproc/main.go
//
// One-shot document processing CLI. Runs PDFs through the extraction
// pipeline without going through the job queue, which makes it the
// tool of choice for backfills and for debugging a single document.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bilalmachraa82/propdocs/internal/adapters/db"
	"github.com/bilalmachraa82/propdocs/internal/adapters/gemini"
	"github.com/bilalmachraa82/propdocs/internal/adapters/pdf"
	"github.com/bilalmachraa82/propdocs/internal/core/extract"
	"github.com/bilalmachraa82/propdocs/internal/core/match"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
	"github.com/bilalmachraa82/propdocs/internal/core/services"
	"github.com/bilalmachraa82/propdocs/internal/pkg/config"
	"github.com/bilalmachraa82/propdocs/internal/pkg/logger"
)

func main() {
	var (
		file     = flag.String("file", "", "Single PDF to process")
		dir      = flag.String("dir", "", "Directory of PDFs to process")
		persist  = flag.Bool("persist", false, "Save extracted reservations to the database")
		pretty   = flag.Bool("pretty", false, "Indent the JSON output")
		logLevel = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *file == "" && *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: docproc -file reservation.pdf | -dir ./inbox [-persist]")
		os.Exit(2)
	}

	slogger := logger.SetupLogger(*logLevel, "text")

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxConnections:  4,
		MinConnections:  1,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	}, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	pipeline := buildPipeline(cfg, database, slogger)

	files, err := collectFiles(*file, *dir)
	if err != nil {
		slogger.Error("failed to collect input files", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no PDF files found")
		os.Exit(1)
	}

	var succeeded, failed int
	for i, path := range files {
		if len(files) > 1 {
			fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(files), filepath.Base(path))
		}

		result := pipeline.Process(ctx, ports.ProcessParams{
			FilePath: path,
			Filename: filepath.Base(path),
			Persist:  *persist,
		})

		if result.Success {
			succeeded++
		} else {
			failed++
		}

		printResult(path, result, *pretty)
	}

	if len(files) > 1 {
		fmt.Printf("\nProcessed: %d  Succeeded: %d  Failed: %d\n", len(files), succeeded, failed)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// buildPipeline assembles the pipeline without a cache; one-shot runs
// have no cache to warm.
func buildPipeline(cfg *config.Config, database *db.Database, slogger *slog.Logger) *services.DocumentPipeline {
	textExtractor := pdf.NewExtractor(cfg.Pipeline.MinTextLength, slogger)

	llm := gemini.NewClient(gemini.Config{
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		CallTimeout:       cfg.LLM.CallTimeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	}, slogger)

	manualCfg := extract.DefaultManualConfig()
	manualCfg.Denylist = append(manualCfg.Denylist, cfg.Pipeline.ExtraDenylist...)
	manual := extract.NewManualExtractor(manualCfg, slogger)

	extractor := extract.NewStructuredExtractor(llm, manual, extract.ExtractorConfig{
		BasePromptLength: cfg.Pipeline.BasePromptLength,
		MinPromptLength:  cfg.Pipeline.MinPromptLength,
		MaxAttempts:      cfg.Pipeline.MaxAttempts,
		MaxOutputTokens:  cfg.Pipeline.MaxOutputTokens,
		Temperature:      cfg.Pipeline.Temperature,
	}, slogger)

	matcher := match.New(match.Config{
		AcceptThreshold:   cfg.Pipeline.AcceptThreshold,
		FlexibleThreshold: cfg.Pipeline.FlexibleThreshold,
		FlexibleWordRatio: cfg.Pipeline.FlexibleWordRatio,
	}, slogger)

	return services.NewDocumentPipeline(
		textExtractor,
		extractor,
		services.NewValidator(slogger),
		services.NewAssembler(slogger),
		matcher,
		db.NewPropertyRepository(database, slogger),
		db.NewReservationRepository(database, slogger),
		nil,
		services.PipelineConfig{CacheTTL: cfg.Pipeline.CacheTTL},
		slogger,
	)
}

func collectFiles(file, dir string) ([]string, error) {
	if file != "" {
		return []string{file}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func printResult(path string, result ports.ProcessResult, pretty bool) {
	out := struct {
		File string `json:"file"`
		ports.ProcessResult
	}{File: filepath.Base(path), ProcessResult: result}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to encode result for %s: %v\n", path, err)
		return
	}
	fmt.Println(string(data))
}
