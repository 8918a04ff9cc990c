// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	corpus "github.com/poiesic/corpus"
	"github.com/poiesic/corpus/config"
	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/search"
)

func main() {
	app := &cli.App{
		Name:  "corpus",
		Usage: "Content ingestion and vector index lifecycle for enterprise retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "Ingest content into the raw store",
				Subcommands: []*cli.Command{
					{
						Name:      "file",
						Usage:     "Ingest a single file (pdf, md, txt)",
						ArgsUsage: "<path>",
						Action:    ingestFileCommand,
					},
					{
						Name:      "files",
						Usage:     "Ingest multiple files in one run",
						ArgsUsage: "<path> [<path> ...]",
						Action:    ingestFilesCommand,
					},
					{
						Name:      "chat-export",
						Usage:     "Ingest a directory of exported chat thread JSON files",
						ArgsUsage: "<dir>",
						Action:    ingestChatExportCommand,
					},
				},
			},
			{
				Name:  "index",
				Usage: "Manage the vector index",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Create the index from all stored batches (fails if one exists)",
						Action: indexInitCommand,
					},
					{
						Name:   "update",
						Usage:  "Add all stored batches to the existing index (additive)",
						Action: indexUpdateCommand,
					},
					{
						Name:      "reindex",
						Usage:     "Re-add every batch of one source type (additive)",
						ArgsUsage: "<source-type>",
						Action:    indexReindexCommand,
					},
					{
						Name:   "rebuild",
						Usage:  "Back up, clear, and rebuild the index from scratch",
						Action: indexRebuildCommand,
					},
					{
						Name:   "info",
						Usage:  "Show index version and health",
						Action: indexInfoCommand,
					},
				},
			},
			{
				Name:      "history",
				Usage:     "Show ingestion run history",
				ArgsUsage: "[<source-type>]",
				Action:    historyCommand,
			},
			{
				Name:      "batches",
				Usage:     "List stored batches",
				ArgsUsage: "[<source-type>]",
				Action:    batchesCommand,
			},
			{
				Name:      "search",
				Usage:     "Query the index",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Restrict results to one source type",
					},
				},
				Action: searchCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	levelStr := cfg.LogLevel
	if c.IsSet("log-level") {
		levelStr = c.String("log-level")
	}
	if err := setupLogger(levelStr); err != nil {
		return err
	}

	c.App.Metadata = map[string]any{"config": cfg}
	return nil
}

func setupLogger(levelStr string) error {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func openCorpus(c *cli.Context) (*corpus.Corpus, error) {
	cfg := c.App.Metadata["config"].(*config.AppConfig)
	return corpus.Open(cfg)
}

func ingestFileCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file path")
	}

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	record, err := cp.Orchestrator().IngestFile(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	printRecord(record)
	return nil
}

func ingestFilesCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected at least one file path")
	}

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	record, err := cp.Orchestrator().IngestFiles(context.Background(), c.Args().Slice())
	if err != nil {
		return err
	}
	printRecord(record)
	return nil
}

func ingestChatExportCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one export directory")
	}

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	record, err := cp.Orchestrator().IngestChatExport(context.Background(), c.Args().First())
	if err != nil {
		return err
	}
	printRecord(record)
	return nil
}

func indexInitCommand(c *cli.Context) error {
	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	version, err := cp.Manager().Initialize(context.Background())
	if err != nil {
		return err
	}
	printVersion(version)
	return nil
}

func indexUpdateCommand(c *cli.Context) error {
	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	version, err := cp.Manager().Update(context.Background())
	if err != nil {
		return err
	}
	printVersion(version)
	return nil
}

func indexReindexCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one source type (chat, wiki, pdf, markdown, text)")
	}
	source, err := core.ParseSourceType(c.Args().First())
	if err != nil {
		return err
	}

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	version, err := cp.Manager().ReindexSource(context.Background(), source)
	if err != nil {
		return err
	}
	printVersion(version)
	return nil
}

func indexRebuildCommand(c *cli.Context) error {
	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	version, err := cp.Manager().Rebuild(context.Background())
	if err != nil {
		return err
	}
	printVersion(version)
	if version.BackupPath != "" {
		fmt.Printf("Backup: %s\n", version.BackupPath)
	}
	return nil
}

func indexInfoCommand(c *cli.Context) error {
	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	info, err := cp.Manager().Info(context.Background())
	if err != nil {
		return err
	}

	if info.Version == nil {
		fmt.Println("Index: not initialized")
		fmt.Printf("Provider chunks: %d\n", info.ProviderCount)
		return nil
	}

	printVersion(info.Version)
	fmt.Printf("Provider chunks: %d\n", info.ProviderCount)
	if info.Discrepancy {
		fmt.Println("WARNING: provider chunk count disagrees with the version record")
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	source, err := optionalSource(c)
	if err != nil {
		return err
	}

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	records, err := cp.Orchestrator().History(source)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No ingestion runs recorded.")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %-8s  %-9s  ingested=%d failed=%d bytes=%d",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.SourceType, r.Status,
			r.DocumentsIngested, r.DocumentsFailed, r.BytesProcessed)
		if len(r.SourceIdentifiers) > 0 {
			fmt.Printf("  %s", strings.Join(r.SourceIdentifiers, ","))
		}
		if r.ErrorMessage != "" {
			fmt.Printf("  error=%q", r.ErrorMessage)
		}
		fmt.Println()
	}
	return nil
}

func batchesCommand(c *cli.Context) error {
	source, err := optionalSource(c)
	if err != nil {
		return err
	}

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	var manifests []*core.BatchManifest
	if source == core.SourceTypeUnknown {
		for _, st := range core.KnownSourceTypes() {
			batch, err := cp.Orchestrator().Batches(st)
			if err != nil {
				return err
			}
			manifests = append(manifests, batch...)
		}
	} else {
		manifests, err = cp.Orchestrator().Batches(source)
		if err != nil {
			return err
		}
	}

	if len(manifests) == 0 {
		fmt.Println("No batches stored.")
		return nil
	}
	for _, m := range manifests {
		fmt.Printf("%-8s  %-30s  %d documents  created %s\n",
			m.SourceType, m.BatchID, len(m.Documents),
			m.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a query")
	}
	query := strings.Join(c.Args().Slice(), " ")

	cp, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer cp.Close()

	ctx := context.Background()
	limit := c.Int("limit")

	var results []*search.Result
	if c.IsSet("source") {
		source, err := core.ParseSourceType(c.String("source"))
		if err != nil {
			return err
		}
		results, err = cp.Searcher().SearchSource(ctx, query, source, limit)
		if err != nil {
			return err
		}
	} else {
		results, err = cp.Searcher().Search(ctx, query, limit)
		if err != nil {
			return err
		}
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Score, r.Attribution)
		fmt.Printf("   %s\n\n", excerpt(r.Chunk.Content, 200))
	}
	return nil
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func optionalSource(c *cli.Context) (core.SourceType, error) {
	if c.NArg() == 0 {
		return core.SourceTypeUnknown, nil
	}
	return core.ParseSourceType(c.Args().First())
}

func printRecord(r *core.IngestionRecord) {
	fmt.Printf("Run %s: %s\n", r.IngestionID, r.Status)
	fmt.Printf("  Source:    %s\n", r.SourceType)
	if r.BatchID != "" {
		fmt.Printf("  Batch:     %s\n", r.BatchID)
	}
	fmt.Printf("  Ingested:  %d\n", r.DocumentsIngested)
	if r.DocumentsFailed > 0 {
		fmt.Printf("  Failed:    %d\n", r.DocumentsFailed)
	}
	fmt.Printf("  Bytes:     %d\n", r.BytesProcessed)
}

func printVersion(v *core.IndexVersion) {
	fmt.Printf("Index version %d (%s)\n", v.Version, v.LastOperation)
	fmt.Printf("  Model:     %s\n", v.EmbeddingModel)
	fmt.Printf("  Chunks:    %d\n", v.DocumentCount)
	fmt.Printf("  Batches:   %d\n", len(v.BatchCounts))
	fmt.Printf("  Updated:   %s\n", v.LastUpdated.Format("2006-01-02 15:04:05"))
}
