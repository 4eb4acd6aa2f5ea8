package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/gops/agent"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/quality"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/service"
	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/store"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "chunk":
		chunkCmd(os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "chunks":
		chunksCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: newspipe <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  chunk    Chunk a corpus location and write chunks + report")
	fmt.Fprintln(os.Stderr, "  runs     List cataloged runs")
	fmt.Fprintln(os.Stderr, "  chunks   Show cataloged chunks of one document")
	fmt.Fprintln(os.Stderr, "  inspect  Score a text and print the signal breakdown")
}

func chunkCmd(args []string) {
	flags := flag.NewFlagSet("chunk", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	location := flags.String("corpus", "", "corpus location (overrides config)")
	targetLength := flags.Int("target-length", 0, "chunk target length in characters")
	overlap := flags.Int("overlap", -1, "chunk overlap in characters")
	minScore := flags.Float64("min-score", -1, "minimum quality score")
	minLength := flags.Int("min-length", -1, "minimum chunk length")
	maxNoise := flags.Float64("max-noise", -1, "maximum noise ratio")
	dedupWindow := flags.Int("dedup-window", -1, "near-duplicate window size")
	concurrency := flags.Int("concurrency", 0, "worker count (0 = GOMAXPROCS)")
	include := flags.String("include", "", "comma-separated include patterns")
	exclude := flags.String("exclude", "", "comma-separated exclude patterns")
	maxSize := flags.Int64("max-size", 0, "max file size in bytes")
	chunksURL := flags.String("chunks", "", "chunks jsonl destination")
	reportURL := flags.String("report", "", "report json destination")
	reportCSV := flags.String("report-csv", "", "report csv destination")
	reportXLSX := flags.String("report-xlsx", "", "report xlsx destination")
	snapshot := flags.String("snapshot", "", "binary snapshot destination")
	catalogDSN := flags.String("catalog", "", "sqlite catalog path")
	progress := flags.Bool("progress", false, "show run progress")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := service.DefaultConfig()
	if *configPath != "" {
		loaded, err := service.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = *loaded
	}
	if *location != "" {
		cfg.Corpus.Location = *location
	}
	if *targetLength > 0 {
		cfg.Chunking.TargetLength = *targetLength
	}
	if *overlap >= 0 {
		cfg.Chunking.Overlap = *overlap
	}
	if *minScore >= 0 {
		cfg.Quality.Thresholds.MinScore = *minScore
	}
	if *minLength >= 0 {
		cfg.Quality.Thresholds.MinLength = *minLength
	}
	if *maxNoise >= 0 {
		cfg.Quality.Thresholds.MaxNoiseRatio = *maxNoise
	}
	if *dedupWindow >= 0 {
		cfg.Quality.Thresholds.DedupWindow = *dedupWindow
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}
	if patterns := parseCSV(*include); len(patterns) > 0 {
		cfg.Corpus.Include = patterns
	}
	if patterns := parseCSV(*exclude); len(patterns) > 0 {
		cfg.Corpus.Exclude = patterns
	}
	if *maxSize > 0 {
		cfg.Corpus.MaxSizeBytes = *maxSize
	}
	for flagValue, target := range map[*string]*string{
		chunksURL:  &cfg.Output.Chunks,
		reportURL:  &cfg.Output.Report,
		reportCSV:  &cfg.Output.ReportCSV,
		reportXLSX: &cfg.Output.ReportXLSX,
		snapshot:   &cfg.Output.Snapshot,
		catalogDSN: &cfg.Output.CatalogDSN,
	} {
		if *flagValue != "" {
			*target = *flagValue
		}
	}

	svc := service.New()
	response, err := svc.Chunk(ctx, service.ChunkRequest{
		Config:   cfg,
		Logf:     log.Printf,
		Progress: progressPrinter(*progress),
	})
	if err != nil {
		log.Fatalf("chunk: %v", err)
	}
	report := response.Report
	fmt.Printf("documents=%d candidates=%d accepted=%d rejected=%d avg_score=%.3f\n",
		report.Documents, report.Candidates, report.Accepted, report.Rejected, report.Scores.Avg)
}

func runsCmd(args []string) {
	flags := flag.NewFlagSet("runs", flag.ExitOnError)
	catalogDSN := flags.String("catalog", "", "sqlite catalog path (required)")
	flags.Parse(args)
	if *catalogDSN == "" {
		log.Fatalf("runs: --catalog is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := store.OpenCatalog(*catalogDSN)
	if err != nil {
		log.Fatalf("runs: %v", err)
	}
	defer catalog.Close()

	runs, err := catalog.Runs(ctx)
	if err != nil {
		log.Fatalf("runs: %v", err)
	}
	for _, run := range runs {
		fmt.Printf("run=%d location=%s documents=%d accepted=%d rejected=%d avg_score=%.3f created=%s\n",
			run.ID, run.Location, run.Documents, run.Accepted, run.Rejected, run.ScoreAvg,
			run.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func chunksCmd(args []string) {
	flags := flag.NewFlagSet("chunks", flag.ExitOnError)
	catalogDSN := flags.String("catalog", "", "sqlite catalog path (required)")
	runID := flags.Int64("run", 0, "run id (required)")
	documentID := flags.String("document", "", "document id (required)")
	full := flags.Bool("full", false, "print chunk text")
	flags.Parse(args)
	if *catalogDSN == "" || *runID == 0 || *documentID == "" {
		log.Fatalf("chunks: --catalog, --run and --document are required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := store.OpenCatalog(*catalogDSN)
	if err != nil {
		log.Fatalf("chunks: %v", err)
	}
	defer catalog.Close()

	chunks, err := catalog.DocumentChunks(ctx, *runID, *documentID)
	if err != nil {
		log.Fatalf("chunks: %v", err)
	}
	for _, chunk := range chunks {
		fmt.Printf("chunk=%s span=[%d,%d) score=%.3f tokens=%d\n",
			chunk.ChunkID, chunk.Start, chunk.End, chunk.Score, chunk.Tokens)
		if *full {
			fmt.Println(chunk.Text)
		}
	}
}

func inspectCmd(args []string) {
	flags := flag.NewFlagSet("inspect", flag.ExitOnError)
	text := flags.String("text", "", "text to score")
	file := flags.String("file", "", "file to score instead of --text")
	targetLength := flags.Int("target-length", 0, "chunk target length in characters")
	flags.Parse(args)

	input := *text
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("inspect: %v", err)
		}
		input = string(data)
	}
	if input == "" {
		log.Fatalf("inspect: --text or --file is required")
	}

	svc := service.New()
	scored, err := svc.Score(service.ScoreRequest{
		Text:         input,
		TargetLength: *targetLength,
		Weights:      quality.DefaultWeights(),
	})
	if err != nil {
		log.Fatalf("inspect: %v", err)
	}
	out, _ := json.MarshalIndent(struct {
		Score   float64     `json:"quality_score"`
		Signals interface{} `json:"signals"`
	}{Score: scored.Score, Signals: scored.Signals}, "", "  ")
	fmt.Println(string(out))
}

func parseCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func progressPrinter(enabled bool) func(phase string, done, total int) {
	if !enabled {
		return nil
	}
	return func(phase string, done, total int) {
		fmt.Fprintf(os.Stderr, "%s %d/%d\n", phase, done, total)
	}
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
