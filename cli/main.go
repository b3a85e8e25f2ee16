package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"ytcomments/config"
	ythttp "ytcomments/http"
	"ytcomments/storage"
	"ytcomments/youtube"
	"ytcomments/youtube/innertube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "fetch":
		cmdFetch(args)
	case "runs":
		cmdRuns(args)
	case "show":
		cmdShow(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		// Assume it's a video ID for backward compatibility
		cmdFetch(os.Args[1:])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytcomments - YouTube comment thread extractor

Usage:
  ytcomments fetch [flags] <video-id>   Extract comments and metadata for a video
  ytcomments runs [flags] [video-id]    List archived extraction runs
  ytcomments show [flags] <run-id>      Print an archived run's comments
  ytcomments help                       Show this help message

Examples:
  ytcomments fetch dQw4w9WgXcQ                    # Extract to stdout as JSON
  ytcomments fetch dQw4w9WgXcQ --max-requests 10  # Cap pagination
  ytcomments fetch dQw4w9WgXcQ --db comments.db   # Archive the run
  ytcomments fetch dQw4w9WgXcQ --api              # Use the official Data API
  ytcomments runs --db comments.db dQw4w9WgXcQ    # Past runs for a video
  ytcomments show --db comments.db <run-id>       # Replay an archived run

For help on specific command: ytcomments <command> -h
`)
}

// fetchOutput is the JSON document the fetch command emits.
type fetchOutput struct {
	Video       *youtube.VideoInfo  `json:"video,omitempty"`
	RunID       string              `json:"run_id"`
	Comments    []youtube.Comment   `json:"comments"`
	Diagnostics youtube.Diagnostics `json:"diagnostics"`
}

func cmdFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	maxRequests := fs.Int("max-requests", 0, "Maximum comment pages fetched (0 = config default)")
	delay := fs.Duration("delay", 0, "Pacing delay between requests (0 = config default)")
	dbPath := fs.String("db", "", "Archive run into this SQLite database")
	outPath := fs.String("out", "", "Write JSON output to this file instead of stdout")
	useAPI := fs.Bool("api", false, "Use the official Data API (requires YTC_DATA_API_KEY)")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytcomments fetch [flags] <video-id>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing video-id\n")
		fs.Usage()
		os.Exit(1)
	}
	videoID := argv[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpCfg := ythttp.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.UserAgent = cfg.UserAgent
	httpCfg.RateLimiter.InnertubeRPS = cfg.InnertubeRPS
	httpCfg.RateLimiter.WatchPageRPS = cfg.WatchPageRPS
	httpClient := ythttp.New(httpCfg)
	defer httpClient.Close()

	var (
		source youtube.CommentSource
		info   *youtube.VideoInfo
	)

	if *useAPI {
		if cfg.DataAPIKey == "" {
			fmt.Fprintf(os.Stderr, "Error: --api requires YTC_DATA_API_KEY\n")
			os.Exit(1)
		}
		apiSource, err := youtube.NewAPICommentSource(cfg.DataAPIKey, 0, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating api source: %v\n", err)
			os.Exit(1)
		}
		source = apiSource
		if v, err := apiSource.FetchVideoInfo(ctx, videoID); err == nil {
			info = v
		} else {
			log.WithError(err).Warn("video metadata fetch failed")
		}
	} else {
		fetcher := youtube.NewPageFetcher(httpClient, youtube.WithPageLogger(log))
		page, err := fetcher.Fetch(ctx, videoID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching watch page: %v\n", err)
			os.Exit(1)
		}
		v := youtube.ExtractVideoInfo(page.InitialData, videoID)
		info = &v

		client := innertube.NewClient(httpClient,
			innertube.WithClientVersion(cfg.ClientVersion),
			innertube.WithLogger(log))
		source = innertube.NewCommentLister(httpClient,
			innertube.WithClient(client),
			innertube.WithPageFetcher(fetcher),
			innertube.WithListerLogger(log))
	}

	opts := &youtube.CommentOptions{
		MaxRequests:  pick(*maxRequests, cfg.MaxRequests),
		RequestDelay: pickDuration(*delay, cfg.RequestDelay),
	}
	if !*quiet {
		opts.OnProgress = func(p *youtube.PageProgress) error {
			fmt.Fprintf(os.Stderr, "\rpage %d: %d comments", p.RequestCount, p.CommentsRetrieved)
			if p.Complete {
				fmt.Fprintln(os.Stderr)
			}
			return nil
		}
	}

	result, err := source.Comments(ctx, videoID, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting comments: %v\n", err)
		os.Exit(1)
	}

	archivePath := *dbPath
	if archivePath == "" {
		archivePath = cfg.DBPath
	}
	if archivePath != "" {
		if err := archiveRun(ctx, archivePath, result, info, *useAPI); err != nil {
			fmt.Fprintf(os.Stderr, "Error archiving run: %v\n", err)
			os.Exit(1)
		}
		log.WithFields(logrus.Fields{
			"run_id": result.RunID,
			"db":     archivePath,
		}).Info("run archived")
	}

	out := fetchOutput{
		Video:       info,
		RunID:       result.RunID,
		Comments:    result.Comments,
		Diagnostics: result.Diagnostics,
	}
	dst := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		dst = f
	}
	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func archiveRun(ctx context.Context, path string, result *youtube.CommentResult, info *youtube.VideoInfo, usedAPI bool) error {
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sourceName := "innertube"
	if usedAPI {
		sourceName = "data_api"
	}
	run := &storage.ExtractionRun{
		ID:             result.RunID,
		VideoID:        result.VideoID,
		Source:         sourceName,
		SyntheticToken: result.Diagnostics.SyntheticToken,
		CreatedAt:      time.Now().UTC(),
	}
	return store.SaveRun(ctx, run, info, result.Comments)
}

func cmdRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "", "Archive database to read")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytcomments runs [flags] [video-id]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	store := openStore(*dbPath)
	defer store.Close()

	videoID := ""
	if argv := fs.Args(); len(argv) > 0 {
		videoID = argv[0]
	}

	runs, err := store.ListRuns(context.Background(), videoID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tVIDEO\tSOURCE\tCOMMENTS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.VideoID, r.Source, r.CommentCount, r.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
}

func cmdShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dbPath := fs.String("db", "", "Archive database to read")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytcomments show [flags] <run-id>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing run-id\n")
		fs.Usage()
		os.Exit(1)
	}
	runID := argv[0]

	store := openStore(*dbPath)
	defer store.Close()

	ctx := context.Background()
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
		os.Exit(1)
	}
	comments, err := store.GetComments(ctx, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading comments: %v\n", err)
		os.Exit(1)
	}

	var info *youtube.VideoInfo
	if v, err := store.GetVideo(ctx, run.VideoID); err == nil {
		info = v
	}

	out := fetchOutput{
		Video:    info,
		RunID:    run.ID,
		Comments: comments,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func openStore(dbPath string) *storage.SQLiteStore {
	if dbPath == "" {
		cfg, err := config.Load()
		if err == nil {
			dbPath = cfg.DBPath
		}
	}
	if dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: no archive database (use --db or YTC_DB_PATH)\n")
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive: %v\n", err)
		os.Exit(1)
	}
	return store
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

func pick(flagVal, cfgVal int) int {
	if flagVal > 0 {
		return flagVal
	}
	return cfgVal
}

func pickDuration(flagVal, cfgVal time.Duration) time.Duration {
	if flagVal > 0 {
		return flagVal
	}
	return cfgVal
}
