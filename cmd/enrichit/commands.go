package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/poiesic/enrichit"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/index/meili"
	"github.com/poiesic/enrichit/queue"
	"github.com/poiesic/enrichit/status"
	"github.com/poiesic/enrichit/storage"
	"github.com/poiesic/enrichit/storage/badger"
	"github.com/poiesic/enrichit/storage/blob"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Consume enrichment messages and serve signed blobs and metrics",
		Action: serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address (defaults to server.addr)",
			},
			&cli.IntFlag{
				Name:  "pool-size",
				Usage: "Number of images processed concurrently (defaults to pipeline.pool_size)",
			},
		},
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("pool-size") {
		cfg.Pipeline.PoolSize = c.Int("pool-size")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := enrichit.NewService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	pipeline, err := svc.NewPipeline()
	if err != nil {
		return err
	}
	dispatcher, err := svc.NewDispatcher(pipeline)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	mux := http.NewServeMux()
	mux.Handle("/blobs/", blob.NewHandler(svc.Blobs()))
	mux.Handle("/metrics", promhttp.HandlerFor(svc.Registry(), promhttp.HandlerOpts{Registry: svc.Registry()}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	consumer, err := svc.ConnectQueue(ctx)
	if err != nil {
		server.Close()
		return err
	}
	if err := consumer.Start(ctx, dispatcher); err != nil {
		consumer.Close()
		server.Close()
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}
	stop()

	// Stop deliveries first, let running jobs finish and ack, then close the
	// connection that carries the acks.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := consumer.Stop(shutdownCtx); err != nil {
		slog.Error("error draining subscription", "err", err)
	}
	dispatcher.Wait()
	if err := consumer.Close(); err != nil {
		slog.Error("error closing queue connection", "err", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func enrichCommand() *cli.Command {
	return &cli.Command{
		Name:      "enrich",
		Usage:     "Enrich blobs directly, bypassing the queue",
		ArgsUsage: "<blob-path>...",
		Action:    enrichAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Report progress every N images",
				Value: 1,
			},
		},
	}
}

func enrichAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one blob path is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	svc, err := enrichit.NewService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	pipeline, err := svc.NewPipeline()
	if err != nil {
		return err
	}

	paths := c.Args().Slice()
	progress := NewProgressTracker(c.App.ErrWriter, len(paths), c.Int("report-interval"))
	progress.Start()

	for _, path := range paths {
		job := core.EnrichmentJob{BlobPath: path, BlobURI: cfg.Storage.PublicURL + "/blobs/" + path}
		if err := core.ValidateJob(&job); err != nil {
			slog.Error("skipping blob", "blob", path, "err", err)
			progress.Increment(false)
			continue
		}
		out := pipeline.Process(c.Context, job)
		if !out.Succeeded() {
			slog.Error("enrichment incomplete", "blob", path, "run_id", out.RunID, "err", out.Err())
		}
		progress.Increment(out.Succeeded())
	}
	progress.Finish()

	if failed := progress.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func enqueueCommand() *cli.Command {
	return &cli.Command{
		Name:      "enqueue",
		Usage:     "Publish enrichment messages for blobs",
		ArgsUsage: "<blob-path>...",
		Action:    enqueueAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "uri",
				Usage: "Blob URI recorded in the index (single blob only)",
			},
		},
	}
}

func enqueueAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one blob path is required")
	}
	if c.IsSet("uri") && c.NArg() > 1 {
		return errors.New("--uri can only be used with a single blob path")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	jobs := make([]core.EnrichmentJob, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		uri := c.String("uri")
		if uri == "" {
			uri = cfg.Storage.PublicURL + "/blobs/" + path
		}
		job := core.EnrichmentJob{BlobPath: path, BlobURI: uri}
		if err := core.ValidateJob(&job); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		jobs = append(jobs, job)
	}

	consumer, err := queue.ConnectNATS(c.Context, cfg.NATSConfig(), slog.Default())
	if err != nil {
		return err
	}
	defer consumer.Close()

	for _, job := range jobs {
		if err := consumer.Publish(c.Context, job); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "enqueued %s\n", job.BlobPath)
	}
	return nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Query the image search index",
		ArgsUsage: "<query>...",
		Action:    searchAction,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of hits",
				Value:   5,
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: `Meilisearch filter expression, e.g. 'folder = "photos"'`,
			},
		},
	}
}

func searchAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("a search query is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	indexer, err := meili.NewIndexer(cfg.Meilisearch.Host, cfg.Meilisearch.Key, cfg.Meilisearch.Index)
	if err != nil {
		return err
	}

	hits, err := indexer.Search(c.Context, strings.Join(c.Args().Slice(), " "), c.Int64("limit"), c.String("filter"))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Fprintf(c.App.Writer, "%d: %s [%s] tags=%v\n", i, hit.FileName, hit.ChunkFile, hit.Tags)
	}
	return nil
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the status timeline for a blob, or list all blobs",
		ArgsUsage: "[blob-path]",
		Action:    statusAction,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print records as JSON",
			},
		},
	}
}

func statusAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(cfg.Storage.StatusDir, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	repo, err := badger.NewStatusRepository(backend)
	if err != nil {
		return err
	}
	recorder := status.NewRecorder(repo)

	if c.NArg() > 0 {
		record, err := recorder.Get(c.Context, c.Args().First())
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no status recorded for %s", c.Args().First())
		}
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(c.App.Writer, record)
		}
		printRecord(c.App.Writer, record)
		return nil
	}

	records, err := recorder.List(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, records)
	}
	printRecords(c.App.Writer, records)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecord(w io.Writer, record *core.StatusRecord) {
	fmt.Fprintf(w, "Document: %s\n", record.DocumentKey)
	fmt.Fprintf(w, "State:    %s\n", record.State)
	fmt.Fprintf(w, "Tags:     %v\n", record.Tags)
	fmt.Fprintf(w, "Started:  %s\n", record.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Updated:  %s\n", record.UpdatedAt.Format(time.RFC3339))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nTIME\tCLASS\tSTATE\tMESSAGE")
	for _, e := range record.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Classification, e.State, e.Message)
	}
	tw.Flush()
}

func printRecords(w io.Writer, records []*core.StatusRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tSTATE\tEVENTS\tUPDATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.DocumentKey, r.State, len(r.Events), r.UpdatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}
