package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/italolelis/baduk_downloader/internal/logctx"
	"github.com/italolelis/baduk_downloader/internal/telemetry"
	"github.com/italolelis/baduk_downloader/internal/transfer"
)

// ProgressSink observes the run. Start is called once before any episode is
// processed; Advance once per skipped or completed episode. Implementations
// must not block.
type ProgressSink interface {
	Start(ctx context.Context, total int)
	Advance(ctx context.Context, episode transfer.Episode, state transfer.State)
}

// Summary counts what a run did.
type Summary struct {
	Total   int
	Skipped int
	Done    int
	// Files counts resources handled in done episodes, including files
	// that were already on disk.
	Files int
}

// Pipeline downloads episodes one after the other into root/<slug>.
type Pipeline struct {
	root         string
	extractor    transfer.ResourceExtractor
	fetcher      transfer.Fetcher
	progress     ProgressSink
	telemetry    *telemetry.Telemetry
	skipExisting bool

	summary Summary
}

type Option func(*Pipeline)

// WithSkipExisting controls whether an existing episode directory skips the episode. Defaults to true.
func WithSkipExisting(skip bool) Option {
	return func(p *Pipeline) { p.skipExisting = skip }
}

func WithProgress(sink ProgressSink) Option {
	return func(p *Pipeline) { p.progress = sink }
}

func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(p *Pipeline) { p.telemetry = tel }
}

func New(root string, extractor transfer.ResourceExtractor, fetcher transfer.Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		root:         root,
		extractor:    extractor,
		fetcher:      fetcher,
		progress:     noopSink{},
		skipExisting: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Summary returns the counters of the last Run.
func (p *Pipeline) Summary() Summary {
	return p.summary
}

// Run processes episodes in order and stops at the first error. Episodes
// finished before the failure stay on disk and are skipped next time.
func (p *Pipeline) Run(ctx context.Context, episodes []transfer.Episode) error {
	logger := logctx.LoggerFromContext(ctx)

	p.summary = Summary{Total: len(episodes)}
	p.progress.Start(ctx, len(episodes))

	logger.InfoContext(ctx, "processing episodes", "total", len(episodes), "root", p.root, "skip_existing", p.skipExisting)

	for _, episode := range episodes {
		state, err := p.runEpisode(ctx, episode)

		p.telemetry.RecordEpisode(ctx, string(state))

		if err != nil {
			logger.ErrorContext(ctx, "episode failed", "episode_name", episode.Name, "episode_slug", episode.Slug, "err", err)

			return fmt.Errorf("episode %q: %w", episode.Name, err)
		}

		switch state {
		case transfer.StateSkipped:
			p.summary.Skipped++
		case transfer.StateDone:
			p.summary.Done++
		}

		p.progress.Advance(ctx, episode, state)
	}

	logger.InfoContext(ctx, "all episodes processed",
		"total", p.summary.Total,
		"done", p.summary.Done,
		"skipped", p.summary.Skipped,
		"files", p.summary.Files,
	)

	return nil
}

func (p *Pipeline) runEpisode(ctx context.Context, episode transfer.Episode) (transfer.State, error) {
	logger := logctx.LoggerFromContext(ctx).With("episode_slug", episode.Slug)
	destination := filepath.Join(p.root, episode.Slug)

	if p.skipExisting && pathExists(destination) {
		logger.InfoContext(ctx, "episode already downloaded, skipping", "destination", destination)

		return transfer.StateSkipped, nil
	}

	state := transfer.StateExtracting

	err := p.telemetry.InstrumentOperation(ctx, "episode", "pipeline", func(ctx context.Context) error {
		ctx = logctx.WithLogger(ctx, logger)

		logger.DebugContext(ctx, "extracting resources", "url", episode.URL)

		resources, err := p.extractor.ExtractResources(ctx, episode.URL)
		if err != nil {
			return fmt.Errorf("failed to extract resources: %w", err)
		}

		state = transfer.StateDownloading
		logger.InfoContext(ctx, "downloading episode", "name", episode.Name, "resources", len(resources))

		for _, resource := range resources {
			target := resource.TargetFor(destination)

			err := p.telemetry.InstrumentResource(ctx, string(resource.Category), func(ctx context.Context) error {
				_, err := p.fetcher.Fetch(ctx, target)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to download %s resource: %w", resource.Category, err)
			}

			p.summary.Files++
		}

		return nil
	})
	if err != nil {
		logger.DebugContext(ctx, "episode aborted", "state", state)

		return transfer.StateFailed, err
	}

	return transfer.StateDone, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

type noopSink struct{}

func (noopSink) Start(context.Context, int) {}
func (noopSink) Advance(context.Context, transfer.Episode, transfer.State) {}
