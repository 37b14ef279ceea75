package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/italolelis/baduk_downloader/internal/transfer"
	"github.com/schollz/progressbar/v3"
)

// Bar renders episode progress as a terminal bar.
type Bar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

func (b *Bar) Start(_ context.Context, total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription("episodes"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(b.out) }),
	)

	_ = b.bar.RenderBlank()
}

func (b *Bar) Advance(_ context.Context, _ transfer.Episode, _ transfer.State) {
	if b.bar == nil {
		return
	}

	_ = b.bar.Add(1)
}

// Log reports episode progress through the structured logger, for runs
// without a terminal attached.
type Log struct {
	logger  *slog.Logger
	total   int
	current int
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Start(ctx context.Context, total int) {
	l.total = total
	l.current = 0

	l.logger.InfoContext(ctx, "episode progress", "current", l.current, "total", l.total)
}

func (l *Log) Advance(ctx context.Context, ep transfer.Episode, state transfer.State) {
	l.current++

	l.logger.InfoContext(ctx, "episode progress",
		"current", l.current,
		"total", l.total,
		"episode_slug", ep.Slug,
		"state", state,
	)
}
