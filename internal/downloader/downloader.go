package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/baduk_downloader/internal/downloader/progress"
	"github.com/italolelis/baduk_downloader/internal/logctx"
	"github.com/italolelis/baduk_downloader/internal/telemetry"
	"github.com/italolelis/baduk_downloader/internal/transfer"
)

const (
	dirPerm  = 0755
	filePerm = 0644

	progressInterval = int64(50 * 1024 * 1024) // 50MB
)

// Downloader streams remote files into local directories without ever
// overwriting a file that is already there.
type Downloader struct {
	opener    StreamOpener
	telemetry *telemetry.Telemetry
}

var _ transfer.Fetcher = (*Downloader)(nil)

func NewDownloader(opener StreamOpener, tel *telemetry.Telemetry) *Downloader {
	return &Downloader{
		opener:    opener,
		telemetry: tel,
	}
}

// Fetch downloads target into target.Dir and returns the absolute path of the
// file. With an explicit filename an existing file short-circuits before any
// request is made. Without one the request is opened first, the name is read
// from Content-Disposition, and the transfer is aborted if that file exists.
func (d *Downloader) Fetch(ctx context.Context, target transfer.Target) (string, error) {
	logger := logctx.LoggerFromContext(ctx).With("url", target.URL)

	dir, err := filepath.Abs(target.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target directory: %w", err)
	}

	if err := d.ensureTargetDir(ctx, dir, logger); err != nil {
		return "", err
	}

	if target.Filename != "" {
		path := filepath.Join(dir, target.Filename)
		if pathExists(path) {
			logger.DebugContext(ctx, "file already downloaded", "file_path", path)

			return path, nil
		}
	}

	stream, err := d.opener.Open(ctx, target.URL)
	if err != nil {
		return "", err
	}
	defer stream.Abort()

	name := target.Filename
	if name == "" {
		name, err = stream.Filename()
		if err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, name)
	if pathExists(path) {
		stream.Abort()
		logger.DebugContext(ctx, "file already downloaded, transfer aborted", "file_path", path)

		return path, nil
	}

	written, err := d.writeFile(ctx, stream, path)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			logger.DebugContext(ctx, "file appeared before write, transfer aborted", "file_path", path)

			return path, nil
		}

		return "", err
	}

	d.telemetry.RecordBytes(ctx, written)

	logger.InfoContext(ctx, "downloaded and saved file", "target", path, "size", humanize.Bytes(uint64(written)))

	return path, nil
}

func (d *Downloader) ensureTargetDir(ctx context.Context, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		logger.ErrorContext(ctx, "failed to create target directory", "dir", dir, "err", err)

		return fmt.Errorf("failed to create target directory: %w", err)
	}

	return nil
}

// writeFile commits the stream to path. The file is created exclusively; a
// failure while copying leaves whatever was written so far on disk.
func (d *Downloader) writeFile(ctx context.Context, stream *Stream, path string) (int64, error) {
	logger := logctx.LoggerFromContext(ctx)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, err
		}

		return 0, fmt.Errorf("failed to create target file: %w", err)
	}
	defer out.Close()

	if stream.ContentLength > 0 {
		logger.InfoContext(ctx, "downloading file", "file_path", path, "file_size", humanize.Bytes(uint64(stream.ContentLength)))
	} else {
		logger.InfoContext(ctx, "downloading file", "file_path", path)
	}

	progressCb := func(written int64, total int64) {
		if total > 0 {
			logger.DebugContext(ctx, "download progress",
				"file_path", path,
				"downloaded", humanize.Bytes(uint64(written)),
				"total", humanize.Bytes(uint64(total)),
				"percent", humanize.FtoaWithDigits(float64(written)*100/float64(total), 2))
		} else {
			logger.DebugContext(ctx, "download progress", "file_path", path, "downloaded", humanize.Bytes(uint64(written)))
		}
	}
	pr := progress.NewReader(stream, stream.ContentLength, progressInterval, progressCb)

	if _, err := io.Copy(out, pr); err != nil {
		logger.ErrorContext(ctx, "transfer interrupted, partial file left on disk", "file_path", path, "written", pr.Written(), "err", err)

		return pr.Written(), &transfer.TransferError{URL: stream.URL, Path: path, Err: err}
	}

	if err := out.Close(); err != nil {
		return pr.Written(), &transfer.TransferError{URL: stream.URL, Path: path, Err: err}
	}

	return pr.Written(), nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
