package progress

import (
	"errors"
	"io"
)

// Reader wraps an io.Reader and reports how many bytes went through it. The
// callback fires every interval bytes and once more when the stream ends.
type Reader struct {
	Reader     io.Reader
	Total      int64 // expected size, <= 0 when unknown
	OnProgress func(written int64, total int64)

	totalRead      int64 // cumulative total
	lastReport     int64 // bytes since last report
	reportInterval int64 // bytes
	finished       bool
}

func NewReader(r io.Reader, total int64, interval int64, cb func(written int64, total int64)) *Reader {
	return &Reader{
		Reader:         r,
		Total:          total,
		OnProgress:     cb,
		reportInterval: interval,
	}
}

func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	if n > 0 {
		pr.totalRead += int64(n)
		pr.lastReport += int64(n)

		if pr.reportInterval > 0 && pr.lastReport >= pr.reportInterval {
			pr.report()
		}
	}

	if errors.Is(err, io.EOF) && !pr.finished {
		pr.finished = true
		if pr.lastReport > 0 {
			pr.report()
		}
	}

	return n, err
}

// Written returns the number of bytes read so far.
func (pr *Reader) Written() int64 {
	return pr.totalRead
}

func (pr *Reader) report() {
	pr.lastReport = 0
	if pr.OnProgress != nil {
		pr.OnProgress(pr.totalRead, pr.Total)
	}
}
