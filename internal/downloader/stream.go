package downloader

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/italolelis/baduk_downloader/internal/transfer"
)

// StreamOpener starts a transfer and returns once the response headers are in.
type StreamOpener interface {
	Open(ctx context.Context, url string) (*Stream, error)
}

// Stream is a transfer whose headers have arrived but whose body has not
// been consumed yet. It must be finished with Read until EOF or with Abort.
type Stream struct {
	URL           string
	Header        http.Header
	ContentLength int64

	body   io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
}

// NewStream wraps an opened body. cancel tears down the underlying request.
func NewStream(url string, header http.Header, contentLength int64, body io.ReadCloser, cancel context.CancelFunc) *Stream {
	if cancel == nil {
		cancel = func() {}
	}

	return &Stream{
		URL:           url,
		Header:        header,
		ContentLength: contentLength,
		body:          body,
		cancel:        cancel,
	}
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

// Abort cancels the request and releases the connection. It is safe to call
// more than once and after the body has been fully read.
func (s *Stream) Abort() {
	s.once.Do(func() {
		s.cancel()
		s.body.Close()
	})
}

// quotedFilenameRe accepts headers that mime.ParseMediaType rejects, such as
// unescaped spaces inside an otherwise quoted filename.
var quotedFilenameRe = regexp.MustCompile(`(?i)filename="(.*)"`)

// Filename returns the attachment name declared in Content-Disposition,
// reduced to its base name so it cannot escape the target directory.
func (s *Stream) Filename() (string, error) {
	const header = "Content-Disposition"

	value := s.Header.Get(header)
	if value == "" {
		return "", &transfer.MalformedResponseError{URL: s.URL, Header: header, Reason: "header is missing"}
	}

	var name string
	if _, params, err := mime.ParseMediaType(value); err == nil {
		name = params["filename"]
	}

	if name == "" {
		if m := quotedFilenameRe.FindStringSubmatch(value); m != nil {
			name = m[1]
		}
	}

	name = filepath.Base(filepath.Clean("/" + name))
	if name == "" || name == "/" || name == "." {
		return "", &transfer.MalformedResponseError{URL: s.URL, Header: header, Reason: "has no filename"}
	}

	return name, nil
}

// HTTPOpener opens streams with an HTTP client, typically one that carries
// the authenticated session.
type HTTPOpener struct {
	client *http.Client
}

func NewHTTPOpener(client *http.Client) *HTTPOpener {
	return &HTTPOpener{client: client}
}

func (o *HTTPOpener) Open(ctx context.Context, url string) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()

		return nil, &transfer.TransferError{URL: url, Err: err}
	}

	resp, err := o.client.Do(req)
	if err != nil {
		cancel()

		return nil, &transfer.TransferError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()

		return nil, &transfer.TransferError{URL: url, StatusCode: resp.StatusCode}
	}

	return NewStream(url, resp.Header, resp.ContentLength, resp.Body, cancel), nil
}
