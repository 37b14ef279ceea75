package transfer

import "fmt"

// AuthenticationError represents a rejected login, either because the site
// refused the credentials or because the login form could not be prepared.
type AuthenticationError struct {
	Operation string // The step that failed (e.g., "login_form", "login")
	Reason    string // Human-readable explanation
	Err       error  // Underlying error, if any
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed during %s: %s", e.Operation, e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// FetchError represents a page that could not be retrieved, either because of
// a transport failure or a non-2xx response.
type FetchError struct {
	URL        string // The page that was requested
	StatusCode int    // HTTP status code, if applicable (0 for non-HTTP errors)
	Err        error  // Underlying error, if any
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("failed to fetch %s (HTTP %d)", e.URL, e.StatusCode)
	}

	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("failed to fetch %s", e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedResponseError represents a response that lacks information the
// downloader needs, such as the attachment filename.
type MalformedResponseError struct {
	URL    string // The resource that was requested
	Header string // The header that was missing or invalid
	Reason string // Human-readable explanation
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s %s", e.URL, e.Header, e.Reason)
}

// TransferError represents a failure while streaming a file to disk. A
// transfer that fails mid-stream may leave a truncated file at Path.
type TransferError struct {
	URL        string // The resource being downloaded
	Path       string // Destination path, empty if the failure happened before it was known
	StatusCode int    // HTTP status code, if applicable (0 for non-HTTP errors)
	Err        error  // Underlying error, if any
}

func (e *TransferError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("transfer of %s failed (HTTP %d)", e.URL, e.StatusCode)
	case e.Path != "":
		return fmt.Sprintf("transfer of %s to %s failed: %v", e.URL, e.Path, e.Err)
	default:
		return fmt.Sprintf("transfer of %s failed: %v", e.URL, e.Err)
	}
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
