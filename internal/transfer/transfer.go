package transfer

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
)

// ResourceExtractor discovers everything downloadable for one episode page.
type ResourceExtractor interface {
	ExtractResources(ctx context.Context, episodeURL string) ([]Resource, error)
}

// Fetcher downloads a single target to disk and returns the resolved path.
type Fetcher interface {
	Fetch(ctx context.Context, target Target) (string, error)
}

// Episode is one lesson listed on the dashboard.
type Episode struct {
	Name string
	URL  string
	Slug string
}

// NewEpisode builds an episode and derives its slug from the name.
func NewEpisode(name, url string) Episode {
	return Episode{
		Name: name,
		URL:  url,
		Slug: Slugify(name),
	}
}

// Category is the destination bucket of a resource within an episode directory.
type Category string

const (
	CategoryVideo     Category = "video"
	CategorySubtitles Category = "subtitles"
	CategoryReading   Category = "reading"
	CategoryBonus     Category = "bonus"
)

// Dir returns the directory, relative to the episode root, the category is stored in.
func (c Category) Dir() string {
	switch c {
	case CategoryVideo:
		return "video"
	case CategorySubtitles:
		return filepath.Join("video", "subtitles")
	case CategoryReading:
		return "read"
	case CategoryBonus:
		return "bonus"
	default:
		return string(c)
	}
}

type Resource struct {
	Category Category
	URL      string
}

// Target binds a resource to a local directory. Filename is optional; when
// empty the name declared by the server is used.
type Target struct {
	URL      string
	Dir      string
	Filename string
}

// TargetFor places a resource under the given episode directory.
func (r Resource) TargetFor(episodeDir string) Target {
	return Target{
		URL: r.URL,
		Dir: filepath.Join(episodeDir, r.Category.Dir()),
	}
}

// State is where an episode is in the pipeline.
type State string

const (
	StateSkipped     State = "skipped"
	StateExtracting  State = "extracting"
	StateDownloading State = "downloading"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// IsTerminal reports whether no further work happens for an episode in this state.
func (s State) IsTerminal() bool {
	return s == StateSkipped || s == StateDone || s == StateFailed
}

var (
	// Also matches \v and the Unicode separators (NBSP, ideographic space, BOM).
	whitespaceRe      = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	disallowedRe      = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)
	leadingUnderscore = regexp.MustCompile(`^_+`)
)

// Slugify turns an episode name into a directory name. The rules match the
// layout already present in existing download trees, so they must not change.
func Slugify(name string) string {
	slug := whitespaceRe.ReplaceAllString(name, "_")
	slug = strings.ReplaceAll(slug, "#", "")
	slug = strings.ReplaceAll(slug, "+", "plus")
	slug = disallowedRe.ReplaceAllString(slug, "")
	slug = leadingUnderscore.ReplaceAllString(slug, "_")

	return slug
}
