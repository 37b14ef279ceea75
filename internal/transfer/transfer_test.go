package transfer_test

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/italolelis/baduk_downloader/internal/transfer"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hash and spaces", "Lee Sedol vs AlphaGo #1", "Lee_Sedol_vs_AlphaGo_1"},
		{"plus sign", "Joseki 3-3 + invasion", "Joseki_3-3_plus_invasion"},
		{"punctuation stripped", "What's next? (part 2)!", "Whats_next_part_2"},
		{"whitespace runs", "a \t\n b", "a_b"},
		{"vertical tab", "a\vb", "a_b"},
		{"non-breaking space", "Lesson\u00a01", "Lesson_1"},
		{"ideographic space", "Lesson\u30001", "Lesson_1"},
		{"mixed unicode separators", "a\u2003\u202f\u2028b\ufeffc", "a_b_c"},
		{"leading underscores collapse", "__intro", "_intro"},
		{"leading whitespace", "  Opening theory", "_Opening_theory"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transfer.Slugify(tt.in))
		})
	}
}

func TestSlugify_DeterministicAndFilesystemSafe(t *testing.T) {
	safe := regexp.MustCompile(`^[A-Za-z0-9_\-]*$`)
	inputs := []string{
		"Lee Sedol vs AlphaGo #1",
		"C++ / Go: a \"love\" story",
		"Ko fights <advanced> & more",
		"Ünïcödé lesson 7",
	}

	for _, in := range inputs {
		first := transfer.Slugify(in)
		assert.Equal(t, first, transfer.Slugify(in), "slug must be stable for %q", in)
		assert.Regexp(t, safe, first)
	}

	assert.Contains(t, transfer.Slugify("C++ basics"), "plusplus")
}

func TestNewEpisode(t *testing.T) {
	ep := transfer.NewEpisode("Lee Sedol vs AlphaGo #1", "https://badukmovies.com/episodes/1")

	assert.Equal(t, "Lee Sedol vs AlphaGo #1", ep.Name)
	assert.Equal(t, "https://badukmovies.com/episodes/1", ep.URL)
	assert.Equal(t, "Lee_Sedol_vs_AlphaGo_1", ep.Slug)
}

func TestCategoryDir(t *testing.T) {
	tests := []struct {
		category transfer.Category
		want     string
	}{
		{transfer.CategoryVideo, "video"},
		{transfer.CategorySubtitles, filepath.Join("video", "subtitles")},
		{transfer.CategoryReading, "read"},
		{transfer.CategoryBonus, "bonus"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.Dir())
		})
	}
}

func TestResourceTargetFor(t *testing.T) {
	r := transfer.Resource{Category: transfer.CategorySubtitles, URL: "https://badukmovies.com/subtitles/9"}

	target := r.TargetFor("/data/episodes/Lesson_1")

	assert.Equal(t, "https://badukmovies.com/subtitles/9", target.URL)
	assert.Equal(t, filepath.Join("/data/episodes/Lesson_1", "video", "subtitles"), target.Dir)
	assert.Empty(t, target.Filename)
}

func TestStateIsTerminal(t *testing.T) {
	assert.True(t, transfer.StateSkipped.IsTerminal())
	assert.True(t, transfer.StateDone.IsTerminal())
	assert.True(t, transfer.StateFailed.IsTerminal())
	assert.False(t, transfer.StateExtracting.IsTerminal())
	assert.False(t, transfer.StateDownloading.IsTerminal())
}
