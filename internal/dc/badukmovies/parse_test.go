package badukmovies_test

import (
	"fmt"
	"testing"

	"github.com/italolelis/baduk_downloader/internal/dc/badukmovies"
	"github.com/italolelis/baduk_downloader/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://badukmovies.com"

func readLink(id int) string {
	return fmt.Sprintf(`<a class="btn btn-small" href="%s/episode_sgfs/%d"><i class="icon-book"></i> Read</a>`, base, id)
}

func bonusLink(id int) string {
	return fmt.Sprintf(`<a class="btn btn-mini" href="%s/episode_sgfs/%d/download"><i class="icon-download icon-black"></i> Download sgf</a>`, base, id)
}

func subtitleLink(id int) string {
	return fmt.Sprintf(`<a href="%s/subtitles/%d">English</a>`, base, id)
}

func TestParseResources_VideoOnly(t *testing.T) {
	resources, err := badukmovies.ParseResources(base, base+"/episodes/7", []byte(`<html><body><p>nothing here</p></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, []transfer.Resource{
		{Category: transfer.CategoryVideo, URL: base + "/episodes/7/download"},
	}, resources)
}

func TestParseResources_OrderWithinCategories(t *testing.T) {
	page := `<html><body>` +
		bonusLink(30) +
		subtitleLink(2) +
		readLink(10) +
		subtitleLink(1) +
		bonusLink(31) +
		readLink(11) +
		subtitleLink(3) +
		`</body></html>`

	resources, err := badukmovies.ParseResources(base, base+"/episodes/7", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []transfer.Resource{
		{Category: transfer.CategoryVideo, URL: base + "/episodes/7/download"},
		{Category: transfer.CategorySubtitles, URL: base + "/subtitles/2"},
		{Category: transfer.CategorySubtitles, URL: base + "/subtitles/1"},
		{Category: transfer.CategorySubtitles, URL: base + "/subtitles/3"},
		{Category: transfer.CategoryReading, URL: base + "/episode_sgfs/10/download"},
		{Category: transfer.CategoryReading, URL: base + "/episode_sgfs/11/download"},
		{Category: transfer.CategoryBonus, URL: base + "/episode_sgfs/30/download"},
		{Category: transfer.CategoryBonus, URL: base + "/episode_sgfs/31/download"},
	}, resources)
}

func TestParseResources_IgnoresLookalikes(t *testing.T) {
	page := `<html><body>` +
		// wrong host
		`<a href="https://example.com/subtitles/1">x</a>` +
		// non-numeric id
		fmt.Sprintf(`<a href="%s/subtitles/latest">x</a>`, base) +
		// read link without the button class
		fmt.Sprintf(`<a href="%s/episode_sgfs/5"> Read</a>`, base) +
		// read button with other label
		fmt.Sprintf(`<a class="btn btn-small" href="%s/episode_sgfs/5">Review</a>`, base) +
		// bonus button pointing at the read page
		fmt.Sprintf(`<a class="btn btn-mini" href="%s/episode_sgfs/5">Download sgf</a>`, base) +
		`</body></html>`

	resources, err := badukmovies.ParseResources(base, base+"/episodes/7", []byte(page))
	require.NoError(t, err)

	assert.Len(t, resources, 1)
	assert.Equal(t, transfer.CategoryVideo, resources[0].Category)
}

func TestParseResources_RelativeLinks(t *testing.T) {
	page := `<html><body>` +
		`<a href="/subtitles/4">English</a>` +
		`<a class="btn btn-small" href="/episode_sgfs/8"><i class="icon-book"></i> Read</a>` +
		`</body></html>`

	resources, err := badukmovies.ParseResources(base, base+"/episodes/7", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, []transfer.Resource{
		{Category: transfer.CategoryVideo, URL: base + "/episodes/7/download"},
		{Category: transfer.CategorySubtitles, URL: base + "/subtitles/4"},
		{Category: transfer.CategoryReading, URL: base + "/episode_sgfs/8/download"},
	}, resources)
}

func TestParseEpisodes(t *testing.T) {
	dashboard := `<html><body><table>
		<tr class="episode"><td><a href="/episodes/1">Lee Sedol vs AlphaGo #1</a></td></tr>
		<tr class="episode"><td>Coming soon</td></tr>
		<tr class="header"><td><a href="/episodes/99">Not an episode</a></td></tr>
		<tr class="episode"><td><a href="/episodes/2">Joseki + Fuseki</a><a href="/episodes/2/extra">extra</a></td></tr>
	</table></body></html>`

	episodes, err := badukmovies.ParseEpisodes(base, []byte(dashboard))
	require.NoError(t, err)

	assert.Equal(t, []transfer.Episode{
		{Name: "Lee Sedol vs AlphaGo #1", URL: base + "/episodes/1", Slug: "Lee_Sedol_vs_AlphaGo_1"},
		{Name: "Joseki + Fuseki", URL: base + "/episodes/2", Slug: "Joseki_plus_Fuseki"},
	}, episodes)
}

func TestParseEpisodes_Empty(t *testing.T) {
	episodes, err := badukmovies.ParseEpisodes(base, []byte(`<html><body><table></table></body></html>`))
	require.NoError(t, err)

	assert.Empty(t, episodes)
}
