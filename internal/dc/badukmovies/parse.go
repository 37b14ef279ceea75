package badukmovies

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/italolelis/baduk_downloader/internal/transfer"
)

// linkPatterns describes how each resource category shows up on an episode page.
type linkPatterns struct {
	subtitles *regexp.Regexp
	reading   *regexp.Regexp
	bonus     *regexp.Regexp
}

func newLinkPatterns(baseURL string) linkPatterns {
	base := regexp.QuoteMeta(strings.TrimRight(baseURL, "/"))

	return linkPatterns{
		subtitles: regexp.MustCompile(`(?i)^` + base + `/subtitles/[0-9]+$`),
		reading:   regexp.MustCompile(`(?i)^` + base + `/episode_sgfs/[0-9]+$`),
		bonus:     regexp.MustCompile(`(?i)^` + base + `/episode_sgfs/[0-9]+/download$`),
	}
}

// ParseResources lists the files of an episode page. The video always comes
// first, followed by subtitles, reading material and bonus files, each in
// page order.
func ParseResources(baseURL, episodeURL string, page []byte) ([]transfer.Resource, error) {
	resources := []transfer.Resource{
		{Category: transfer.CategoryVideo, URL: strings.TrimRight(episodeURL, "/") + "/download"},
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse episode page: %w", err)
	}

	patterns := newLinkPatterns(baseURL)
	pageURL, _ := url.Parse(episodeURL)

	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		if href := resolveHref(pageURL, s.AttrOr("href", "")); patterns.subtitles.MatchString(href) {
			resources = append(resources, transfer.Resource{Category: transfer.CategorySubtitles, URL: href})
		}
	})

	doc.Find("a.btn.btn-small").Each(func(_ int, s *goquery.Selection) {
		if !hasLabel(s, "Read") {
			return
		}

		if href := resolveHref(pageURL, s.AttrOr("href", "")); patterns.reading.MatchString(href) {
			resources = append(resources, transfer.Resource{Category: transfer.CategoryReading, URL: href + "/download"})
		}
	})

	doc.Find("a.btn.btn-mini").Each(func(_ int, s *goquery.Selection) {
		if !hasLabel(s, "Download sgf") {
			return
		}

		if href := resolveHref(pageURL, s.AttrOr("href", "")); patterns.bonus.MatchString(href) {
			resources = append(resources, transfer.Resource{Category: transfer.CategoryBonus, URL: href})
		}
	})

	return resources, nil
}

// ParseEpisodes reads the episode table of the dashboard. Rows without a link
// are left out.
func ParseEpisodes(baseURL string, dashboard []byte) ([]transfer.Episode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(dashboard))
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard: %w", err)
	}

	base := strings.TrimRight(baseURL, "/")

	var episodes []transfer.Episode

	doc.Find("tr.episode").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		if link.Length() == 0 {
			return
		}

		href := link.AttrOr("href", "")
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			href = base + href
		}

		episodes = append(episodes, transfer.NewEpisode(link.Text(), href))
	})

	return episodes, nil
}

func hasLabel(s *goquery.Selection, label string) bool {
	return strings.EqualFold(strings.TrimSpace(s.Text()), label)
}

func resolveHref(pageURL *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if pageURL == nil || href == "" {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return pageURL.ResolveReference(ref).String()
}
