// Package parser extracts roster and player-profile entities from HTML.
//
// Two page shapes are recognized. A roster page carries a table.roster whose
// tr.player rows list the squad; it is a discovery page, so it yields
// collection entities plus onward links. A player page carries a
// div.player-profile with the bio fields for exactly one player. Anything
// else is a parse error.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// ErrUnrecognizedPage is returned for documents that are neither a roster
// page nor a player page.
var ErrUnrecognizedPage = errors.New("page is neither a roster nor a player profile")

// Parser implements crawler.Parser for the roster site layout.
type Parser struct{}

// New returns a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse decodes the body and routes it by page shape. finalURL must be the
// post-redirect URL; relative links are resolved against it.
func (p *Parser) Parse(body []byte, finalURL string) (crawler.FetchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return crawler.FetchResult{}, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(finalURL)
	if err != nil {
		return crawler.FetchResult{}, fmt.Errorf("parse final url %q: %w", finalURL, err)
	}

	switch {
	case doc.Find("table.roster").Length() > 0:
		return parseRoster(doc, base), nil
	case doc.Find("div.player-profile").Length() > 0:
		return parseProfile(doc, base), nil
	default:
		return crawler.FetchResult{}, ErrUnrecognizedPage
	}
}

func parseRoster(doc *goquery.Document, base *url.URL) crawler.FetchResult {
	team := strings.TrimSpace(doc.Find("h1.team-name").First().Text())

	var result crawler.FetchResult
	links := newLinkSet()

	doc.Find("table.roster tr.player").Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find("td.name a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}
		playerURL := resolve(base, href)
		if playerURL == "" {
			return
		}
		result.Rosters = append(result.Rosters, crawler.Player{
			URL:      playerURL,
			Name:     strings.TrimSpace(anchor.Text()),
			Team:     team,
			Number:   strings.TrimSpace(row.Find("td.number").Text()),
			Position: strings.TrimSpace(row.Find("td.position").Text()),
		})
		links.add(playerURL)
	})

	// Pagination and cross-team links keep the discovery frontier moving.
	doc.Find(".pagination a, .team-list a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links.add(resolve(base, href))
		}
	})

	result.NextURLs = links.urls
	return result
}

func parseProfile(doc *goquery.Document, base *url.URL) crawler.FetchResult {
	profile := doc.Find("div.player-profile").First()

	player := crawler.Player{
		URL:  base.String(),
		Name: strings.TrimSpace(profile.Find("h1.player-name").First().Text()),
		Team: strings.TrimSpace(profile.Find("a.team-link").First().Text()),
	}

	profile.Find("dl.player-bio dt").Each(func(_ int, dt *goquery.Selection) {
		value := strings.TrimSpace(dt.NextFiltered("dd").Text())
		if value == "" {
			return
		}
		switch strings.ToLower(strings.TrimSpace(dt.Text())) {
		case "position":
			player.Position = value
		case "number":
			player.Number = value
		case "height":
			player.Height = value
		case "weight":
			player.Weight = value
		case "born":
			player.BirthDate = value
		case "nationality":
			player.Nationality = value
		}
	})

	links := newLinkSet()
	doc.Find("a.team-link, .teammates a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links.add(resolve(base, href))
		}
	})

	return crawler.FetchResult{Profile: &player, NextURLs: links.urls}
}

// linkSet keeps next-URLs unique while preserving document order.
type linkSet struct {
	seen map[string]struct{}
	urls []string
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

func (s *linkSet) add(u string) {
	if u == "" {
		return
	}
	if _, ok := s.seen[u]; ok {
		return
	}
	s.seen[u] = struct{}{}
	s.urls = append(s.urls, u)
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
