package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

const rosterHTML = `<!DOCTYPE html>
<html><body>
<h1 class="team-name">Rovers</h1>
<table class="roster">
  <tr class="player">
    <td class="number">1</td>
    <td class="name"><a href="/players/alex-keeper">Alex Keeper</a></td>
    <td class="position">GK</td>
  </tr>
  <tr class="player">
    <td class="number">9</td>
    <td class="name"><a href="/players/b-striker">B. Striker</a></td>
    <td class="position">FW</td>
  </tr>
  <tr class="player">
    <td class="number">-</td>
    <td class="name">No profile yet</td>
    <td class="position">MF</td>
  </tr>
</table>
<div class="pagination">
  <a href="/teams/rovers?page=2">2</a>
  <a href="/players/alex-keeper">duplicate link</a>
</div>
<div class="team-list"><a href="https://league.test/teams/united">United</a></div>
</body></html>`

const profileHTML = `<!DOCTYPE html>
<html><body>
<div class="player-profile">
  <h1 class="player-name">Alex Keeper</h1>
  <a class="team-link" href="/teams/rovers">Rovers</a>
  <dl class="player-bio">
    <dt>Position</dt><dd>GK</dd>
    <dt>Height</dt><dd>191cm</dd>
    <dt>Weight</dt><dd>84kg</dd>
    <dt>Born</dt><dd>1998-03-14</dd>
    <dt>Nationality</dt><dd>Icelandic</dd>
    <dt>Shoe size</dt><dd>45</dd>
  </dl>
</div>
<div class="teammates"><a href="/players/b-striker">B. Striker</a></div>
</body></html>`

func TestParse_RosterPage(t *testing.T) {
	t.Parallel()

	result, err := New().Parse([]byte(rosterHTML), "https://league.test/teams/rovers")
	require.NoError(t, err)
	require.Nil(t, result.Profile)

	require.Equal(t, []crawler.Player{
		{
			URL:      "https://league.test/players/alex-keeper",
			Name:     "Alex Keeper",
			Team:     "Rovers",
			Number:   "1",
			Position: "GK",
		},
		{
			URL:      "https://league.test/players/b-striker",
			Name:     "B. Striker",
			Team:     "Rovers",
			Number:   "9",
			Position: "FW",
		},
	}, result.Rosters, "rows without a profile link are skipped")

	require.Equal(t, []string{
		"https://league.test/players/alex-keeper",
		"https://league.test/players/b-striker",
		"https://league.test/teams/rovers?page=2",
		"https://league.test/teams/united",
	}, result.NextURLs, "next urls are deduped and keep document order")
}

func TestParse_ProfilePage(t *testing.T) {
	t.Parallel()

	finalURL := "https://league.test/players/alex-keeper"
	result, err := New().Parse([]byte(profileHTML), finalURL)
	require.NoError(t, err)
	require.Empty(t, result.Rosters)

	require.NotNil(t, result.Profile)
	require.Equal(t, crawler.Player{
		URL:         finalURL,
		Name:        "Alex Keeper",
		Team:        "Rovers",
		Position:    "GK",
		Height:      "191cm",
		Weight:      "84kg",
		BirthDate:   "1998-03-14",
		Nationality: "Icelandic",
	}, *result.Profile, "unknown bio rows are ignored")

	require.Equal(t, []string{
		"https://league.test/teams/rovers",
		"https://league.test/players/b-striker",
	}, result.NextURLs)
}

func TestParse_ProfileIdentityFollowsFinalURL(t *testing.T) {
	t.Parallel()

	// The fetcher reports the post-redirect URL; the profile entity must be
	// keyed by it, not by whatever link the crawl followed.
	result, err := New().Parse([]byte(profileHTML), "https://league.test/players/alex-keeper-2024")
	require.NoError(t, err)
	require.Equal(t, "https://league.test/players/alex-keeper-2024", result.Profile.URL)
}

func TestParse_UnrecognizedPage(t *testing.T) {
	t.Parallel()

	_, err := New().Parse([]byte("<html><body><p>404</p></body></html>"), "https://league.test/missing")
	require.ErrorIs(t, err, ErrUnrecognizedPage)
}

func TestParse_BadFinalURL(t *testing.T) {
	t.Parallel()

	_, err := New().Parse([]byte(rosterHTML), "://bad")
	require.Error(t, err)
}
