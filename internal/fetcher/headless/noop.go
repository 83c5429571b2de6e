package headless

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// browserBinaries are the executables the chromedp allocator can drive, in
// the order it searches for them.
var browserBinaries = []string{
	"headless-shell",
	"headless_shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
	"chrome",
}

// BrowserAvailable reports whether a driveable browser binary can be found,
// either through the CHROME_PATH override or on PATH. Callers use it to fall
// back to the Noop fetcher instead of launching chromedp doomed to fail.
func BrowserAvailable() bool {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return true
		}
	}
	for _, name := range browserBinaries {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// Noop implements crawler.Fetcher but always returns an error. It stands in
// for the chromedp fetcher on hosts without a browser binary, so fetches
// fail with a clear message instead of a chromedp launch error.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch returns an error since no browser is available.
func (Noop) Fetch(_ context.Context, _ string) (crawler.FetchResponse, error) {
	return crawler.FetchResponse{}, errors.New("headless fetching requires a browser binary; none found")
}
