package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider an HTTP fetch successful.
// Shorter text usually means the page renders client-side and needs a browser.
const MinContentLength = 200

// DefaultBrowserTimeout bounds a headless render.
const DefaultBrowserTimeout = 30 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error) {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	if verbose {
		log.Printf("[browser] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Client-side renderers usually finish within a couple of seconds
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	if verbose {
		log.Printf("[browser] Rendered HTML: %d bytes", len(html))
	}
	return html, nil
}

// Document fetches urlStr and extracts its main text with platform-aware selectors. When useBrowser
// is set and the static HTML yields too little text, the page is rendered headless and extracted
// again; a failed render keeps the static result.
func Document(ctx context.Context, urlStr string, useBrowser, verbose bool) (string, Platform, error) {
	platform := DetectPlatform(urlStr)
	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	result, err := URL(ctx, urlStr, nil)
	if err != nil {
		return "", platform, err
	}
	text, err := ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", platform, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	if verbose {
		log.Printf("[fetch] %s (%s): %d bytes HTML, %d chars text", urlStr, platform, len(result.HTML), len(text))
	}

	if !useBrowser || !ShouldUseBrowser(text) {
		return text, platform, nil
	}

	html, err := WithBrowser(ctx, urlStr, DefaultBrowserTimeout, verbose)
	if err != nil {
		if verbose {
			log.Printf("[fetch] %v; using static content", err)
		}
		return text, platform, nil
	}
	rendered, err := ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return text, platform, fmt.Errorf("extract rendered page: %w", err)
	}
	return rendered, platform, nil
}
