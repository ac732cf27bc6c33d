package webpage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout = 5 * time.Second
	userAgent      = "ContentInventoryBot/1.0 (+import-enrichment)"
	maxBodyBytes   = 1 << 20
)

// TitleFetcher retrieves the <title> of an HTML page under a hard deadline.
// Every failure mode (network error, timeout, non-2xx, non-HTML payload,
// empty title) collapses to ok=false; it never returns an error.
type TitleFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewTitleFetcher(timeout time.Duration) *TitleFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TitleFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

func (f *TitleFetcher) FetchTitle(ctx context.Context, rawURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false
	}

	// Skip binary payloads (PDFs, images) before touching the body.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "", false
	}
	return collapseWhitespace(title), true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
