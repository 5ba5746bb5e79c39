// Package openbd is a client for the OpenBD bibliographic lookup API.
package openbd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public OpenBD lookup endpoint.
	DefaultBaseURL = "https://api.openbd.jp/v1/get"

	maxRetries     = 3
	retryDelay     = time.Second
	requestTimeout = 10 * time.Second
)

// ErrISBNNotFound is returned when OpenBD has no record for the ISBN.
var ErrISBNNotFound = errors.New("isbn not found")

// LookupError is returned when the lookup could not be completed, typically
// after retrying through network failures.
type LookupError struct {
	ISBN string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("openbd lookup for isbn %s failed: %v", e.ISBN, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// BookInfo is the bibliographic data fetched for one ISBN.
type BookInfo struct {
	Title           string
	Author          string
	Publisher       string
	PublicationDate string // YYYY-MM-DD, empty when unknown
	Description     string
	CoverURL        string
}

// Client fetches book information from OpenBD.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an OpenBD client. An empty baseURL selects the public endpoint.
func New(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// record mirrors the slice elements OpenBD returns: one entry per requested
// ISBN, null when the ISBN is unknown.
type record struct {
	Summary struct {
		ISBN      string `json:"isbn"`
		Title     string `json:"title"`
		Author    string `json:"author"`
		Publisher string `json:"publisher"`
		Cover     string `json:"cover"`
		Content   string `json:"content"`
	} `json:"summary"`
	Onix struct {
		ProductPublicationDetail struct {
			PublicationDate string `json:"PublicationDate"`
		} `json:"ProductPublicationDetail"`
	} `json:"onix"`
}

// FetchBookInfo looks up one ISBN. It retries transient network failures up
// to three times before giving up with a LookupError; an unknown ISBN is
// reported as ErrISBNNotFound.
func (c *Client) FetchBookInfo(ctx context.Context, isbn string) (BookInfo, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying openbd lookup", zap.String("isbn", isbn), zap.Int("attempt", attempt+1))
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return BookInfo{}, &LookupError{ISBN: isbn, Err: ctx.Err()}
			}
		}
		info, err := c.fetchOnce(ctx, isbn)
		if err == nil {
			return info, nil
		}
		if errors.Is(err, ErrISBNNotFound) {
			return BookInfo{}, err
		}
		lastErr = err
	}
	return BookInfo{}, &LookupError{ISBN: isbn, Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context, isbn string) (BookInfo, error) {
	u := c.baseURL + "?isbn=" + url.QueryEscape(isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return BookInfo{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return BookInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return BookInfo{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var records []*record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return BookInfo{}, fmt.Errorf("failed to decode openbd response: %w", err)
	}
	if len(records) == 0 || records[0] == nil {
		return BookInfo{}, fmt.Errorf("%w: %s", ErrISBNNotFound, isbn)
	}

	r := records[0]
	return BookInfo{
		Title:           r.Summary.Title,
		Author:          cleanAuthor(r.Summary.Author),
		Publisher:       r.Summary.Publisher,
		PublicationDate: formatPubDate(r.Onix.ProductPublicationDetail.PublicationDate),
		Description:     r.Summary.Content,
		CoverURL:        r.Summary.Cover,
	}, nil
}

// formatPubDate converts OpenBD's YYYYMMDD dates to YYYY-MM-DD. Values in any
// other shape pass through unchanged.
func formatPubDate(d string) string {
	if len(d) == 8 {
		return d[0:4] + "-" + d[4:6] + "-" + d[6:8]
	}
	return d
}

// cleanAuthor strips the cataloging noise OpenBD author strings carry, such
// as trailing birth years and role codes separated by commas.
func cleanAuthor(author string) string {
	var cleaned []string
	for _, part := range strings.Fields(author) {
		var keep []string
		for _, sub := range strings.Split(part, ",") {
			sub = strings.TrimSpace(sub)
			if sub == "" || isNumericFragment(sub) {
				continue
			}
			keep = append(keep, sub)
		}
		if len(keep) > 2 {
			keep = keep[:2]
		}
		cleaned = append(cleaned, keep...)
	}
	return strings.Join(cleaned, " ")
}

// isNumericFragment reports whether s is only digits, hyphens and slashes,
// the shape of year ranges like "1949-" in catalog author fields.
func isNumericFragment(s string) bool {
	stripped := strings.NewReplacer("-", "", "/", "").Replace(s)
	if stripped == "" {
		return s != ""
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
