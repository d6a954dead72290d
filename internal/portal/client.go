package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrFetchFailed indicates GetLogBook could not be read. Callers
	// degrade to an empty mapping rather than aborting.
	ErrFetchFailed = errors.New("fetching existing entries failed")

	// ErrSubmitFailed indicates StudentSave rejected one entry. It is
	// isolated per date and never stops the rest of a run.
	ErrSubmitFailed = errors.New("entry submission failed")
)

// NilID is the sentinel the portal understands as "create a new record".
var NilID = uuid.Nil.String()

// Entry is one day's logbook submission, fully resolved.
type Entry struct {
	Date     string // YYYY-MM-DD
	HeaderID string
	ClockIn  string
	ClockOut string
	Activity string
	Descr    string
	RemoteID string // existing record UUID, or NilID
	Off      bool
}

// Client talks to the remote logbook endpoints.
type Client interface {
	// FetchExisting returns iso-date -> remote record UUID for one month.
	FetchExisting(ctx context.Context, headerID, cookie string) (map[string]string, error)

	// Submit upserts a single day's entry.
	Submit(ctx context.Context, e Entry, cookie string) error
}

// HTTPClient is the real portal client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// getLogBookResponse mirrors the relevant part of the GetLogBook JSON.
type getLogBookResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Date string `json:"date"`
	} `json:"data"`
}

func (c *HTTPClient) FetchExisting(ctx context.Context, headerID, cookie string) (map[string]string, error) {
	form := url.Values{"logBookHeaderID": {headerID}}
	body, status, err := c.postForm(ctx, "/LogBook/GetLogBook", form, cookie, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, status, truncate(body))
	}

	var resp getLogBookResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrFetchFailed, err)
	}

	existing := make(map[string]string, len(resp.Data))
	for _, e := range resp.Data {
		if len(e.Date) >= 10 {
			existing[e.Date[:10]] = e.ID
		}
	}
	return existing, nil
}

func (c *HTTPClient) Submit(ctx context.Context, e Entry, cookie string) error {
	form := url.Values{
		"model[ID]":              {e.RemoteID},
		"model[LogBookHeaderID]": {e.HeaderID},
		"model[ClockIn]":         {e.ClockIn},
		"model[ClockOut]":        {e.ClockOut},
		"model[Date]":            {e.Date + "T00:00:00"},
		"model[Activity]":        {e.Activity},
		"model[Description]":     {e.Descr},
	}
	if e.Off {
		form.Set("model[flagjulyactive]", "false")
	}

	body, status, err := c.postForm(ctx, "/LogBook/StudentSave", form, cookie, false)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSubmitFailed, e.Date, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: %s: status %d: %s", ErrSubmitFailed, e.Date, status, truncate(body))
	}
	return nil
}

func (c *HTTPClient) postForm(ctx context.Context, path string, form url.Values, cookie string, ajax bool) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", cookie)
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return string(body), resp.StatusCode, nil
}

func truncate(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
