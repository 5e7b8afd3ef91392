package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"vocab-drill-service/internal/domain"
)

// Gateway talks to a generic REST collection of user records:
//
//	GET {base}?username={name}  -> [record, ...]
//	PUT {base}/{id}             <- full record
type Gateway struct {
	baseURL string
	client  *http.Client
}

func NewGateway(baseURL string, timeout time.Duration) (*Gateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("gateway base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid gateway base url")
	}
	if u.Scheme == "" {
		return nil, errors.New("gateway base url must include scheme (http/https)")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// LoadUser returns the first record whose username matches.
func (g *Gateway) LoadUser(ctx context.Context, username string) (domain.UserRecord, error) {
	endpoint := g.baseURL + "?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.UserRecord{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.UserRecord{}, errors.Wrap(err, "get user")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return domain.UserRecord{}, errors.Errorf("get user: status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var records []domain.UserRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return domain.UserRecord{}, errors.Wrap(err, "decode users")
	}
	// the collection filter may be a substring match
	for _, r := range records {
		if r.Username == username {
			return r, nil
		}
	}
	return domain.UserRecord{}, domain.ErrUserNotFound
}

// SaveUser overwrites the whole record; there is no partial update.
func (g *Gateway) SaveUser(ctx context.Context, record domain.UserRecord) error {
	if record.ID == "" {
		return errors.New("save user: record has no id")
	}
	body, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	endpoint := g.baseURL + "/" + url.PathEscape(record.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "put user")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("put user: status %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
