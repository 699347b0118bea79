package entries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// HTTPSource fetches a bundle from a journal server's generate endpoint.
// Fetch failures never fail generation: they degrade to an empty bundle.
type HTTPSource struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPSource creates a source for url authenticating with token, if any
func NewHTTPSource(url, token string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: constants.ServerWriteTimeout},
	}
}

func (s *HTTPSource) Load(ctx context.Context) (Bundle, error) {
	b, err := s.fetch(ctx)
	if err != nil {
		logger.Warn("entry fetch failed, generating a blank journal", "url", s.URL, "err", err)
		return Bundle{EntriesByDay: models.EntriesByDay{}}, nil
	}
	return b, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (Bundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return Bundle{}, fmt.Errorf("invalid remote URL: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Bundle{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Bundle{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxMessageBytes))
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read response: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("malformed response: %w", err)
	}
	if b.EntriesByDay == nil {
		b.EntriesByDay = models.EntriesByDay{}
	}
	return b, nil
}

// EntryStore is the read side of journal storage
type EntryStore interface {
	GetEntriesByDay() (models.EntriesByDay, error)
	GetReviewsByWeek() (models.ReviewsByWeek, error)
}

// StoreSource reads the bundle from local storage
type StoreSource struct {
	Store EntryStore
}

func (s StoreSource) Load(ctx context.Context) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	byDay, err := s.Store.GetEntriesByDay()
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load entries: %w", err)
	}
	reviews, err := s.Store.GetReviewsByWeek()
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load weekly reviews: %w", err)
	}
	return Bundle{EntriesByDay: byDay, ReviewsByWeek: reviews}, nil
}
