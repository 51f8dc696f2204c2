package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTSink posts rows to a PostgREST style endpoint at {URL}/rest/v1/{table}.
type RESTSink struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewRESTSink(baseURL, apiKey string, timeout time.Duration) *RESTSink {
	client := &http.Client{}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &RESTSink{URL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Client: client}
}

func (s *RESTSink) InsertReviewMetadata(ctx context.Context, r ReviewRecord) error {
	return s.post(ctx, TableReviewMetadata, r)
}

func (s *RESTSink) InsertGoal(ctx context.Context, g GoalRecord) error {
	return s.post(ctx, TableGoals, g)
}

func (s *RESTSink) post(ctx context.Context, table string, row any) error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("rest sink: url is required")
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	endpoint, err := url.JoinPath(s.URL, "rest", "v1", table)
	if err != nil {
		return fmt.Errorf("rest sink: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	if s.APIKey != "" {
		req.Header.Set("apikey", s.APIKey)
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("%s: status %d: %s", table, res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
