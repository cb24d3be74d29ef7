package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"persuader/internal/ports"
)

// RESTStore implements ports.RecordStore against a PostgREST endpoint such as Supabase.
type RESTStore struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ ports.RecordStore = (*RESTStore)(nil)

// NewRESTStore builds a client for the project URL and service key.
func NewRESTStore(projectURL, apiKey string, client *http.Client) *RESTStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTStore{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		http:    client,
	}
}

// Query issues GET /rest/v1/{table} with eq filters.
func (s *RESTStore) Query(ctx context.Context, table string, filter ports.Filter, limit int) ([]ports.Record, error) {
	params := url.Values{}
	params.Set("select", "*")
	for col, v := range filter {
		params.Set(col, "eq."+formatValue(v))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	req, err := s.newRequest(ctx, http.MethodGet, table, params, nil)
	if err != nil {
		return nil, err
	}

	var records []ports.Record
	if err := s.do(req, &records); err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	return records, nil
}

// Update issues PATCH /rest/v1/{table}?keyColumn=eq.key with the patch as body.
func (s *RESTStore) Update(ctx context.Context, table, keyColumn string, key any, patch ports.Record) error {
	if len(patch) == 0 {
		return nil
	}

	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}

	params := url.Values{}
	params.Set(keyColumn, "eq."+formatValue(key))

	req, err := s.newRequest(ctx, http.MethodPatch, table, params, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var updated []ports.Record
	if err := s.do(req, &updated); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("update %s %s=%v: %w", table, keyColumn, key, ErrNotFound)
	}

	return nil
}

func (s *RESTStore) newRequest(ctx context.Context, method, table string, params url.Values, body io.Reader) (*http.Request, error) {
	if s.baseURL == "" || s.apiKey == "" {
		return nil, fmt.Errorf("rest store misconfigured")
	}

	endpoint := s.baseURL + "/" + url.PathEscape(table) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (s *RESTStore) do(req *http.Request, v any) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
