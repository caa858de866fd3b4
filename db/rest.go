package db

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

	"beaconmarket/models"
)

// RestError is returned for non-2xx PostgREST responses.
type RestError struct {
	StatusCode int
	Body       string
}

func (e RestError) Error() string {
	return fmt.Sprintf("rest store error: status=%d body=%s", e.StatusCode, e.Body)
}

// RestListings talks to a Supabase (PostgREST) table over HTTP.
type RestListings struct {
	URL        string // project URL, e.g. https://xyz.supabase.co
	AnonKey    string
	Table      string
	HTTPClient *http.Client
	Now        func() time.Time
}

func NewRestListings(baseURL, anonKey, table string) *RestListings {
	if table == "" {
		table = "listings"
	}
	return &RestListings{
		URL:        strings.TrimRight(baseURL, "/"),
		AnonKey:    anonKey,
		Table:      table,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Now:        time.Now,
	}
}

func (s *RestListings) endpoint(params url.Values) string {
	u := s.URL + "/rest/v1/" + s.Table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (s *RestListings) do(ctx context.Context, method string, params url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(params), reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.AnonKey)
	req.Header.Set("Authorization", "Bearer "+s.AnonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return RestError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *RestListings) Insert(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	row := *l
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if err := prepareInsert(&row, now); err != nil {
		return nil, err
	}

	var created []models.Listing
	if err := s.do(ctx, http.MethodPost, nil, row, &created); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	if len(created) == 0 {
		return &row, nil
	}
	return &created[0], nil
}

func (s *RestListings) Select(ctx context.Context, q Query) ([]models.Listing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("select", "*")
	for _, f := range q.Filters {
		params.Add(f.Column, restFilter(f))
	}
	params.Set("order", "created_at.desc")
	if q.Max > 0 {
		params.Set("limit", strconv.Itoa(q.Max))
	}

	listings := []models.Listing{}
	if err := s.do(ctx, http.MethodGet, params, nil, &listings); err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	return listings, nil
}

func (s *RestListings) Update(ctx context.Context, id string, fields map[string]any) (*models.Listing, error) {
	if err := validateUpdate(fields); err != nil {
		return nil, err
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = now

	params := url.Values{}
	params.Set("id", "eq."+id)

	var updated []models.Listing
	if err := s.do(ctx, http.MethodPatch, params, values, &updated); err != nil {
		return nil, fmt.Errorf("update listing %s: %w", id, err)
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

// restFilter renders a filter in PostgREST syntax: eq.x, neq.x, in.("a","b").
func restFilter(f Filter) string {
	if f.Op != OP_IN {
		return f.Op + "." + f.Values[0]
	}
	quoted := make([]string, len(f.Values))
	for i, v := range f.Values {
		quoted[i] = strconv.Quote(v)
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}
