package db

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beaconmarket/models"
)

func newTestGorm(t *testing.T) *GormListings {
	t.Helper()
	conn, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewGormListings(conn)
	store.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store
}

func listing(title string, category models.Category, owner string) *models.Listing {
	p := 100.0
	return &models.Listing{
		Category:  category,
		Title:     title,
		Price:     &p,
		PriceUnit: models.PRICE_UNIT_DAY,
		OwnerName: models.DEFAULT_OWNER_NAME,
		WhatsApp:  owner,
		Status:    models.LISTING_STATUS_ACTIVE,
	}
}

func TestGormInsertAssignsID(t *testing.T) {
	s := newTestGorm(t)
	got, err := s.Insert(context.Background(), listing("Kayak", models.CATEGORY_EQUIPMENT, "27821111111"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(got.ID) != 36 || got.CreatedAt == nil {
		t.Errorf("Insert did not fill id/created_at: %+v", got)
	}
}

func TestGormInsertRejectsIncomplete(t *testing.T) {
	s := newTestGorm(t)
	l := listing("Kayak", models.CATEGORY_EQUIPMENT, "27821111111")
	l.Price = nil
	if _, err := s.Insert(context.Background(), l); err == nil {
		t.Error("expected error for missing price")
	}
}

func TestGormSelectFiltersAndOrder(t *testing.T) {
	s := newTestGorm(t)
	ctx := context.Background()
	for _, l := range []*models.Listing{
		listing("Bike", models.CATEGORY_EQUIPMENT, "27821111111"),
		listing("House", models.CATEGORY_HOLIDAY_HOMES, "27821111111"),
		listing("Garage", models.CATEGORY_PARKING, "27822222222"),
		listing("Kayak", models.CATEGORY_EQUIPMENT, "27821111111"),
	} {
		if _, err := s.Insert(ctx, l); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	mine, err := s.Select(ctx, NewQuery().Eq("whatsapp", "27821111111"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(mine) != 3 || mine[0].Title != "Kayak" || mine[2].Title != "Bike" {
		t.Errorf("Select newest first = %v", titles(mine))
	}

	notHomes, _ := s.Select(ctx, NewQuery().Neq("category", string(models.CATEGORY_HOLIDAY_HOMES)).Limit(2))
	if len(notHomes) != 2 || notHomes[0].Title != "Kayak" || notHomes[1].Title != "Garage" {
		t.Errorf("Neq+Limit = %v", titles(notHomes))
	}

	in, _ := s.Select(ctx, NewQuery().In("category", "parking", "holiday-homes"))
	if len(in) != 2 {
		t.Errorf("In = %v", titles(in))
	}

	if _, err := s.Select(ctx, NewQuery().Eq("title; drop table listings", "x")); err == nil {
		t.Error("expected error for non-whitelisted column")
	}
}

func TestGormUpdate(t *testing.T) {
	s := newTestGorm(t)
	ctx := context.Background()
	created, _ := s.Insert(ctx, listing("Bike", models.CATEGORY_EQUIPMENT, "27821111111"))

	updated, err := s.Update(ctx, created.ID, map[string]any{"status": models.LISTING_STATUS_INACTIVE, "price": 300.0})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.LISTING_STATUS_INACTIVE || *updated.Price != 300 {
		t.Errorf("Update = %+v", updated)
	}

	if _, err := s.Update(ctx, "missing", map[string]any{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing = %v; want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, created.ID, map[string]any{"whatsapp": "27829999999"}); err == nil {
		t.Error("owner must not be writable")
	}
}

func TestRestListings(t *testing.T) {
	var gotQuery, gotPrefer, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/listings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			gotQuery = r.URL.Query().Encode()
			_, _ = w.Write([]byte(`[{"id":"a","title":"Bike","category":"equipment","price":200,"price_unit":"per day","status":"active"}]`))
		case http.MethodPost:
			gotPrefer = r.Header.Get("Prefer")
			body, _ := io.ReadAll(r.Body)
			_, _ = w.Write(append(append([]byte("["), body...), ']'))
		case http.MethodPatch:
			if r.URL.Query().Get("id") == "eq.missing" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			var fields map[string]any
			_ = json.NewDecoder(r.Body).Decode(&fields)
			_, _ = w.Write([]byte(`[{"id":"a","title":"Bike","status":"` + fields["status"].(string) + `"}]`))
		}
	}))
	defer srv.Close()

	s := NewRestListings(srv.URL+"/", "anon", "")
	ctx := context.Background()

	got, err := s.Select(ctx, NewQuery().Eq("status", "active").In("category", "equipment", "events").Limit(12))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Bike" || *got[0].Price != 200 {
		t.Errorf("Select = %+v", got)
	}
	want := `category=in.%28%22equipment%22%2C%22events%22%29&limit=12&order=created_at.desc&select=%2A&status=eq.active`
	if gotQuery != want {
		t.Errorf("query = %s\nwant    %s", gotQuery, want)
	}
	if gotKey != "anon" {
		t.Errorf("apikey = %q", gotKey)
	}

	created, err := s.Insert(ctx, listing("Kayak", models.CATEGORY_EQUIPMENT, "27821111111"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID == "" || created.Title != "Kayak" || gotPrefer != "return=representation" {
		t.Errorf("Insert = %+v prefer=%q", created, gotPrefer)
	}

	updated, err := s.Update(ctx, "a", map[string]any{"status": "inactive"})
	if err != nil || updated.Status != models.LISTING_STATUS_INACTIVE {
		t.Errorf("Update = %+v, %v", updated, err)
	}
	if _, err := s.Update(ctx, "missing", map[string]any{"status": "inactive"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing = %v; want ErrNotFound", err)
	}
}

func TestRestListingsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewRestListings(srv.URL, "anon", "listings").Select(context.Background(), NewQuery())
	var restErr RestError
	if !errors.As(err, &restErr) || restErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("err = %v; want RestError 401", err)
	}
}

func titles(ls []models.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title
	}
	return out
}
