package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/auth"
	"github.com/toryoki/jobhub/internal/cache"
	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/domain/posting"
	"github.com/toryoki/jobhub/internal/http/middlewares"
	"github.com/toryoki/jobhub/internal/repo/postgres"
	"github.com/toryoki/jobhub/internal/utils"
)

type fakePostingStore struct {
	create func(ctx context.Context, req posting.CreateRequest) (posting.Posting, error)
	list   func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error)

	listCalls int
}

func (f *fakePostingStore) Create(ctx context.Context, req posting.CreateRequest) (posting.Posting, error) {
	return f.create(ctx, req)
}

func (f *fakePostingStore) ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error) {
	f.listCalls++
	return f.list(ctx, limit, afterCreatedAt, afterID)
}

func newPostingsRouter(store PostingStore, listCache *cache.Cache, role string) *gin.Engine {
	h := NewPostingsHandler(store, listCache, config.Config{Env: "test"})

	r := gin.New()
	asRole := func(c *gin.Context) { c.Set(middlewares.CtxUserRoleKey, role) }
	r.GET("/postings", asRole, h.List)
	r.POST("/postings", asRole, middlewares.RestrictTo(auth.RoleAdmin, auth.RoleHRLead, auth.RoleHR), h.Create)
	return r
}

func samplePosting(id string, createdAt time.Time) posting.Posting {
	return posting.Posting{
		ID:            id,
		Name:          "Backend Engineer " + id,
		About:         "Build things",
		JobType:       posting.JobTypePermanent,
		WhatYouWillDo: []string{"write Go"},
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestListPostings(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cursor, err := utils.EncodePostingCursor(now, "p2")
	if err != nil {
		t.Fatalf("encode cursor: %v", err)
	}

	store := &fakePostingStore{
		list: func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error) {
			return []posting.Posting{samplePosting("p1", now), samplePosting("p2", now.Add(-time.Hour))}, &cursor, true, nil
		},
	}
	r := newPostingsRouter(store, nil, auth.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/postings?limit=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	items, _ := body["items"].([]any)
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
	if body["hasMore"] != true {
		t.Error("hasMore = false")
	}
	if body["nextCursor"] != cursor {
		t.Errorf("nextCursor = %v", body["nextCursor"])
	}
	if w.Header().Get("ETag") == "" {
		t.Error("no ETag on list response")
	}
}

func TestListPostingsRevalidation(t *testing.T) {
	store := &fakePostingStore{
		list: func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error) {
			return nil, nil, false, nil
		},
	}
	r := newPostingsRouter(store, nil, auth.RoleUser)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/postings", nil))
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/postings", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	if second.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Error("304 carries a body")
	}
}

func TestListPostingsUsesCache(t *testing.T) {
	store := &fakePostingStore{
		list: func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error) {
			return []posting.Posting{samplePosting("p1", time.Now())}, nil, false, nil
		},
	}
	r := newPostingsRouter(store, cache.New(time.Minute), auth.RoleUser)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/postings", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}

	if store.listCalls != 1 {
		t.Errorf("store hit %d times, want 1 (cache should absorb repeats)", store.listCalls)
	}
}

func TestListPostingsBadParams(t *testing.T) {
	store := &fakePostingStore{
		list: func(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error) {
			return nil, nil, false, nil
		},
	}
	r := newPostingsRouter(store, nil, auth.RoleUser)

	for _, path := range []string{
		"/postings?limit=0",
		"/postings?limit=9999",
		"/postings?limit=abc",
		"/postings?cursor=!!!",
		"/postings?cursor=bm90LWpzb24",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestCreatePosting(t *testing.T) {
	validBody := `{"name":"Backend Engineer","about":"Build the backend","jobType":"Permanent","whatYouWillDo":["write Go","review code"]}`

	t.Run("hr can create", func(t *testing.T) {
		store := &fakePostingStore{
			create: func(ctx context.Context, req posting.CreateRequest) (posting.Posting, error) {
				if req.JobType != posting.JobTypePermanent {
					t.Errorf("jobType = %q", req.JobType)
				}
				return samplePosting("p1", time.Now()), nil
			},
		}
		r := newPostingsRouter(store, nil, auth.RoleHR)

		req := httptest.NewRequest(http.MethodPost, "/postings", strings.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		store := &fakePostingStore{
			create: func(ctx context.Context, req posting.CreateRequest) (posting.Posting, error) {
				t.Error("store reached despite missing role")
				return posting.Posting{}, nil
			},
		}
		r := newPostingsRouter(store, nil, auth.RoleUser)

		req := httptest.NewRequest(http.MethodPost, "/postings", strings.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("invalid job type", func(t *testing.T) {
		r := newPostingsRouter(&fakePostingStore{}, nil, auth.RoleAdmin)

		body := `{"name":"X","about":"Y","jobType":"Freelance","whatYouWillDo":["z"]}`
		req := httptest.NewRequest(http.MethodPost, "/postings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		store := &fakePostingStore{
			create: func(ctx context.Context, req posting.CreateRequest) (posting.Posting, error) {
				return posting.Posting{}, postgres.ErrPostingNameTaken
			},
		}
		r := newPostingsRouter(store, nil, auth.RoleAdmin)

		req := httptest.NewRequest(http.MethodPost, "/postings", strings.NewReader(validBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}
