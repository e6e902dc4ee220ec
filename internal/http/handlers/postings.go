package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/cache"
	"github.com/toryoki/jobhub/internal/config"
	"github.com/toryoki/jobhub/internal/domain/posting"
	"github.com/toryoki/jobhub/internal/repo/postgres"
	"github.com/toryoki/jobhub/internal/utils"
)

const (
	defaultPostingsLimit = 20
	maxPostingsLimit     = 100
)

// First-page sentinel for the descending keyset scan; everything sorts
// below it.
var (
	listStartCreatedAt = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	listStartID        = "ffffffff-ffff-ffff-ffff-ffffffffffff"
)

// PostingStore is the persistence surface for job postings.
type PostingStore interface {
	Create(ctx context.Context, req posting.CreateRequest) (posting.Posting, error)
	ListCursor(ctx context.Context, limit int, afterCreatedAt time.Time, afterID string) ([]posting.Posting, *string, bool, error)
}

// PostingsHandler serves the postings catalogue.
type PostingsHandler struct {
	store PostingStore
	cache *cache.Cache
	cfg   config.Config
}

func NewPostingsHandler(store PostingStore, listCache *cache.Cache, cfg config.Config) *PostingsHandler {
	return &PostingsHandler{store: store, cache: listCache, cfg: cfg}
}

type postingsPage struct {
	Items      []posting.Posting `json:"items"`
	NextCursor *string           `json:"nextCursor"`
	HasMore    bool              `json:"hasMore"`
}

// List returns a page of postings, newest first. Pagination is keyset
// based: clients pass back the opaque nextCursor from the previous page.
func (h *PostingsHandler) List(c *gin.Context) {
	limit := defaultPostingsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPostingsLimit {
			RespondBadRequest(c, "invalid_limit",
				fmt.Sprintf("limit must be an integer between 1 and %d", maxPostingsLimit))
			return
		}
		limit = n
	}

	afterCreatedAt := listStartCreatedAt
	afterID := listStartID
	rawCursor := c.Query("cursor")
	if rawCursor != "" {
		cur, err := utils.DecodePostingCursor(rawCursor)
		if err != nil {
			RespondBadRequest(c, "invalid_cursor", "cursor is malformed")
			return
		}
		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	cacheKey := fmt.Sprintf("postings:%s:%d", rawCursor, limit)
	if h.cache != nil {
		if cached, ok := h.cache.Get(cacheKey); ok {
			if page, ok := cached.(postingsPage); ok {
				RespondJSONWithETag(c, http.StatusOK, page)
				return
			}
		}
	}

	items, nextCursor, hasMore, err := h.store.ListCursor(c.Request.Context(), limit, afterCreatedAt, afterID)
	if err != nil {
		RespondInternal(c, "could not list postings", err, !h.cfg.IsProd())
		return
	}

	page := postingsPage{Items: items, NextCursor: nextCursor, HasMore: hasMore}
	if h.cache != nil {
		h.cache.Set(cacheKey, page)
	}
	RespondJSONWithETag(c, http.StatusOK, page)
}

type CreatePostingRequest struct {
	Name                    string   `json:"name" binding:"required,max=200"`
	About                   string   `json:"about" binding:"required"`
	JobType                 string   `json:"jobType" binding:"required,oneof=Permanent Contract"`
	WhatYouWillDo           []string `json:"whatYouWillDo" binding:"required,min=1,dive,required"`
	Requirements            []string `json:"requirements" binding:"omitempty,dive,required"`
	ApplicationInstructions []string `json:"applicationInstructions" binding:"omitempty,dive,required"`
}

func (h *PostingsHandler) Create(c *gin.Context) {
	var req CreatePostingRequest
	if !BindJSON(c, &req) {
		return
	}

	p, err := h.store.Create(c.Request.Context(), posting.CreateRequest{
		Name:                    req.Name,
		About:                   req.About,
		JobType:                 req.JobType,
		WhatYouWillDo:           req.WhatYouWillDo,
		Requirements:            req.Requirements,
		ApplicationInstructions: req.ApplicationInstructions,
	})
	if err != nil {
		if errors.Is(err, postgres.ErrPostingNameTaken) {
			RespondBadRequest(c, "name_taken", "a posting with this name already exists")
			return
		}
		RespondInternal(c, "could not create posting", err, !h.cfg.IsProd())
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}
	c.JSON(http.StatusCreated, gin.H{"posting": p})
}
