package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/toryoki/jobhub/internal/domain/posting"
	"github.com/toryoki/jobhub/internal/observability"
	"github.com/toryoki/jobhub/internal/utils"
)

var ErrPostingNameTaken = errors.New("posting name already in use")

const postingColumns = `id, name, about, job_type, what_you_will_do,
         requirements, application_instructions, created_at, updated_at`

type PostingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostingsRepo {
	return &PostingsRepo{pool: pool, prom: prom}
}

func (r *PostingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanPosting(row pgx.Row) (posting.Posting, error) {
	var p posting.Posting

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.About,
		&p.JobType,
		&p.WhatYouWillDo,
		&p.Requirements,
		&p.ApplicationInstructions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func (r *PostingsRepo) Create(ctx context.Context, req posting.CreateRequest) (posting.Posting, error) {
	now := time.Now().UTC()

	p := posting.Posting{
		ID:                      uuid.NewString(),
		Name:                    req.Name,
		About:                   req.About,
		JobType:                 req.JobType,
		WhatYouWillDo:           req.WhatYouWillDo,
		Requirements:            req.Requirements,
		ApplicationInstructions: req.ApplicationInstructions,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	err := r.observe("postings.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO postings (id, name, about, job_type, what_you_will_do,
          requirements, application_instructions, created_at, updated_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			p.ID, p.Name, p.About, p.JobType, p.WhatYouWillDo,
			p.Requirements, p.ApplicationInstructions, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return posting.Posting{}, ErrPostingNameTaken
		}
		return posting.Posting{}, err
	}

	return p, nil
}

// ListCursor pages newest-first with a keyset cursor; limit+1 rows are
// fetched to learn whether another page exists.
func (r *PostingsRepo) ListCursor(
	ctx context.Context,
	limit int,
	afterCreatedAt time.Time,
	afterID string,
) (items []posting.Posting, nextCursor *string, hasMore bool, err error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows

	err = r.observe("postings.list_cursor", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT `+postingColumns+`
         FROM postings
         WHERE (created_at, id) < ($1, $2)
         ORDER BY created_at DESC, id DESC
         LIMIT $3`,
			afterCreatedAt, afterID, limit+1,
		)
		return err
	})

	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	items = make([]posting.Posting, 0, limit)

	for rows.Next() {
		p, scanErr := scanPosting(rows)

		if scanErr != nil {
			return nil, nil, false, scanErr
		}

		items = append(items, p)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, false, err
	}

	if len(items) > limit {
		items = items[:limit]
		hasMore = true

		last := items[len(items)-1]
		c, encErr := utils.EncodePostingCursor(last.CreatedAt, last.ID)

		if encErr != nil {
			return nil, nil, false, encErr
		}

		nextCursor = &c
	}

	return items, nextCursor, hasMore, nil
}
