package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showcasehq/showcase/internal/domain/project"
	"github.com/showcasehq/showcase/internal/observability"
)

const projectColumns = `id, title, description, tags, github_repo, live_demo, author_uid, likes, liked_by, created_at, updated_at`

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ProjectsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Tags,
		&p.GithubRepo,
		&p.LiveDemo,
		&p.AuthorUID,
		&p.Likes,
		&p.LikedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	return p, err
}

func (r *ProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	now := time.Now().UTC()

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	p := project.Project{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Tags:        tags,
		GithubRepo:  req.GithubRepo,
		LiveDemo:    req.LiveDemo,
		AuthorUID:   req.FirebaseUID,
		Likes:       0,
		LikedBy:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.observe("projects.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO projects(id, title, description, tags, github_repo, live_demo, author_uid, likes, liked_by, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			p.ID, p.Title, p.Description, p.Tags, p.GithubRepo, p.LiveDemo, p.AuthorUID, p.Likes, p.LikedBy, p.CreatedAt, p.UpdatedAt)

		return execErr
	})

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	baseQuery := `SELECT ` + projectColumns + ` FROM projects`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Tag != nil {
		conds = append(conds, fmt.Sprintf("$%d = ANY(tags)", argsPosition))
		args = append(args, *filter.Tag)
		argsPosition++
	}

	if filter.Search != nil {
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			argsPosition, argsPosition))
		args = append(args, *filter.Search)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// newest first, id as tiebreak for stable ordering
	query += " ORDER BY created_at DESC, id DESC"

	var output []project.Project

	err := r.observe("projects.list", func() error {
		rows, qErr := r.pool.Query(ctx, query, args...)

		if qErr != nil {
			return qErr
		}

		defer rows.Close()

		output = make([]project.Project, 0)

		for rows.Next() {
			p, sErr := scanProject(rows)

			if sErr != nil {
				return sErr
			}

			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.get_by_id", func() error {
		var sErr error
		p, sErr = scanProject(r.pool.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
		return sErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	argsPosition := 2

	if req.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argsPosition))
		args = append(args, *req.Title)
		argsPosition++
	}

	if req.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argsPosition))
		args = append(args, *req.Description)
		argsPosition++
	}

	if req.Tags != nil {
		sets = append(sets, fmt.Sprintf("tags = $%d", argsPosition))
		args = append(args, *req.Tags)
		argsPosition++
	}

	if req.GithubRepo != nil {
		sets = append(sets, fmt.Sprintf("github_repo = $%d", argsPosition))
		args = append(args, *req.GithubRepo)
		argsPosition++
	}

	if req.LiveDemo != nil {
		sets = append(sets, fmt.Sprintf("live_demo = $%d", argsPosition))
		args = append(args, *req.LiveDemo)
	}

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + projectColumns

	var p project.Project

	err := r.observe("projects.update", func() error {
		var sErr error
		p, sErr = scanProject(r.pool.QueryRow(ctx, query, args...))
		return sErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("projects.delete", func() error {
		t, execErr := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		tag = t
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return project.ErrNotFound
	}

	return nil
}

// ToggleLike flips membership of uid in liked_by and adjusts the counter
// in a single statement, so concurrent toggles cannot lose updates. Both
// CASE expressions evaluate against the pre-update row.
func (r *ProjectsRepo) ToggleLike(ctx context.Context, id, uid string) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.toggle_like", func() error {
		var sErr error
		p, sErr = scanProject(r.pool.QueryRow(ctx, `
			UPDATE projects
			SET liked_by = CASE WHEN $2 = ANY(liked_by)
					THEN array_remove(liked_by, $2)
					ELSE array_append(liked_by, $2) END,
			    likes = CASE WHEN $2 = ANY(liked_by)
					THEN GREATEST(likes - 1, 0)
					ELSE likes + 1 END,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING `+projectColumns, id, uid))
		return sErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}
