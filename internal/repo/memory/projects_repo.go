package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/showcasehq/showcase/internal/domain/project"
)

type ProjectsRepo struct {
	mu    sync.RWMutex
	items map[string]project.Project
}

func NewProjectsRepo() *ProjectsRepo {
	return &ProjectsRepo{
		items: make(map[string]project.Project),
	}
}

// stored values are never handed out directly, slices are copied both ways
func clone(p project.Project) project.Project {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.LikedBy = append([]string(nil), p.LikedBy...)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.LikedBy == nil {
		out.LikedBy = []string{}
	}
	return out
}

func (r *ProjectsRepo) Create(_ context.Context, req project.CreateProjectRequest) (project.Project, error) {
	now := time.Now().UTC()

	tags := append([]string(nil), req.Tags...)
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

	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	return clone(p), nil
}

func (r *ProjectsRepo) GetByID(_ context.Context, id string) (project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	return clone(p), nil
}

func matches(p project.Project, filter project.ListFilter) bool {
	if filter.Tag != nil {
		found := false

		for _, t := range p.Tags {
			if t == *filter.Tag {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	if filter.Search != nil {
		q := strings.ToLower(*filter.Search)

		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}

	return true
}

func (r *ProjectsRepo) List(_ context.Context, filter project.ListFilter) ([]project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]project.Project, 0, len(r.items))

	for _, p := range r.items {
		if matches(p, filter) {
			out = append(out, clone(p))
		}
	}

	// newest first, id as tiebreak for stable ordering
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *ProjectsRepo) Update(_ context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	if req.Title != nil {
		p.Title = *req.Title
	}

	if req.Description != nil {
		p.Description = *req.Description
	}

	if req.Tags != nil {
		p.Tags = append([]string(nil), (*req.Tags)...)
		if p.Tags == nil {
			p.Tags = []string{}
		}
	}

	if req.GithubRepo != nil {
		p.GithubRepo = *req.GithubRepo
	}

	if req.LiveDemo != nil {
		p.LiveDemo = *req.LiveDemo
	}

	p.UpdatedAt = time.Now().UTC()

	r.items[id] = p

	return clone(p), nil
}

func (r *ProjectsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return project.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

// ToggleLike flips membership of uid in likedBy under the lock, keeping
// likes equal to len(likedBy) at all times.
func (r *ProjectsRepo) ToggleLike(_ context.Context, id, uid string) (project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	idx := -1

	for i, u := range p.LikedBy {
		if u == uid {
			idx = i
			break
		}
	}

	likedBy := append([]string(nil), p.LikedBy...)

	if idx >= 0 {
		likedBy = append(likedBy[:idx], likedBy[idx+1:]...)
	} else {
		likedBy = append(likedBy, uid)
	}

	if likedBy == nil {
		likedBy = []string{}
	}

	p.LikedBy = likedBy
	p.Likes = len(likedBy)
	p.UpdatedAt = time.Now().UTC()

	r.items[id] = p

	return clone(p), nil
}
