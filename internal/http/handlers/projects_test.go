package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/showcasehq/showcase/internal/cache"
	"github.com/showcasehq/showcase/internal/domain/project"
	"github.com/showcasehq/showcase/internal/http/handlers"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.ProjectStore interface

type fakeProjectsRepo struct {
	createFn func(ctx context.Context, req project.CreateProjectRequest) (project.Project, error)
	getFn    func(ctx context.Context, id string) (project.Project, error)
	listFn   func(ctx context.Context, filter project.ListFilter) ([]project.Project, error)
	updateFn func(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error)
	deleteFn func(ctx context.Context, id string) error
	toggleFn func(ctx context.Context, id, uid string) (project.Project, error)
}

func (f *fakeProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return project.Project{}, nil
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return project.Project{}, nil
}

func (f *fakeProjectsRepo) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return project.Project{}, nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeProjectsRepo) ToggleLike(ctx context.Context, id, uid string) (project.Project, error) {
	if f.toggleFn != nil {
		return f.toggleFn(ctx, id, uid)
	}
	return project.Project{}, nil
}

// small helper which returns a gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func sampleProject(id, authorUID string, now time.Time) project.Project {
	return project.Project{
		ID:          id,
		Title:       "Weather App",
		Description: "realtime forecasts",
		Tags:        []string{"go", "api"},
		GithubRepo:  "https://github.com/acme/weather",
		AuthorUID:   authorUID,
		Likes:       0,
		LikedBy:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateProjectHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeProjectsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{
				"title": "Weather App",
				"description": "realtime forecasts",
				"tags": ["go", "api"],
				"githubRepo": "https://github.com/acme/weather",
				"firebaseUID": "u1"
			}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.createFn = func(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
					p := sampleProject(newUUID(), req.FirebaseUID, now)
					p.Title = req.Title
					return p, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "missing_firebase_uid",
			body: `{
				"title": "Weather App",
				"description": "realtime forecasts",
				"githubRepo": "https://github.com/acme/weather"
			}`,
			repoSetup: func(f *fakeProjectsRepo) {
				// invalid payload, the repo should not be called
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "missing_title",
			body: `{
				"description": "realtime forecasts",
				"githubRepo": "https://github.com/acme/weather",
				"firebaseUID": "u1"
			}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{
				"title": "Weather App",
				"description": "realtime forecasts",
				"githubRepo": "https://github.com/acme/weather",
				"firebaseUID": "u1"
			}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.createFn = func(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
					return project.Project{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeProjectsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewProjectsHandler(fakeRepo, discardLogger())

			r := setupRouter(http.MethodPost, "/api/projects", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListProjectsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeProjectsRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success_no_filters",
			url:  "/api/projects",
			repoSetup: func(f *fakeProjectsRepo) {
				f.listFn = func(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
					if filter.Tag != nil || filter.Search != nil {
						return nil, errors.New("unexpected filters")
					}
					return []project.Project{sampleProject("id-1", "u1", now)}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "tag_filter_passed_through",
			url:  "/api/projects?tag=go",
			repoSetup: func(f *fakeProjectsRepo) {
				f.listFn = func(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
					if filter.Tag == nil || *filter.Tag != "go" {
						return nil, errors.New("tag filter not passed")
					}
					return []project.Project{sampleProject("id-1", "u1", now)}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "search_filter_passed_through",
			url:  "/api/projects?search=weather+app",
			repoSetup: func(f *fakeProjectsRepo) {
				f.listFn = func(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
					if filter.Search == nil || *filter.Search != "weather app" {
						return nil, errors.New("search filter not passed")
					}
					return []project.Project{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name: "repo_error",
			url:  "/api/projects",
			repoSetup: func(f *fakeProjectsRepo) {
				f.listFn = func(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeProjectsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewProjectsHandler(fakeRepo, discardLogger())
			r := setupRouter(http.MethodGet, "/api/projects", h.List)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				// the list endpoint returns a bare array
				var resp []project.Project
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if len(resp) != tt.wantCount {
					t.Fatalf("got %d projects, want %d", len(resp), tt.wantCount)
				}
			}
		})
	}
}

func TestGetProjectByIDHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeProjectsRepo)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "success",
			url:  "/api/projects/" + validID,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return sampleProject(id, "u1", now), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/api/projects/" + missingID,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return project.Project{}, project.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      "Project not found",
		},
		{
			name: "repo_error",
			url:  "/api/projects/" + validID,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return project.Project{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeProjectsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewProjectsHandler(fakeRepo, discardLogger())
			r := setupRouter(http.MethodGet, "/api/projects/:id", h.GetByID)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" {
				var resp struct {
					Error string `json:"error"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Error != tt.wantError {
					t.Fatalf("error = %q, want %q", resp.Error, tt.wantError)
				}
			}
		})
	}
}

func TestUpdateProjectHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeProjectsRepo)
		wantStatusCode int
	}{
		{
			name: "success_owner_patch",
			body: `{"title": "New Title", "firebaseUID": "u1"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return sampleProject(id, "u1", now), nil
				}
				f.updateFn = func(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
					if req.Title == nil || *req.Title != "New Title" {
						return project.Project{}, errors.New("patch not passed")
					}
					p := sampleProject(id, "u1", now)
					p.Title = *req.Title
					p.UpdatedAt = now.Add(time.Second)
					return p, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "forbidden_non_author",
			body: `{"title": "New Title", "firebaseUID": "intruder"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return sampleProject(id, "u1", now), nil
				}
				f.updateFn = func(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
					return project.Project{}, errors.New("update must not be called")
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "not_found",
			body: `{"title": "New Title", "firebaseUID": "u1"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return project.Project{}, project.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "missing_firebase_uid",
			body: `{"title": "New Title"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				// invalid payload, the repo should not be called
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"title": "New Title", "firebaseUID": "u1"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return sampleProject(id, "u1", now), nil
				}
				f.updateFn = func(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
					return project.Project{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeProjectsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewProjectsHandler(fakeRepo, discardLogger())
			r := setupRouter(http.MethodPut, "/api/projects/:id", h.Update)

			req := httptest.NewRequest(http.MethodPut, "/api/projects/"+validID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteProjectHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeProjectsRepo)
		wantStatusCode int
	}{
		{
			name: "success_owner",
			body: `{"firebaseUID": "u1"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return sampleProject(id, "u1", now), nil
				}
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "forbidden_non_author",
			body: `{"firebaseUID": "intruder"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return sampleProject(id, "u1", now), nil
				}
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("delete must not be called")
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "not_found",
			body: `{"firebaseUID": "u1"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.getFn = func(ctx context.Context, id string) (project.Project, error) {
					return project.Project{}, project.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "missing_firebase_uid",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeProjectsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewProjectsHandler(fakeRepo, discardLogger())
			r := setupRouter(http.MethodDelete, "/api/projects/:id", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, "/api/projects/"+validID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestToggleLikeHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeProjectsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"firebaseUID": "u2"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.toggleFn = func(ctx context.Context, id, uid string) (project.Project, error) {
					if uid != "u2" {
						return project.Project{}, errors.New("uid not passed")
					}
					p := sampleProject(id, "u1", now)
					p.Likes = 1
					p.LikedBy = []string{"u2"}
					return p, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			body: `{"firebaseUID": "u2"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.toggleFn = func(ctx context.Context, id, uid string) (project.Project, error) {
					return project.Project{}, project.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "missing_firebase_uid",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"firebaseUID": "u2"}`,
			repoSetup: func(f *fakeProjectsRepo) {
				f.toggleFn = func(ctx context.Context, id, uid string) (project.Project, error) {
					return project.Project{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeProjectsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewProjectsHandler(fakeRepo, discardLogger())
			r := setupRouter(http.MethodPost, "/api/projects/:id/like", h.ToggleLike)

			req := httptest.NewRequest(http.MethodPost, "/api/projects/"+validID+"/like", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListProjectsHandler_CacheHit(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeProjectsRepo{}
	c := cache.New(30 * time.Second)

	calls := 0
	fakeRepo.listFn = func(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
		calls++
		return []project.Project{sampleProject("id-1", "u1", now)}, nil
	}

	h := handlers.NewProjectsHandlerWithCache(fakeRepo, c, discardLogger())
	r := setupRouter(http.MethodGet, "/api/projects", h.List)

	// First request: cache miss -> repo called
	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	// Second request: cache hit -> repo should NOT be called again
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("second call got %d body=%s", w2.Code, w2.Body.String())
	}

	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}

	// Filtered request bypasses the cache
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/api/projects?tag=go", nil)
	r.ServeHTTP(w3, req3)

	if w3.Code != http.StatusOK {
		t.Fatalf("third call got %d body=%s", w3.Code, w3.Body.String())
	}

	if calls != 2 {
		t.Fatalf("expected repo calls=2 after filtered request, got %d", calls)
	}
}
