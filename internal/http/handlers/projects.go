package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showcasehq/showcase/internal/cache"
	"github.com/showcasehq/showcase/internal/config"
	"github.com/showcasehq/showcase/internal/domain/project"
)

type ProjectStore interface {
	Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error)
	GetByID(ctx context.Context, id string) (project.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]project.Project, error)
	Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id, uid string) (project.Project, error)
}

// only the unfiltered list is cached; filtered reads go to the store
const listCacheKey = "projects:list"

type ProjectsHandler struct {
	repo  ProjectStore
	cache cache.Store
	log   *slog.Logger
}

func NewProjectsHandler(repo ProjectStore, log *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, log: log}
}

func NewProjectsHandlerWithCache(repo ProjectStore, c cache.Store, log *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, cache: c, log: log}
}

func (h *ProjectsHandler) invalidateList(ctx context.Context) {
	if h.cache != nil {
		h.cache.Delete(ctx, listCacheKey)
	}
}

func (h *ProjectsHandler) List(ctx *gin.Context) {
	var filter project.ListFilter

	if tag := ctx.Query("tag"); tag != "" {
		filter.Tag = &tag
	}

	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	unfiltered := filter.Tag == nil && filter.Search == nil

	if unfiltered && h.cache != nil {
		if raw, ok := h.cache.Get(ctx.Request.Context(), listCacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	projects, err := h.repo.List(cctx, filter)

	if err != nil {
		h.log.Error("project list failed", "err", err)
		RespondInternal(ctx)
		return
	}

	if unfiltered && h.cache != nil {
		if raw, mErr := json.Marshal(projects); mErr == nil {
			h.cache.Set(ctx.Request.Context(), listCacheKey, raw)
		}
	}

	ctx.JSON(http.StatusOK, projects)
}

func (h *ProjectsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project fetch failed", "err", err)
		RespondInternal(ctx)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) Create(ctx *gin.Context) {
	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req)

	if err != nil {
		h.log.Error("project create failed", "err", err)
		RespondInternal(ctx)
		return
	}

	h.invalidateList(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": p,
	})
}

func (h *ProjectsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req project.UpdateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project fetch failed", "err", err)
		RespondInternal(ctx)
		return
	}

	if existing.AuthorUID != req.FirebaseUID {
		RespondForbidden(ctx, "You can only update your own projects")
		return
	}

	updated, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project update failed", "err", err)
		RespondInternal(ctx)
		return
	}

	h.invalidateList(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": updated,
	})
}

func (h *ProjectsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	var req project.DeleteProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project fetch failed", "err", err)
		RespondInternal(ctx)
		return
	}

	if existing.AuthorUID != req.FirebaseUID {
		RespondForbidden(ctx, "You can only delete your own projects")
		return
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("project delete failed", "err", err)
		RespondInternal(ctx)
		return
	}

	h.invalidateList(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ToggleLike flips the caller's like on a project. Deliberately outside
// the bearer gate; each call alternates the state for that uid.
func (h *ProjectsHandler) ToggleLike(ctx *gin.Context) {
	id := ctx.Param("id")

	var req project.LikeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.repo.ToggleLike(cctx, id, req.FirebaseUID)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		h.log.Error("like toggle failed", "err", err)
		RespondInternal(ctx)
		return
	}

	h.invalidateList(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Like toggled successfully",
		"project": p,
	})
}
