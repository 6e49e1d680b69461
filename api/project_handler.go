package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/errs"
	"github.com/portfolio-site/backend/models"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo projectStore
	media       media
}

func newProjectHandler(projectRepo projectStore, store blob.Store) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		media:       newMedia(store, logger),
	}
}

func (h projectHandler) toResponses(r *http.Request, projects []*models.Project) []ProjectResponse {
	refs := make([]*string, len(projects))
	for i, p := range projects {
		refs[i] = p.Image
	}
	urls := h.media.resolveAll(r.Context(), refs)

	responses := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		responses[i] = ProjectResponse{Project: *p, ImageURL: urls[i]}
	}
	return responses
}

func (h projectHandler) toResponse(r *http.Request, project *models.Project) ProjectResponse {
	return ProjectResponse{Project: *project, ImageURL: h.media.resolve(r.Context(), project.Image)}
}

// getAllProjects retrieves all projects
// @Summary Get all projects
// @Tags Projects
// @Produce json
// @Success 200 {array} ProjectResponse
// @Failure 500 {object} ErrorResponse
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, h.toResponses(r, projects))
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path int true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseID(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
			return
		}

		h.responder.WriteJSON(w, h.toResponse(r, project))
	}
}

// createProject creates a project from a multipart form. The image is
// required and is stored before the row is inserted.
// @Summary Create project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param github formData string true "Source link"
// @Param live formData string true "Live link"
// @Param image formData file true "Project image"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var project models.Project
		for _, field := range []struct {
			name string
			dest *string
		}{
			{"title", &project.Title},
			{"description", &project.Description},
			{"github", &project.Github},
			{"live", &project.Live},
		} {
			value, err := requiredField(r, field.name)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			*field.dest = value
		}

		image, err := formImage(r, "image")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if image == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("image"))
			return
		}

		ref, err := h.media.put(r.Context(), image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		project.Image = &ref

		if err := h.projectRepo.Add(r.Context(), &project); err != nil {
			h.media.discard(r.Context(), &ref)
			h.responder.WriteError(w, errs.NewDatabaseError("create", "project", err))
			return
		}

		admin, _ := ctxGetAdmin(r.Context())
		h.logger.Info().Int64("projectID", project.ID).Str("admin", admin).Msg("Project created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, h.toResponse(r, &project))
	}
}

// updateProject applies the fields present in a multipart form to the
// project named by the id field. A new image replaces the old one, which is
// removed only once the row is updated.
// @Summary Update project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param id formData int true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projectID, err := parseID(r.PostFormValue("id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		patch := models.ProjectPatch{
			Title:       optionalField(r, "title"),
			Description: optionalField(r, "description"),
			Github:      optionalField(r, "github"),
			Live:        optionalField(r, "live"),
		}

		image, err := formImage(r, "image")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
			return
		}

		if image != nil {
			ref, err := h.media.put(r.Context(), image)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			patch.Image = &ref
		}

		updated, err := h.projectRepo.Update(r.Context(), projectID, patch)
		if err != nil {
			h.media.discard(r.Context(), patch.Image)
			h.responder.WriteError(w, errs.NewDatabaseError("update", "project", err))
			return
		}

		if patch.Image != nil && existing.Image != nil && *existing.Image != *patch.Image {
			h.media.discard(r.Context(), existing.Image)
		}

		h.responder.WriteJSON(w, h.toResponse(r, updated))
	}
}

// deleteProject removes the project named by the id query parameter, then
// its image.
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param id query int true "Project ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseID(r.URL.Query().Get("id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		deleted, err := h.projectRepo.Delete(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "project", err))
			return
		}

		h.media.discard(r.Context(), deleted.Image)

		admin, _ := ctxGetAdmin(r.Context())
		h.logger.Info().Int64("projectID", projectID).Str("admin", admin).Msg("Project deleted")
		h.responder.WriteJSON(w, MessageResponse{
			Status:  "success",
			Message: "Project deleted successfully",
		})
	}
}
