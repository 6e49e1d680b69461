package api

import (
	"context"
	"time"

	"github.com/portfolio-site/backend/models"
)

// FeedbackNotifier is told about every feedback row that gets created.
type FeedbackNotifier interface {
	NotifyFeedback(ctx context.Context, feedback models.Feedback) error
}

type projectStore interface {
	FindAll(ctx context.Context) ([]*models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id int64) (*models.Project, error)
}

type feedbackStore interface {
	FindAll(ctx context.Context) ([]*models.Feedback, error)
	FindByID(ctx context.Context, id int64) (*models.Feedback, error)
	Add(ctx context.Context, feedback *models.Feedback) error
	Update(ctx context.Context, id int64, patch models.FeedbackPatch) (*models.Feedback, error)
	Delete(ctx context.Context, id int64) (*models.Feedback, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(s stores, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler:  newProjectHandler(s.projects, s.blobs),
		feedbackHandler: newFeedbackHandler(s.feedback, s.blobs, s.notifier),
		uploadHandler:   newUploadHandler(s.blobs),
		adminHandler:    newAdminHandler(s.authenticator, s.tokens),
		healthHandler:   newHealthHandler(s.pinger, startupTime),
	}
}
