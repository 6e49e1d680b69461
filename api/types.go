package api

import (
	"github.com/portfolio-site/backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler  projectHandler
	feedbackHandler feedbackHandler
	uploadHandler   uploadHandler
	adminHandler    adminHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error  string `json:"error" example:"Internal Server Error"`
	Status string `json:"status" example:"error"`
	Field  string `json:"field,omitempty" example:"title"`
}

// MessageResponse acknowledges a mutation that returns no row.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ProjectResponse is a project row plus a URL for its image, when it has one.
type ProjectResponse struct {
	models.Project
	ImageURL string `json:"imageUrl,omitempty"`
}

// FeedbackResponse is a feedback row plus a URL for its profile image.
type FeedbackResponse struct {
	models.Feedback
	ImageURL string `json:"imageUrl,omitempty"`
}

// UploadResponse names a stored upload and where to fetch it.
type UploadResponse struct {
	Message  string `json:"message"`
	FileName string `json:"fileName"`
	URL      string `json:"url,omitempty"`
}

// LoginRequest carries admin credentials for POST /admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse holds a bearer token for the admin routes.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
