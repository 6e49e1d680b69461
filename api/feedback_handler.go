package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/errs"
	"github.com/portfolio-site/backend/models"
)

const notifyTimeout = 30 * time.Second

type feedbackHandler struct {
	responder    Responder
	logger       zerolog.Logger
	feedbackRepo feedbackStore
	media        media
	notifier     FeedbackNotifier
}

func newFeedbackHandler(feedbackRepo feedbackStore, store blob.Store, notifier FeedbackNotifier) feedbackHandler {
	logger := log.With().Str("handlerName", "feedbackHandler").Logger()

	return feedbackHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		feedbackRepo: feedbackRepo,
		media:        newMedia(store, logger),
		notifier:     notifier,
	}
}

// UpdateFeedbackRequest is the JSON body of PUT /feedback. ProfileImage is
// either base64 image data or an http(s) URL kept as is.
type UpdateFeedbackRequest struct {
	ID           *int64  `json:"id"`
	Name         *string `json:"name,omitempty"`
	Feedback     *string `json:"feedback,omitempty"`
	Stars        *int    `json:"stars,omitempty"`
	ImageSize    *int64  `json:"imageSize,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// DeleteFeedbackRequest is the JSON body of DELETE /feedback.
type DeleteFeedbackRequest struct {
	ID *int64 `json:"id"`
}

func (h feedbackHandler) toResponses(r *http.Request, rows []*models.Feedback) []FeedbackResponse {
	refs := make([]*string, len(rows))
	for i, f := range rows {
		refs[i] = f.ProfileImage
	}
	urls := h.media.resolveAll(r.Context(), refs)

	responses := make([]FeedbackResponse, len(rows))
	for i, f := range rows {
		responses[i] = FeedbackResponse{Feedback: *f, ImageURL: urls[i]}
	}
	return responses
}

func (h feedbackHandler) toResponse(r *http.Request, f *models.Feedback) FeedbackResponse {
	return FeedbackResponse{Feedback: *f, ImageURL: h.media.resolve(r.Context(), f.ProfileImage)}
}

// getAllFeedback lists feedback, newest first
// @Summary Get all feedback
// @Tags Feedback
// @Produce json
// @Success 200 {array} FeedbackResponse
// @Router /feedback [get]
func (h feedbackHandler) getAllFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := h.feedbackRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "feedback", err))
			return
		}

		h.responder.WriteJSON(w, h.toResponses(r, rows))
	}
}

// createFeedback stores a visitor's feedback from a multipart form. The
// profile image may arrive as either "image" or "profileImage".
// @Summary Create feedback
// @Tags Feedback
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param feedback formData string true "Feedback text"
// @Param stars formData int true "Rating"
// @Param imageSize formData int false "Image size reported by the client"
// @Param image formData file false "Profile image"
// @Success 200 {object} FeedbackResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /feedback [post]
func (h feedbackHandler) createFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		name, err := requiredField(r, "name")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		text, err := requiredField(r, "feedback")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		stars, err := intField(r, "stars", true)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		imageSize, err := intField(r, "imageSize", false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := formImage(r, "image", "profileImage")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		feedback := models.Feedback{
			Name:     name,
			Feedback: text,
			Stars:    int(*stars),
		}
		if imageSize != nil {
			feedback.ImageSize = *imageSize
		}

		if image != nil {
			ref, err := h.media.put(r.Context(), image)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			feedback.ProfileImage = &ref
			if imageSize == nil {
				feedback.ImageSize = int64(len(image.data))
			}
		}

		if err := h.feedbackRepo.Add(r.Context(), &feedback); err != nil {
			h.media.discard(r.Context(), feedback.ProfileImage)
			h.responder.WriteError(w, errs.NewDatabaseError("create", "feedback", err))
			return
		}

		h.logger.Info().Int64("feedbackID", feedback.ID).Msg("Feedback created")
		h.notify(r.Context(), feedback)
		h.responder.WriteJSON(w, h.toResponse(r, &feedback))
	}
}

// notify sends the new-feedback notification in the background.
func (h feedbackHandler) notify(ctx context.Context, feedback models.Feedback) {
	if h.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	go func() {
		defer cancel()
		if err := h.notifier.NotifyFeedback(ctx, feedback); err != nil {
			h.logger.Warn().Err(err).Int64("feedbackID", feedback.ID).Msg("Failed to send feedback notification")
		}
	}()
}

// updateFeedback applies the fields present in a JSON body to the feedback
// row named by id.
// @Summary Update feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body UpdateFeedbackRequest true "Fields to change"
// @Success 200 {object} FeedbackResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback [put]
func (h feedbackHandler) updateFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateFeedbackRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		feedbackID, err := requireID(req.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		patch := models.FeedbackPatch{
			Name:      req.Name,
			Feedback:  req.Feedback,
			Stars:     req.Stars,
			ImageSize: req.ImageSize,
		}

		var inline []byte
		var external *string
		if req.ProfileImage != nil && strings.TrimSpace(*req.ProfileImage) != "" {
			value := strings.TrimSpace(*req.ProfileImage)
			if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
				external = &value
			} else {
				inline, err = decodeInlineImage("profileImage", value)
				if err != nil {
					h.responder.WriteError(w, err)
					return
				}
			}
		}

		existing, err := h.feedbackRepo.FindByID(r.Context(), feedbackID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "feedback", err))
			return
		}

		switch {
		case inline != nil:
			name := fmt.Sprintf("%d-updated-%d", h.media.now().UnixMilli(), feedbackID)
			ref, err := h.media.putNamed(r.Context(), name, inline)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			patch.ProfileImage = &ref
		case external != nil:
			patch.ProfileImage = external
		}

		updated, err := h.feedbackRepo.Update(r.Context(), feedbackID, patch)
		if err != nil {
			if inline != nil {
				h.media.discard(r.Context(), patch.ProfileImage)
			}
			h.responder.WriteError(w, errs.NewDatabaseError("update", "feedback", err))
			return
		}

		if patch.ProfileImage != nil && existing.ProfileImage != nil && *existing.ProfileImage != *patch.ProfileImage {
			h.media.discard(r.Context(), existing.ProfileImage)
		}

		h.responder.WriteJSON(w, h.toResponse(r, updated))
	}
}

// deleteFeedback removes the feedback row named in the JSON body, then its
// profile image.
// @Summary Delete feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body DeleteFeedbackRequest true "Feedback to delete"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback [delete]
func (h feedbackHandler) deleteFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeleteFeedbackRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		feedbackID, err := requireID(req.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		deleted, err := h.feedbackRepo.Delete(r.Context(), feedbackID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("delete", "feedback", err))
			return
		}

		h.media.discard(r.Context(), deleted.ProfileImage)

		h.logger.Info().Int64("feedbackID", feedbackID).Msg("Feedback deleted")
		h.responder.WriteJSON(w, MessageResponse{
			Status:  "success",
			Message: "Feedback deleted successfully",
		})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errs.NewMaxBodySizeExceededError(tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError("JSON", err)
		default:
			return errs.NewInvalidJSONError(err)
		}
	}
	if decoder.More() {
		return errs.NewBadRequestError("body must hold a single JSON object")
	}
	return nil
}

func requireID(id *int64) (int64, error) {
	if id == nil {
		return 0, errs.NewMissingRequiredFieldError("id")
	}
	if *id <= 0 {
		return 0, errs.NewInvalidFieldError("id", "must be a positive integer")
	}
	return *id, nil
}
