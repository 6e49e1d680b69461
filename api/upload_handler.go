package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/errs"
)

// uploadHandler stores standalone images for the admin page, outside any row.
type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	media     media
}

func newUploadHandler(store blob.Store) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		media:     newMedia(store, logger),
	}
}

// upload stores a standalone image for the admin page and returns its
// reference and a URL for it.
// @Summary Upload an image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /upload [post]
func (h uploadHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := formImage(r, "image", "file")
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

		h.responder.WriteJSON(w, UploadResponse{
			Message:  "File uploaded successfully",
			FileName: ref,
			URL:      h.media.resolve(r.Context(), &ref),
		})
	}
}
