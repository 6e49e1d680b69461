package api

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/portfolio-site/backend/blob"
	"github.com/portfolio-site/backend/errs"
)

const (
	multipartMemory = 32 << 20
	resolveWorkers  = 8
)

// upload is an image file taken from a request.
type upload struct {
	filename string
	data     []byte
}

// media wraps a blob.Store with the ordering and best-effort rules shared by
// every resource handler.
type media struct {
	store  blob.Store
	logger zerolog.Logger
	now    func() time.Time
}

func newMedia(store blob.Store, logger zerolog.Logger) media {
	return media{store: store, logger: logger, now: time.Now}
}

// put stores an upload under a timestamped name derived from its filename.
func (m media) put(ctx context.Context, up *upload) (string, error) {
	return m.putNamed(ctx, blob.ObjectName(up.filename, m.now()), up.data)
}

func (m media) putNamed(ctx context.Context, name string, data []byte) (string, error) {
	ref, err := m.store.Put(ctx, name, data)
	if err != nil {
		return "", errs.NewStorageError(errs.ErrBlobWrite, name, err)
	}
	return ref, nil
}

// discard removes a blob without failing the caller; errors are only logged.
func (m media) discard(ctx context.Context, ref *string) {
	if ref == nil || *ref == "" || blob.IsExternal(*ref) {
		return
	}
	// the row mutation already happened, so finish even if the client went away
	ctx = context.WithoutCancel(ctx)
	if err := m.store.Remove(ctx, *ref); err != nil {
		m.logger.Warn().Err(err).Str("ref", *ref).Msg("Failed to remove blob")
	}
}

// resolve returns a fetchable URL for ref, or "" when there is none.
func (m media) resolve(ctx context.Context, ref *string) string {
	if ref == nil || *ref == "" {
		return ""
	}
	url, err := m.store.Resolve(ctx, *ref)
	if err != nil {
		m.logger.Warn().Err(err).Str("ref", *ref).Msg("Failed to resolve blob")
		return ""
	}
	return url
}

// resolveAll resolves refs concurrently; the result is index-aligned with refs.
func (m media) resolveAll(ctx context.Context, refs []*string) []string {
	urls := make([]string, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers)
	for i, ref := range refs {
		if ref == nil {
			continue
		}
		i, ref := i, ref
		g.Go(func() error {
			urls[i] = m.resolve(gctx, ref)
			return nil
		})
	}
	_ = g.Wait()
	return urls
}

// parseMultipart parses a multipart body, mapping failures onto API errors.
func parseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errs.NewMaxBodySizeExceededError(tooLarge.Limit)
		case errors.Is(err, http.ErrNotMultipart):
			return errs.NewUnsupportedMediaTypeError(r.Header.Get("Content-Type"), "multipart/form-data")
		default:
			return errs.NewMalformedPayloadError("multipart", err)
		}
	}
	return nil
}

func requiredField(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.PostFormValue(name))
	if value == "" {
		return "", errs.NewMissingRequiredFieldError(name)
	}
	return value, nil
}

// optionalField returns nil when the form did not carry name at all.
func optionalField(r *http.Request, name string) *string {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return nil
	}
	value := strings.TrimSpace(values[0])
	return &value
}

func intField(r *http.Request, name string, required bool) (*int64, error) {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		if required {
			return nil, errs.NewMissingRequiredFieldError(name)
		}
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.NewInvalidFieldError(name, "must be an integer")
	}
	return &n, nil
}

// formImage returns the first non-empty file found under keys, or nil.
func formImage(r *http.Request, keys ...string) (*upload, error) {
	for _, key := range keys {
		file, header, err := r.FormFile(key)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, errs.NewMalformedPayloadError("multipart", err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, errs.NewMalformedPayloadError("multipart", err)
		}
		if len(data) == 0 {
			continue
		}
		if !blob.IsImage(data) {
			return nil, errs.NewUnsupportedMediaTypeError(blob.DetectContentType(data, header.Filename), "image/*")
		}
		return &upload{filename: header.Filename, data: data}, nil
	}
	return nil, nil
}

// decodeInlineImage accepts raw base64 or a base64 data URL.
func decodeInlineImage(field, value string) ([]byte, error) {
	if strings.HasPrefix(value, "data:") {
		_, payload, ok := strings.Cut(value, ",")
		if !ok {
			return nil, errs.NewInvalidFieldError(field, "malformed data URL")
		}
		value = payload
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errs.NewInvalidFieldError(field, "must be base64 encoded image data or an http(s) URL")
	}
	if !blob.IsImage(data) {
		return nil, errs.NewUnsupportedMediaTypeError(blob.DetectContentType(data, ""), "image/*")
	}
	return data, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errs.NewMissingRequiredFieldError("id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewInvalidFieldError("id", "must be a positive integer")
	}
	return id, nil
}
