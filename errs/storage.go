package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBlobWrite = errors.New("blob write failed")
)

// NewStorageError wraps a blob store failure. The cause is logged, the client
// only sees a generic server error.
func NewStorageError(sentinel error, ref string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        sentinel,
		Details:    fmt.Sprintf("object %q", ref),
		Cause:      cause,
	}
}
