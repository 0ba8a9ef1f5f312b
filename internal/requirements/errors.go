package requirements

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DominicRaj03/Gen-AI---QA/internal/models"
)

var (
	// ErrMissingCredentials is returned when a source is used without being configured.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrMissingItemID is returned for a blank item id.
	ErrMissingItemID = errors.New("item id is required")
	// ErrUnknownSource is returned for a source other than Jira or Azure DevOps.
	ErrUnknownSource = errors.New("unknown requirement source")
)

// IsInputError reports whether err was detected locally, before any request
// was sent, because the caller's input or configuration is incomplete.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrMissingItemID) || errors.Is(err, ErrUnknownSource)
}

// FetchError is returned when a requirement source answers with a non-200 status.
type FetchError struct {
	Source     models.Source
	ItemID     string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s request for %q failed with status %d (%s)",
		e.Source, e.ItemID, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the status is one where another attempt may succeed.
func (e *FetchError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// retryable is the attempts.Policy predicate for fetches: transport errors and
// temporary statuses are retried, everything else is final.
func retryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Temporary()
	}
	return !IsInputError(err)
}
