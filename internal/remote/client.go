package remote

import (
	"context"
	"errors"

	"SwipeSentinel/internal/model"
)

// ErrUnavailable wraps transport-level failures: the health refresh could
// not complete, and the account keeps its last-known status for the cycle.
var ErrUnavailable = errors.New("remote service unavailable")

// Client defines the interface to the remote service. Authentication,
// retries, and wire details live behind it; the scheduler only sees
// signals and action results.
type Client interface {
	FetchSignals(ctx context.Context, acc model.Account) (model.RemoteSignals, error)
	UpdateBio(ctx context.Context, acc model.Account, username string) error
	SwipeLikedMe(ctx context.Context, acc model.Account) (matches int, err error)
	Name() string
}
