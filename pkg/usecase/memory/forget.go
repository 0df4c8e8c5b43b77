package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

// Forget removes a single record
func (u *UseCase) Forget(ctx context.Context, userID string, id model.MemoryID) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if id == "" {
		return goerr.New("memory record ID is required")
	}

	if err := u.repo.DeleteRecord(ctx, userID, id); err != nil {
		return goerr.Wrap(err, "failed to forget memory record",
			goerr.V("user", userID), goerr.V("id", id))
	}

	return nil
}
