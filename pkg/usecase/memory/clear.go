package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Clear removes all records of a user
func (u *UseCase) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}

	if err := u.repo.ClearRecords(ctx, userID); err != nil {
		return goerr.Wrap(err, "failed to clear memory records", goerr.V("user", userID))
	}

	return nil
}
