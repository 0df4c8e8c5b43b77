package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vidyalab/sahayak/pkg/model"
)

// List returns all of a user's records in insertion order
func (u *UseCase) List(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	records, err := u.repo.ListRecords(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memory records", goerr.V("user", userID))
	}

	return records, nil
}
