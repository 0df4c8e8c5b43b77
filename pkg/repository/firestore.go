package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vidyalab/sahayak/pkg/model"
)

const (
	usersCollection    = "users"
	memoriesCollection = "memories"
)

// Firestore keeps memory records in a per-user subcollection
// users/{userID}/memories/{recordID}.
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) memories(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(memoriesCollection)
}

func (r *Firestore) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	doc := r.memories(record.UserID).Doc(string(record.ID))
	if _, err := doc.Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to put memory record",
			goerr.V("user", record.UserID), goerr.V("id", record.ID))
	}

	return nil
}

func (r *Firestore) ListRecords(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	iter := r.memories(userID).OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []*model.MemoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory records", goerr.V("user", userID))
		}

		var record model.MemoryRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory record", goerr.V("doc", doc.Ref.ID))
		}
		records = append(records, &record)
	}

	return records, nil
}

func (r *Firestore) UpdateUsage(ctx context.Context, userID string, id model.MemoryID, usageCount int, lastUsedAt time.Time) error {
	doc := r.memories(userID).Doc(string(id))
	_, err := doc.Update(ctx, []firestore.Update{
		{Path: "UsageCount", Value: usageCount},
		{Path: "LastUsedAt", Value: lastUsedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrRecordNotFound, "update target missing",
				goerr.V("user", userID), goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update usage",
			goerr.V("user", userID), goerr.V("id", id))
	}

	return nil
}

func (r *Firestore) DeleteRecord(ctx context.Context, userID string, id model.MemoryID) error {
	doc := r.memories(userID).Doc(string(id))

	if _, err := doc.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrRecordNotFound, "delete target missing",
				goerr.V("user", userID), goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get memory record", goerr.V("id", id))
	}

	if _, err := doc.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete memory record", goerr.V("id", id))
	}

	return nil
}

func (r *Firestore) ClearRecords(ctx context.Context, userID string) error {
	iter := r.memories(userID).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate memory records", goerr.V("user", userID))
		}

		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete memory record", goerr.V("doc", doc.Ref.ID))
		}
	}

	return nil
}

func (r *Firestore) Close() error {
	return r.client.Close()
}
