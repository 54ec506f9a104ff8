package tracker

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/focusnest/prep-service/internal/progress"
)

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore instantiates a Firestore-backed store. Each record key is one document
// under users/{userID}/prep.
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

const prepCollection = "prep"

func (s *firestoreStore) userCollection(userID string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection(prepCollection)
}

func (s *firestoreStore) Load(ctx context.Context, userID string) (Journey, bool, error) {
	col := s.userCollection(userID)
	snaps := make([]*firestore.DocumentSnapshot, len(RecordKeys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range RecordKeys {
		g.Go(func() error {
			doc, err := col.Doc(key).Get(gctx)
			if status.Code(err) == codes.NotFound {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get %s: %w", key, err)
			}
			snaps[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Journey{}, false, err
	}

	found := false
	j := Journey{Progress: progress.NewProgress()}
	for i, key := range RecordKeys {
		doc := snaps[i]
		if doc == nil {
			continue
		}
		found = true

		var err error
		switch key {
		case KeyStartDate:
			err = decodeValue(doc, &j.StartedAt)
		case KeyTasks:
			err = decodeValue(doc, &j.Tasks)
		case KeyProgress:
			err = decodeValue(doc, &j.Progress)
		case KeyMilestones:
			err = decodeValue(doc, &j.Milestones)
		case KeyGoals:
			var goals progress.Goals
			if err = decodeValue(doc, &goals); err == nil {
				j.Goals = &goals
			}
		}
		if err != nil {
			return Journey{}, false, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return j, found, nil
}

func (s *firestoreStore) Save(ctx context.Context, userID string, journey Journey) error {
	col := s.userCollection(userID)
	now := time.Now().UTC()
	values := map[string]any{
		KeyStartDate:  journey.StartedAt.UTC(),
		KeyTasks:      journey.Tasks,
		KeyProgress:   journey.Progress,
		KeyMilestones: journey.Milestones,
	}
	if journey.Goals != nil {
		values[KeyGoals] = *journey.Goals
	}

	return s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, key := range RecordKeys {
			ref := col.Doc(key)
			value, ok := values[key]
			if !ok {
				if err := tx.Delete(ref); err != nil {
					return err
				}
				continue
			}
			if err := tx.Set(ref, map[string]any{"value": value, "updated_at": now}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *firestoreStore) Delete(ctx context.Context, userID string) error {
	iter := s.userCollection(userID).Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		refs = append(refs, doc.Ref)
	}
	if len(refs) == 0 {
		return nil
	}

	return s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return nil
	})
}

func decodeValue[T any](doc *firestore.DocumentSnapshot, out *T) error {
	var wrapper struct {
		Value T `firestore:"value"`
	}
	if err := doc.DataTo(&wrapper); err != nil {
		return err
	}
	*out = wrapper.Value
	return nil
}
