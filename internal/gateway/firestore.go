package gateway

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreGateway implements Gateway against a Firestore database.
type FirestoreGateway struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreGateway wraps the given Firestore client.
func NewFirestoreGateway(client *firestore.Client, logger *zap.Logger) *FirestoreGateway {
	return &FirestoreGateway{client: client, logger: logger}
}

func (g *FirestoreGateway) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := g.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (g *FirestoreGateway) Query(ctx context.Context, collection string, q Query) (*Page, error) {
	fq, err := g.buildQuery(ctx, collection, q)
	if err != nil {
		return nil, err
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	page := &Page{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", collection, err)
		}
		page.Items = append(page.Items, Document{ID: snap.Ref.ID, Data: snap.Data()})
		page.LastID = snap.Ref.ID
	}
	page.HasMore = q.Limit > 0 && len(page.Items) == q.Limit
	return page, nil
}

func (g *FirestoreGateway) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	doc := make(map[string]any, len(data)+2)
	for k, v := range data {
		doc[k] = translateSentinel(v)
	}
	doc["createdAt"] = firestore.ServerTimestamp
	doc["updatedAt"] = firestore.ServerTimestamp

	ref, _, err := g.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (g *FirestoreGateway) Create(ctx context.Context, collection, id string, data map[string]any) error {
	doc := make(map[string]any, len(data)+2)
	for k, v := range data {
		doc[k] = translateSentinel(v)
	}
	doc["createdAt"] = firestore.ServerTimestamp
	doc["updatedAt"] = firestore.ServerTimestamp

	_, err := g.client.Collection(collection).Doc(id).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (g *FirestoreGateway) Update(ctx context.Context, collection, id string, data map[string]any) error {
	doc := make(map[string]any, len(data)+1)
	for k, v := range data {
		doc[k] = translateSentinel(v)
	}
	doc["updatedAt"] = firestore.ServerTimestamp

	_, err := g.client.Collection(collection).Doc(id).Set(ctx, doc, firestore.MergeAll)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (g *FirestoreGateway) Delete(ctx context.Context, collection, id string) error {
	_, err := g.client.Collection(collection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (g *FirestoreGateway) Subscribe(ctx context.Context, collection string, q Query, fn func([]Document)) (Unsubscribe, error) {
	fq, err := g.buildQuery(ctx, collection, q)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	snaps := fq.Snapshots(ctx)

	go func() {
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					g.logger.Error("collection subscription ended",
						zap.String("collection", collection), zap.Error(err))
				}
				return
			}
			docs := make([]Document, 0, snap.Size)
			iter := snap.Documents
			for {
				ds, err := iter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					g.logger.Error("snapshot iteration failed",
						zap.String("collection", collection), zap.Error(err))
					return
				}
				docs = append(docs, Document{ID: ds.Ref.ID, Data: ds.Data()})
			}
			fn(docs)
		}
	}()

	return func() {
		snaps.Stop()
		cancel()
	}, nil
}

func (g *FirestoreGateway) SubscribeDocument(ctx context.Context, collection, id string, fn func(*Document)) (Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := g.client.Collection(collection).Doc(id).Snapshots(ctx)

	go func() {
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					g.logger.Error("document subscription ended",
						zap.String("collection", collection), zap.String("id", id), zap.Error(err))
				}
				return
			}
			if !snap.Exists() {
				fn(nil)
				continue
			}
			fn(&Document{ID: snap.Ref.ID, Data: snap.Data()})
		}
	}()

	return func() {
		snaps.Stop()
		cancel()
	}, nil
}

func (g *FirestoreGateway) buildQuery(ctx context.Context, collection string, q Query) (firestore.Query, error) {
	fq := g.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}

	orderBy := q.OrderBy
	desc := q.Desc
	if orderBy == "" {
		orderBy = "createdAt"
		desc = true
	}
	dir := firestore.Asc
	if desc {
		dir = firestore.Desc
	}
	fq = fq.OrderBy(orderBy, dir)

	if q.StartAfter != "" {
		// StartAfter needs the snapshot of the cursor document.
		snap, err := g.client.Collection(collection).Doc(q.StartAfter).Get(ctx)
		if err != nil {
			return fq, fmt.Errorf("fetch cursor %s/%s: %w", collection, q.StartAfter, err)
		}
		fq = fq.StartAfter(snap)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq, nil
}

// translateSentinel converts the gateway's atomic-update sentinels to their
// Firestore equivalents. Plain values pass through unchanged.
func translateSentinel(v any) any {
	switch s := v.(type) {
	case arrayUnion:
		return firestore.ArrayUnion(s.values...)
	case arrayRemove:
		return firestore.ArrayRemove(s.values...)
	case increment:
		return firestore.Increment(s.n)
	default:
		return v
	}
}
