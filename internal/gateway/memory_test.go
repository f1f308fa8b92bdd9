package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestMemoryGatewayCRUD(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	id, err := gw.Add(ctx, "things", map[string]any{"name": "first"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := gw.GetByID(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Data["name"])
	assert.NotZero(t, doc.Data["createdAt"])
	assert.Equal(t, doc.Data["createdAt"], doc.Data["updatedAt"])

	err = gw.Update(ctx, "things", id, map[string]any{"name": "second"})
	require.NoError(t, err)
	doc, err = gw.GetByID(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, "second", doc.Data["name"])

	require.NoError(t, gw.Delete(ctx, "things", id))
	_, err = gw.GetByID(ctx, "things", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGatewayCreateRefusesExistingID(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	require.NoError(t, gw.Create(ctx, "users", "uid-1", map[string]any{"fullName": "Ana"}))
	err := gw.Create(ctx, "users", "uid-1", map[string]any{"fullName": "Eve"})
	require.Error(t, err)

	doc, err := gw.GetByID(ctx, "users", "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc.Data["fullName"])
}

func TestMemoryGatewayUpdateMissingDocument(t *testing.T) {
	gw := NewMemoryGateway()
	err := gw.Update(context.Background(), "things", "nope", map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGatewayUpdateStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()
	gw.SetClock(testClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))

	id, err := gw.Add(ctx, "things", map[string]any{"n": 1})
	require.NoError(t, err)
	created, _ := gw.GetByID(ctx, "things", id)

	require.NoError(t, gw.Update(ctx, "things", id, map[string]any{"n": 2}))
	updated, _ := gw.GetByID(ctx, "things", id)

	assert.Equal(t, created.Data["createdAt"], updated.Data["createdAt"])
	assert.True(t, updated.Data["updatedAt"].(time.Time).After(created.Data["updatedAt"].(time.Time)))
}

func TestMemoryGatewayQueryFilters(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()
	gw.SetClock(testClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))

	_, err := gw.Add(ctx, "services", map[string]any{"status": "active", "city": "Paris", "type": []string{"hair", "makeup"}})
	require.NoError(t, err)
	_, err = gw.Add(ctx, "services", map[string]any{"status": "draft", "city": "Paris", "type": []string{"hair"}})
	require.NoError(t, err)
	_, err = gw.Add(ctx, "services", map[string]any{"status": "active", "city": "Lyon", "type": []string{"nails"}})
	require.NoError(t, err)

	page, err := gw.Query(ctx, "services", Query{Filters: []Filter{
		{Field: "status", Op: OpEqual, Value: "active"},
	}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = gw.Query(ctx, "services", Query{Filters: []Filter{
		{Field: "status", Op: OpEqual, Value: "active"},
		{Field: "city", Op: OpEqual, Value: "Paris"},
	}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = gw.Query(ctx, "services", Query{Filters: []Filter{
		{Field: "type", Op: OpArrayContains, Value: "hair"},
	}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = gw.Query(ctx, "services", Query{Filters: []Filter{
		{Field: "status", Op: OpIn, Value: []string{"active", "draft"}},
	}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestMemoryGatewayDefaultOrderIsCreatedAtDesc(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()
	gw.SetClock(testClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))

	first, _ := gw.Add(ctx, "items", map[string]any{"n": 1})
	second, _ := gw.Add(ctx, "items", map[string]any{"n": 2})
	third, _ := gw.Add(ctx, "items", map[string]any{"n": 3})

	page, err := gw.Query(ctx, "items", Query{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, third, page.Items[0].ID)
	assert.Equal(t, second, page.Items[1].ID)
	assert.Equal(t, first, page.Items[2].ID)
}

// Paging with a carried cursor must visit every document exactly once and
// terminate.
func TestMemoryGatewayPagination(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()
	gw.SetClock(testClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))

	const total = 25
	for i := 0; i < total; i++ {
		_, err := gw.Add(ctx, "items", map[string]any{"n": i})
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		page, err := gw.Query(ctx, "items", Query{Limit: 10, StartAfter: cursor})
		require.NoError(t, err)
		for _, doc := range page.Items {
			assert.False(t, seen[doc.ID], "document %s returned twice", doc.ID)
			seen[doc.ID] = true
		}
		pages++
		require.LessOrEqual(t, pages, 10, "pagination did not terminate")
		if !page.HasMore {
			break
		}
		cursor = page.LastID
	}
	assert.Len(t, seen, total)
}

func TestMemoryGatewaySentinels(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	id, err := gw.Add(ctx, "users", map[string]any{"photos": []string{"a.jpg"}})
	require.NoError(t, err)

	// Union skips elements already present.
	require.NoError(t, gw.Update(ctx, "users", id, map[string]any{
		"photos": ArrayUnion("b.jpg", "a.jpg"),
	}))
	doc, _ := gw.GetByID(ctx, "users", id)
	assert.ElementsMatch(t, []any{"a.jpg", "b.jpg"}, doc.Data["photos"])

	require.NoError(t, gw.Update(ctx, "users", id, map[string]any{
		"photos": ArrayRemove("a.jpg"),
	}))
	doc, _ = gw.GetByID(ctx, "users", id)
	assert.ElementsMatch(t, []any{"b.jpg"}, doc.Data["photos"])

	require.NoError(t, gw.Update(ctx, "users", id, map[string]any{
		"applicationCount": Increment(1),
	}))
	require.NoError(t, gw.Update(ctx, "users", id, map[string]any{
		"applicationCount": Increment(1),
	}))
	require.NoError(t, gw.Update(ctx, "users", id, map[string]any{
		"applicationCount": Increment(-1),
	}))
	doc, _ = gw.GetByID(ctx, "users", id)
	assert.Equal(t, int64(1), doc.Data["applicationCount"])
}

func TestMemoryGatewaySubscribePushesSnapshots(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	var snapshots [][]Document
	unsub, err := gw.Subscribe(ctx, "items", Query{}, func(docs []Document) {
		snapshots = append(snapshots, docs)
	})
	require.NoError(t, err)

	// Initial snapshot arrives before any mutation.
	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	_, err = gw.Add(ctx, "items", map[string]any{"n": 1})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[1], 1)

	unsub()
	_, err = gw.Add(ctx, "items", map[string]any{"n": 2})
	require.NoError(t, err)
	assert.Len(t, snapshots, 2, "released listener must not receive pushes")
}

func TestMemoryGatewaySubscribeDocument(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	id, err := gw.Add(ctx, "users", map[string]any{"fullName": "Ana"})
	require.NoError(t, err)

	var got []*Document
	unsub, err := gw.SubscribeDocument(ctx, "users", id, func(doc *Document) {
		got = append(got, doc)
	})
	require.NoError(t, err)
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].Data["fullName"])

	require.NoError(t, gw.Update(ctx, "users", id, map[string]any{"fullName": "Eve"}))
	require.Len(t, got, 2)
	assert.Equal(t, "Eve", got[1].Data["fullName"])

	require.NoError(t, gw.Delete(ctx, "users", id))
	require.Len(t, got, 3)
	assert.Nil(t, got[2], "deletion pushes a nil snapshot")
}

func TestMemoryGatewayListenerCount(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway()

	unsub1, err := gw.Subscribe(ctx, "a", Query{}, func([]Document) {})
	require.NoError(t, err)
	unsub2, err := gw.SubscribeDocument(ctx, "b", "x", func(*Document) {})
	require.NoError(t, err)
	assert.Equal(t, 2, gw.ActiveListeners())

	unsub1()
	assert.Equal(t, 1, gw.ActiveListeners())
	unsub2()
	assert.Equal(t, 0, gw.ActiveListeners())

	// Releasing twice is harmless.
	unsub2()
	assert.Equal(t, 0, gw.ActiveListeners())
}

func TestMemoryBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()

	url, err := blobs.Upload(ctx, "profiles/u1/pic.jpg", "image/jpeg", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.True(t, blobs.Exists("profiles/u1/pic.jpg"))

	path, ok := blobs.PathFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "profiles/u1/pic.jpg", path)

	require.NoError(t, blobs.Delete(ctx, path))
	assert.False(t, blobs.Exists(path))
	assert.ErrorIs(t, blobs.Delete(ctx, path), ErrNotFound)
}
