package gateway

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryGateway is an in-memory Gateway used by tests. It applies the same
// server-stamping, sentinel and cursor semantics as the Firestore
// implementation, pushes snapshots to subscribers synchronously on every
// mutation, and counts live listeners so tests can assert that every
// subscription was released.
type MemoryGateway struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	listeners   map[int]*memListener
	nextListen  int
	now         func() time.Time
}

type memListener struct {
	collection string
	query      Query
	docID      string // set for document listeners
	collFn     func([]Document)
	docFn      func(*Document)
}

// NewMemoryGateway returns an empty in-memory gateway stamping documents
// with the real clock.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		collections: make(map[string]map[string]map[string]any),
		listeners:   make(map[int]*memListener),
		now:         time.Now,
	}
}

// SetClock replaces the timestamp source. Tests use it to make createdAt
// ordering deterministic.
func (g *MemoryGateway) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// ActiveListeners reports how many subscriptions are still open.
func (g *MemoryGateway) ActiveListeners() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.listeners)
}

func (g *MemoryGateway) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return &Document{ID: id, Data: copyValueMap(data)}, nil
}

func (g *MemoryGateway) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	g.mu.Lock()
	id := uuid.NewString()
	doc := make(map[string]any, len(data)+2)
	for k, v := range data {
		doc[k] = applySentinel(nil, v)
	}
	now := g.now()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	if g.collections[collection] == nil {
		g.collections[collection] = make(map[string]map[string]any)
	}
	g.collections[collection][id] = doc
	g.mu.Unlock()

	g.notify(collection)
	return id, nil
}

func (g *MemoryGateway) Create(ctx context.Context, collection, id string, data map[string]any) error {
	g.mu.Lock()
	if _, ok := g.collections[collection][id]; ok {
		g.mu.Unlock()
		return fmt.Errorf("%s/%s: document already exists", collection, id)
	}
	doc := make(map[string]any, len(data)+2)
	for k, v := range data {
		doc[k] = applySentinel(nil, v)
	}
	now := g.now()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	if g.collections[collection] == nil {
		g.collections[collection] = make(map[string]map[string]any)
	}
	g.collections[collection][id] = doc
	g.mu.Unlock()

	g.notify(collection)
	return nil
}

func (g *MemoryGateway) Update(ctx context.Context, collection, id string, data map[string]any) error {
	g.mu.Lock()
	doc, ok := g.collections[collection][id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	for k, v := range data {
		doc[k] = applySentinel(doc[k], v)
	}
	doc["updatedAt"] = g.now()
	g.mu.Unlock()

	g.notify(collection)
	return nil
}

func (g *MemoryGateway) Delete(ctx context.Context, collection, id string) error {
	g.mu.Lock()
	delete(g.collections[collection], id)
	g.mu.Unlock()

	g.notify(collection)
	return nil
}

func (g *MemoryGateway) Query(ctx context.Context, collection string, q Query) (*Page, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	items := g.evaluate(collection, q)
	page := &Page{Items: items}
	if len(items) > 0 {
		page.LastID = items[len(items)-1].ID
	}
	page.HasMore = q.Limit > 0 && len(items) == q.Limit
	return page, nil
}

func (g *MemoryGateway) Subscribe(ctx context.Context, collection string, q Query, fn func([]Document)) (Unsubscribe, error) {
	g.mu.Lock()
	id := g.nextListen
	g.nextListen++
	g.listeners[id] = &memListener{collection: collection, query: q, collFn: fn}
	initial := g.evaluate(collection, q)
	g.mu.Unlock()

	// Initial snapshot, like Firestore's first Next.
	fn(initial)

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}, nil
}

func (g *MemoryGateway) SubscribeDocument(ctx context.Context, collection, id string, fn func(*Document)) (Unsubscribe, error) {
	g.mu.Lock()
	lid := g.nextListen
	g.nextListen++
	g.listeners[lid] = &memListener{collection: collection, docID: id, docFn: fn}
	var initial *Document
	if data, ok := g.collections[collection][id]; ok {
		initial = &Document{ID: id, Data: copyValueMap(data)}
	}
	g.mu.Unlock()

	fn(initial)

	return func() {
		g.mu.Lock()
		delete(g.listeners, lid)
		g.mu.Unlock()
	}, nil
}

// notify re-evaluates every listener on the collection and pushes the new
// snapshot. Runs synchronously so tests observe pushes deterministically.
func (g *MemoryGateway) notify(collection string) {
	g.mu.Lock()
	type pending struct {
		l    *memListener
		docs []Document
		doc  *Document
	}
	var queue []pending
	for _, l := range g.listeners {
		if l.collection != collection {
			continue
		}
		if l.docFn != nil {
			var doc *Document
			if data, ok := g.collections[collection][l.docID]; ok {
				doc = &Document{ID: l.docID, Data: copyValueMap(data)}
			}
			queue = append(queue, pending{l: l, doc: doc})
			continue
		}
		queue = append(queue, pending{l: l, docs: g.evaluate(collection, l.query)})
	}
	g.mu.Unlock()

	for _, p := range queue {
		if p.l.docFn != nil {
			p.l.docFn(p.doc)
		} else {
			p.l.collFn(p.docs)
		}
	}
}

// evaluate runs a query against the current state. Caller holds the lock.
func (g *MemoryGateway) evaluate(collection string, q Query) []Document {
	orderBy := q.OrderBy
	desc := q.Desc
	if orderBy == "" {
		orderBy = "createdAt"
		desc = true
	}

	var matched []Document
	for id, data := range g.collections[collection] {
		if matchesFilters(data, q.Filters) {
			matched = append(matched, Document{ID: id, Data: copyValueMap(data)})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareValues(matched[i].Data[orderBy], matched[j].Data[orderBy])
		if c == 0 {
			// Stable tie-break on document ID, like Firestore's implicit
			// __name__ ordering; cursors depend on it.
			c = strings.Compare(matched[i].ID, matched[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	if q.StartAfter != "" {
		idx := -1
		for i, d := range matched {
			if d.ID == q.StartAfter {
				idx = i
				break
			}
		}
		matched = matched[idx+1:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

func matchesFilters(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matchesFilter(data, f) {
			return false
		}
	}
	return true
}

func matchesFilter(data map[string]any, f Filter) bool {
	field, ok := data[f.Field]
	switch f.Op {
	case OpEqual:
		return ok && compareValues(field, f.Value) == 0
	case OpNotEqual:
		return ok && compareValues(field, f.Value) != 0
	case OpLess:
		return ok && compareValues(field, f.Value) < 0
	case OpLessOrEqual:
		return ok && compareValues(field, f.Value) <= 0
	case OpGreater:
		return ok && compareValues(field, f.Value) > 0
	case OpGreaterEqual:
		return ok && compareValues(field, f.Value) >= 0
	case OpIn:
		for _, v := range toSlice(f.Value) {
			if ok && compareValues(field, v) == 0 {
				return true
			}
		}
		return false
	case OpArrayContains:
		for _, v := range toSlice(field) {
			if compareValues(v, f.Value) == 0 {
				return true
			}
		}
		return false
	}
	return false
}

// compareValues orders two wire values of the same logical type. Mixed
// numeric widths compare as float64.
func compareValues(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case bb:
				return -1
			}
			return 1
		}
	}
	return -1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return nil
}

// applySentinel resolves an atomic-update sentinel against the current
// field value; plain values replace it.
func applySentinel(current, v any) any {
	switch s := v.(type) {
	case arrayUnion:
		existing := toSlice(current)
		for _, add := range s.values {
			dup := false
			for _, e := range existing {
				if compareValues(e, add) == 0 {
					dup = true
					break
				}
			}
			if !dup {
				existing = append(existing, add)
			}
		}
		return existing
	case arrayRemove:
		existing := toSlice(current)
		var kept []any
		for _, e := range existing {
			remove := false
			for _, r := range s.values {
				if compareValues(e, r) == 0 {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, e)
			}
		}
		return kept
	case increment:
		f, _ := toFloat(current)
		return int64(f) + s.n
	default:
		return v
	}
}

func copyValueMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyValueMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// MemoryBlobStore is an in-memory BlobStore for tests.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.blobs[path] = data
	s.mu.Unlock()
	return "mem://" + path, nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[path]; !ok {
		return fmt.Errorf("delete blob %s: %w", path, ErrNotFound)
	}
	delete(s.blobs, path)
	return nil
}

func (s *MemoryBlobStore) PathFromURL(url string) (string, bool) {
	if strings.HasPrefix(url, "mem://") {
		return strings.TrimPrefix(url, "mem://"), true
	}
	return "", false
}

// Exists reports whether a blob is stored at path.
func (s *MemoryBlobStore) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[path]
	return ok
}
