// Package gateway is the abstraction boundary over the hosted document
// database and blob storage. Repositories talk to these interfaces only;
// the Firestore and Cloud Storage implementations live beside an in-memory
// fake used by tests.
package gateway

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a document ID has no backing document.
var ErrNotFound = errors.New("document not found")

// Operator is a query filter operator.
type Operator string

const (
	OpEqual         Operator = "=="
	OpNotEqual      Operator = "!="
	OpLess          Operator = "<"
	OpLessOrEqual   Operator = "<="
	OpGreater       Operator = ">"
	OpGreaterEqual  Operator = ">="
	OpIn            Operator = "in"
	OpArrayContains Operator = "array-contains"
)

// Filter is one (field, operator, value) triple.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Query describes a collection read. When OrderBy is empty the server
// default applies: creation time descending. StartAfter is the document ID
// of the last item of the previous page; callers must carry it forward or
// pagination restarts from the top.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
	StartAfter string
}

// Document is one row of a collection as the backend returns it. Data
// values keep their wire types; repositories normalize them.
type Document struct {
	ID   string
	Data map[string]any
}

// Page is one page of query results. HasMore is true when a full page was
// returned; the caller passes LastID as the next StartAfter.
type Page struct {
	Items   []Document
	LastID  string
	HasMore bool
}

// Unsubscribe releases a live subscription. Every subscription holds an
// open listener until it is called; callers must invoke it on teardown.
type Unsubscribe func()

// Gateway exposes generic CRUD, query and real-time subscribe primitives
// over named document collections. Add, Create and Update stamp createdAt
// and updatedAt server-side.
type Gateway interface {
	GetByID(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, q Query) (*Page, error)
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Create writes a new document under a caller-chosen ID and fails if
	// the ID is already taken. Used where the ID is externally assigned,
	// such as user profiles keyed by auth UID.
	Create(ctx context.Context, collection, id string, data map[string]any) error
	Update(ctx context.Context, collection, id string, data map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string, q Query, fn func([]Document)) (Unsubscribe, error)
	SubscribeDocument(ctx context.Context, collection, id string, fn func(*Document)) (Unsubscribe, error)
}

// BlobStore exposes upload and delete primitives against hosted object
// storage. Paths are the deterministic media paths of the app
// (profiles/{uid}/..., service-images/{id}/..., message-media/{id}/...).
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, path string) error
	// PathFromURL derives the storage path back from a download URL, so
	// entities holding URL lists can cascade-delete their blobs.
	PathFromURL(url string) (string, bool)
}

type arrayUnion struct{ values []any }
type arrayRemove struct{ values []any }
type increment struct{ n int64 }

// ArrayUnion returns an update value that atomically appends the given
// elements to an array field, skipping elements already present.
func ArrayUnion(values ...any) any { return arrayUnion{values: values} }

// ArrayRemove returns an update value that atomically removes the given
// elements from an array field.
func ArrayRemove(values ...any) any { return arrayRemove{values: values} }

// Increment returns an update value that atomically adds n to a numeric
// field.
func Increment(n int64) any { return increment{n: n} }
