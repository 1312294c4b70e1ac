package ports

import (
	"context"
	"errors"

	"github.com/aretw0/weft/pkg/codec"
)

// ErrDocumentNotFound is returned by Load when no document is stored under the id.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore persists encoded graph documents.
// Stores hold element trees, not live graphs: a graph is encoded before Save
// and loaded into a fresh context after Load.
type DocumentStore interface {
	// Save persists the document under the given id, replacing any previous one.
	Save(ctx context.Context, id string, doc *codec.Element) error

	// Load retrieves the document stored under id.
	// Returns ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, id string) (*codec.Element, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored documents.
	List(ctx context.Context) ([]string, error)
}
