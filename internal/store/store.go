// Package store defines the document store the progression core persists through.
//
// Documents are addressed by (collection, id). Single-document writes can be made
// conditional on the document's "version" field; multi-document writes are applied
// one by one with no cross-document atomicity.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document version changed")
	ErrDuplicate       = errors.New("duplicate document")
)

// VersionField is bumped by every successful CompareAndSwap.
const VersionField = "version"

// Fields is a partial document: top-level field names to new values.
type Fields map[string]interface{}

// Filter matches documents whose top-level fields equal the given values.
// A filter value matches an array field when the array contains it.
type Filter map[string]interface{}

// UniqueIndex rejects a write that would give two documents of Collection the
// same values for Fields. When Partial is set only documents matching it take
// part. Violations surface as ErrDuplicate.
type UniqueIndex struct {
	Collection string
	Fields     []string
	Partial    Filter
}

// BatchOp is one entry of a BatchUpdate.
type BatchOp struct {
	ID     string
	Fields Fields
}

// Store is the persistence contract used by the repositories.
//
// out arguments are pointers to a document struct (Get) or to a slice of
// document structs (Query, ListAll).
type Store interface {
	Get(ctx context.Context, collection, id string, out interface{}) error
	Put(ctx context.Context, collection, id string, doc interface{}) error
	Update(ctx context.Context, collection, id string, fields Fields) error
	// CompareAndSwap applies fields only if the stored version equals version,
	// and increments the version. It returns ErrVersionConflict otherwise.
	CompareAndSwap(ctx context.Context, collection, id string, version int64, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filter Filter, out interface{}) error
	ListAll(ctx context.Context, collection string, out interface{}) error
	// BatchUpdate applies every op independently. Ops addressing missing
	// documents are skipped. A failure leaves earlier ops applied.
	BatchUpdate(ctx context.Context, collection string, ops []BatchOp) error
}
