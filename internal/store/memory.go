package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps bson-encoded documents in process memory. Documents go
// through the same codec as MongoStore, so struct tags behave identically and
// callers never share memory with the store. Unique indexes are checked under
// the write lock, so they hold against concurrent writers the way Mongo's do.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	unique map[string][]UniqueIndex
}

// NewMemoryStore creates an empty MemoryStore enforcing the given indexes.
func NewMemoryStore(indexes ...UniqueIndex) *MemoryStore {
	unique := make(map[string][]UniqueIndex)
	for _, idx := range indexes {
		unique[idx.Collection] = append(unique[idx.Collection], idx)
	}
	return &MemoryStore{
		data:   make(map[string]map[string][]byte),
		unique: unique,
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	raw, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MemoryStore) Put(ctx context.Context, collection, id string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := toMap(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	m["_id"] = id
	raw, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueLocked(collection, id, m); err != nil {
		return err
	}
	docs, ok := s.data[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.data[collection] = docs
	}
	docs[id] = raw
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(collection, id, fields, false)
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, collection, id string, version int64, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	var current bson.M
	if err := bson.Unmarshal(raw, &current); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	if asInt64(current[VersionField]) != version {
		return ErrVersionConflict
	}
	return s.applyLocked(collection, id, fields, true)
}

// applyLocked merges fields into a stored document. Callers hold s.mu.
func (s *MemoryStore) applyLocked(collection, id string, fields Fields, bumpVersion bool) error {
	raw, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	var current bson.M
	if err := bson.Unmarshal(raw, &current); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		current[k] = v
	}
	if bumpVersion {
		current[VersionField] = asInt64(current[VersionField]) + 1
	}
	updated, err := bson.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if len(s.unique[collection]) > 0 {
		var merged bson.M
		if err := bson.Unmarshal(updated, &merged); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		if err := s.checkUniqueLocked(collection, id, merged); err != nil {
			return err
		}
	}
	s.data[collection][id] = updated
	return nil
}

// checkUniqueLocked returns ErrDuplicate when doc, stored under id, would share
// the key of another document on one of the collection's unique indexes.
// Callers hold s.mu.
func (s *MemoryStore) checkUniqueLocked(collection, id string, doc bson.M) error {
	for _, idx := range s.unique[collection] {
		partial := bson.M{}
		if len(idx.Partial) > 0 {
			var err error
			if partial, err = toMap(idx.Partial); err != nil {
				return fmt.Errorf("encode partial filter: %w", err)
			}
		}
		if !matches(doc, partial) {
			continue
		}
		for otherID, raw := range s.data[collection] {
			if otherID == id {
				continue
			}
			var other bson.M
			if err := bson.Unmarshal(raw, &other); err != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, otherID, err)
			}
			if matches(other, partial) && sameKey(doc, other, idx.Fields) {
				return ErrDuplicate
			}
		}
	}
	return nil
}

func sameKey(a, b bson.M, fields []string) bool {
	for _, f := range fields {
		if !reflect.DeepEqual(a[f], b[f]) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filter Filter, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want, err := toMap(filter)
	if err != nil {
		return fmt.Errorf("encode filter: %w", err)
	}

	s.mu.RLock()
	var matched [][]byte
	for _, id := range sortedIDs(s.data[collection]) {
		raw := s.data[collection][id]
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			s.mu.RUnlock()
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		if matches(doc, want) {
			matched = append(matched, raw)
		}
	}
	s.mu.RUnlock()

	return decodeAll(matched, out)
}

func (s *MemoryStore) ListAll(ctx context.Context, collection string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	docs := s.data[collection]
	all := make([][]byte, 0, len(docs))
	for _, id := range sortedIDs(docs) {
		all = append(all, docs[id])
	}
	s.mu.RUnlock()

	return decodeAll(all, out)
}

func (s *MemoryStore) BatchUpdate(ctx context.Context, collection string, ops []BatchOp) error {
	for _, op := range ops {
		err := s.Update(ctx, collection, op.ID, op.Fields)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("batch update %s/%s: %w", collection, op.ID, err)
		}
	}
	return nil
}

// toMap round-trips v through the bson codec so values compare the way the
// stored documents decode.
func toMap(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = bson.M{}
	}
	return m, nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if arr, isArr := got.(primitive.A); isArr {
			if !containsValue(arr, want) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func containsValue(arr primitive.A, want interface{}) bool {
	for _, v := range arr {
		if reflect.DeepEqual(v, want) {
			return true
		}
	}
	return false
}

func decodeAll(raws [][]byte, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(raws))
	for _, raw := range raws {
		elem := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

func sortedIDs(docs map[string][]byte) []string {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
