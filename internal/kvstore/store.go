// Package kvstore implements the hierarchical key/value document used for
// static map and wave definitions and for save games.
//
// A Store is an ordered mapping from string keys to scalars (int, float,
// string, bool), nested stores or lists of stores. Keys keep the order in
// which they were first written.
package kvstore

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/vovakirdan/tui-defense/internal/core"
)

var (
	// ErrMissingKey is returned when a key is absent.
	ErrMissingKey = errors.New("kvstore: missing key")
	// ErrWrongType is returned when a key holds an incompatible value kind.
	ErrWrongType = errors.New("kvstore: wrong type")
)

// KeyError describes a failed read access.
type KeyError struct {
	Key  string
	Want string
	Got  string
	Err  error
}

func (e *KeyError) Error() string {
	if errors.Is(e.Err, ErrMissingKey) {
		return fmt.Sprintf("kvstore: missing key %q", e.Key)
	}
	return fmt.Sprintf("kvstore: key %q holds %s, want %s", e.Key, e.Got, e.Want)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// OutOfRange returns a KeyError wrapping ErrWrongType for an int at key
// that lies outside the range its reader accepts.
func OutOfRange(key string, got int) error {
	return &KeyError{Key: key, Want: "int in range", Got: strconv.Itoa(got), Err: ErrWrongType}
}

// Store is one document node.
type Store struct {
	keys   []string
	values map[string]any
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

func (s *Store) put(key string, v any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// PutInt writes an integer.
func (s *Store) PutInt(key string, v int) {
	s.put(key, int64(v))
}

// PutFloat writes a float.
func (s *Store) PutFloat(key string, v float64) {
	s.put(key, v)
}

// PutString writes a string.
func (s *Store) PutString(key, v string) {
	s.put(key, v)
}

// PutBool writes a boolean.
func (s *Store) PutBool(key string, v bool) {
	s.put(key, v)
}

// PutStore writes a nested document. A nil store writes an empty one.
func (s *Store) PutStore(key string, v *Store) {
	if v == nil {
		v = New()
	}
	s.put(key, v)
}

// PutStoreList writes an ordered list of documents.
func (s *Store) PutStoreList(key string, v []*Store) {
	s.put(key, slices.Clone(v))
}

// PutVec2 writes a vector as a nested {x, y} document.
func (s *Store) PutVec2(key string, v core.Vec2) {
	sub := New()
	sub.PutFloat("x", v.X)
	sub.PutFloat("y", v.Y)
	s.put(key, sub)
}

func (s *Store) lookup(key, want string) (any, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, &KeyError{Key: key, Want: want, Err: ErrMissingKey}
	}
	return v, nil
}

func wrongType(key, want string, v any) error {
	return &KeyError{Key: key, Want: want, Got: kindOf(v), Err: ErrWrongType}
}

// Int reads an integer.
func (s *Store) Int(key string) (int, error) {
	v, err := s.lookup(key, "int")
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, wrongType(key, "int", v)
	}
	return int(i), nil
}

// Float reads a float. Integers are widened.
func (s *Store) Float(key string) (float64, error) {
	v, err := s.lookup(key, "float")
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case int64:
		return float64(f), nil
	default:
		return 0, wrongType(key, "float", v)
	}
}

// String reads a string.
func (s *Store) String(key string) (string, error) {
	v, err := s.lookup(key, "string")
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", wrongType(key, "string", v)
	}
	return str, nil
}

// Bool reads a boolean.
func (s *Store) Bool(key string) (bool, error) {
	v, err := s.lookup(key, "bool")
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(key, "bool", v)
	}
	return b, nil
}

// Store reads a nested document.
func (s *Store) Store(key string) (*Store, error) {
	v, err := s.lookup(key, "store")
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Store)
	if !ok {
		return nil, wrongType(key, "store", v)
	}
	return sub, nil
}

// StoreList reads a list of documents.
func (s *Store) StoreList(key string) ([]*Store, error) {
	v, err := s.lookup(key, "list")
	if err != nil {
		return nil, err
	}
	list, ok := v.([]*Store)
	if !ok {
		return nil, wrongType(key, "list", v)
	}
	return list, nil
}

// Vec2 reads a vector written by PutVec2.
func (s *Store) Vec2(key string) (core.Vec2, error) {
	sub, err := s.Store(key)
	if err != nil {
		return core.Vec2{}, err
	}
	x, err := sub.Float("x")
	if err != nil {
		return core.Vec2{}, fmt.Errorf("%s: %w", key, err)
	}
	y, err := sub.Float("y")
	if err != nil {
		return core.Vec2{}, fmt.Errorf("%s: %w", key, err)
	}
	return core.V(x, y), nil
}

// XY reads a position stored as flat x and y keys of this node.
func (s *Store) XY() (core.Vec2, error) {
	x, err := s.Float("x")
	if err != nil {
		return core.Vec2{}, err
	}
	y, err := s.Float("y")
	if err != nil {
		return core.Vec2{}, err
	}
	return core.V(x, y), nil
}

// PutXY writes a position as flat x and y keys of this node.
func (s *Store) PutXY(v core.Vec2) {
	s.PutFloat("x", v.X)
	s.PutFloat("y", v.Y)
}

// IntOr reads an integer or returns def when the key is absent or mistyped.
func (s *Store) IntOr(key string, def int) int {
	if v, err := s.Int(key); err == nil {
		return v
	}
	return def
}

// FloatOr reads a float or returns def.
func (s *Store) FloatOr(key string, def float64) float64 {
	if v, err := s.Float(key); err == nil {
		return v
	}
	return def
}

// StringOr reads a string or returns def.
func (s *Store) StringOr(key, def string) string {
	if v, err := s.String(key); err == nil {
		return v
	}
	return def
}

// BoolOr reads a boolean or returns def.
func (s *Store) BoolOr(key string, def bool) bool {
	if v, err := s.Bool(key); err == nil {
		return v
	}
	return def
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the keys in document order.
func (s *Store) Keys() []string {
	return slices.Clone(s.keys)
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return len(s.keys)
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
}

// Rename moves the value of from to to, keeping its position.
// It fails with ErrMissingKey if from is absent; an existing to is replaced.
func (s *Store) Rename(from, to string) error {
	v, ok := s.values[from]
	if !ok {
		return &KeyError{Key: from, Err: ErrMissingKey}
	}
	if from == to {
		return nil
	}
	s.Delete(to)
	i := slices.Index(s.keys, from)
	s.keys[i] = to
	delete(s.values, from)
	s.values[to] = v
	return nil
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := New()
	for _, k := range s.keys {
		switch v := s.values[k].(type) {
		case *Store:
			c.put(k, v.Clone())
		case []*Store:
			list := make([]*Store, len(v))
			for i, item := range v {
				list[i] = item.Clone()
			}
			c.put(k, list)
		default:
			c.put(k, v)
		}
	}
	return c
}

// Equal reports whether two documents hold the same keys in the same order
// with equal values.
func (s *Store) Equal(o *Store) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !slices.Equal(s.keys, o.keys) {
		return false
	}
	for _, k := range s.keys {
		if !valueEqual(s.values[k], o.values[k]) {
			return false
		}
	}
	return true
}

// Replace overwrites the content of s with the content of o.
func (s *Store) Replace(o *Store) {
	c := o.Clone()
	s.keys = c.keys
	s.values = c.values
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Store:
		bv, ok := b.(*Store)
		return ok && av.Equal(bv)
	case []*Store:
		bv, ok := b.([]*Store)
		return ok && slices.EqualFunc(av, bv, (*Store).Equal)
	default:
		return a == b
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	case *Store:
		return "store"
	case []*Store:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}
