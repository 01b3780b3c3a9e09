package record

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Persister stores a record. Implementations must reject the write with ErrConflict
// when the stored version differs from r.Version, and must not modify r.
type Persister interface {
	Save(ctx context.Context, r *Record) error
}

// Record is a persisted entity with string attributes. It implements
// statemachine.Entity once bound to a Persister.
type Record struct {
	ID        uuid.UUID
	Kind      string
	Version   int64
	UpdatedAt time.Time

	attrs     map[string]string
	saved     map[string]string // last persisted values
	dirty     map[string]struct{}
	persister Persister
}

// New creates an unsaved record with a fresh identifier.
func New(kind string, attrs map[string]string) *Record {
	r := &Record{
		ID:    uuid.New(),
		Kind:  kind,
		attrs: make(map[string]string, len(attrs)),
		saved: make(map[string]string, len(attrs)),
		dirty: make(map[string]struct{}),
	}
	for name, value := range attrs {
		r.SetAttribute(name, value)
	}
	return r
}

// Restore rebuilds a record read from storage. Stores use it when loading.
func Restore(id uuid.UUID, kind string, version int64, updatedAt time.Time, attrs map[string]string, p Persister) *Record {
	r := New(kind, attrs)
	r.ID = id
	r.UpdatedAt = updatedAt
	r.persister = p
	r.MarkSaved(version)
	return r
}

// Bind attaches the persister used by Persist.
func (r *Record) Bind(p Persister) *Record {
	r.persister = p
	return r
}

// Attribute returns the attribute value or an empty string.
func (r *Record) Attribute(name string) string {
	return r.attrs[name]
}

// SetAttribute changes an attribute in memory. The change is written by Persist.
// Setting an attribute back to its persisted value cancels the pending change.
func (r *Record) SetAttribute(name, value string) {
	r.attrs[name] = value
	if saved, ok := r.saved[name]; ok && saved == value {
		delete(r.dirty, name)
		return
	}
	r.dirty[name] = struct{}{}
}

// Attributes returns a copy of all attributes.
func (r *Record) Attributes() map[string]string {
	return maps.Clone(r.attrs)
}

// Changes returns the attributes modified since the last successful Persist.
func (r *Record) Changes() map[string]string {
	out := make(map[string]string, len(r.dirty))
	for name := range r.dirty {
		out[name] = r.attrs[name]
	}
	return out
}

// Dirty reports whether there are unsaved changes.
func (r *Record) Dirty() bool {
	return len(r.dirty) > 0
}

// Persist writes pending changes through the bound persister. A record without
// changes is not written. On success the version is incremented; on failure the
// record is left as it was, changes included.
func (r *Record) Persist(ctx context.Context) error {
	if r.persister == nil {
		return ErrNotBound
	}
	if !r.Dirty() {
		return nil
	}
	if err := r.persister.Save(ctx, r); err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	r.MarkSaved(r.Version + 1)
	return nil
}

// MarkSaved records that every attribute is persisted at the given version.
// Stores call it after inserting a record.
func (r *Record) MarkSaved(version int64) {
	r.Version = version
	maps.Copy(r.saved, r.attrs)
	clear(r.dirty)
}
