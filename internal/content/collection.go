// Package content implements the admin CRUD engine over the stored
// collections and the site settings document.
package content

import (
	"context"
	"fmt"

	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/audit"
	"github.com/jonathan/sng-admin/internal/schemas"
	"github.com/jonathan/sng-admin/internal/storage"
)

// Record is a collection element addressable by id.
type Record interface {
	RecordID() string
}

// UniqueField names a field whose value must not repeat in a collection.
type UniqueField[T Record] struct {
	Name  string
	Value func(T) string
}

// Options configure a Collection.
type Options[T Record] struct {
	Resource string // Audit resource and route segment, e.g. "vacancies"
	Ref      storage.Ref
	Unique   []UniqueField[T]
	// List, when set, replaces the plain collection read. Mutations then
	// start from the list it returns.
	List func(ctx context.Context) ([]T, error)
}

// Collection is the generic CRUD engine for one record type.
type Collection[T Record] struct {
	store     *storage.Store
	validator *schemas.Validator
	audit     *audit.Logger
	opts      Options[T]
}

// NewCollection creates a CRUD engine over store.
func NewCollection[T Record](store *storage.Store, v *schemas.Validator, a *audit.Logger, opts Options[T]) *Collection[T] {
	return &Collection[T]{store: store, validator: v, audit: a, opts: opts}
}

// Resource returns the collection's resource name.
func (c *Collection[T]) Resource() string {
	return c.opts.Resource
}

// List returns every record in stored order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	if c.opts.List != nil {
		return c.opts.List(ctx)
	}
	return storage.ReadList[T](ctx, c.store, c.opts.Ref)
}

// Create validates item and appends it.
func (c *Collection[T]) Create(ctx context.Context, actor string, item T) (T, error) {
	var zero T
	if err := c.validator.Struct(item); err != nil {
		return zero, err
	}

	list, err := c.List(ctx)
	if err != nil {
		return zero, err
	}

	id := item.RecordID()
	if indexOf(list, id) >= 0 {
		return zero, apperr.New(apperr.Conflict, fmt.Sprintf("Элемент с id=%s уже существует", id))
	}
	if err := c.checkUnique(list, item, -1); err != nil {
		return zero, err
	}

	list = append(list, item)
	if err := storage.WriteList(ctx, c.store, c.opts.Ref, list); err != nil {
		return zero, err
	}

	c.audit.Record(ctx, audit.Entry{Actor: actor, Action: "create", Resource: c.opts.Resource, ID: id})
	return item, nil
}

// Update replaces the record with the given id in place.
func (c *Collection[T]) Update(ctx context.Context, actor, id string, item T) (T, error) {
	var zero T
	if err := c.validator.Struct(item); err != nil {
		return zero, err
	}
	if item.RecordID() != id {
		return zero, apperr.New(apperr.Validation, "ID в URL и payload должен совпадать")
	}

	list, err := c.List(ctx)
	if err != nil {
		return zero, err
	}

	index := indexOf(list, id)
	if index < 0 {
		return zero, errNotFound
	}
	if err := c.checkUnique(list, item, index); err != nil {
		return zero, err
	}

	list[index] = item
	if err := storage.WriteList(ctx, c.store, c.opts.Ref, list); err != nil {
		return zero, err
	}

	c.audit.Record(ctx, audit.Entry{Actor: actor, Action: "update", Resource: c.opts.Resource, ID: id})
	return item, nil
}

// Delete removes the record with the given id and returns it.
func (c *Collection[T]) Delete(ctx context.Context, actor, id string) (T, error) {
	var zero T

	list, err := c.List(ctx)
	if err != nil {
		return zero, err
	}

	index := indexOf(list, id)
	if index < 0 {
		return zero, errNotFound
	}

	removed := list[index]
	list = append(list[:index], list[index+1:]...)
	if err := storage.WriteList(ctx, c.store, c.opts.Ref, list); err != nil {
		return zero, err
	}

	c.audit.Record(ctx, audit.Entry{Actor: actor, Action: "delete", Resource: c.opts.Resource, ID: id})
	return removed, nil
}

var errNotFound = apperr.New(apperr.NotFound, "Элемент не найден")

// checkUnique reports the first unique field whose value is already used
// by a record other than the one at skip.
func (c *Collection[T]) checkUnique(list []T, item T, skip int) error {
	for _, field := range c.opts.Unique {
		value := field.Value(item)
		for i, existing := range list {
			if i != skip && field.Value(existing) == value {
				return apperr.New(apperr.Conflict, fmt.Sprintf("Поле %s должно быть уникальным", field.Name))
			}
		}
	}
	return nil
}

func indexOf[T Record](list []T, id string) int {
	for i, item := range list {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
