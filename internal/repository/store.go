package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("entity not found")
	ErrConstraintViolation = errors.New("constraint violation")
)

// Entity is implemented by every stored entity. Implementations embed
// model.Base, which provides both methods over an opaque string id.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
}

// Scanner abstracts *sql.Row and *sql.Rows for descriptor scan functions.
type Scanner interface {
	Scan(dest ...any) error
}

// Store is the generic persistent entity store contract. One implementation
// exists per concrete entity type; callers depend on this interface only.
type Store[T Entity] interface {
	Insert(ctx context.Context, e T) error
	FindByID(ctx context.Context, id string) (T, error)
	FindOne(ctx context.Context, where string, args ...any) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Descriptor binds an entity type to its table layout. Columns lists the data
// columns (id and timestamps are handled by the store itself), Values returns
// the entity's values aligned with Columns, and Scan reads a full row in the
// order id, Columns..., created_at, updated_at.
type Descriptor[T Entity] struct {
	Table   string
	Columns []string
	New     func() T
	Values  func(e T) []any
	Scan    func(s Scanner, e T) error
}

// SQLStore is a Store implementation over database/sql driven by a Descriptor.
type SQLStore[T Entity] struct {
	db   *sql.DB
	desc Descriptor[T]
}

// NewSQLStore creates a SQLStore for the entity described by desc.
func NewSQLStore[T Entity](db *sql.DB, desc Descriptor[T]) *SQLStore[T] {
	return &SQLStore[T]{db: db, desc: desc}
}

// Insert persists a new entity. An empty id is populated with a generated
// UUID before the write. Unique-index violations map to ErrConstraintViolation.
func (s *SQLStore[T]) Insert(ctx context.Context, e T) error {
	if e.EntityID() == "" {
		e.SetEntityID(uuid.NewString())
	}

	args := append([]any{e.EntityID()}, s.desc.Values(e)...)
	_, err := s.db.ExecContext(ctx, insertQuery(s.desc.Table, s.desc.Columns), args...)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrConstraintViolation
		}
		return err
	}

	return nil
}

// FindByID retrieves an entity by its id.
func (s *SQLStore[T]) FindByID(ctx context.Context, id string) (T, error) {
	return s.FindOne(ctx, "id = ?", id)
}

// FindOne retrieves the first entity matching the given WHERE clause.
func (s *SQLStore[T]) FindOne(ctx context.Context, where string, args ...any) (T, error) {
	e := s.desc.New()

	query := selectQuery(s.desc.Table, s.desc.Columns) + " WHERE " + where + " LIMIT 1"
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := s.desc.Scan(row, e); err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	return e, nil
}

// FindAll retrieves every entity in the table, newest first.
func (s *SQLStore[T]) FindAll(ctx context.Context) ([]T, error) {
	query := selectQuery(s.desc.Table, s.desc.Columns) + " ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		e := s.desc.New()
		if err := s.desc.Scan(rows, e); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, rows.Err()
}

// Update rewrites the entity's data columns. A missing row is not
// distinguishable from a no-op update on MySQL, so Update does not report
// ErrNotFound; callers needing existence should read first.
func (s *SQLStore[T]) Update(ctx context.Context, e T) error {
	args := append(s.desc.Values(e), e.EntityID())
	if _, err := s.db.ExecContext(ctx, updateQuery(s.desc.Table, s.desc.Columns), args...); err != nil {
		if isDuplicateEntryError(err) {
			return ErrConstraintViolation
		}
		return err
	}
	return nil
}

// Delete removes the entity with the given id, reporting whether a row existed.
func (s *SQLStore[T]) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.desc.Table), id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// insertQuery builds the INSERT statement for a table: id plus data columns.
func insertQuery(table string, columns []string) string {
	cols := append([]string{"id"}, columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
}

// selectQuery builds the SELECT prefix reading id, data columns and timestamps.
func selectQuery(table string, columns []string) string {
	cols := append(append([]string{"id"}, columns...), "created_at", "updated_at")
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
}

// updateQuery builds the UPDATE statement setting every data column by id.
func updateQuery(table string, columns []string) string {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
}

// isDuplicateEntryError checks if a MySQL error is a duplicate entry error (code 1062).
func isDuplicateEntryError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
