package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const blobTable = "blobs"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// blobRepo implements BlobRepo on the blobs table.
type blobRepo struct {
	db  *sql.DB
	mu  *sync.Mutex
	now func() time.Time
}

func (r *blobRepo) Get(ctx context.Context, key string) ([]byte, error) {
	return r.get(ctx, r.db, key)
}

func (r *blobRepo) get(ctx context.Context, q querier, key string) ([]byte, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(blobTable)).
		Where(entsql.And(
			entsql.EQ("key", key),
			entsql.Or(entsql.IsNull("expires_at"), entsql.GT("expires_at", r.now().UnixNano())),
		)).
		Query()

	var value []byte
	err := q.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (r *blobRepo) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.put(ctx, r.db, key, value, ttl)
}

func (r *blobRepo) put(ctx context.Context, q querier, key string, value []byte, ttl time.Duration) error {
	now := r.now()
	var expires any
	if ttl > 0 {
		expires = now.Add(ttl).UnixNano()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(blobTable).
		Columns("key", "value", "updated_at", "expires_at").
		Values(key, value, now.UnixNano(), expires).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (r *blobRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(blobTable).
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (r *blobRepo) Update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %s: %w", key, err)
	}
	defer tx.Rollback()

	current, err := r.get(ctx, tx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if err := r.put(ctx, tx, key, next, ttl); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update %s: %w", key, err)
	}
	return nil
}

func (r *blobRepo) PurgeExpired(ctx context.Context) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(blobTable).
		Where(entsql.And(
			entsql.NotNull("expires_at"),
			entsql.LTE("expires_at", r.now().UnixNano()),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge expired: %w", err)
	}
	return res.RowsAffected()
}
