package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

type Session struct {
	ID        uuid.UUID
	State     []byte
	UpdatedAt time.Time
}

type Snapshot struct {
	Digest    string
	MediaType string
	Width     int32
	Height    int32
	Data      []byte
}

const upsertSession = `-- name: UpsertSession :exec
INSERT INTO sessions (id, state, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
`

func (q *Queries) UpsertSession(ctx context.Context, id uuid.UUID, state []byte, updatedAt time.Time) error {
	_, err := q.db.Exec(ctx, upsertSession, id, state, updatedAt)
	return err
}

const getSession = `-- name: GetSession :one
SELECT id, state, updated_at FROM sessions WHERE id = $1
`

func (q *Queries) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := q.db.QueryRow(ctx, getSession, id)
	var i Session
	err := row.Scan(&i.ID, &i.State, &i.UpdatedAt)
	return &i, err
}

const deleteSession = `-- name: DeleteSession :exec
DELETE FROM sessions WHERE id = $1
`

func (q *Queries) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteSession, id)
	return err
}

const deleteSessionsBefore = `-- name: DeleteSessionsBefore :execrows
DELETE FROM sessions WHERE updated_at < $1
`

func (q *Queries) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteSessionsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertSnapshot = `-- name: InsertSnapshot :exec
INSERT INTO snapshots (digest, media_type, width, height, data)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (digest) DO NOTHING
`

func (q *Queries) InsertSnapshot(ctx context.Context, arg Snapshot) error {
	_, err := q.db.Exec(ctx, insertSnapshot, arg.Digest, arg.MediaType, arg.Width, arg.Height, arg.Data)
	return err
}

const getSnapshots = `-- name: GetSnapshots :many
SELECT digest, media_type, width, height, data FROM snapshots WHERE digest = ANY($1::text[])
`

func (q *Queries) GetSnapshots(ctx context.Context, digests []string) ([]Snapshot, error) {
	rows, err := q.db.Query(ctx, getSnapshots, digests)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Snapshot
	for rows.Next() {
		var i Snapshot
		if err := rows.Scan(&i.Digest, &i.MediaType, &i.Width, &i.Height, &i.Data); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getLinkedDigests = `-- name: GetLinkedDigests :many
SELECT digest FROM session_snapshots WHERE session_id = $1
`

func (q *Queries) GetLinkedDigests(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, getLinkedDigests, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var digest string
		if err := rows.Scan(&digest); err != nil {
			return nil, err
		}
		items = append(items, digest)
	}
	return items, rows.Err()
}

const unlinkSessionSnapshots = `-- name: UnlinkSessionSnapshots :exec
DELETE FROM session_snapshots WHERE session_id = $1 AND NOT (digest = ANY($2::text[]))
`

// UnlinkSessionSnapshots drops the session's links to every digest not in keep.
func (q *Queries) UnlinkSessionSnapshots(ctx context.Context, sessionID uuid.UUID, keep []string) error {
	if keep == nil {
		keep = []string{}
	}
	_, err := q.db.Exec(ctx, unlinkSessionSnapshots, sessionID, keep)
	return err
}

const linkSessionSnapshots = `-- name: LinkSessionSnapshots :exec
INSERT INTO session_snapshots (session_id, digest)
SELECT $1, unnest($2::text[])
ON CONFLICT DO NOTHING
`

func (q *Queries) LinkSessionSnapshots(ctx context.Context, sessionID uuid.UUID, digests []string) error {
	_, err := q.db.Exec(ctx, linkSessionSnapshots, sessionID, digests)
	return err
}

const deleteOrphanSnapshots = `-- name: DeleteOrphanSnapshots :execrows
DELETE FROM snapshots s
WHERE NOT EXISTS (SELECT 1 FROM session_snapshots l WHERE l.digest = s.digest)
`

func (q *Queries) DeleteOrphanSnapshots(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrphanSnapshots)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
