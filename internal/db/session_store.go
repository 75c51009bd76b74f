package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/pkg/snapshot"
)

// SessionStore persists edit sessions in Postgres. Images are stored once per
// content digest and shared between sessions.
type SessionStore struct {
	dbc *DatabaseConnection
}

func NewSessionStore(dbc *DatabaseConnection) *SessionStore {
	return &SessionStore{dbc: dbc}
}

var _ editor.Store = (*SessionStore)(nil)

func (s *SessionStore) Save(ctx context.Context, state editor.State) error {
	rec, blobs := state.Record()
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	q, tx, err := s.dbc.NewWithTX(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	updated := state.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	if err := q.UpsertSession(ctx, state.ID, payload, updated); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	linked, err := q.GetLinkedDigests(ctx, state.ID)
	if err != nil {
		return fmt.Errorf("read snapshot links: %w", err)
	}
	for _, b := range unlinkedBlobs(blobs, linked) {
		err := q.InsertSnapshot(ctx, Snapshot{
			Digest:    b.Digest(),
			MediaType: b.MediaType(),
			Width:     int32(b.Width()),
			Height:    int32(b.Height()),
			Data:      b.Bytes(),
		})
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	digests := rec.Digests()
	if err := q.UnlinkSessionSnapshots(ctx, state.ID, digests); err != nil {
		return fmt.Errorf("unlink snapshots: %w", err)
	}
	if len(digests) > 0 {
		if err := q.LinkSessionSnapshots(ctx, state.ID, digests); err != nil {
			return fmt.Errorf("link snapshots: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// unlinkedBlobs returns the blobs whose digest the session does not link yet.
// A linked digest always has its snapshot row, so only these need sending.
func unlinkedBlobs(blobs []snapshot.Snapshot, linked []string) []snapshot.Snapshot {
	have := make(map[string]bool, len(linked))
	for _, d := range linked {
		have[d] = true
	}
	var out []snapshot.Snapshot
	for _, b := range blobs {
		if !have[b.Digest()] {
			out = append(out, b)
		}
	}
	return out
}

func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (editor.State, error) {
	q := s.dbc.Queries(ctx)

	row, err := q.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return editor.State{}, editor.ErrSessionNotFound
		}
		if IsUndefinedColumnErr(err) {
			return editor.State{}, fmt.Errorf("load session: schema out of date, run pg-migrator: %w", err)
		}
		return editor.State{}, fmt.Errorf("load session: %w", err)
	}

	var rec editor.Record
	if err := json.Unmarshal(row.State, &rec); err != nil {
		return editor.State{}, fmt.Errorf("decode session %s: %w", id, err)
	}

	blobs := map[string][]byte{}
	if digests := rec.Digests(); len(digests) > 0 {
		snaps, err := q.GetSnapshots(ctx, digests)
		if err != nil {
			return editor.State{}, fmt.Errorf("load snapshots: %w", err)
		}
		for _, snap := range snaps {
			blobs[snap.Digest] = snap.Data
		}
	}
	return rec.State(blobs)
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	q := s.dbc.Queries(ctx)
	if err := q.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := q.DeleteOrphanSnapshots(ctx); err != nil {
		slog.Warn("failed to collect orphan snapshots", "error", err)
	} else if n > 0 {
		slog.Debug("collected orphan snapshots", "count", n)
	}
	return nil
}

// Prune removes sessions not updated since cutoff along with images no
// session references any more.
func (s *SessionStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	q := s.dbc.Queries(ctx)
	n, err := q.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	if _, err := q.DeleteOrphanSnapshots(ctx); err != nil {
		return n, fmt.Errorf("prune snapshots: %w", err)
	}
	return n, nil
}
