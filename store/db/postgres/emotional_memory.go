package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/emocontext/store"
)

func (d *DB) UpsertEmotionalMemory(ctx context.Context, upsert *store.EmotionalMemory) (*store.EmotionalMemory, error) {
	participants, err := store.EncodeParticipantIDs(upsert.ParticipantIDs)
	if err != nil {
		return nil, err
	}

	fields := []string{"id", "timestamp", "participant_ids", "significance", "payload", "created_ts"}
	args := []any{
		upsert.ID,
		upsert.Timestamp.UTC(),
		participants,
		upsert.Significance,
		upsert.Payload,
		upsert.CreatedTs,
	}

	stmt := `INSERT INTO emotional_memory (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (id) DO UPDATE SET
			timestamp = EXCLUDED.timestamp,
			participant_ids = EXCLUDED.participant_ids,
			significance = EXCLUDED.significance,
			payload = EXCLUDED.payload`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert emotional_memory: %w", err)
	}
	return upsert, nil
}

func (d *DB) ListEmotionalMemories(ctx context.Context, find *store.FindEmotionalMemory) ([]*store.EmotionalMemory, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.ParticipantID != nil {
		token, err := store.ParticipantToken(*find.ParticipantID)
		if err != nil {
			return nil, err
		}
		where, args = append(where, "strpos(participant_ids, "+placeholder(len(args)+1)+") > 0"), append(args, token)
	}
	if find.Since != nil {
		where, args = append(where, "timestamp >= "+placeholder(len(args)+1)), append(args, find.Since.UTC())
	}

	query := `SELECT id, timestamp, participant_ids, significance, payload::text, created_ts
		FROM emotional_memory WHERE ` + strings.Join(where, " AND ") + ` ORDER BY timestamp DESC, id ASC`
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}
	if find.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", find.Offset)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotional_memories: %w", err)
	}
	defer rows.Close()

	list := make([]*store.EmotionalMemory, 0)
	for rows.Next() {
		m := &store.EmotionalMemory{}
		var participants string
		if err := rows.Scan(&m.ID, &m.Timestamp, &participants, &m.Significance, &m.Payload, &m.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan emotional_memory: %w", err)
		}
		m.ParticipantIDs = store.DecodeParticipantIDs(participants)
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emotional_memories: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteEmotionalMemory(ctx context.Context, delete *store.DeleteEmotionalMemory) error {
	if delete == nil {
		return fmt.Errorf("delete parameter cannot be nil")
	}

	where, args := []string{}, []any{}
	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.ParticipantID != nil {
		token, err := store.ParticipantToken(*delete.ParticipantID)
		if err != nil {
			return err
		}
		where, args = append(where, "strpos(participant_ids, "+placeholder(len(args)+1)+") > 0"), append(args, token)
	}
	if len(where) == 0 {
		return fmt.Errorf("delete requires at least one condition")
	}

	stmt := `DELETE FROM emotional_memory WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete emotional_memory: %w", err)
	}
	return nil
}
