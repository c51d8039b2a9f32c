package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ifmtech/event-planning/store"
)

func (d *DB) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	fields := []string{"title", "speaker", "priority", "start_ts", "end_ts", "vip"}
	placeholderValues := []any{
		create.Title, create.Speaker, create.Priority,
		create.StartTs, create.EndTs, create.VIP,
	}

	stmt := `INSERT INTO session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return create, nil
}

func sessionWhere(find *store.FindSession) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "session.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartFrom; v != nil {
		where, args = append(where, "session.start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartTo; v != nil {
		where, args = append(where, "session.start_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}

	return where, args
}

func sessionOrderBy(find *store.FindSession) string {
	if find.OrderBy == store.OrderByPriority {
		return "ORDER BY session.priority DESC, session.start_ts ASC"
	}
	return "ORDER BY session.start_ts ASC"
}

func (d *DB) ListSessions(ctx context.Context, find *store.FindSession) ([]*store.Session, error) {
	where, args := sessionWhere(find)

	query := `
		SELECT
			id, created_ts, updated_ts,
			title, speaker, priority, start_ts, end_ts, vip
		FROM session
		WHERE ` + strings.Join(where, " AND ") + ` ` + sessionOrderBy(find)

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return list, nil
}

func (d *DB) CountSessions(ctx context.Context, find *store.FindSession) (int64, error) {
	where, args := sessionWhere(find)

	query := `SELECT COUNT(*) FROM session WHERE ` + strings.Join(where, " AND ")

	var count int64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (d *DB) UpdateSession(ctx context.Context, update *store.UpdateSession) (*store.Session, error) {
	set, args := []string{"updated_ts = strftime('%s', 'now')"}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Speaker; v != nil {
		set, args = append(set, "speaker = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Priority; v != nil {
		set, args = append(set, "priority = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.VIP; v != nil {
		set, args = append(set, "vip = "+placeholder(len(args)+1)), append(args, *v)
	}

	args = append(args, update.ID)

	stmt := `UPDATE session SET ` + strings.Join(set, ", ") +
		` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, created_ts, updated_ts, title, speaker, priority, start_ts, end_ts, vip`

	session, err := scanSession(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

func (d *DB) DeleteSession(ctx context.Context, delete *store.DeleteSession) error {
	stmt := `DELETE FROM session WHERE id = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*store.Session, error) {
	var session store.Session
	var startTs, endTs sql.NullInt64

	if err := row.Scan(
		&session.ID,
		&session.CreatedTs,
		&session.UpdatedTs,
		&session.Title,
		&session.Speaker,
		&session.Priority,
		&startTs,
		&endTs,
		&session.VIP,
	); err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if startTs.Valid {
		session.StartTs = &startTs.Int64
	}
	if endTs.Valid {
		session.EndTs = &endTs.Int64
	}

	return &session, nil
}
