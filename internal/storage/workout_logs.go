package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/musclemap/internal/models"
)

// maxRowsPerInsert keeps multi-row inserts well under PostgreSQL's 65535
// bind parameter limit.
const maxRowsPerInsert = 1000

// placeholders returns "($1,$2,...),($n+1,...)" for rows of cols columns.
func placeholders(rows, cols int) string {
	var b strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", i*cols+j+1)
		}
		b.WriteByte(')')
	}
	return b.String()
}

// insertChunked runs prefix + VALUES + suffix over args in chunks. args is a
// flat slice of len(rows)*cols values.
func insertChunked(ctx context.Context, tx pgx.Tx, prefix, suffix string, cols int, args []any) (int64, error) {
	var total int64
	rows := len(args) / cols
	for start := 0; start < rows; start += maxRowsPerInsert {
		end := min(start+maxRowsPerInsert, rows)
		query := prefix + placeholders(end-start, cols) + suffix
		tag, err := tx.Exec(ctx, query, args[start*cols:end*cols]...)
		if err != nil {
			return total, err
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

// insertReturningIDs is insertChunked for statements that return the id
// of each inserted row.
func insertReturningIDs(ctx context.Context, tx pgx.Tx, prefix, suffix string, cols int, args []any) (map[uuid.UUID]bool, error) {
	ids := make(map[uuid.UUID]bool)
	rows := len(args) / cols
	for start := 0; start < rows; start += maxRowsPerInsert {
		end := min(start+maxRowsPerInsert, rows)
		query := prefix + placeholders(end-start, cols) + suffix
		res, err := tx.Query(ctx, query, args[start*cols:end*cols]...)
		if err != nil {
			return nil, err
		}
		for res.Next() {
			var id uuid.UUID
			if err := res.Scan(&id); err != nil {
				res.Close()
				return nil, err
			}
			ids[id] = true
		}
		res.Close()
		if err := res.Err(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// setRows flattens the sets of logs whose id is in inserted into
// workout_log_sets insert args. Entries that already existed, or that
// belong to another user, are left untouched. Only the first entry seen
// for an id contributes sets.
func setRows(logs []models.WorkoutLogEntry, inserted map[uuid.UUID]bool) []any {
	var args []any
	seen := make(map[uuid.UUID]bool, len(inserted))
	for _, l := range logs {
		if !inserted[l.ID] || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		for n, s := range l.Sets {
			args = append(args, l.ID, n+1, s.WeightKg, s.Reps, s.Completed)
		}
	}
	return args
}

// LogDay truncates t to its UTC calendar date.
func LogDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InsertWorkoutLogs stores log entries and their sets for userID. Entries
// without an ID get a new one. Returns the number of logs and sets inserted.
func (db *DB) InsertWorkoutLogs(ctx context.Context, logs []models.WorkoutLogEntry, userID int) (int64, int64, error) {
	return db.ReplaceWorkoutLogs(ctx, logs, nil, "", userID)
}

// ReplaceWorkoutLogs deletes the user's entries from source on each of the
// given dates and inserts logs, all in one transaction, so re-imports always
// reflect the latest export.
func (db *DB) ReplaceWorkoutLogs(ctx context.Context, logs []models.WorkoutLogEntry, dates []time.Time, source string, userID int) (int64, int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range dates {
		if _, err := tx.Exec(ctx,
			`DELETE FROM workout_logs WHERE user_id = $1 AND log_date = $2 AND source = $3`,
			userID, LogDay(d), source); err != nil {
			return 0, 0, fmt.Errorf("deleting logs for %s: %w", d.Format(models.LogDateLayout), err)
		}
	}

	if len(logs) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return 0, 0, fmt.Errorf("committing: %w", err)
		}
		return 0, 0, nil
	}

	logArgs := make([]any, 0, len(logs)*5)
	for i := range logs {
		l := &logs[i]
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.UserID = userID
		if l.Source == "" {
			l.Source = source
		}
		logArgs = append(logArgs, l.ID, userID, l.ExerciseName, LogDay(l.Date.Time), l.Source)
	}

	inserted, err := insertReturningIDs(ctx, tx,
		`INSERT INTO workout_logs (id, user_id, exercise_name, log_date, source) VALUES `,
		` ON CONFLICT (id) DO NOTHING RETURNING id`, 5, logArgs)
	if err != nil {
		return 0, 0, fmt.Errorf("inserting workout logs: %w", err)
	}
	logsInserted := int64(len(inserted))
	setArgs := setRows(logs, inserted)
	setsInserted, err := insertChunked(ctx, tx,
		`INSERT INTO workout_log_sets (log_id, set_number, weight_kg, reps, completed) VALUES `,
		` ON CONFLICT DO NOTHING`, 5, setArgs)
	if err != nil {
		return 0, 0, fmt.Errorf("inserting workout log sets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("committing: %w", err)
	}
	return logsInserted, setsInserted, nil
}

// DeleteWorkoutLogs removes every entry of a user on the given date.
// Sets are removed by cascade. Returns the number of entries deleted.
func (db *DB) DeleteWorkoutLogs(ctx context.Context, date time.Time, userID int) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_logs WHERE user_id = $1 AND log_date = $2`,
		userID, LogDay(date))
	if err != nil {
		return 0, fmt.Errorf("deleting workout logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkoutLogs returns a user's entries dated on or after since with
// their sets, ordered by date, exercise name and id so that repeated reads of
// unchanged data are identical.
func (db *DB) QueryWorkoutLogs(ctx context.Context, since time.Time, userID int) ([]models.WorkoutLogEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT l.id, l.exercise_name, l.log_date, l.source,
		 s.weight_kg, s.reps, s.completed
		 FROM workout_logs l
		 LEFT JOIN workout_log_sets s ON s.log_id = l.id
		 WHERE l.user_id = $1 AND l.log_date >= $2
		 ORDER BY l.log_date ASC, l.exercise_name ASC, l.id ASC, s.set_number ASC`,
		userID, LogDay(since))
	if err != nil {
		return nil, fmt.Errorf("querying workout logs: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutLogEntry
	for rows.Next() {
		var (
			id        uuid.UUID
			name      string
			date      time.Time
			source    string
			weight    *float64
			reps      *int
			completed *bool
		)
		if err := rows.Scan(&id, &name, &date, &source, &weight, &reps, &completed); err != nil {
			return nil, fmt.Errorf("scanning workout log: %w", err)
		}
		if n := len(result); n == 0 || result[n-1].ID != id {
			result = append(result, models.WorkoutLogEntry{
				ID:           id,
				UserID:       userID,
				ExerciseName: name,
				Date:         models.LogDate{Time: LogDay(date)},
				Source:       source,
				Sets:         []models.WorkoutSetRecord{},
			})
		}
		if weight != nil && reps != nil && completed != nil {
			cur := &result[len(result)-1]
			cur.Sets = append(cur.Sets, models.WorkoutSetRecord{
				WeightKg:  *weight,
				Reps:      *reps,
				Completed: *completed,
			})
		}
	}
	return result, rows.Err()
}

// WorkoutLogVersion returns a token that changes whenever any of the user's
// entries is inserted, replaced or deleted.
func (db *DB) WorkoutLogVersion(ctx context.Context, userID int) (string, error) {
	var (
		count   int64
		updated *time.Time
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM workout_logs WHERE user_id = $1`,
		userID).Scan(&count, &updated)
	if err != nil {
		return "", fmt.Errorf("reading workout log version: %w", err)
	}
	return logVersion(count, updated), nil
}

func logVersion(count int64, updated *time.Time) string {
	if updated == nil {
		return fmt.Sprintf("%d", count)
	}
	return fmt.Sprintf("%d-%d", count, updated.UnixNano())
}
