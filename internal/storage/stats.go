package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored logs.
type DataStats struct {
	TotalLogs     int64           `json:"total_logs"`
	TotalSets     int64           `json:"total_sets"`
	CompletedSets int64           `json:"completed_sets"`
	TonnageKg     float64         `json:"tonnage_kg"`
	EarliestLog   *time.Time      `json:"earliest_log"`
	LatestLog     *time.Time      `json:"latest_log"`
	Exercises     []ExerciseStat  `json:"exercises"`
	Sources       []LogSourceStat `json:"sources"`
}

// ExerciseStat holds aggregated stats for a single exercise name.
type ExerciseStat struct {
	Name      string  `json:"name"`
	Logs      int64   `json:"logs"`
	Sets      int64   `json:"sets"`
	TotalReps int64   `json:"total_reps"`
	TonnageKg float64 `json:"tonnage_kg"`
	MaxWeight float64 `json:"max_weight_kg"`
}

// LogSourceStat counts entries per ingest source.
type LogSourceStat struct {
	Source string `json:"source"`
	Logs   int64  `json:"logs"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
// Tonnage only counts completed sets with non-negative weight and reps.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(log_date), MAX(log_date) FROM workout_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalLogs, &stats.EarliestLog, &stats.LatestLog)
	if err != nil {
		return nil, fmt.Errorf("counting logs: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		 COUNT(*) FILTER (WHERE s.completed),
		 COALESCE(SUM(GREATEST(s.weight_kg, 0) * GREATEST(s.reps, 0)) FILTER (WHERE s.completed), 0)
		 FROM workout_log_sets s
		 JOIN workout_logs l ON l.id = s.log_id
		 WHERE l.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.CompletedSets, &stats.TonnageKg)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT l.exercise_name,
		 COUNT(DISTINCT l.id),
		 COUNT(s.log_id) FILTER (WHERE s.completed),
		 COALESCE(SUM(GREATEST(s.reps, 0)) FILTER (WHERE s.completed), 0),
		 COALESCE(SUM(GREATEST(s.weight_kg, 0) * GREATEST(s.reps, 0)) FILTER (WHERE s.completed), 0),
		 COALESCE(MAX(s.weight_kg) FILTER (WHERE s.completed), 0)
		 FROM workout_logs l
		 LEFT JOIN workout_log_sets s ON s.log_id = l.id
		 WHERE l.user_id = $1
		 GROUP BY l.exercise_name
		 ORDER BY COUNT(DISTINCT l.id) DESC, l.exercise_name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Logs, &s.Sets, &s.TotalReps, &s.TonnageKg, &s.MaxWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.Exercises = append(stats.Exercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srcRows, err := db.Pool.Query(ctx,
		`SELECT source, COUNT(*) FROM workout_logs WHERE user_id = $1
		 GROUP BY source ORDER BY COUNT(*) DESC, source ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var s LogSourceStat
		if err := srcRows.Scan(&s.Source, &s.Logs); err != nil {
			return nil, fmt.Errorf("scanning source stat: %w", err)
		}
		stats.Sources = append(stats.Sources, s)
	}
	if err := srcRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
