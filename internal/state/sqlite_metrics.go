package state

import (
	"context"
	"fmt"
)

// BuildMetrics returns the metrics of a build in ingest order.
func (s *SQLiteStore) BuildMetrics(ctx context.Context, buildID string) ([]MetricValue, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT metric, covered, missed FROM metrics WHERE build_id = ? ORDER BY position`, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer rows.Close()

	var metrics []MetricValue
	for rows.Next() {
		var m MetricValue
		if err := rows.Scan(&m.Metric, &m.Covered, &m.Missed); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// MetricHistory returns builds with their metrics, newest first. A limit <= 0
// returns every build.
func (s *SQLiteStore) MetricHistory(ctx context.Context, limit int) ([]BuildMetrics, error) {
	builds, err := s.ListBuilds(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, nil
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	oldest := builds[len(builds)-1].Number
	rows, err := db.QueryContext(ctx,
		`SELECT m.build_id, m.metric, m.covered, m.missed
		FROM metrics m JOIN builds b ON b.id = m.build_id
		WHERE b.number >= ?
		ORDER BY b.number DESC, m.position`, oldest)
	if err != nil {
		return nil, fmt.Errorf("failed to get metric history: %w", err)
	}
	defer rows.Close()

	byBuild := make(map[string][]MetricValue, len(builds))
	for rows.Next() {
		var buildID string
		var m MetricValue
		if err := rows.Scan(&buildID, &m.Metric, &m.Covered, &m.Missed); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		byBuild[buildID] = append(byBuild[buildID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metric history: %w", err)
	}

	history := make([]BuildMetrics, 0, len(builds))
	for _, b := range builds {
		history = append(history, BuildMetrics{Build: b, Metrics: byBuild[b.ID]})
	}
	return history, nil
}
