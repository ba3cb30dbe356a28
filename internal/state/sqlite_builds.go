package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SaveBuild stores a build with its metrics and files in one transaction.
// An empty ID and a zero number or creation time are filled in; the
// assigned values are written back to b.
func (s *SQLiteStore) SaveBuild(ctx context.Context, b *Build, metrics []MetricValue, files []FileRecord) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if b.Number == 0 {
			var last int
			if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(number), 0) FROM builds`).Scan(&last); err != nil {
				return fmt.Errorf("failed to find next build number: %w", err)
			}
			b.Number = last + 1
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO builds (id, number, display_name, url, created_at) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Number, b.DisplayName, b.URL, b.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("failed to insert build %d: %w", b.Number, err)
		}

		for i, m := range metrics {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metrics (build_id, position, metric, covered, missed) VALUES (?, ?, ?, ?, ?)`,
				b.ID, i, m.Metric, m.Covered, m.Missed,
			); err != nil {
				return fmt.Errorf("failed to insert metric %s: %w", m.Metric, err)
			}
		}

		for _, f := range files {
			lines, err := json.Marshal(f.Lines)
			if err != nil {
				return fmt.Errorf("failed to encode line coverage of %s: %w", f.Path, err)
			}
			modified, err := json.Marshal(f.ModifiedLines)
			if err != nil {
				return fmt.Errorf("failed to encode modified lines of %s: %w", f.Path, err)
			}
			var source sql.NullString
			if f.HasSource {
				source = sql.NullString{String: f.Source, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO files (build_id, hash, path, package, changed, covered_lines, missed_lines,
					covered_statements, missed_statements, source, line_coverage, modified_lines)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				b.ID, f.Hash, f.Path, f.Package, f.Changed, f.CoveredLines, f.MissedLines,
				f.CoveredStatements, f.MissedStatements, source, string(lines), string(modified),
			); err != nil {
				return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("saved build",
		slog.Int("number", b.Number),
		slog.Int("metrics", len(metrics)),
		slog.Int("files", len(files)))
	return nil
}

const buildColumns = `id, number, display_name, url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(row rowScanner) (Build, error) {
	var b Build
	var created int64
	if err := row.Scan(&b.ID, &b.Number, &b.DisplayName, &b.URL, &created); err != nil {
		return Build{}, err
	}
	b.CreatedAt = time.UnixMilli(created).UTC()
	return b, nil
}

// LatestBuild returns the build with the highest number.
func (s *SQLiteStore) LatestBuild(ctx context.Context) (*Build, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	b, err := scanBuild(db.QueryRowContext(ctx,
		`SELECT `+buildColumns+` FROM builds ORDER BY number DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no builds: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest build: %w", err)
	}
	return &b, nil
}

// BuildByNumber returns the build with the given number.
func (s *SQLiteStore) BuildByNumber(ctx context.Context, number int) (*Build, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	b, err := scanBuild(db.QueryRowContext(ctx,
		`SELECT `+buildColumns+` FROM builds WHERE number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("build %d: %w", number, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build %d: %w", number, err)
	}
	return &b, nil
}

// ListBuilds returns builds newest first. A limit <= 0 returns all builds.
func (s *SQLiteStore) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+buildColumns+` FROM builds ORDER BY number DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// DeleteBuild removes a build with its metrics and files.
func (s *SQLiteStore) DeleteBuild(ctx context.Context, number int) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM builds WHERE number = ?`, number)
	if err != nil {
		return fmt.Errorf("failed to delete build %d: %w", number, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("build %d: %w", number, ErrNotFound)
	}
	return nil
}
