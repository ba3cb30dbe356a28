package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const fileColumns = `hash, path, package, changed, covered_lines, missed_lines,
	covered_statements, missed_statements`

func scanFile(row rowScanner, extra ...any) (FileRecord, error) {
	var f FileRecord
	dest := append([]any{
		&f.Hash, &f.Path, &f.Package, &f.Changed, &f.CoveredLines, &f.MissedLines,
		&f.CoveredStatements, &f.MissedStatements,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return FileRecord{}, err
	}
	return f, nil
}

// ListFiles returns the files of a build ordered by path, without their
// source. With changedOnly set only files marked as changed are returned.
func (s *SQLiteStore) ListFiles(ctx context.Context, buildID string, changedOnly bool) ([]FileRecord, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + fileColumns + `, source IS NOT NULL FROM files WHERE build_id = ?`
	if changedOnly {
		query += ` AND changed = 1`
	}
	query += ` ORDER BY path`

	rows, err := db.QueryContext(ctx, query, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var hasSource bool
		f, err := scanFile(rows, &hasSource)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.HasSource = hasSource
		files = append(files, f)
	}
	return files, rows.Err()
}

// File returns a file of a build including its source and line coverage.
func (s *SQLiteStore) File(ctx context.Context, buildID, hash string) (*FileRecord, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var source sql.NullString
	var lines, modified string
	f, err := scanFile(db.QueryRowContext(ctx,
		`SELECT `+fileColumns+`, source, line_coverage, modified_lines FROM files WHERE build_id = ? AND hash = ?`,
		buildID, hash), &source, &lines, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", hash, err)
	}

	f.HasSource = source.Valid
	f.Source = source.String
	if err := json.Unmarshal([]byte(lines), &f.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode line coverage of %s: %w", f.Path, err)
	}
	if err := json.Unmarshal([]byte(modified), &f.ModifiedLines); err != nil {
		return nil, fmt.Errorf("failed to decode modified lines of %s: %w", f.Path, err)
	}
	return &f, nil
}
