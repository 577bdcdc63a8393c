package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const schemaHistoryDDL = `
CREATE TABLE IF NOT EXISTS schema_history (
    version     INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    checksum    TEXT NOT NULL,
    applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

func checksum(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(sum[:])
}

// Migrate brings database up to the latest known schema version, applying
// any migrations whose version exceeds the highest one already recorded in
// schema_history. Each migration runs inside its own transaction; a failure
// partway through one migration leaves earlier, already-committed
// migrations in place. Returns the versions actually applied.
func Migrate(ctx context.Context, database Database) ([]int, error) {
	if _, err := database.Exec(ctx, schemaHistoryDDL); err != nil {
		return nil, fmt.Errorf("ensure schema_history: %w", err)
	}

	maxApplied, err := latestVersion(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("read schema_history: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if m.Version <= maxApplied {
			continue
		}
		if err := applyMigration(ctx, database, m); err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func latestVersion(ctx context.Context, database Database) (int, error) {
	row := database.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_history`)
	var v int
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func applyMigration(ctx context.Context, database Database, m Migration) error {
	tx, err := database.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO schema_history (version, name, checksum) VALUES (?, ?, ?)`,
		m.Version, m.Name, checksum(m.SQL),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

// Mismatch describes an applied migration whose recorded checksum no
// longer matches the SQL shipped in the running binary - a sign the
// migration history and the binary have drifted apart.
type Mismatch struct {
	Version          int
	Name             string
	RecordedChecksum string
	CurrentChecksum  string
}

// Repair re-checksums every migration already recorded in schema_history
// against the SQL compiled into the running binary. It never re-executes
// DDL; it only reports where the two have drifted, so an operator can
// decide whether to ship a corrective migration or investigate the
// database directly.
func Repair(ctx context.Context, database Database) ([]Mismatch, error) {
	if _, err := database.Exec(ctx, schemaHistoryDDL); err != nil {
		return nil, fmt.Errorf("ensure schema_history: %w", err)
	}

	byVersion := make(map[int]Migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}

	rows, err := database.Query(ctx, `SELECT version, name, checksum FROM schema_history ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("read schema_history: %w", err)
	}
	defer rows.Close()

	var mismatches []Mismatch
	for rows.Next() {
		var version int
		var name, recorded string
		if err := rows.Scan(&version, &name, &recorded); err != nil {
			return nil, fmt.Errorf("scan schema_history row: %w", err)
		}
		m, known := byVersion[version]
		if !known {
			mismatches = append(mismatches, Mismatch{Version: version, Name: name, RecordedChecksum: recorded, CurrentChecksum: ""})
			continue
		}
		current := checksum(m.SQL)
		if current != recorded {
			mismatches = append(mismatches, Mismatch{Version: version, Name: name, RecordedChecksum: recorded, CurrentChecksum: current})
		}
	}
	return mismatches, rows.Err()
}
