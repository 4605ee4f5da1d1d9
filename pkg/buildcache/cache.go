package buildcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
)

// SetupSchema creates the cache table. It is idempotent and safe to call on
// an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaOutputs = `
CREATE TABLE IF NOT EXISTS build_outputs (
    output_path TEXT PRIMARY KEY,
    content_hash INTEGER NOT NULL,
    rendered_at INTEGER NOT NULL
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaOutputs); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Hash returns the content hash recorded for data.
func Hash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Stats is a snapshot of the cache contents.
type Stats struct {
	Entries      int       // Number of recorded outputs
	LastRendered time.Time // Most recent Record call, zero when empty
}

// Cache holds the database handle and the prepared statements used during a
// build. It is safe for concurrent use.
type Cache struct {
	db           *sql.DB
	stmtGetHash  *sql.Stmt
	stmtRecord   *sql.Stmt
	stmtDelete   *sql.Stmt
	stmtGetStats *sql.Stmt
	logger       *slog.Logger
	now          func() time.Time
}

// New prepares the cache statements against db, which must already have the
// schema from SetupSchema. A nil logger discards all logs.
func New(db *sql.DB, logger *slog.Logger) (*Cache, error) {
	stmtGetHash, err := db.Prepare(`SELECT content_hash FROM build_outputs WHERE output_path = ?;`)
	if err != nil {
		return nil, err
	}

	stmtRecord, err := db.Prepare(`INSERT INTO build_outputs (output_path, content_hash, rendered_at) VALUES (?, ?, ?) ON CONFLICT(output_path) DO UPDATE SET content_hash = excluded.content_hash, rendered_at = excluded.rendered_at;`)
	if err != nil {
		_ = stmtGetHash.Close()
		return nil, err
	}

	stmtDelete, err := db.Prepare(`DELETE FROM build_outputs WHERE output_path = ?;`)
	if err != nil {
		_ = stmtGetHash.Close()
		_ = stmtRecord.Close()
		return nil, err
	}

	stmtGetStats, err := db.Prepare(`SELECT COUNT(*), coalesce(MAX(rendered_at), 0) FROM build_outputs;`)
	if err != nil {
		_ = stmtGetHash.Close()
		_ = stmtRecord.Close()
		_ = stmtDelete.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		db:           db,
		stmtGetHash:  stmtGetHash,
		stmtRecord:   stmtRecord,
		stmtDelete:   stmtDelete,
		stmtGetStats: stmtGetStats,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Close releases the prepared statements. The database itself stays open.
func (c *Cache) Close() {
	_ = c.stmtGetHash.Close()
	_ = c.stmtRecord.Close()
	_ = c.stmtDelete.Close()
	_ = c.stmtGetStats.Close()
}

// Unchanged reports whether outputPath was last recorded with hash.
func (c *Cache) Unchanged(ctx context.Context, outputPath string, hash uint64) (bool, error) {
	var stored int64
	err := c.stmtGetHash.QueryRowContext(ctx, outputPath).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not look up %s: %w", outputPath, err)
	}
	return uint64(stored) == hash, nil
}

// Record stores hash as the current content of outputPath.
func (c *Cache) Record(ctx context.Context, outputPath string, hash uint64) error {
	// SQLite integers are signed; the bit pattern round-trips through int64.
	if _, err := c.stmtRecord.ExecContext(ctx, outputPath, int64(hash), c.now().Unix()); err != nil {
		return fmt.Errorf("could not record %s: %w", outputPath, err)
	}
	return nil
}

// Prune deletes every recorded output that is not in keep, returning the
// number of rows removed. Called after a build with the outputs it produced,
// it drops pages whose source was deleted.
func (c *Cache) Prune(ctx context.Context, keep []string) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		keepSet[p] = struct{}{}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction for pruning: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	rows, err := tx.QueryContext(ctx, `SELECT output_path FROM build_outputs`)
	if err != nil {
		return 0, fmt.Errorf("failed to query recorded outputs: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan output path: %w", err)
		}
		if _, ok := keepSet[p]; !ok {
			stale = append(stale, p)
		}
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error after iterating output rows: %w", err)
	}

	stmt := tx.StmtContext(ctx, c.stmtDelete)
	for _, p := range stale {
		if _, err := stmt.ExecContext(ctx, p); err != nil {
			return 0, fmt.Errorf("could not delete %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not commit prune: %w", err)
	}

	c.logger.InfoContext(ctx, "Build cache pruned",
		slog.Int("kept", len(keep)),
		slog.Int("removed", len(stale)),
	)
	return len(stale), nil
}

// GetStats returns a snapshot of the cache contents.
func (c *Cache) GetStats(ctx context.Context) (Stats, error) {
	var entries int
	var last int64
	if err := c.stmtGetStats.QueryRowContext(ctx).Scan(&entries, &last); err != nil {
		return Stats{}, err
	}
	stats := Stats{Entries: entries}
	if last > 0 {
		stats.LastRendered = time.Unix(last, 0).UTC()
	}
	return stats, nil
}
