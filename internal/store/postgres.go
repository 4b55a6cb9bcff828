package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ridepool/reactor/internal/acl"
)

// uniqueViolation is the Postgres error code raised when an insert hits an
// existing primary key. Create maps it to OutcomeConflict.
const uniqueViolation = "23505"

// Config holds database connection parameters.
type Config struct {
	Host     string
	Password string
	User     string
	Database string
	SSLMode  string
	Port     int
}

// Postgres implements Store on a single documents table keyed by
// (collection, id), with the document body and permission list as JSON
// columns. The service connects with a privileged role; the acl column is
// enforced by the reading application, not by this writer.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres creates a connection pool and verifies connectivity.
func NewPostgres(ctx context.Context, cfg Config, logger *zap.Logger) (*Postgres, error) {
	var dsn string
	if cfg.Password != "" {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)
	} else {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Database, cfg.SSLMode,
		)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("document store connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &Postgres{pool: pool, logger: logger}, nil
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	s.logger.Info("closing document store connection pool")
	s.pool.Close()
}

// Health checks if the database is reachable.
func (s *Postgres) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Create inserts a new document. A primary-key collision resolves to
// OutcomeConflict and leaves the existing row untouched; every other
// failure is returned unmodified.
func (s *Postgres) Create(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) (CreateOutcome, error) {
	data, aclJSON, err := encodeDocument(fields, perms)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO documents (collection, id, data, acl)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.pool.Exec(ctx, query, collection, id, data, aclJSON); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			s.logger.Debug("create hit existing document",
				zap.String("collection", collection),
				zap.String("document_id", id),
			)
			return OutcomeConflict, nil
		}
		return 0, fmt.Errorf("insert document: %w", err)
	}

	s.logger.Info("document created",
		zap.String("collection", collection),
		zap.String("document_id", id),
	)

	return OutcomeCreated, nil
}

// Patch merges fields into an existing document's body and replaces its
// permission list in one statement. Returns ErrNotFound when no row
// matches.
func (s *Postgres) Patch(ctx context.Context, collection, id string, fields map[string]any, perms []acl.Permission) error {
	data, aclJSON, err := encodeDocument(fields, perms)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET data = data || $3, acl = $4, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`

	result, err := s.pool.Exec(ctx, query, collection, id, data, aclJSON)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}

	s.logger.Info("document patched",
		zap.String("collection", collection),
		zap.String("document_id", id),
		zap.Int("fields", len(fields)),
	)

	return nil
}

func encodeDocument(fields map[string]any, perms []acl.Permission) ([]byte, []byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal document fields: %w", err)
	}

	aclJSON, err := json.Marshal(perms)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal permission list: %w", err)
	}

	return data, aclJSON, nil
}
