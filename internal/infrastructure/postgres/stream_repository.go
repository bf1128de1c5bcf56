package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres error codes the repository maps to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// StreamRepository implements repository.StreamRepository using PostgreSQL.
//
// Endpoints live in their own table keyed by (creator, addr). Attach and
// detach are single-statement writes, serialized by the database row lock, so
// concurrent calls for the same creator cannot lose updates the way a
// fetch-record/mutate/save-whole-record scheme would.
type StreamRepository struct {
	db DBTX
}

// NewStreamRepository creates a new StreamRepository instance.
func NewStreamRepository(db DBTX) *StreamRepository {
	return &StreamRepository{db: db}
}

// Create persists a new empty live record. The insert doubles as the
// liveness transition: a row existing is what "live" means.
func (r *StreamRepository) Create(ctx context.Context, stream *model.Stream) error {
	const query = `
		INSERT INTO streams (creator, title, category, is_public, ingest_key, ingest_addr, view_count, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		stream.Creator,
		stream.Title,
		stream.Category,
		stream.IsPublic,
		stream.IngestKey,
		stream.IngestAddr,
		stream.ViewCount,
		stream.StartedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrDuplicateStream
		}
		return fmt.Errorf("failed to create stream: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableStreams).Inc()
	return nil
}

// GetByCreator retrieves the live record for a creator, endpoints included.
func (r *StreamRepository) GetByCreator(ctx context.Context, creator string) (*model.Stream, error) {
	const query = `
		SELECT creator, title, category, is_public, ingest_key, ingest_addr, view_count, started_at
		FROM streams
		WHERE creator = $1
	`

	stream, err := scanStream(r.db.QueryRow(ctx, query, creator))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrStreamNotFound
		}
		return nil, fmt.Errorf("failed to get stream by creator: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableStreams).Inc()

	servers, err := r.loadMediaServers(ctx, []string{creator}, "")
	if err != nil {
		return nil, err
	}
	stream.MediaServers = servers[creator]

	return stream, nil
}

// GetByIngestKey retrieves the live record matching an ingest key.
func (r *StreamRepository) GetByIngestKey(ctx context.Context, ingestKey string) (*model.Stream, error) {
	const query = `
		SELECT creator, title, category, is_public, ingest_key, ingest_addr, view_count, started_at
		FROM streams
		WHERE ingest_key = $1
	`

	stream, err := scanStream(r.db.QueryRow(ctx, query, ingestKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrStreamNotFound
		}
		return nil, fmt.Errorf("failed to get stream by ingest key: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableStreams).Inc()

	servers, err := r.loadMediaServers(ctx, []string{stream.Creator}, "")
	if err != nil {
		return nil, err
	}
	stream.MediaServers = servers[stream.Creator]

	return stream, nil
}

// UpdateInfo applies the non-nil fields of update to an existing record.
func (r *StreamRepository) UpdateInfo(ctx context.Context, creator string, update model.StreamUpdate) error {
	const query = `
		UPDATE streams
		SET title    = COALESCE($2, title),
		    category = COALESCE($3, category),
		    is_public = COALESCE($4, is_public)
		WHERE creator = $1
	`

	tag, err := r.db.Exec(ctx, query, creator, update.Title, update.Category, update.IsPublic)
	if err != nil {
		return fmt.Errorf("failed to update stream: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrStreamNotFound
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableStreams).Inc()
	return nil
}

// AttachMediaServer registers an endpoint against a live stream.
// ON CONFLICT DO NOTHING makes re-attaching the same address idempotent; the
// foreign key turns an attach against a vanished stream into ErrStreamNotFound.
func (r *StreamRepository) AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error {
	const query = `
		INSERT INTO media_servers (creator, addr, quality, region, media_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (creator, addr) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		creator,
		int64(server.Addr),
		server.Quality,
		server.Region,
		server.MediaURL,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return repository.ErrStreamNotFound
		}
		return fmt.Errorf("failed to attach media server: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableMediaServers).Inc()
	return nil
}

// DetachMediaServer removes the endpoint with the given address. Zero rows
// affected is success: the stream may already be gone, or the address was
// never attached.
func (r *StreamRepository) DetachMediaServer(ctx context.Context, creator string, addr uint32) error {
	const query = `
		DELETE FROM media_servers
		WHERE creator = $1 AND addr = $2
	`

	if _, err := r.db.Exec(ctx, query, creator, int64(addr)); err != nil {
		return fmt.Errorf("failed to detach media server: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableMediaServers).Inc()
	return nil
}

// DeleteByCreator removes the live record; endpoints go with it via cascade.
func (r *StreamRepository) DeleteByCreator(ctx context.Context, creator string) error {
	const query = `DELETE FROM streams WHERE creator = $1`

	if _, err := r.db.Exec(ctx, query, creator); err != nil {
		return fmt.Errorf("failed to delete stream: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableStreams).Inc()
	return nil
}

// DeleteByIngestKey removes the live record matching an ingest key and
// reports which creator went offline.
func (r *StreamRepository) DeleteByIngestKey(ctx context.Context, ingestKey string) (string, error) {
	const query = `DELETE FROM streams WHERE ingest_key = $1 RETURNING creator`

	var creator string
	err := r.db.QueryRow(ctx, query, ingestKey).Scan(&creator)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrStreamNotFound
		}
		return "", fmt.Errorf("failed to delete stream by ingest key: %w", err)
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableStreams).Inc()
	return creator, nil
}

var orderClauses = map[repository.Ordering]string{
	repository.OrderingRecommended: "ORDER BY started_at DESC, creator",
	repository.OrderingViews:       "ORDER BY view_count DESC, creator",
	repository.OrderingNone:        "ORDER BY creator",
}

// ListByCategory returns one page of live streams in a category. Region
// narrowing happens after the page is selected, so a record whose endpoints
// all sit in other regions still appears with an empty endpoint set.
func (r *StreamRepository) ListByCategory(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error) {
	orderBy, ok := orderClauses[q.Ordering]
	if !ok {
		orderBy = orderClauses[repository.OrderingNone]
	}

	query := fmt.Sprintf(`
		SELECT creator, title, category, is_public, ingest_key, ingest_addr, view_count, started_at
		FROM streams
		WHERE category = $1
		%s
		OFFSET $2 LIMIT $3
	`, orderBy)

	rows, err := r.db.Query(ctx, query, q.Category, q.Start, q.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to query streams by category: %w", err)
	}
	defer rows.Close()

	var streams []*model.Stream
	creators := make([]string, 0)
	for rows.Next() {
		stream, err := scanStream(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}
		streams = append(streams, stream)
		creators = append(creators, stream.Creator)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating streams: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableStreams).Inc()

	if len(streams) == 0 {
		return streams, nil
	}

	servers, err := r.loadMediaServers(ctx, creators, q.Region)
	if err != nil {
		return nil, err
	}
	for _, stream := range streams {
		stream.MediaServers = servers[stream.Creator]
	}

	return streams, nil
}

// loadMediaServers fetches endpoints for a set of creators, optionally
// narrowed to one region. Returned map has no entry for creators without
// matching endpoints.
func (r *StreamRepository) loadMediaServers(ctx context.Context, creators []string, region string) (map[string][]model.MediaServer, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT creator, addr, quality, region, media_url
		FROM media_servers
		WHERE creator = ANY($1)
	`)
	args := []any{creators}
	if region != "" {
		sb.WriteString(" AND region = $2")
		args = append(args, region)
	}
	sb.WriteString(" ORDER BY creator, addr")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media servers: %w", err)
	}
	defer rows.Close()

	servers := make(map[string][]model.MediaServer)
	for rows.Next() {
		var (
			creator string
			addr    int64
			ms      model.MediaServer
		)
		if err := rows.Scan(&creator, &addr, &ms.Quality, &ms.Region, &ms.MediaURL); err != nil {
			return nil, fmt.Errorf("failed to scan media server: %w", err)
		}
		ms.Addr = uint32(addr)
		servers[creator] = append(servers[creator], ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media servers: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableMediaServers).Inc()

	return servers, nil
}

// scanStream scans a single stream row, without endpoints.
func scanStream(row pgx.Row) (*model.Stream, error) {
	var stream model.Stream
	err := row.Scan(
		&stream.Creator,
		&stream.Title,
		&stream.Category,
		&stream.IsPublic,
		&stream.IngestKey,
		&stream.IngestAddr,
		&stream.ViewCount,
		&stream.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

// Compile-time verification that StreamRepository implements repository.StreamRepository.
var _ repository.StreamRepository = (*StreamRepository)(nil)
