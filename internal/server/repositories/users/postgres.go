package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/dbx"
	"github.com/listenalong/backend/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
//
// Capabilities and the current track are stored as jsonb so membership and
// track mutations stay single-field and atomic on the server side.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, display_name, session_secret, capabilities, online)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	caps, err := json.Marshal(user.Capabilities)
	if err != nil {
		return fmt.Errorf("capabilities marshal error: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.DisplayName, user.SessionSecret, caps, user.Online)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, display_name, session_secret, capabilities, online, current_track, created_at
		FROM users
		WHERE id = $1
	`
	user := &models.User{}
	var caps, track []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.DisplayName, &user.SessionSecret, &caps, &user.Online, &track, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(caps, &user.Capabilities); err != nil {
		return nil, fmt.Errorf("capabilities unmarshal error: %w", err)
	}
	if track != nil {
		user.CurrentTrack = &models.Track{}
		if err := json.Unmarshal(track, user.CurrentTrack); err != nil {
			return nil, fmt.Errorf("track unmarshal error: %w", err)
		}
	}
	return user, nil
}

func (r *PostgresRepository) SetSecret(ctx context.Context, id, secret string) error {
	query := `
		UPDATE users
		SET session_secret = $2, online = true
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, secret)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearSession(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET session_secret = '', online = false, current_track = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddCapability(ctx context.Context, id, capability string) error {
	// jsonb append guarded by a containment check keeps the set semantics
	// without a read-modify-write round trip.
	query := `
		UPDATE users
		SET capabilities = CASE
			WHEN capabilities ? $2 THEN capabilities
			ELSE capabilities || to_jsonb($2::text)
		END
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, capability)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateTrack(ctx context.Context, id string, track *models.Track) error {
	query := `
		UPDATE users
		SET current_track = $2
		WHERE id = $1
	`
	payload, err := marshalTrack(track)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountOnline(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE online`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// marshalTrack renders track as jsonb input, or nil to clear the column.
func marshalTrack(track *models.Track) (any, error) {
	if track == nil {
		return nil, nil
	}
	b, err := json.Marshal(track)
	if err != nil {
		return nil, fmt.Errorf("track marshal error: %w", err)
	}
	return b, nil
}
