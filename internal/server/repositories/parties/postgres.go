package parties

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

// PostgresRepository implements Repository over dbx.DBTX.
//
// Participants are stored as a jsonb array so joins and leaves compile to a
// single guarded UPDATE on the participants column; the row is never read,
// mutated in memory and written back.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, party *models.Party) error {
	query := `
		INSERT INTO parties (code, host_id, host_secret, participants, current_track)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING
	`
	participants, err := json.Marshal(party.Participants)
	if err != nil {
		return fmt.Errorf("participants marshal error: %w", err)
	}
	track, err := marshalTrack(party.CurrentTrack)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query,
		party.Code, party.HostID, party.HostSecret, participants, track)
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

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Party, error) {
	query := `
		SELECT code, host_id, host_secret, participants, current_track, created_at
		FROM parties
		WHERE code = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

func (r *PostgresRepository) FindByParticipant(ctx context.Context, userID string) (*models.Party, error) {
	query := `
		SELECT code, host_id, host_secret, participants, current_track, created_at
		FROM parties
		WHERE participants ? $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) UpdateTrack(ctx context.Context, code string, track *models.Track) error {
	query := `
		UPDATE parties
		SET current_track = $2
		WHERE code = $1
	`
	payload, err := marshalTrack(track)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, code, payload)
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

func (r *PostgresRepository) AddParticipant(ctx context.Context, code, userID string) error {
	// Guarded jsonb append: already-member joins touch the row without
	// changing it, so zero affected rows always means the code is unknown.
	query := `
		UPDATE parties
		SET participants = CASE
			WHEN participants ? $2 THEN participants
			ELSE participants || to_jsonb($2::text)
		END
		WHERE code = $1
	`
	return r.execExpectingRow(ctx, query, code, userID)
}

func (r *PostgresRepository) RemoveParticipant(ctx context.Context, code, userID string) error {
	query := `
		UPDATE parties
		SET participants = participants - $2
		WHERE code = $1
	`
	return r.execExpectingRow(ctx, query, code, userID)
}

func (r *PostgresRepository) Delete(ctx context.Context, code string) error {
	query := `
		DELETE FROM parties
		WHERE code = $1
	`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Party, error) {
	party := &models.Party{}
	var participants, track []byte

	err := row.Scan(&party.Code, &party.HostID, &party.HostSecret, &participants, &track, &party.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(participants, &party.Participants); err != nil {
		return nil, fmt.Errorf("participants unmarshal error: %w", err)
	}
	if track != nil {
		party.CurrentTrack = &models.Track{}
		if err := json.Unmarshal(track, party.CurrentTrack); err != nil {
			return nil, fmt.Errorf("track unmarshal error: %w", err)
		}
	}
	return party, nil
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
