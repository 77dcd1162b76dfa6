package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/polilog/internal/model"
)

// PostgresPartyRepo はPostgreSQLを使用した政党リポジトリ。
type PostgresPartyRepo struct {
	db *sql.DB
}

// NewPostgresPartyRepo はPostgresPartyRepoを生成する。
func NewPostgresPartyRepo(db *sql.DB) *PostgresPartyRepo {
	return &PostgresPartyRepo{db: db}
}

const partyColumns = `id, name, abbreviation, description, color_hex, created_at, updated_at`

// scanParty は1行分の政党をスキャンする。
func scanParty(row *sql.Row) (*model.Party, error) {
	party := &model.Party{}
	err := row.Scan(&party.ID, &party.Name, &party.Abbreviation, &party.Description,
		&party.ColorHex, &party.CreatedAt, &party.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return party, nil
}

// FindByID は指定IDの政党を取得する。見つからない場合はnilを返す。
func (r *PostgresPartyRepo) FindByID(ctx context.Context, id string) (*model.Party, error) {
	party, err := scanParty(r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find party by ID: %w", err)
	}
	return party, nil
}

// FindByName は名称で政党を検索する。見つからない場合はnilを返す。
func (r *PostgresPartyRepo) FindByName(ctx context.Context, name string) (*model.Party, error) {
	party, err := scanParty(r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE name = $1`, name))
	if err != nil {
		return nil, fmt.Errorf("failed to find party by name: %w", err)
	}
	return party, nil
}

// List は全政党を名称昇順で返す。
func (r *PostgresPartyRepo) List(ctx context.Context) ([]*model.Party, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+partyColumns+` FROM parties ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	defer rows.Close()

	var parties []*model.Party
	for rows.Next() {
		party := &model.Party{}
		if err := rows.Scan(&party.ID, &party.Name, &party.Abbreviation, &party.Description,
			&party.ColorHex, &party.CreatedAt, &party.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parties: %w", err)
	}

	return parties, nil
}

// Create は政党を作成する。
func (r *PostgresPartyRepo) Create(ctx context.Context, party *model.Party) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO parties (id, name, abbreviation, description, color_hex, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		party.ID, party.Name, party.Abbreviation, party.Description,
		party.ColorHex, party.CreatedAt, party.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert party: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PartyRepository = (*PostgresPartyRepo)(nil)
