package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/polilog/internal/model"
)

// PostgresPoliticianRepo はPostgreSQLを使用した政治家リポジトリ。
type PostgresPoliticianRepo struct {
	db *sql.DB
}

// NewPostgresPoliticianRepo はPostgresPoliticianRepoを生成する。
func NewPostgresPoliticianRepo(db *sql.DB) *PostgresPoliticianRepo {
	return &PostgresPoliticianRepo{db: db}
}

// FindByID は指定IDの政治家を政党情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPoliticianRepo) FindByID(ctx context.Context, id string) (*model.PoliticianWithParty, error) {
	p := &model.PoliticianWithParty{}
	err := r.db.QueryRowContext(ctx,
		`SELECT pol.id, pol.first_name, pol.last_name, pol.party_id, pol.biography,
		        pol.created_at, pol.updated_at,
		        pa.name, pa.abbreviation, pa.color_hex
		 FROM politicians pol
		 JOIN parties pa ON pa.id = pol.party_id
		 WHERE pol.id = $1`,
		id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.PartyID, &p.Biography,
		&p.CreatedAt, &p.UpdatedAt,
		&p.PartyName, &p.PartyAbbreviation, &p.PartyColorHex)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find politician by ID: %w", err)
	}

	return p, nil
}

// FindByNameAndParty は氏名と政党の組で政治家を検索する。見つからない場合はnilを返す。
func (r *PostgresPoliticianRepo) FindByNameAndParty(ctx context.Context, firstName, lastName, partyID string) (*model.Politician, error) {
	p := &model.Politician{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, party_id, biography, created_at, updated_at
		 FROM politicians
		 WHERE first_name = $1 AND last_name = $2 AND party_id = $3`,
		firstName, lastName, partyID,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.PartyID, &p.Biography, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find politician by name and party: %w", err)
	}

	return p, nil
}

// politicianSortColumn は検証済みソートキーをORDER BY句の列名に変換する。
// 未知の値はlast_nameにフォールバックする（SQLインジェクション防止のための最終防衛線）。
func politicianSortColumn(sort string) string {
	switch sort {
	case "first_name":
		return "pol.first_name"
	case "created_at":
		return "pol.created_at"
	default:
		return "pol.last_name"
	}
}

// likeEscaper はILIKEパターンのメタ文字をリテラルとして扱うためにエスケープする。
// エスケープしないとsearch=%が全件にマッチしてしまう。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List は検索条件に一致する政治家一覧と総件数を返す。
func (r *PostgresPoliticianRepo) List(ctx context.Context, params ListPoliticiansParams) ([]*model.PoliticianWithParty, int, error) {
	where := `WHERE 1=1`
	args := []any{}

	if params.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(params.Search)+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (pol.first_name ILIKE $%d OR pol.last_name ILIKE $%d)`, n, n)
	}
	if params.PartyID != "" {
		args = append(args, params.PartyID)
		where += fmt.Sprintf(` AND pol.party_id = $%d`, len(args))
	}

	// 総件数
	var total int
	countQuery := `SELECT count(*) FROM politicians pol ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count politicians: %w", err)
	}

	direction := "DESC"
	if params.Order == "asc" {
		direction = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(
		`SELECT pol.id, pol.first_name, pol.last_name, pol.party_id, pol.biography,
		        pol.created_at, pol.updated_at,
		        pa.name, pa.abbreviation, pa.color_hex
		 FROM politicians pol
		 JOIN parties pa ON pa.id = pol.party_id
		 %s
		 ORDER BY %s %s, pol.id ASC
		 LIMIT $%d OFFSET $%d`,
		where, politicianSortColumn(params.Sort), direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list politicians: %w", err)
	}
	defer rows.Close()

	var politicians []*model.PoliticianWithParty
	for rows.Next() {
		p := &model.PoliticianWithParty{}
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.PartyID, &p.Biography,
			&p.CreatedAt, &p.UpdatedAt,
			&p.PartyName, &p.PartyAbbreviation, &p.PartyColorHex); err != nil {
			return nil, 0, fmt.Errorf("failed to scan politician: %w", err)
		}
		politicians = append(politicians, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate politicians: %w", err)
	}

	return politicians, total, nil
}

// Create は政治家を作成する。
func (r *PostgresPoliticianRepo) Create(ctx context.Context, politician *model.Politician) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO politicians (id, first_name, last_name, party_id, biography, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		politician.ID, politician.FirstName, politician.LastName, politician.PartyID,
		politician.Biography, politician.CreatedAt, politician.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert politician: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PoliticianRepository = (*PostgresPoliticianRepo)(nil)
