package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLRepository works against PostgreSQL and SQLite. Queries are written with
// $N placeholders and rebound for SQLite.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.DialectPostgres)
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.DialectSQLite)
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

func (r *SQLRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO users (username, email, password_digest)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	var createdAt dbx.Timestamp
	err := r.db.QueryRowContext(ctx, r.q(query),
		account.Username, account.Email, account.PasswordDigest).Scan(&account.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	account.CreatedAt = createdAt.Time

	return account, nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, username, email, password_digest, created_at FROM users
		 WHERE email = $1`

	a := &models.Account{}
	var createdAt dbx.Timestamp
	err := r.db.QueryRowContext(ctx, r.q(query), email).
		Scan(&a.ID, &a.Username, &a.Email, &a.PasswordDigest, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.CreatedAt = createdAt.Time

	return a, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.PublicProfile, error) {
	query :=
		`SELECT id, username, email, created_at FROM users
		 WHERE id = $1`

	p := &models.PublicProfile{}
	var createdAt dbx.Timestamp
	err := r.db.QueryRowContext(ctx, r.q(query), id).Scan(&p.ID, &p.Username, &p.Email, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.CreatedAt = createdAt.Time

	return p, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.PublicProfile, error) {
	query :=
		`SELECT id, username, email, created_at FROM users
		 ORDER BY username`

	rows, err := r.db.QueryContext(ctx, r.q(query))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PublicProfile, 0)
	for rows.Next() {
		var p models.PublicProfile
		var createdAt dbx.Timestamp
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.CreatedAt = createdAt.Time
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, username, email string) error {
	query :=
		`UPDATE users SET username = $1, email = $2
		 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, r.q(query), username, email, id)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateIdentity
		}
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, r.q(query), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectAffected(res)
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// isUniqueViolation recognises UNIQUE constraint failures from pgx and
// modernc sqlite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE"))
	}
	return false
}
