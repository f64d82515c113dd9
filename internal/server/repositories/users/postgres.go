package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/dmitrijs2005/userreg/internal/dbx"
	"github.com/dmitrijs2005/userreg/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// pgUniqueViolation is the SQLSTATE for unique constraint violations.
	pgUniqueViolation = "23505"
	// emailConstraint is the unique constraint on users.email.
	emailConstraint = "users_email_key"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

// Create inserts the user and its phones in one transaction. The timestamps
// assigned by the database are copied back into the returned user.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	saved := *user
	saved.Phones = append([]models.Phone(nil), user.Phones...)

	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query :=
			`INSERT INTO users (id, name, email, password, token, is_active, last_login)
			 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
			 RETURNING created, modified, last_login
			 `

		err := tx.QueryRowContext(ctx, query,
			user.ID, user.Name, user.Email, user.PasswordHash,
			nullString(user.Token), user.Active, nullTime(user.LastLogin),
		).Scan(&saved.Created, &saved.Modified, &saved.LastLogin)
		if err != nil {
			return err
		}

		phoneQuery :=
			`INSERT INTO phones (id, user_id, position, number, city_code, country_code)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 `

		for i, p := range saved.Phones {
			_, err := tx.ExecContext(ctx, phoneQuery, p.ID, user.ID, i, p.Number, p.CityCode, p.CountryCode)
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if isDuplicateEmail(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrEmailAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &saved, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password, created, modified, last_login, token, is_active
		 FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	var (
		lastLogin sql.NullTime
		token     sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Created, &user.Modified, &lastLogin, &token, &user.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.LastLogin = lastLogin.Time
	user.Token = token.String

	phones, err := r.phones(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Phones = phones

	return user, nil
}

func (r *PostgresRepository) phones(ctx context.Context, userID string) ([]models.Phone, error) {
	query :=
		`SELECT id, user_id, number, city_code, country_code
		 FROM phones
		 WHERE user_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var phones []models.Phone
	for rows.Next() {
		var p models.Phone
		if err := rows.Scan(&p.ID, &p.UserID, &p.Number, &p.CityCode, &p.CountryCode); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		phones = append(phones, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return phones, nil
}

func isDuplicateEmail(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == pgUniqueViolation && pge.ConstraintName == emailConstraint
	}
	return false
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
