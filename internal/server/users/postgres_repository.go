package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/insight/internal/common"
)

// PostgresRepository is the database-backed alternative to the in-memory
// store, selected by a non-empty DSN in the server config. It keeps the same
// contract: keys are lower-cased usernames and Add is an upsert.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Add(ctx context.Context, user *InternalUser) error {
	query :=
		`INSERT INTO users (username, email, age, hashed_password, role)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (username) DO UPDATE
		 SET email = EXCLUDED.email,
		     age = EXCLUDED.age,
		     hashed_password = EXCLUDED.hashed_password,
		     role = EXCLUDED.role
		 `

	_, err := r.db.ExecContext(ctx, query,
		strings.ToLower(user.Username), user.Email, user.Age, user.HashedPassword, string(user.Role))
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*InternalUser, error) {
	query :=
		`SELECT username, email, age, hashed_password, role FROM users
		 WHERE username = $1
		 `

	user := &InternalUser{}
	var role string
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(username)).
		Scan(&user.Username, &user.Email, &user.Age, &user.HashedPassword, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	user.Role = Role(role)

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*InternalUser, error) {
	query :=
		`SELECT username, email, age, hashed_password, role FROM users
		 ORDER BY username
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var list []*InternalUser
	for rows.Next() {
		user := &InternalUser{}
		var role string
		if err := rows.Scan(&user.Username, &user.Email, &user.Age, &user.HashedPassword, &role); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		user.Role = Role(role)
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return list, nil
}

var _ Repository = (*PostgresRepository)(nil)
