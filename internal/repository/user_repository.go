package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-review/internal/database"
	"github.com/iliyamo/restaurant-review/internal/model"
	"github.com/iliyamo/restaurant-review/internal/utils"
)

type UserRepo struct{ db database.Querier }

func NewUserRepo(q database.Querier) *UserRepo { return &UserRepo{db: q} }

// Create hashes password, inserts the user and returns its uid.
func (r *UserRepo) Create(ctx context.Context, name, account, password string, cost int) (uint64, error) {
	account = strings.TrimSpace(account)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (u_name, account, password_hash, since) VALUES (?,?,?,CURDATE())",
		strings.TrimSpace(name), account, hash)
	if err != nil {
		if mysqlErrno(err) == mysqlDuplicateEntry {
			return 0, ErrAccountExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "uid,u_name,account,password_hash,since"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Account, &u.PasswordHash, &u.Since)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByAccount fetches a user by login name.
func (r *UserRepo) GetByAccount(ctx context.Context, account string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE account=? LIMIT 1", strings.TrimSpace(account)))
}

// GetByID fetches a user by uid.
func (r *UserRepo) GetByID(ctx context.Context, uid uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE uid=? LIMIT 1", uid))
}

// Name returns the display name of uid.
func (r *UserRepo) Name(ctx context.Context, uid uint64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, "SELECT u_name FROM users WHERE uid=? LIMIT 1", uid).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return name, err
}
