package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/db"
)

const userColumns = `id, name, email, password, profile_pic, bio, friends, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db db.DBTX
}

func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password, profile_pic, bio, friends)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.ProfilePic, u.Bio, u.Friends).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code(apperr.CodeEmailTaken).
				With("email", u.Email).
				Errorf("Email has already been registered")
		}
		return oops.With("operation", "insert user").Wrap(err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, wrapLookup(err, "get user by id")
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapLookup(err, "get user by email")
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET name = $2,
		    email = $3,
		    password = $4,
		    profile_pic = $5,
		    bio = $6,
		    friends = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.ProfilePic, u.Bio, u.Friends).Scan(&u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code(apperr.CodeEmailTaken).
				With("email", u.Email).
				Errorf("Email has already been registered")
		}
		return wrapLookup(err, "update user")
	}
	return nil
}

func (r *PostgresRepository) Search(ctx context.Context, query, excludeID string) ([]*User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE (name ILIKE $1 OR email ILIKE $1) AND id <> $2
		ORDER BY name
	`, "%"+escapeLike(query)+"%", excludeID)
	if err != nil {
		return nil, oops.With("operation", "search users").Wrap(err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, oops.With("operation", "scan user row").Wrap(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate user rows").Wrap(err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.ProfilePic,
		&u.Bio,
		&u.Friends,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func wrapLookup(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return oops.With("operation", operation).Wrap(err)
}

// escapeLike neutralises LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// ids arrive from token claims; a malformed one cannot name a user.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}
