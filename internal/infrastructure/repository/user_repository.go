package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/database"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, password, phone, bio, email_verified, org_id, tenant_id, roles, created_at, updated_at`

type UserRepository struct {
	logger *zap.Logger
	db     *database.Postgres
}

var _ domain.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *database.Postgres, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, password, phone, bio, email_verified, org_id, tenant_id, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, user.Email, user.Name, user.Password, user.Phone, user.Bio, user.EmailVerified,
		user.OrgID, user.TenantID, user.Roles.Strings(), user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUserAlreadyExists
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDatabaseQuery, err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1 AND deleted_at IS NULL
	`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		r.logger.Error("failed to find user by id", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseQuery, err)
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		r.logger.Error("failed to find user by email", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseQuery, err)
	}
	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))", email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check if user exists", zap.Error(err))
		return false, fmt.Errorf("%w: %v", domain.ErrDatabaseQuery, err)
	}
	return exists, nil
}

// UpdatePassword overwrites the stored hash. Reads go straight to the
// database, so the new password is effective for the next login.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`, hashedPassword, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseQuery, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	var roles []string
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Password, &user.Phone, &user.Bio,
		&user.EmailVerified, &user.OrgID, &user.TenantID, &roles, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	user.Roles, err = domain.ParseRoles(roles)
	if err != nil {
		return nil, err
	}
	return user, nil
}
