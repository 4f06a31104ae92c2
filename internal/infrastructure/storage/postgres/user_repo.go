package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/auth"
)

const usersTable = "sys_users"

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	baseRepo[*auth.User]
}

func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{
		baseRepo: newBaseRepo(
			txm,
			usersTable,
			ExtractDBColumns[auth.User](),
			func() *auth.User { return &auth.User{} },
		),
	}
}

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	if err := r.insert(ctx, user); err != nil {
		if IsUniqueViolation(err) {
			return apperror.NewConflict("email already registered").
				WithDetail("email", user.Email)
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": userID})
	return r.getOne(ctx, q, userID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.baseSelect().Where(squirrel.Eq{"email": email})
	return r.getOne(ctx, q, email)
}

func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	return r.update(ctx, user)
}

func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"email": email})
}
