package persistence

import (
	"context"
	"database/sql"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetById(ctx context.Context, id int) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, id).Scan(
		&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.user_name = $1`)
	if err != nil {
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, userName).Scan(
		&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO public.user (name, user_name, password, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, user.Name, user.UserName, user.Password, user.CreatedAt, user.UpdatedAt)
	return err
}
