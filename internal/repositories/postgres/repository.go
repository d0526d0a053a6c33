package postgres

import (
	"context"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	tests     repositories.TestRepository
	sessions  repositories.SessionRepository
	responses repositories.ResponseRepository
	users     repositories.UserRepository
}

// NewRepository wires the gorm-backed repositories into one handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		tests:     NewTestPostgreSQL(db),
		sessions:  NewSessionPostgreSQL(db),
		responses: NewResponsePostgreSQL(db),
		users:     NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Test() repositories.TestRepository {
	return r.tests
}

func (r *gormRepository) Session() repositories.SessionRepository {
	return r.sessions
}

func (r *gormRepository) Response() repositories.ResponseRepository {
	return r.responses
}

func (r *gormRepository) User() repositories.UserRepository {
	return r.users
}

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
