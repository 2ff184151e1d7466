package services

import (
	"database/sql"

	"paperback/internal/domain"
	"paperback/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService is the admin-facing user management plus self-service profile.
type UserService struct {
	Users *repos.UserRepo
}

func NewUserService(users *repos.UserRepo) *UserService { return &UserService{Users: users} }

func (s *UserService) List() ([]domain.User, error) { return s.Users.List() }

func (s *UserService) Get(id string) (*domain.User, error) { return s.Users.ByID(id) }

func (s *UserService) Create(name, email, password, role string) (*domain.User, error) {
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: uuid.NewString(), Name: name, Email: email, Hash: string(h), Role: role}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Update(id, name, email, role string) (*domain.User, error) {
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	if err := s.Users.Update(id, name, email, role); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

func (s *UserService) Delete(id string) error { return s.Users.Delete(id) }

func (s *UserService) UpdateProfile(id, name, email string) (*domain.User, error) {
	if err := s.Users.UpdateProfile(id, name, email); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}
