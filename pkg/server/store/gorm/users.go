package gorm

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/miguelmarques1/church-web/pkg/model"
	"github.com/miguelmarques1/church-web/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// uniqueViolation is the postgres SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// FindUserByPhone retrieves a user by login phone.
func (s *UsersStore) FindUserByPhone(ctx context.Context, phone string) (*store.User, error) {
	var user model.User
	tx := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return toStoreUser(user), nil
}

// GetUser retrieves a user by ID.
func (s *UsersStore) GetUser(ctx context.Context, id int64) (*store.User, error) {
	var user model.User
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, tx.Error
	}
	return toStoreUser(user), nil
}

// CreateUser stores a new user and fills in its ID and CreatedAt.
func (s *UsersStore) CreateUser(ctx context.Context, user *store.User) error {
	row := s.db.WithContext(ctx).Raw(`
		INSERT INTO users (name, phone, email, password_hash, role_credentials)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at
	`, user.Name, user.Phone, user.Email, user.PasswordHash, user.Role).Row()

	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrPhoneTaken
		}
		return err
	}
	return nil
}

func toStoreUser(u model.User) *store.User {
	return &store.User{
		ID:           u.ID,
		Name:         u.Name,
		Phone:        u.Phone,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.RoleCredentials,
		CreatedAt:    u.CreatedAt,
	}
}
