package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/miguelmarques1/church-web/pkg/server/store"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) FindUserByPhone(ctx context.Context, phone string) (*store.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *MockUsersStore) GetUser(ctx context.Context, id int64) (*store.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(ctx context.Context, user *store.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockPolicyStore implements store.PolicyStore for testing using testify/mock
type MockPolicyStore struct {
	mock.Mock
}

func (m *MockPolicyStore) RecordPolicyVersion(text, sha256, source string) (int, error) {
	args := m.Called(text, sha256, source)
	return args.Int(0), args.Error(1)
}

func (m *MockPolicyStore) GetPolicyVersion(version int) (*store.PolicyVersion, error) {
	args := m.Called(version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PolicyVersion), args.Error(1)
}

func (m *MockPolicyStore) ListPolicyVersions() ([]store.PolicyVersion, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.PolicyVersion), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

var (
	_ store.UsersStore  = (*MockUsersStore)(nil)
	_ store.PolicyStore = (*MockPolicyStore)(nil)
	_ store.HealthStore = (*MockHealthStore)(nil)
)
