package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	domain "user-admin-service/internal/domain/user"
	apperrors "user-admin-service/pkg/errors"
)

// document is the on-disk layout: {"users": [...]}.
type document struct {
	Users []domain.User `json:"users"`
}

// UserStore keeps the user collection in a single JSON document. Every call
// reads the file so external edits are picked up; writes replace the file
// through a temp file and rename.
type UserStore struct {
	path string
	log  *zap.Logger
	mu   sync.RWMutex
}

// NewUserStore creates a store backed by path. A missing file is an empty
// collection; the file is created on the first write.
func NewUserStore(path string, log *zap.Logger) *UserStore {
	return &UserStore{path: path, log: log.Named("jsonfile")}
}

// ListAll returns every user in file order.
func (s *UserStore) ListAll(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(users, id)
	if i < 0 {
		return nil, notFound(id)
	}
	u := users[i]
	return &u, nil
}

// Create appends u with the next free id (highest id + 1).
func (s *UserStore) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	created := *u
	created.ID = nextID(users)
	users = append(users, created)

	if err := s.save(users); err != nil {
		return nil, err
	}

	s.log.Debug("user created in store", zap.Int64("id", created.ID))
	return &created, nil
}

// Update merges patch onto the stored user.
func (s *UserStore) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(users, id)
	if i < 0 {
		return nil, notFound(id)
	}

	if patch.Empty() {
		u := users[i]
		return &u, nil
	}

	users[i].Apply(patch)
	if err := s.save(users); err != nil {
		return nil, err
	}

	u := users[i]
	return &u, nil
}

// Delete removes the user with the given id.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	i := indexOf(users, id)
	if i < 0 {
		return notFound(id)
	}

	return s.save(slices.Delete(users, i, i+1))
}

func (s *UserStore) load() ([]domain.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.User{}, nil
	}
	if err != nil {
		s.log.Error("failed to read store", zap.String("path", s.path), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to read user store", err)
	}

	var doc document
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			s.log.Error("failed to decode store", zap.String("path", s.path), zap.Error(err))
			return nil, apperrors.NewInternalError("failed to decode user store", err)
		}
	}
	if doc.Users == nil {
		doc.Users = []domain.User{}
	}
	return doc.Users, nil
}

func (s *UserStore) save(users []domain.User) error {
	data, err := json.MarshalIndent(document{Users: users}, "", "  ")
	if err != nil {
		return apperrors.NewInternalError("failed to encode user store", err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		s.log.Error("failed to write store", zap.String("path", s.path), zap.Error(err))
		return apperrors.NewInternalError("failed to write user store", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func indexOf(users []domain.User, id int64) int {
	return slices.IndexFunc(users, func(u domain.User) bool { return u.ID == id })
}

func nextID(users []domain.User) int64 {
	var maxID int64
	for _, u := range users {
		maxID = max(maxID, u.ID)
	}
	return maxID + 1
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}
