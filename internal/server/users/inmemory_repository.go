package users

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/insight/internal/common"
)

// InMemoryRepository keeps users in a map for the process lifetime. Multiple
// requests may register or resolve users simultaneously, so reads take a
// shared lock and writes an exclusive one.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]InternalUser
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]InternalUser)}
}

func (r *InMemoryRepository) Add(_ context.Context, user *InternalUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[strings.ToLower(user.Username)] = *user
	return nil
}

func (r *InMemoryRepository) GetByUsername(_ context.Context, username string) (*InternalUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[strings.ToLower(username)]
	if !ok {
		return nil, common.ErrorNotFound
	}

	// copy, so callers cannot mutate the stored record
	return &user, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]*InternalUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*InternalUser, 0, len(r.users))
	for _, user := range r.users {
		u := user
		list = append(list, &u)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Username < list[j].Username
	})

	return list, nil
}

var _ Repository = (*InMemoryRepository)(nil)
