package chat

import "sync"

// Registry tracks which operators are currently online. Entries are keyed by
// user ID and reported in insertion order.
type Registry struct {
	users map[string]User
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]User),
	}
}

// Bind records a user as present.
func (r *Registry) Bind(user User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		r.order = append(r.order, user.ID)
	}
	r.users[user.ID] = user
}

// Get looks up a present user by ID.
func (r *Registry) Get(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	return user, ok
}

// Unbind removes a user and reports whether it was present. Unbinding an
// unknown ID is a no-op.
func (r *Registry) Unbind(id string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, false
	}

	delete(r.users, id)
	for i, uid := range r.order {
		if uid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return user, true
}

// List returns every present user in insertion order.
func (r *Registry) List() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.users[id])
	}
	return users
}

// Len returns the number of present users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
