package profile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownProfile is reported by Get when no profile has the requested name.
	ErrUnknownProfile = errors.New("steadfast: unknown profile")

	// ErrDuplicateProfile is reported by Register when the name is already taken.
	ErrDuplicateProfile = errors.New("steadfast: duplicate profile")
)

// UnknownProfileError carries the name that failed to resolve.
type UnknownProfileError struct {
	Name string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("steadfast: unknown profile %q", e.Name)
}

func (e *UnknownProfileError) Is(target error) bool { return target == ErrUnknownProfile }

// DuplicateProfileError carries the name that collided.
type DuplicateProfileError struct {
	Name string
}

func (e *DuplicateProfileError) Error() string {
	return fmt.Sprintf("steadfast: duplicate profile %q", e.Name)
}

func (e *DuplicateProfileError) Is(target error) bool { return target == ErrDuplicateProfile }

// Registry is a thread-safe name → Profile map. It is meant to be populated
// at startup and treated as read-only afterwards; Get takes only a read lock.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Profile
}

// NewRegistry returns an empty registry. Use RegisterBuiltins to add the
// built-in profiles.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Profile)}
}

// Register normalizes p and stores it under its name. It returns an
// *InvalidProfileError if p cannot be normalized and a *DuplicateProfileError
// (matching ErrDuplicateProfile) if the name is already registered.
func (r *Registry) Register(p Profile) error {
	if r == nil {
		return errors.New("steadfast: registry is nil")
	}

	n, err := p.Normalize()
	if err != nil {
		return err
	}
	name := strings.TrimSpace(n.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.m == nil {
		r.m = make(map[string]Profile)
	}
	if _, exists := r.m[name]; exists {
		return &DuplicateProfileError{Name: name}
	}
	r.m[name] = n
	return nil
}

// MustRegister registers p and panics on error.
func (r *Registry) MustRegister(p Profile) {
	if err := r.Register(p); err != nil {
		panic("profile.Registry.MustRegister: " + err.Error())
	}
}

// Get returns the profile registered under name. The error matches
// ErrUnknownProfile when the name is absent.
func (r *Registry) Get(name string) (Profile, error) {
	if r == nil {
		return Profile{}, &UnknownProfileError{Name: name}
	}
	name = strings.TrimSpace(name)

	r.mu.RLock()
	p, ok := r.m[name]
	r.mu.RUnlock()

	if !ok {
		return Profile{}, &UnknownProfileError{Name: name}
	}
	return p, nil
}

// Names returns the registered profile names in unspecified order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	return names
}
