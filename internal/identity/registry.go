// Package identity holds the fixed roster of synthetic personas.
package identity

import (
	"errors"
	"fmt"

	"solofeed/internal/model"
	"solofeed/internal/random"
)

// CurrentUserID is the stable id of the human player.
const CurrentUserID = "current-user"

// Registry is an immutable, ordered set of synthetic actors.
type Registry struct {
	actors []model.Actor
	byID   map[string]int
}

// NewRegistry validates and indexes actors. Every actor needs a distinct id and a personality.
func NewRegistry(actors []model.Actor) (*Registry, error) {
	if len(actors) == 0 {
		return nil, errors.New("identity: empty roster")
	}
	r := &Registry{actors: make([]model.Actor, len(actors)), byID: make(map[string]int, len(actors))}
	for i, a := range actors {
		if a.ID == "" || a.ID == CurrentUserID {
			return nil, fmt.Errorf("identity: invalid actor id %q", a.ID)
		}
		if a.Personality == "" {
			return nil, fmt.Errorf("identity: actor %s has no personality", a.ID)
		}
		if _, dup := r.byID[a.ID]; dup {
			return nil, fmt.Errorf("identity: duplicate actor id %s", a.ID)
		}
		r.actors[i] = a
		r.byID[a.ID] = i
	}
	return r, nil
}

// Default returns the built-in roster.
func Default() *Registry {
	r, err := NewRegistry(DefaultPersonas())
	if err != nil {
		panic(err)
	}
	return r
}

// List returns the roster in registration order.
func (r *Registry) List() []model.Actor {
	return append([]model.Actor(nil), r.actors...)
}

func (r *Registry) Len() int { return len(r.actors) }

// Lookup finds a synthetic actor by id.
func (r *Registry) Lookup(id string) (model.Actor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Actor{}, false
	}
	return r.actors[i], true
}

// PickOne draws uniformly among actors whose id is not in excluding.
// It fails with model.ErrExhausted only when every actor is excluded.
func (r *Registry) PickOne(src random.Source, excluding map[string]bool) (model.Actor, error) {
	candidates := make([]model.Actor, 0, len(r.actors))
	for _, a := range r.actors {
		if !excluding[a.ID] {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return model.Actor{}, model.ErrExhausted
	}
	return random.Pick(src, candidates), nil
}

// DefaultCurrentUser is the profile used when no snapshot exists.
func DefaultCurrentUser() model.Actor {
	return model.Actor{
		ID:        CurrentUserID,
		Username:  "you",
		AvatarRef: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?auto=format&fit=crop&w=150&q=80",
		Verified:  true,
	}
}
