// Nbhdeval - Neighborhood-Level Recommender Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nbhdeval

package neighborhood

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultSize is the neighborhood size used when none is configured.
const DefaultSize = 10

// ErrUnknownUser is returned when a raw user id was not seen while the
// similarity model was trained.
var ErrUnknownUser = errors.New("neighborhood: unknown user")

// Model is the neighbor-lookup capability of a trained similarity model.
type Model interface {
	// ToInnerUID maps a raw user id to the model's internal id.
	// Unknown ids must return an error wrapping ErrUnknownUser.
	ToInnerUID(raw int) (int, error)

	// GetNeighbors returns the k nearest internal ids, nearest first.
	GetNeighbors(inner, k int) ([]int, error)

	// ToRawUID maps an internal id back to the raw user id.
	ToRawUID(inner int) (int, error)
}

// Build maps every user in users to the raw ids of its k nearest neighbors.
// A k of zero or less uses DefaultSize. Duplicate user ids are looked up once.
//
// Any lookup failure aborts the build; the result never silently omits a user.
func Build(users []int, m Model, k int) (Map, error) {
	if m == nil {
		return Map{}, errors.New("neighborhood: nil model")
	}
	if k <= 0 {
		k = DefaultSize
	}

	mapping := make(map[int][]int, len(users))
	for _, uid := range users {
		if _, done := mapping[uid]; done {
			continue
		}

		inner, err := m.ToInnerUID(uid)
		if err != nil {
			return Map{}, fmt.Errorf("user %d: %w", uid, err)
		}

		innerNeighbors, err := m.GetNeighbors(inner, k)
		if err != nil {
			return Map{}, fmt.Errorf("user %d: neighbors: %w", uid, err)
		}

		raw := make([]int, 0, len(innerNeighbors))
		for _, in := range innerNeighbors {
			rid, err := m.ToRawUID(in)
			if err != nil {
				return Map{}, fmt.Errorf("user %d: neighbor %d: %w", uid, in, err)
			}
			raw = append(raw, rid)
		}
		mapping[uid] = raw
	}

	return FromMapping(mapping), nil
}

// BuildClusters builds one neighborhood mapping per similarity model.
// The result is indexed like models; mappings are not deduplicated.
func BuildClusters(users []int, models []Model, k int) ([]Map, error) {
	clusters := make([]Map, 0, len(models))
	for i, m := range models {
		nbhds, err := Build(users, m, k)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", i, err)
		}
		clusters = append(clusters, nbhds)
	}
	return clusters, nil
}

// Map is an ordered, read-only mapping from a center user to its neighbors.
type Map struct {
	users     []int
	neighbors map[int][]int
}

// FromMapping copies m into a Map ordered by ascending user id.
func FromMapping(m map[int][]int) Map {
	users := make([]int, 0, len(m))
	neighbors := make(map[int][]int, len(m))
	for uid, nbrs := range m {
		users = append(users, uid)
		neighbors[uid] = slices.Clone(nbrs)
	}
	slices.Sort(users)

	return Map{users: users, neighbors: neighbors}
}

// Len returns the number of center users.
func (m Map) Len() int {
	return len(m.users)
}

// Users returns the center user ids in ascending order.
func (m Map) Users() []int {
	return slices.Clone(m.users)
}

// Neighbors returns the neighbors of uid, nearest first.
func (m Map) Neighbors(uid int) ([]int, bool) {
	nbrs, ok := m.neighbors[uid]
	if !ok {
		return nil, false
	}
	return slices.Clone(nbrs), true
}

// Group returns N(uid): uid together with its neighbors. The center is
// always a member, whether or not the neighbor list already contains it.
func (m Map) Group(uid int) Set {
	nbrs := m.neighbors[uid]
	s := make(Set, len(nbrs)+1)
	s[uid] = struct{}{}
	for _, n := range nbrs {
		s[n] = struct{}{}
	}
	return s
}

// Set is a set of raw user ids.
type Set map[int]struct{}

// Contains reports whether uid is a member.
func (s Set) Contains(uid int) bool {
	_, ok := s[uid]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for uid := range s {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}
