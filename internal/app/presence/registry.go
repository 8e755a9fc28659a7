/*
Package presence tracks which connection belongs to which user and room.

The Registry is a single table keyed by connection ID. Room membership is derived by
filtering that table on demand, so there is no second index that could drift out of sync.
Usernames and rooms are compared after normalization (trimmed and Unicode case-folded),
which keeps "General" and "general" in one room and rejects look-alike usernames.
*/
package presence

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"geochat/internal/app/user"
	"geochat/internal/pkg/errs"
)

// entry is a registry row; seq preserves insertion order for room listings.
type entry struct {
	user    user.User
	nameKey string
	roomKey string
	seq     uint64
}

// Registry is the in-memory connection -> user table.
type Registry struct {
	// mu guards users and nextSeq; AddUser and RemoveUser take the write lock.
	mu sync.RWMutex

	users   map[string]entry
	nextSeq uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]entry),
	}
}

// Normalize trims s and folds its case for comparison.
// A Caser is stateful, so a fresh one is built per call.
func Normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// RoomKey returns the key under which a room's members are grouped.
func RoomKey(room string) string {
	return Normalize(room)
}

// AddUser registers username in room for connectionID.
//
// Both names are trimmed and must be non-empty. The connection must not already own a
// user, and no user in the same room may share the username after normalization.
// The check and the insert happen under one write lock.
func (r *Registry) AddUser(connectionID, username, room string) (user.User, *errs.CustomError) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)

	if username == "" || room == "" {
		return user.User{}, errs.NewError(errs.ErrMissingFields)
	}

	nameKey := Normalize(username)
	roomKey := Normalize(room)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[connectionID]; ok {
		return user.User{}, errs.NewError(errs.ErrAlreadyJoined)
	}

	for _, e := range r.users {
		if e.roomKey == roomKey && e.nameKey == nameKey {
			return user.User{}, errs.NewError(errs.ErrDuplicateUsername)
		}
	}

	u := user.User{
		ConnectionID: connectionID,
		Username:     username,
		Room:         room,
	}

	r.nextSeq++
	r.users[connectionID] = entry{user: u, nameKey: nameKey, roomKey: roomKey, seq: r.nextSeq}

	return u, nil
}

// RemoveUser deletes and returns the user owned by connectionID.
// The boolean is false when the connection never joined or was already removed.
func (r *Registry) RemoveUser(connectionID string) (user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.users[connectionID]
	if !ok {
		return user.User{}, false
	}

	delete(r.users, connectionID)
	return e.user, true
}

// GetUser returns the user owned by connectionID, if any.
func (r *Registry) GetUser(connectionID string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.users[connectionID]
	return e.user, ok
}

// GetUsersInRoom returns the users of room in insertion order.
func (r *Registry) GetUsersInRoom(room string) []user.User {
	roomKey := Normalize(room)

	r.mu.RLock()
	matches := make([]entry, 0)
	for _, e := range r.users {
		if e.roomKey == roomKey {
			matches = append(matches, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].seq < matches[j].seq
	})

	users := make([]user.User, len(matches))
	for i, e := range matches {
		users[i] = e.user
	}
	return users
}

// Rooms returns every occupied room once, named as its earliest remaining member typed it.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	all := make([]entry, 0, len(r.users))
	for _, e := range r.users {
		all = append(all, e)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].seq < all[j].seq
	})

	seen := make(map[string]struct{})
	rooms := make([]string, 0)
	for _, e := range all {
		if _, ok := seen[e.roomKey]; ok {
			continue
		}
		seen[e.roomKey] = struct{}{}
		rooms = append(rooms, e.user.Room)
	}
	return rooms
}

// Count returns the number of joined users across all rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
