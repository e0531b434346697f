package main

import (
	"fmt"
	"maps"
	"strconv"
	"sync"
)

// staffAuth is the allow-list of panel staff. Admins come from the
// configuration and can never be revoked; everyone else is granted at start
// from ALLOWED_USER_IDS or at runtime with /adduser, and is forgotten on
// restart.
type staffAuth struct {
	mtx    sync.RWMutex
	admins map[int64]string
	staff  map[int64]string
}

func newStaffAuth(admins map[int64]string, allowed []int64) *staffAuth {
	staff := make(map[int64]string, len(allowed)+len(admins))
	for _, id := range allowed {
		// aliases of configured staff are unknown until an admin sets one
		staff[id] = strconv.FormatInt(id, 10)
	}
	maps.Copy(staff, admins)
	return &staffAuth{admins: maps.Clone(admins), staff: staff}
}

func (a *staffAuth) AddAllowedUser(userID int64, alias string) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if current, granted := a.staff[userID]; granted {
		return fmt.Errorf("user %d already added as %s", userID, current)
	}
	a.staff[userID] = alias
	return nil
}

func (a *staffAuth) RemoveAllowedUser(userID int64) bool {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if _, admin := a.admins[userID]; admin {
		return false
	}
	if _, granted := a.staff[userID]; !granted {
		return false
	}
	delete(a.staff, userID)
	return true
}

// ListAllowedUsers returns a snapshot, admins included.
func (a *staffAuth) ListAllowedUsers() map[int64]string {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return maps.Clone(a.staff)
}

func (a *staffAuth) ListAdmins() map[int64]string {
	return maps.Clone(a.admins)
}

func (a *staffAuth) IsAdmin(userID int64) bool {
	_, admin := a.admins[userID]
	return admin
}

func (a *staffAuth) IsAllowed(userID int64) bool {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	_, granted := a.staff[userID]
	return granted
}
