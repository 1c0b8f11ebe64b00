package services

import (
	"sort"

	"github.com/lexora/lexora_backend/models"
)

// ReferralIndex is a per-call view of the referral forest: users by id and
// direct reports by referrer id
type ReferralIndex struct {
	users    map[string]models.User
	children map[string][]string
}

// BuildReferralIndex indexes users once so traversals do O(1) child lookups.
// Staff accounts are left out.
func BuildReferralIndex(users []models.User) *ReferralIndex {
	idx := &ReferralIndex{
		users:    make(map[string]models.User, len(users)),
		children: make(map[string][]string),
	}
	for _, u := range users {
		if u.IsStaff() {
			continue
		}
		idx.users[u.ID] = u
	}

	ordered := make([]models.User, 0, len(idx.users))
	for _, u := range idx.users {
		ordered = append(ordered, u)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, u := range ordered {
		if u.ReferrerID != nil {
			idx.children[*u.ReferrerID] = append(idx.children[*u.ReferrerID], u.ID)
		}
	}
	return idx
}

func (idx *ReferralIndex) User(id string) (models.User, bool) {
	u, ok := idx.users[id]
	return u, ok
}

// DirectReports returns the ids of users referred by id, oldest first
func (idx *ReferralIndex) DirectReports(id string) []string {
	return idx.children[id]
}

func (idx *ReferralIndex) Len() int {
	return len(idx.users)
}

// Downline walks the forest breadth first from the direct reports of userID.
// Every reachable user appears once and userID itself never does, even when
// corrupt data forms a cycle back to it.
func (idx *ReferralIndex) Downline(userID string) ([]string, []models.User) {
	ids := []string{}
	users := []models.User{}

	visited := map[string]bool{userID: true}
	queue := []string{userID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range idx.children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			ids = append(ids, child)
			users = append(users, idx.users[child])
			queue = append(queue, child)
		}
	}
	return ids, users
}

// GetDownline returns the transitive reports of userID in visitation order
func GetDownline(userID string, allUsers []models.User) ([]string, []models.User) {
	return BuildReferralIndex(allUsers).Downline(userID)
}

// UplineChain returns the user followed by each referrer up to the root.
// broken is set when a referrer id does not resolve, cycle when a user repeats.
// The chain stops at the first of either.
func (idx *ReferralIndex) UplineChain(start models.User) (chain []models.User, broken, cycle bool) {
	seen := map[string]bool{}
	current := start
	for {
		if seen[current.ID] {
			return chain, false, true
		}
		seen[current.ID] = true
		chain = append(chain, current)

		if current.ReferrerID == nil {
			return chain, false, false
		}
		next, ok := idx.users[*current.ReferrerID]
		if !ok {
			return chain, true, false
		}
		current = next
	}
}
