// Package roster tracks search and selection state for a task's submission
// list. State lives entirely on this side of the wire; the remote store is
// never consulted.
package roster

import (
	"strings"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

// Roster holds the submission-user list for one task together with the
// coach's search text and current selection. Selection stores full records
// keyed by submission id, so a record survives filter changes.
type Roster struct {
	users    []models.SubmissionUser
	query    string
	selected map[string]models.SubmissionUser
	order    []string
	current  *models.SubmissionUser
}

// New builds a roster over the given users.
func New(users []models.SubmissionUser) *Roster {
	return &Roster{
		users:    users,
		selected: make(map[string]models.SubmissionUser),
	}
}

// SetQuery replaces the search text.
func (r *Roster) SetQuery(query string) {
	r.query = query
}

// Query returns the current search text.
func (r *Roster) Query() string {
	return r.query
}

// Matches reports whether a user matches the search text: the query is
// lower-cased and split on whitespace, and every token must occur in the
// full name or the email.
func Matches(query string, user models.SubmissionUser) bool {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(tokens) == 0 {
		return true
	}

	name := strings.ToLower(user.FullName)
	email := strings.ToLower(user.Email)
	for _, token := range tokens {
		if !strings.Contains(name, token) && !strings.Contains(email, token) {
			return false
		}
	}
	return true
}

// Filtered returns the users matching the current query, in list order.
func (r *Roster) Filtered() []models.SubmissionUser {
	filtered := make([]models.SubmissionUser, 0, len(r.users))
	for _, user := range r.users {
		if Matches(r.query, user) {
			filtered = append(filtered, user)
		}
	}
	return filtered
}

// Toggle adds the user to the selection, or removes it when already
// selected. Re-selecting after a deselect restores the original set.
func (r *Roster) Toggle(user models.SubmissionUser) {
	key := user.SelectionKey()
	if _, ok := r.selected[key]; ok {
		delete(r.selected, key)
		for i, existing := range r.order {
			if existing == key {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		return
	}
	r.selected[key] = user
	r.order = append(r.order, key)
}

// SelectAll selects the full filtered set, or clears the selection when it
// already covers the filtered set. It is a one-shot toggle, not a sticky
// flag: narrowing the filter afterwards does not shrink the selection.
func (r *Roster) SelectAll() {
	filtered := r.Filtered()
	if len(filtered) > 0 && len(r.selected) == len(filtered) {
		r.selected = make(map[string]models.SubmissionUser)
		r.order = nil
		return
	}
	if len(filtered) == 0 {
		return
	}
	r.selected = make(map[string]models.SubmissionUser, len(filtered))
	r.order = make([]string, 0, len(filtered))
	for _, user := range filtered {
		key := user.SelectionKey()
		r.selected[key] = user
		r.order = append(r.order, key)
	}
}

// Selected returns the selected records in selection order.
func (r *Roster) Selected() []models.SubmissionUser {
	selected := make([]models.SubmissionUser, 0, len(r.order))
	for _, key := range r.order {
		if user, ok := r.selected[key]; ok {
			selected = append(selected, user)
		}
	}
	return selected
}

// View marks a user as the one currently open in the detail pane.
func (r *Roster) View(user models.SubmissionUser) {
	copied := user
	r.current = &copied
}

// Current returns the user open in the detail pane, if any.
func (r *Roster) Current() *models.SubmissionUser {
	return r.current
}
