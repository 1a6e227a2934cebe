package roster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

func subID(s string) *string { return &s }

func sampleUsers() []models.SubmissionUser {
	return []models.SubmissionUser{
		{UserID: "1", FullName: "Amina Hassan", Email: "amina@example.com", SubmissionID: subID("s-1")},
		{UserID: "2", FullName: "Omar Farouk", Email: "omar.farouk@example.com", SubmissionID: subID("s-2")},
		{UserID: "3", FullName: "Sara Amin", Email: "sara@school.org", SubmissionID: subID("s-3")},
	}
}

func TestFilterTokensMustAllMatch(t *testing.T) {
	r := New(sampleUsers())

	r.SetQuery("amin example")
	filtered := r.Filtered()
	require.Len(t, filtered, 1)
	require.Equal(t, "Amina Hassan", filtered[0].FullName)

	// A token may match the name and another the email.
	r.SetQuery("sara school")
	filtered = r.Filtered()
	require.Len(t, filtered, 1)
	require.Equal(t, "Sara Amin", filtered[0].FullName)
}

func TestFilterIsIdempotent(t *testing.T) {
	r := New(sampleUsers())
	r.SetQuery("example")

	once := r.Filtered()
	twice := r.Filtered()
	require.Equal(t, once, twice)
}

func TestEmptyQueryMatchesEveryone(t *testing.T) {
	r := New(sampleUsers())
	r.SetQuery("   ")
	require.Len(t, r.Filtered(), 3)
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	users := sampleUsers()
	r := New(users)

	r.Toggle(users[0])
	r.Toggle(users[1])
	require.Len(t, r.Selected(), 2)

	r.Toggle(users[0])
	r.Toggle(users[0])
	selected := r.Selected()
	require.Len(t, selected, 2)
	require.ElementsMatch(t, []string{"s-1", "s-2"}, []string{*selected[0].SubmissionID, *selected[1].SubmissionID})
}

func TestSelectAllTogglesFilteredSet(t *testing.T) {
	users := sampleUsers()
	r := New(users)

	r.SelectAll()
	require.Len(t, r.Selected(), 3)

	r.SelectAll()
	require.Empty(t, r.Selected())
}

func TestSelectAllOnEmptyFilterIsNoOp(t *testing.T) {
	users := sampleUsers()
	r := New(users)
	r.Toggle(users[0])

	r.SetQuery("nobody-matches-this")
	require.Empty(t, r.Filtered())

	r.SelectAll()
	require.Len(t, r.Selected(), 1)
}

func TestNarrowingFilterKeepsSelection(t *testing.T) {
	users := sampleUsers()
	r := New(users)

	r.SelectAll()
	require.Len(t, r.Selected(), 3)

	r.SetQuery("omar")
	require.Len(t, r.Filtered(), 1)
	// Select-all is not a sticky flag; the earlier selection stands.
	require.Len(t, r.Selected(), 3)
}

func TestViewTracksCurrentUser(t *testing.T) {
	users := sampleUsers()
	r := New(users)
	require.Nil(t, r.Current())

	r.View(users[2])
	require.NotNil(t, r.Current())
	require.Equal(t, "Sara Amin", r.Current().FullName)
}
