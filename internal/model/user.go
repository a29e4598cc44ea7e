package model

import "strings"

// UnassignedLabel is the display name used when a task's responsible
// user is missing from the fetched user set.
const UnassignedLabel = "Unassigned"

// User is a person record from the user-listing endpoint. The endpoint
// uses upper-case field names, unlike the task endpoint.
type User struct {
	// ID is the user's identifier within the remote service.
	ID ID `json:"ID"`

	// Name and LastName are the user's first and last names.
	Name     string `json:"NAME"`
	LastName string `json:"LAST_NAME"`

	// Departments lists the department ids the user belongs to.
	Departments []ID `json:"UF_DEPARTMENT"`

	// Active reports whether the account is enabled.
	Active bool `json:"ACTIVE"`
}

// DisplayName is the trimmed concatenation of first and last name.
// Either part may be empty.
func (u User) DisplayName() string {
	return strings.TrimSpace(
		strings.TrimSpace(u.Name) + " " + strings.TrimSpace(u.LastName),
	)
}

// InDepartment reports whether the user belongs to the given
// department. A zero id matches every user.
func (u User) InDepartment(id ID) bool {
	if id == 0 {
		return true
	}
	for _, d := range u.Departments {
		if d == id {
			return true
		}
	}
	return false
}

// UserIndex builds an id lookup over a user list.
func UserIndex(users []User) map[ID]User {
	idx := make(map[ID]User, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx
}

// UserDisplayName resolves the display name for a responsible-user id,
// falling back to UnassignedLabel when the id has no match or the
// matched user has an empty name.
func UserDisplayName(idx map[ID]User, id ID) string {
	u, ok := idx[id]
	if !ok {
		return UnassignedLabel
	}
	if name := u.DisplayName(); name != "" {
		return name
	}
	return UnassignedLabel
}
