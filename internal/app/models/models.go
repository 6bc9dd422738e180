package models

// RoleType defines the user role type
type RoleType string

const (
	RoleMember RoleType = "MEMBER"
	RoleAdmin  RoleType = "ADMIN"
)

// ContainsID reports whether id is present in ids.
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids without any occurrence of id. The input slice is not modified.
func RemoveID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ToggleID removes id if present, otherwise appends it. The second return value
// is true when id is present afterwards.
func ToggleID(ids []string, id string) ([]string, bool) {
	if ContainsID(ids, id) {
		return RemoveID(ids, id), false
	}
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id), true
}
