package models

// UserRole represents the dashboards a session can reach.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleTeacher      UserRole = "TEACHER"
	RoleClassTeacher UserRole = "CLASS_TEACHER"
	RoleStudent      UserRole = "STUDENT"
	RoleParent       UserRole = "PARENT"
)

// Valid reports whether the role is one the gateway knows about.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleClassTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}
