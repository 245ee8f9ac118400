package model

type UserRole string

const (
	RoleCustomer  UserRole = "customer"
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
)

// User is the signed-in account as reported by GET /auth/me.
type User struct {
	ID         int64      `json:"id"`
	CustomerID *int64     `json:"customerId,omitempty"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	Roles      []UserRole `json:"roles,omitempty"`
}

func (u *User) HasRole(roles ...UserRole) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
