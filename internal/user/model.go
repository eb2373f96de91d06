package user

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleCollector Role = "COLLECTOR"
	RoleAdmin     Role = "ADMIN"
)

// User is the point-balance holder. Points never go below zero; every
// mutation path guards that at the storage layer.
type User struct {
	ID        int64
	FullName  string
	Email     string
	Password  string
	Phone     *string
	Points    int
	Role      Role
	City      *string
	Street    *string
	Building  *string
	Apartment *string
	CreatedAt time.Time
}

type RegisterParams struct {
	FullName string
	Email    string
	Password string
	Phone    *string
	Role     Role
}

// Address is the pickup location captured on orders and, once known,
// persisted back onto the user profile.
type Address struct {
	City      string
	Street    string
	Building  string
	Apartment string
}
