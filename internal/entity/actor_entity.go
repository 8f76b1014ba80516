package entity

import "github.com/google/uuid"

// Actor is whoever triggered an operation. Identity is opaque to this service.
type Actor struct {
	Id   *uuid.UUID
	Role string
}

const (
	RoleCustomer = "customer"
	RoleDoctor   = "doctor"
	RoleStaff    = "staff"
	RoleCashier  = "cashier"
	RoleManager  = "manager"
	RoleGateway  = "gateway"
)

func SystemActor(role string) Actor {
	return Actor{Role: role}
}
