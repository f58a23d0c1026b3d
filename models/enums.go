package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Plan is the subscription tier attached to a tenant (and denormalized onto
// its users). It gates eligibility for the automatic vehicle inventory sync.
type Plan string

const (
	PlanIndividual Plan = "individual"
	PlanBusiness   Plan = "business"
	PlanEnterprise Plan = "enterprise"
	// PlanUnknown covers records written before the plan field existed.
	// At the sync boundary it behaves like PlanIndividual: individual is the
	// tier assigned at signup, so a missing plan is treated as eligible.
	// Only an absent/blank field parses to Unknown; an unrecognized label is
	// a distinct tier and is NOT eligible.
	PlanUnknown Plan = ""
)

func ParsePlan(s string) Plan {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "individual":
		return PlanIndividual
	case "business":
		return PlanBusiness
	case "enterprise":
		return PlanEnterprise
	case "":
		return PlanUnknown
	default:
		return Plan(normalized)
	}
}

// EligibleForAutoSync reports whether the vehicle inventory mirror applies.
func (p Plan) EligibleForAutoSync() bool {
	return p == PlanIndividual || p == PlanUnknown
}

// Label is the plan string written into snapshot metadata and new records.
// Unknown resolves to individual so the stored label matches the branch that
// was taken; any other label is preserved as-is.
func (p Plan) Label() string {
	if p == PlanUnknown {
		return string(PlanIndividual)
	}
	return string(p)
}

type UserRole string

const (
	UserRoleAdmin  UserRole = "A"
	UserRoleClient UserRole = "C"
)

func (r *UserRole) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*r = UserRole(v)
	case string:
		*r = UserRole(v)
	default:
		return errors.New("user role must be string")
	}
	return nil
}

func (r UserRole) Value() (driver.Value, error) {
	switch r {
	case UserRoleAdmin, UserRoleClient:
		return string(r), nil
	default:
		return nil, fmt.Errorf("invalid user role %q", string(r))
	}
}

type OutboxAction string

const (
	OutboxActionCreate OutboxAction = "C"
	OutboxActionUpdate OutboxAction = "U"
	OutboxActionDelete OutboxAction = "D"
)

const (
	ReferenceTypeProducto = "producto"
	ReferenceTypeUser     = "user"
)
