package service

import (
	"storefront-core/internal/core/domain"
)

// RoleAuthorizer implements ports.Authorizer on the actor's role claim.
// It is the single capability gate in front of the workflow engine.
type RoleAuthorizer struct{}

// NewRoleAuthorizer creates a RoleAuthorizer.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{}
}

// CanResolve reports whether the actor may approve or reject requests.
// Only admins resolve; merchants submit.
func (a *RoleAuthorizer) CanResolve(actor domain.Actor) bool {
	return actor.Role == domain.RoleAdmin
}
