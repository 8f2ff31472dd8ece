package permission

import (
	"context"

	"github.com/examforge/examforge/internal/shared/authorization"
	"github.com/examforge/examforge/internal/shared/logger"
)

// PolicyEnforcer is satisfied by the casbin-backed enforcer.
type PolicyEnforcer interface {
	Enforce(role string, resource string, action string) (bool, error)
}

type Service struct {
	enforcer PolicyEnforcer
	logger   logger.Interface
}

func NewService(enforcer PolicyEnforcer, logger logger.Interface) *Service {
	return &Service{
		enforcer: enforcer,
		logger:   logger,
	}
}

func (s *Service) CheckPermission(ctx context.Context, role authorization.UserRole, resource, action string) (bool, error) {
	if !role.IsValid() {
		return false, nil
	}
	return s.enforcer.Enforce(role.String(), resource, action)
}
