package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/control-stock/internal/domain/entity"
	"github.com/jhoicas/control-stock/internal/domain/repository"
)

var _ AuthorizationProvider = (*RoleAuthorizationProvider)(nil)

// RoleAuthorizationProvider considera privilegiados a los usuarios con rol admin.
// Un error de búsqueda o un usuario inexistente produce PrivilegeUnknown.
type RoleAuthorizationProvider struct {
	users repository.UserRepository
	log   zerolog.Logger
}

// NewRoleAuthorizationProvider construye el proveedor sobre el repositorio de usuarios.
func NewRoleAuthorizationProvider(users repository.UserRepository, log zerolog.Logger) *RoleAuthorizationProvider {
	return &RoleAuthorizationProvider{users: users, log: log}
}

func (p *RoleAuthorizationProvider) Privilege(ctx context.Context, actorID string) Privilege {
	if actorID == "" {
		return PrivilegeUnknown
	}
	user, err := p.users.GetByID(ctx, actorID)
	if err != nil {
		p.log.Warn().Err(err).Str("actor_id", actorID).Msg("no se pudo resolver el rol del actor")
		return PrivilegeUnknown
	}
	if user == nil {
		return PrivilegeUnknown
	}
	if user.Role == entity.RoleAdmin {
		return PrivilegePrivileged
	}
	return PrivilegeUnprivileged
}
