package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ningsang-Jabegu/INT-1-CT-CourseHub/internal/types"
)

type contextKey struct{}

// Identity is the authenticated caller, resolved once per request by the
// auth middleware and passed explicitly through the call chain. A nil
// Identity means an anonymous request.
type Identity struct {
	UserID      uuid.UUID
	Username    string
	Role        types.Role
	IsStaff     bool
	TokenString string
}

func (id *Identity) IsAdmin() bool   { return id != nil && id.Role == types.RoleAdmin }
func (id *Identity) IsTeacher() bool { return id != nil && id.Role == types.RoleTeacher }
func (id *Identity) IsStudent() bool { return id != nil && id.Role == types.RoleStudent }

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// GetIdentity returns the caller's identity or nil for anonymous requests.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}
