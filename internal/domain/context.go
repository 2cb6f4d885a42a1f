package domain

import (
	"context"
	"fmt"
)

type contextKey string

const CtxUserInfo contextKey = "userInfo"

const (
	CtxSystemAdminId = "_LGL_SYS_ADMIN_"
	CtxUnknownUserId = "_LGL_SYS_UNKNOWN_"
)

// ContextUserInfo identifies the acting user of a request. It is attached to
// every audit entry that gets written while the context is active.
type ContextUserInfo struct {
	Id   UserIdentifier
	Role UserRole
}

func (u *ContextUserInfo) String() string {
	return fmt.Sprintf("%s|%s", u.Id, u.Role)
}

func (u *ContextUserInfo) UserId() string {
	return string(u.Id)
}

func (u *ContextUserInfo) IsAdmin() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleSuperAdmin
}

func (u *ContextUserInfo) IsSuperAdmin() bool {
	return u.Role == UserRoleSuperAdmin
}

func DefaultContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:   CtxUnknownUserId,
		Role: UserRoleStudent,
	}
}

func SystemAdminContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:   CtxSystemAdminId,
		Role: UserRoleSuperAdmin,
	}
}

func SetUserInfo(ctx context.Context, info *ContextUserInfo) context.Context {
	return context.WithValue(ctx, CtxUserInfo, info)
}

func GetUserInfo(ctx context.Context) *ContextUserInfo {
	rawInfo := ctx.Value(CtxUserInfo)
	if rawInfo == nil {
		return DefaultContextUserInfo()
	}

	if info, ok := rawInfo.(*ContextUserInfo); ok {
		return info
	}

	return DefaultContextUserInfo()
}

// ValidateAdminAccessRights returns ErrNoPermission if the context user has no administrative role.
func ValidateAdminAccessRights(ctx context.Context) error {
	if !GetUserInfo(ctx).IsAdmin() {
		return ErrNoPermission
	}
	return nil
}

// ValidateSuperAdminAccessRights returns ErrNoPermission if the context user is not a super admin.
func ValidateSuperAdminAccessRights(ctx context.Context) error {
	if !GetUserInfo(ctx).IsSuperAdmin() {
		return ErrNoPermission
	}
	return nil
}

// ValidateUserAccessRights checks if the context user is allowed to access data of the given user id.
// Admins can access everything, other users only their own data.
func ValidateUserAccessRights(ctx context.Context, id UserIdentifier) error {
	info := GetUserInfo(ctx)
	if info.IsAdmin() {
		return nil
	}
	if info.Id != id {
		return ErrNoPermission
	}
	return nil
}
