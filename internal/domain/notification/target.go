package notification

import (
	"fmt"
	"strings"
)

// TargetKind 目标选择器类型
type TargetKind int

const (
	// TargetUser 单个用户
	TargetUser TargetKind = iota + 1
	// TargetTenant 租户内所有成员
	TargetTenant
	// TargetRoles 租户内持有指定角色的成员
	TargetRoles
)

// String 返回类型名称
func (k TargetKind) String() string {
	switch k {
	case TargetUser:
		return "user"
	case TargetTenant:
		return "tenant"
	case TargetRoles:
		return "roles"
	default:
		return "unknown"
	}
}

// Target 目标选择器，只能通过 ToUser / ToTenant / ToRoles 构造
type Target struct {
	kind   TargetKind
	userID string
	roles  []string
}

// ToUser 指定单个接收人
func ToUser(userID string) Target {
	return Target{kind: TargetUser, userID: userID}
}

// ToTenant 租户内全部成员，在发布时解析
func ToTenant() Target {
	return Target{kind: TargetTenant}
}

// ToRoles 租户内持有任一角色的成员，在发布时解析
func ToRoles(roles ...string) Target {
	cp := make([]string, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		cp = append(cp, r)
	}
	return Target{kind: TargetRoles, roles: cp}
}

// ParseTarget 从外部输入构造目标选择器
func ParseTarget(kind, userID string, roles []string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "user":
		if userID == "" {
			return Target{}, fmt.Errorf("%w: user target requires userId", ErrInvalidTarget)
		}
		return ToUser(userID), nil
	case "tenant":
		return ToTenant(), nil
	case "roles":
		t := ToRoles(roles...)
		if len(t.roles) == 0 {
			return Target{}, fmt.Errorf("%w: roles target requires at least one role", ErrInvalidTarget)
		}
		return t, nil
	default:
		return Target{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, kind)
	}
}

// Kind 目标类型
func (t Target) Kind() TargetKind { return t.kind }

// UserID 仅 TargetUser 有效
func (t Target) UserID() string { return t.userID }

// Roles 仅 TargetRoles 有效，返回副本
func (t Target) Roles() []string {
	return append([]string(nil), t.roles...)
}

// String 用于日志
func (t Target) String() string {
	switch t.kind {
	case TargetUser:
		return "user:" + t.userID
	case TargetTenant:
		return "tenant"
	case TargetRoles:
		return "roles:" + strings.Join(t.roles, ",")
	default:
		return "unknown"
	}
}
