package realtime

import (
	"errors"
	"fmt"
	"strings"
)

// 保留频道前缀
const (
	TenantChannelPrefix = "tenant:"
	UserChannelPrefix   = "user:"
)

// MaxChannelNameLength 频道名称最大长度
const MaxChannelNameLength = 128

var (
	// ErrInvalidChannel 频道名称不合法
	ErrInvalidChannel = errors.New("invalid channel name")
	// ErrChannelForbidden 不允许加入其他租户或用户的保留频道
	ErrChannelForbidden = errors.New("channel forbidden")
)

// TenantChannel 租户频道名称
func TenantChannel(tenantID string) string {
	return TenantChannelPrefix + tenantID
}

// UserChannel 个人频道名称
func UserChannel(userID string) string {
	return UserChannelPrefix + userID
}

// IsReserved 是否属于 tenant: 或 user: 频道族
func IsReserved(channel string) bool {
	return strings.HasPrefix(channel, TenantChannelPrefix) || strings.HasPrefix(channel, UserChannelPrefix)
}

// ValidateJoin 校验连接能否加入指定频道
// 自由频道任意加入；保留频道只能是连接自身的个人/租户频道
func ValidateJoin(conn *Connection, channel string) error {
	if err := validateName(channel); err != nil {
		return err
	}
	if !IsReserved(channel) {
		return nil
	}
	if channel == UserChannel(conn.UserID) || channel == TenantChannel(conn.TenantID) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrChannelForbidden, channel)
}

// ValidateLeave 校验频道名称，保留频道不可退出
func ValidateLeave(channel string) error {
	if err := validateName(channel); err != nil {
		return err
	}
	if IsReserved(channel) {
		return fmt.Errorf("%w: %s", ErrChannelForbidden, channel)
	}
	return nil
}

func validateName(channel string) error {
	if strings.TrimSpace(channel) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidChannel)
	}
	if len(channel) > MaxChannelNameLength {
		return fmt.Errorf("%w: too long", ErrInvalidChannel)
	}
	return nil
}
