package notification

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound 通知不存在，或不属于调用方的租户/用户
	ErrNotFound = errors.New("notification not found")
	// ErrPersistence 通知写入失败
	ErrPersistence = errors.New("notification persistence failed")
	// ErrTargetResolution 目标选择器无法解析
	ErrTargetResolution = errors.New("target resolution failed")
	// ErrUnknownTenant 租户不存在
	ErrUnknownTenant = errors.New("unknown tenant")
	// ErrInvalidTarget 目标选择器参数错误
	ErrInvalidTarget = errors.New("invalid target")
	// ErrMissingTenant 缺少租户 ID
	ErrMissingTenant = errors.New("tenant id is required")
	// ErrInvalidContent 通知内容校验失败
	ErrInvalidContent = errors.New("invalid notification content")
	// ErrUnknownTemplate 模板不存在
	ErrUnknownTemplate = errors.New("unknown notification template")
)

// PersistenceError 写入失败，Recipients 为未被通知到的接收人
type PersistenceError struct {
	Recipients []string
	Err        error
}

// NewPersistenceError 创建写入失败错误
func NewPersistenceError(recipients []string, err error) *PersistenceError {
	return &PersistenceError{
		Recipients: append([]string(nil), recipients...),
		Err:        err,
	}
}

// Error 实现 error 接口
func (e *PersistenceError) Error() string {
	if len(e.Recipients) == 0 {
		return fmt.Sprintf("%s: %v", ErrPersistence, e.Err)
	}
	return fmt.Sprintf("%s for recipients [%s]: %v",
		ErrPersistence, strings.Join(e.Recipients, ","), e.Err)
}

// Unwrap 返回底层错误
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrPersistence) 成立
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// TargetResolutionError 目标解析失败
type TargetResolutionError struct {
	TenantID string
	Target   Target
	Err      error
}

// Error 实现 error 接口
func (e *TargetResolutionError) Error() string {
	return fmt.Sprintf("%s: tenant %q target %s: %v", ErrTargetResolution, e.TenantID, e.Target, e.Err)
}

// Unwrap 返回底层错误
func (e *TargetResolutionError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrTargetResolution) 成立
func (e *TargetResolutionError) Is(target error) bool {
	return target == ErrTargetResolution
}
