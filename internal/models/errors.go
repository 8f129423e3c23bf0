package models

import "fmt"

// ConfigError 表示网格参数校验失败，start 之前抛出，属于致命错误
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误: %s %s", e.Field, e.Reason)
}

// NetworkError 表示传输层失败（连接失败、超时等），调用方跳过本次操作后继续
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("网络错误 (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// VenueError 定义了交易所API返回的业务错误信息结构
type VenueError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("API Error: code=%s, msg=%s", e.Code, e.Msg)
}

// AuthError 表示签名或凭证被交易所拒绝。
// 这类错误几乎必然在每次调用时重现，应当显著地暴露给使用者。
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("认证失败: %s", e.Msg)
}

// DuplicateLevelError 表示同一条网格线被重复记录成交。
// 正常控制流先查询再记录，不应触达这里；出现即意味着逻辑错误。
type DuplicateLevelError struct {
	LevelPrice float64
}

func (e *DuplicateLevelError) Error() string {
	return fmt.Sprintf("网格线 %.8f 已存在成交记录", e.LevelPrice)
}
