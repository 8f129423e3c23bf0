// Package signer 实现 Bitget 私有接口的请求签名。
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Sign 对一次私有请求进行签名。
// 待签名消息为 timestamp + 大写method + path + body（body 缺省时为空字符串），
// 使用 secret 作为密钥计算 HMAC-SHA256，摘要以 base64 编码返回。
// 纯函数，无状态；method 大小写或 body 序列化顺序的任何偏差都会导致交易所拒绝签名。
func Sign(secret, timestamp, method, path, body string) string {
	message := timestamp + strings.ToUpper(method) + path + body
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
