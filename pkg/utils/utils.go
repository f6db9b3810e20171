// Package utils 提供随机串、扩展名等通用工具
package utils

import (
	"crypto/rand"
	"math/big"
	"path/filepath"
	"strings"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandString 生成指定长度的小写字母数字随机串（crypto/rand）
func RandString(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		sb.WriteByte(alphanumeric[n.Int64()])
	}
	return sb.String()
}

// FileExt 返回不带点的小写扩展名，没有扩展名时返回 fallback
func FileExt(name, fallback string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return fallback
	}
	return ext
}
