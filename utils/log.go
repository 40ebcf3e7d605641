package utils

import (
	"strings"
	"unicode"
)

// SanitizeLogMessage 去掉控制字符，换行替换为空格，防止伪造日志行
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteRune(' ')
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogUsername 截断过长的用户名后再清理
func SanitizeLogUsername(username string) string {
	if len(username) > 50 {
		username = username[:50] + "..."
	}
	return SanitizeLogMessage(username)
}
