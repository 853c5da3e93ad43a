package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidDSN POSTGRES_DSN 不是可用的 postgres URI
var ErrInvalidDSN = errors.New("invalid POSTGRES_DSN")

// ValidateDSN 检查 POSTGRES_DSN：必须是带主机和库名的 postgres:// 或 postgresql:// URI。
// browser_task 表建在 DSN 指定的库里，缺库名时会落到用户同名库，这里直接拒绝。
func ValidateDSN(dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return fmt.Errorf("%w: 为空", ErrInvalidDSN)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%w: scheme 必须是 postgres 或 postgresql（当前为 %q）", ErrInvalidDSN, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: 缺少主机", ErrInvalidDSN)
	}
	if strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("%w: 缺少数据库名", ErrInvalidDSN)
	}
	return nil
}
