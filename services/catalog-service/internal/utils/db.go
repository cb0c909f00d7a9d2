package utils

import (
	"strconv"
	"strings"
	"time"
)

// ConnParams параметры подключения к PostgreSQL
type ConnParams struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	PoolSize int
	Timeout  time.Duration
}

// GenerateConnectionString собирает DSN в формате key=value для pgxpool.
// PoolSize передается как pool_max_conns.
func GenerateConnectionString(p ConnParams) (string, error) {
	switch {
	case p.Host == "":
		return "", ErrStorageEmptyHostName
	case p.Port <= 0 || p.Port > 65535:
		return "", ErrStorageInvalidPortNumber
	case p.User == "":
		return "", ErrStorageEmptyUsername
	case p.Password == "":
		return "", ErrStorageEmptyPassword
	case p.DBName == "":
		return "", ErrStorageInvalidDatabaseName
	case p.SSLMode == "":
		return "", ErrStorageInvalidSslMode
	case p.Timeout < 0:
		return "", ErrStorageInvalidTimeout
	case p.PoolSize < 0:
		return "", ErrStorageInvalidPoolSize
	}

	var conStr strings.Builder
	write := func(key, value string) {
		if conStr.Len() > 0 {
			conStr.WriteByte(' ')
		}
		conStr.WriteString(key)
		conStr.WriteByte('=')
		conStr.WriteString(quoteConnValue(value))
	}

	write("host", p.Host)
	write("port", strconv.Itoa(p.Port))
	write("user", p.User)
	write("password", p.Password)
	write("dbname", p.DBName)
	write("sslmode", p.SSLMode)
	if p.Timeout > 0 {
		write("connect_timeout", strconv.Itoa(int(p.Timeout.Seconds())))
	}
	if p.PoolSize > 0 {
		write("pool_max_conns", strconv.Itoa(p.PoolSize))
	}

	return conStr.String(), nil
}

// quoteConnValue экранирует значение по правилам libpq
func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
