package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL joins DATABASE_URL and DATABASE_NAME.
// An empty name returns the base URL unchanged. Otherwise the name replaces the
// path, existing query parameters are kept and sslmode=disable is added when absent.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		// Let pgx report the malformed URL
		return baseURL
	}

	u.Path = "/" + databaseName
	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String()
}
