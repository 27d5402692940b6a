package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		dbName   string
		expected string
	}{
		{
			name:     "no database name keeps base URL",
			baseURL:  "postgres://user:pass@db:5432/existing",
			dbName:   "",
			expected: "postgres://user:pass@db:5432/existing",
		},
		{
			name:     "appends database name and sslmode",
			baseURL:  "postgres://user:pass@db:5432",
			dbName:   "birthdays",
			expected: "postgres://user:pass@db:5432/birthdays?sslmode=disable",
		},
		{
			name:     "trailing slash is ignored",
			baseURL:  "postgres://user:pass@db:5432/",
			dbName:   "birthdays",
			expected: "postgres://user:pass@db:5432/birthdays?sslmode=disable",
		},
		{
			name:     "keeps explicit sslmode",
			baseURL:  "postgres://user:pass@db:5432?sslmode=require",
			dbName:   "birthdays",
			expected: "postgres://user:pass@db:5432/birthdays?sslmode=require",
		},
		{
			name:     "keeps other query parameters",
			baseURL:  "postgres://user:pass@db:5432?connect_timeout=5",
			dbName:   "birthdays",
			expected: "postgres://user:pass@db:5432/birthdays?connect_timeout=5&sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
