package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidateStartupConfigWithGetterEmpty verifies empty configuration passes validation.
func TestValidateStartupConfigWithGetterEmpty(t *testing.T) {
	err := validateStartupConfigWithGetter(newMapConfigGetter(map[string]any{}))
	require.NoError(t, err)
}

func TestValidateStartupConfigWithGetterNil(t *testing.T) {
	require.Error(t, validateStartupConfigWithGetter(nil))
}

// TestValidateStartupConfigWithGetterInvalidBackend verifies unknown store backends fail validation.
func TestValidateStartupConfigWithGetterInvalidBackend(t *testing.T) {
	cfg := map[string]any{
		"settings": map[string]any{
			"support": map[string]any{
				"tickets":     map[string]any{"backend": "etcd"},
				"ratings":     map[string]any{"backend": "sql"},
				"escalations": map[string]any{"backend": "kafka"},
			},
		},
	}

	err := validateStartupConfigWithGetter(newMapConfigGetter(cfg))
	require.Error(t, err)
	require.Contains(t, err.Error(), "settings.support.tickets.backend must be one of [file, sql, redis]")
	require.Contains(t, err.Error(), "settings.support.escalations.backend")
	require.NotContains(t, err.Error(), "settings.support.ratings.backend")
}

// TestValidateStartupConfigWithGetterThreshold verifies the faq threshold range is [0, 1).
func TestValidateStartupConfigWithGetterThreshold(t *testing.T) {
	for _, tc := range []struct {
		threshold any
		ok        bool
	}{
		{0.5, true},
		{0, true},
		{0.99, true},
		{1, false},
		{1.5, false},
		{-0.1, false},
		{"half", false},
	} {
		cfg := map[string]any{
			"settings": map[string]any{
				"faq": map[string]any{"threshold": tc.threshold},
			},
		}

		err := validateStartupConfigWithGetter(newMapConfigGetter(cfg))
		if tc.ok {
			require.NoError(t, err, tc.threshold)
		} else {
			require.ErrorContains(t, err, "settings.faq.threshold", tc.threshold)
		}
	}
}

// TestValidateStartupConfigWithGetterMissingConnections verifies selected backends require their connection settings.
func TestValidateStartupConfigWithGetterMissingConnections(t *testing.T) {
	cfg := map[string]any{
		"settings": map[string]any{
			"support": map[string]any{
				"tickets":     map[string]any{"backend": "redis"},
				"ratings":     map[string]any{"backend": "sql"},
				"escalations": map[string]any{"backend": "mongo"},
			},
			"db": map[string]any{
				"sql": map[string]any{"driver": "pgx"},
			},
			"faq": map[string]any{
				"source": "s3://support/faq.yml",
			},
		},
	}

	err := validateStartupConfigWithGetter(newMapConfigGetter(cfg))
	require.Error(t, err)
	require.Contains(t, err.Error(), "settings.db.redis.addr is required")
	require.Contains(t, err.Error(), "settings.db.mongo.addr and settings.db.mongo.db are required")
	require.Contains(t, err.Error(), "settings.db.sql.dsn is required")
	require.Contains(t, err.Error(), "settings.faq.minio.endpoint is required")
}

// TestValidateStartupConfigWithGetterPostgresDialInfo verifies pgx accepts addr and db instead of dsn.
func TestValidateStartupConfigWithGetterPostgresDialInfo(t *testing.T) {
	sqlCfg := func(sql map[string]any) map[string]any {
		return map[string]any{
			"settings": map[string]any{
				"support": map[string]any{
					"tickets": map[string]any{"backend": "sql"},
				},
				"db": map[string]any{"sql": sql},
			},
		}
	}

	err := validateStartupConfigWithGetter(newMapConfigGetter(sqlCfg(map[string]any{
		"driver": "pgx", "addr": "pg:5432", "db": "support",
	})))
	require.NoError(t, err)

	err = validateStartupConfigWithGetter(newMapConfigGetter(sqlCfg(map[string]any{
		"driver": "pgx", "addr": "pg:5432",
	})))
	require.ErrorContains(t, err, "settings.db.sql.dsn is required")
}

// TestValidateStartupConfigWithGetterInvalidIDs verifies chat ids and admin ids must be integers.
func TestValidateStartupConfigWithGetterInvalidIDs(t *testing.T) {
	cfg := map[string]any{
		"settings": map[string]any{
			"telegram": map[string]any{
				"admin_chat_id": 0,
			},
			"support": map[string]any{
				"admin_ids": []any{1, "two"},
			},
			"download_urls": map[string]any{
				"chrome": "not a url",
			},
		},
	}

	err := validateStartupConfigWithGetter(newMapConfigGetter(cfg))
	require.Error(t, err)
	require.Contains(t, err.Error(), "settings.telegram.admin_chat_id must not be 0")
	require.Contains(t, err.Error(), "settings.support.admin_ids must be a list of integers")
	require.Contains(t, err.Error(), "settings.download_urls.chrome must be a valid absolute URL")
}

// TestValidateStartupConfigWithGetterValidConfig verifies valid explicit configuration passes validation.
func TestValidateStartupConfigWithGetterValidConfig(t *testing.T) {
	cfg := map[string]any{
		"settings": map[string]any{
			"telegram": map[string]any{
				"token":                 "123:abc",
				"api":                   "https://api.telegram.org",
				"poll_timeout_seconds":  10,
				"admin_chat_id":         -1001234567890,
				"tracker_admin_chat_id": -1009876543210,
				"throttle": map[string]any{
					"per_sec": 1,
					"burst":   5,
				},
			},
			"support": map[string]any{
				"admin_ids":           []any{12345, 67890},
				"fallback_contacts":   []any{"@grelcoo", "@iiivvvaaan"},
				"images_dir":          "images",
				"session_ttl_seconds": 1800,
				"tickets":             map[string]any{"backend": "sql"},
				"ratings":             map[string]any{"backend": "csv", "file": "data/ratings.csv"},
				"escalations":         map[string]any{"backend": "redis"},
			},
			"faq": map[string]any{
				"source":            "s3://support/faq.yml",
				"threshold":         0.5,
				"cache_ttl_seconds": 60,
				"match":             "substring",
				"minio": map[string]any{
					"endpoint": "s3.laisky.com",
					"secure":   true,
				},
			},
			"db": map[string]any{
				"sql":   map[string]any{"driver": "sqlite3", "dsn": "data/support.db"},
				"redis": map[string]any{"addr": "localhost:6379", "db": 0},
			},
			"web": map[string]any{
				"listen": "localhost:8080",
			},
			"download_urls": map[string]any{
				"chrome": "https://www.google.com/chrome/",
			},
		},
	}

	err := validateStartupConfigWithGetter(newMapConfigGetter(cfg))
	require.NoError(t, err)
}

func TestParseInt64List(t *testing.T) {
	ids, err := parseInt64List([]any{1, int64(-1001234567890), "42", 7.0})
	require.NoError(t, err)
	require.Equal(t, []int64{1, -1001234567890, 42, 7}, ids)

	ids, err = parseInt64List(5)
	require.NoError(t, err)
	require.Equal(t, []int64{5}, ids)

	_, err = parseInt64List([]any{1.5})
	require.Error(t, err)
}

// newMapConfigGetter builds a dotted-path getter for nested map-based test configuration.
// It accepts a nested map and returns a getter function compatible with validateStartupConfigWithGetter.
func newMapConfigGetter(root map[string]any) configGetter {
	return func(key string) any {
		if key == "" {
			return nil
		}

		parts := strings.Split(key, ".")
		var current any = root
		for _, part := range parts {
			nextMap, ok := current.(map[string]any)
			if !ok {
				return nil
			}

			next, exists := nextMap[part]
			if !exists {
				return nil
			}
			current = next
		}

		return current
	}
}
