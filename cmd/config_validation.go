package cmd

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateTelegramConfig(get, &validationErrs)
	validateSupportConfig(get, &validationErrs)
	validateFAQConfig(get, &validationErrs)
	validateDBConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)
	validateDownloadURLs(get, &validationErrs)
	validateBackendRequirements(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateTelegramConfig validates bot transport and admin chat settings.
func validateTelegramConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, "settings.telegram.token", errs)
	validateOptionalURL(get, "settings.telegram.api", errs)
	validateOptionalIntMin(get, "settings.telegram.poll_timeout_seconds", 1, errs)
	validateOptionalInt64NonZero(get, "settings.telegram.admin_chat_id", errs)
	validateOptionalInt64NonZero(get, "settings.telegram.tracker_admin_chat_id", errs)
	validateOptionalIntMin(get, "settings.telegram.throttle.per_sec", 1, errs)
	validateOptionalIntMin(get, "settings.telegram.throttle.burst", 1, errs)
}

// validateSupportConfig validates conversation and store settings.
func validateSupportConfig(get configGetter, errs *[]string) {
	validateOptionalInt64List(get, "settings.support.admin_ids", errs)
	validateOptionalStringList(get, "settings.support.fallback_contacts", errs)
	validateOptionalStringNonEmpty(get, "settings.support.images_dir", errs)
	validateOptionalIntMin(get, "settings.support.session_ttl_seconds", 1, errs)

	validateOptionalEnum(get, "settings.support.tickets.backend", []string{"file", "sql", "redis"}, errs)
	validateOptionalStringNonEmpty(get, "settings.support.tickets.file", errs)
	validateOptionalEnum(get, "settings.support.ratings.backend", []string{"csv", "sql"}, errs)
	validateOptionalStringNonEmpty(get, "settings.support.ratings.file", errs)
	validateOptionalEnum(get, "settings.support.escalations.backend", []string{"none", "mongo", "redis"}, errs)
}

// validateFAQConfig validates faq source and matching settings.
func validateFAQConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, "settings.faq.source", errs)
	validateOptionalFloatRange(get, "settings.faq.threshold", 0, 1, true, false, errs)
	validateOptionalIntMin(get, "settings.faq.cache_ttl_seconds", 0, errs)
	validateOptionalEnum(get, "settings.faq.match", []string{"substring", "exact"}, errs)

	validateOptionalStringNonEmpty(get, "settings.faq.minio.endpoint", errs)
	validateOptionalBool(get, "settings.faq.minio.secure", errs)
}

// validateDBConfig validates sql, redis and mongo connection settings.
func validateDBConfig(get configGetter, errs *[]string) {
	validateOptionalEnum(get, "settings.db.sql.driver", []string{"sqlite3", "pgx"}, errs)
	validateOptionalStringNonEmpty(get, "settings.db.sql.dsn", errs)
	validateOptionalStringNonEmpty(get, "settings.db.sql.addr", errs)
	validateOptionalStringNonEmpty(get, "settings.db.sql.db", errs)

	validateOptionalStringNonEmpty(get, "settings.db.redis.addr", errs)
	validateOptionalIntMin(get, "settings.db.redis.db", 0, errs)

	validateOptionalStringNonEmpty(get, "settings.db.mongo.addr", errs)
	validateOptionalStringNonEmpty(get, "settings.db.mongo.db", errs)
}

// validateWebConfig validates the optional http api listener.
func validateWebConfig(get configGetter, errs *[]string) {
	raw := get("settings.web.listen")
	if raw == nil {
		return
	}

	listen, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "settings.web.listen must be a string")
		return
	}

	if listen = strings.TrimSpace(listen); listen != "" && !isValidHost(listen) {
		appendValidationError(errs, "settings.web.listen must look like `host:port`")
	}
}

// validateDownloadURLs validates per program download overrides.
func validateDownloadURLs(get configGetter, errs *[]string) {
	raw := get("settings.download_urls")
	if raw == nil {
		return
	}

	urls := toStringMap(raw)
	if urls == nil {
		appendValidationError(errs, "settings.download_urls must be an object")
		return
	}

	for program := range urls {
		validateOptionalURL(func(string) any { return urls[program] },
			"settings.download_urls."+program, errs)
	}
}

// validateBackendRequirements validates that every selected backend has its connection configured.
func validateBackendRequirements(get configGetter, errs *[]string) {
	backend := func(key string) string {
		v, _ := parseStrictString(get(key))
		return strings.ToLower(strings.TrimSpace(v))
	}
	configured := func(key string) bool {
		v, err := parseStrictString(get(key))
		return err == nil && strings.TrimSpace(v) != ""
	}

	if backend("settings.support.tickets.backend") == "redis" ||
		backend("settings.support.escalations.backend") == "redis" {
		if !configured("settings.db.redis.addr") {
			appendValidationError(errs, "settings.db.redis.addr is required by the redis backend")
		}
	}

	if backend("settings.support.escalations.backend") == "mongo" {
		if !configured("settings.db.mongo.addr") || !configured("settings.db.mongo.db") {
			appendValidationError(errs, "settings.db.mongo.addr and settings.db.mongo.db are required by the mongo backend")
		}
	}

	usesSQL := backend("settings.support.tickets.backend") == "sql" ||
		backend("settings.support.ratings.backend") == "sql"
	if usesSQL && backend("settings.db.sql.driver") == "pgx" && !configured("settings.db.sql.dsn") &&
		(!configured("settings.db.sql.addr") || !configured("settings.db.sql.db")) {
		appendValidationError(errs, "settings.db.sql.dsn is required by the pgx driver, or settings.db.sql.addr and settings.db.sql.db")
	}

	source, _ := parseStrictString(get("settings.faq.source"))
	if strings.HasPrefix(strings.TrimSpace(source), "s3://") && !configured("settings.faq.minio.endpoint") {
		appendValidationError(errs, "settings.faq.minio.endpoint is required by s3 faq source")
	}
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalInt64NonZero validates an optionally configured telegram id.
func validateOptionalInt64NonZero(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt64(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value == 0 {
		appendValidationError(errs, "%s must not be 0", key)
	}
}

// validateOptionalInt64List validates an optionally configured list of telegram ids.
func validateOptionalInt64List(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, parseErr := parseInt64List(raw); parseErr != nil {
		appendValidationError(errs, "%s must be a list of integers", key)
	}
}

// validateOptionalStringList validates an optionally configured list of strings.
func validateOptionalStringList(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, parseErr := parseStringList(raw); parseErr != nil {
		appendValidationError(errs, "%s must be a list of strings", key)
	}
}

// validateOptionalEnum validates an optionally configured string key against allowed values.
func validateOptionalEnum(get configGetter, key string, allowed []string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, v := range allowed {
		if normalized == v {
			return
		}
	}

	appendValidationError(errs, "%s must be one of [%s]", key, strings.Join(allowed, ", "))
}

// validateOptionalFloatRange validates an optionally configured float key against a numeric range.
// It accepts a getter, range bounds, inclusivity toggles, and an error collector pointer.
func validateOptionalFloatRange(get configGetter, key string, min float64, max float64, includeMin bool, includeMax bool, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictFloat(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a float", key)
		return
	}

	validMin := value > min
	if includeMin {
		validMin = value >= min
	}
	validMax := value < max
	if includeMax {
		validMax = value <= max
	}

	if !validMin || !validMax {
		appendValidationError(errs, "%s must be within range", key)
	}
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	parsed, err := parseStrictInt64(value)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return int(parsed), nil
}

// parseStrictInt64 parses a value as a strict int64.
// Telegram chat ids do not fit in 32 bits, so this is the base parser.
func parseStrictInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse int")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictFloat parses a value as a strict floating-point number.
// It accepts a raw value and returns the parsed float64 and an error when parsing fails.
func parseStrictFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty float string")
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse float")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported float type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// parseInt64List parses a yaml list of integers, a single integer is accepted as a list of one.
func parseInt64List(value any) ([]int64, error) {
	switch v := value.(type) {
	case []any:
		ids := make([]int64, 0, len(v))
		for _, item := range v {
			id, err := parseStrictInt64(item)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			ids = append(ids, id)
		}
		return ids, nil
	case []int64:
		return v, nil
	case []int:
		ids := make([]int64, 0, len(v))
		for _, id := range v {
			ids = append(ids, int64(id))
		}
		return ids, nil
	default:
		id, err := parseStrictInt64(value)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []int64{id}, nil
	}
}

// parseStringList parses a yaml list of strings, a single string is accepted as a list of one.
func parseStringList(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := parseStrictString(item)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		s, err := parseStrictString(value)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return []string{s}, nil
	}
}

// toStringMap converts a decoded yaml object into map[string]any, nil if it is not an object.
func toStringMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = item
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = item
		}
		return out
	default:
		return nil
	}
}

// isValidHost validates a host string without scheme or path components.
// It accepts a host string and returns true when the host is syntactically acceptable.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
