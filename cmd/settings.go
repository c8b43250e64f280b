package cmd

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/laisky-support-bot/internal/support/dao"
	"github.com/Laisky/laisky-support-bot/internal/support/service"
	"github.com/Laisky/laisky-support-bot/library/db/mongo"
	"github.com/Laisky/laisky-support-bot/library/db/sqldb"
	"github.com/Laisky/laisky-support-bot/library/faq"
	"github.com/Laisky/laisky-support-bot/library/throttle"
)

const (
	defaultFAQSource       = "data/faq.json"
	defaultImagesDir       = "images"
	defaultPollTimeout     = 10 * time.Second
	defaultThrottlePerSec  = 1
	defaultThrottleBurst   = 5
	totalThrottlePerSec    = 30
	totalThrottleBurstRate = 2
)

type storeSettings struct {
	ticketsBackend     string
	ticketsFile        string
	ratingsBackend     string
	ratingsFile        string
	escalationsBackend string

	sqlDriver string
	sqlDSN    string

	redisAddr     string
	redisDB       int
	redisPassword string

	mongo mongo.DialInfo
}

type faqSettings struct {
	source    string
	threshold float64
	cacheTTL  time.Duration
	match     string
	minio     *faq.MinioConfig
}

type botSettings struct {
	token       string
	api         string
	pollTimeout time.Duration

	support  service.Config
	throttle throttle.UserThrottleCfg
	stores   storeSettings
	faq      faqSettings

	webListen string
}

// settingsReader typed access over a configGetter, missing keys return defaults
type settingsReader struct {
	get    configGetter
	cfgDir string
}

func newSettingsReader(get configGetter) *settingsReader {
	r := &settingsReader{get: get}
	r.cfgDir = r.str("cfg_dir", "")
	return r
}

func sharedSettingsReader() *settingsReader {
	return newSettingsReader(func(key string) any {
		return gconfig.S.Get(key)
	})
}

func (r *settingsReader) str(key, dft string) string {
	v, err := parseStrictString(r.get(key))
	if err != nil || strings.TrimSpace(v) == "" {
		return dft
	}

	return strings.TrimSpace(v)
}

func (r *settingsReader) lower(key, dft string) string {
	return strings.ToLower(r.str(key, dft))
}

// path resolves a configured relative path against the config file's directory
func (r *settingsReader) path(key, dft string) string {
	v := r.str(key, "")
	if v == "" {
		return dft
	}
	if filepath.IsAbs(v) || r.cfgDir == "" {
		return v
	}

	return filepath.Join(r.cfgDir, v)
}

func (r *settingsReader) integer(key string, dft int) int {
	v, err := parseStrictInt(r.get(key))
	if err != nil {
		return dft
	}

	return v
}

func (r *settingsReader) id(key string) int64 {
	v, _ := parseStrictInt64(r.get(key))
	return v
}

func (r *settingsReader) float(key string, dft float64) float64 {
	v, err := parseStrictFloat(r.get(key))
	if err != nil {
		return dft
	}

	return v
}

func (r *settingsReader) flag(key string) bool {
	v, _ := parseStrictBool(r.get(key))
	return v
}

func (r *settingsReader) seconds(key string, dft time.Duration) time.Duration {
	raw := r.get(key)
	if raw == nil {
		return dft
	}

	v, err := parseStrictInt(raw)
	if err != nil {
		return dft
	}

	return time.Duration(v) * time.Second
}

func (r *settingsReader) strs(key string) []string {
	raw := r.get(key)
	if raw == nil {
		return nil
	}

	vs, _ := parseStringList(raw)
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func (r *settingsReader) ids(key string) []int64 {
	raw := r.get(key)
	if raw == nil {
		return nil
	}

	vs, _ := parseInt64List(raw)
	return vs
}

func (r *settingsReader) strMap(key string) map[string]string {
	m := toStringMap(r.get(key))
	if len(m) == 0 {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, err := parseStrictString(v); err == nil && strings.TrimSpace(s) != "" {
			out[strings.ToLower(k)] = strings.TrimSpace(s)
		}
	}

	return out
}

// loadBotSettings reads everything the bot command needs.
// Run validateStartupConfigWithGetter first, values that fail to parse fall back to defaults here.
func loadBotSettings(get configGetter) (*botSettings, error) {
	if get == nil {
		return nil, errors.New("config getter is nil")
	}
	r := newSettingsReader(get)

	st := &botSettings{
		token:       r.str("settings.telegram.token", ""),
		api:         r.str("settings.telegram.api", ""),
		pollTimeout: r.seconds("settings.telegram.poll_timeout_seconds", defaultPollTimeout),
		support: service.Config{
			AdminChatID:        r.id("settings.telegram.admin_chat_id"),
			TrackerAdminChatID: r.id("settings.telegram.tracker_admin_chat_id"),
			AdminIDs:           r.ids("settings.support.admin_ids"),
			FallbackContacts:   r.strs("settings.support.fallback_contacts"),
			ImagesDir:          r.path("settings.support.images_dir", defaultImagesDir),
			SessionTTL:         r.seconds("settings.support.session_ttl_seconds", service.DefaultSessionTTL),
			DownloadURLs:       r.strMap("settings.download_urls"),
		},
		stores:    loadStoreSettings(r),
		faq:       loadFAQSettings(r),
		webListen: r.str("settings.web.listen", ""),
	}

	perSec := r.integer("settings.telegram.throttle.per_sec", defaultThrottlePerSec)
	burst := r.integer("settings.telegram.throttle.burst", defaultThrottleBurst)
	if burst < perSec {
		burst = perSec
	}
	st.throttle = throttle.UserThrottleCfg{
		TotalNPerSec:    totalThrottlePerSec,
		TotalBurst:      totalThrottlePerSec * totalThrottleBurstRate,
		EachUserNPerSec: perSec,
		EachUserBurst:   burst,
	}

	switch {
	case st.token == "":
		return nil, errors.New("settings.telegram.token is required")
	case st.support.AdminChatID == 0:
		return nil, errors.New("settings.telegram.admin_chat_id is required")
	}

	return st, nil
}

func loadStoreSettings(r *settingsReader) storeSettings {
	return storeSettings{
		ticketsBackend:     r.lower("settings.support.tickets.backend", "file"),
		ticketsFile:        r.path("settings.support.tickets.file", dao.DefaultTicketFile),
		ratingsBackend:     r.lower("settings.support.ratings.backend", "csv"),
		ratingsFile:        r.path("settings.support.ratings.file", dao.DefaultRatingsFile),
		escalationsBackend: r.lower("settings.support.escalations.backend", "none"),

		sqlDriver: r.lower("settings.db.sql.driver", sqldb.DriverSqlite),
		sqlDSN:    sqlDSN(r),

		redisAddr:     r.str("settings.db.redis.addr", ""),
		redisDB:       r.integer("settings.db.redis.db", 0),
		redisPassword: r.str("settings.db.redis.password", ""),

		mongo: mongo.DialInfo{
			Addr:   r.str("settings.db.mongo.addr", ""),
			DBName: r.str("settings.db.mongo.db", ""),
			User:   r.str("settings.db.mongo.user", ""),
			Pwd:    r.str("settings.db.mongo.pwd", ""),
			AuthDB: r.str("settings.db.mongo.auth_db", ""),
		},
	}
}

// sqlDSN returns settings.db.sql.dsn, or builds a postgres dsn
// from settings.db.sql.{addr,db,user,pwd} for pgx
func sqlDSN(r *settingsReader) string {
	if dsn := r.str("settings.db.sql.dsn", ""); dsn != "" {
		return dsn
	}

	addr := r.str("settings.db.sql.addr", "")
	if addr == "" || r.lower("settings.db.sql.driver", sqldb.DriverSqlite) != sqldb.DriverPostgres {
		return ""
	}

	return sqldb.BuildPostgresDSN(sqldb.DialInfo{
		Addr:   addr,
		DBName: r.str("settings.db.sql.db", ""),
		User:   r.str("settings.db.sql.user", ""),
		Pwd:    r.str("settings.db.sql.pwd", ""),
	})
}

func loadFAQSettings(r *settingsReader) faqSettings {
	st := faqSettings{
		source:    r.str("settings.faq.source", defaultFAQSource),
		threshold: r.float("settings.faq.threshold", faq.DefaultThreshold),
		cacheTTL:  r.seconds("settings.faq.cache_ttl_seconds", 0),
		match:     r.lower("settings.faq.match", "substring"),
	}
	if !strings.Contains(st.source, "://") {
		st.source = r.path("settings.faq.source", defaultFAQSource)
	}

	if endpoint := r.str("settings.faq.minio.endpoint", ""); endpoint != "" {
		st.minio = &faq.MinioConfig{
			Endpoint:  endpoint,
			AccessKey: r.str("settings.faq.minio.access_key", ""),
			SecretKey: r.str("settings.faq.minio.secret_key", ""),
			Secure:    r.flag("settings.faq.minio.secure"),
		}
	}

	return st
}
