package cmd

import (
	"context"
	"database/sql"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/laisky-support-bot/internal/support/dao"
	"github.com/Laisky/laisky-support-bot/internal/support/service"
	"github.com/Laisky/laisky-support-bot/library/db/mongo"
	rdb "github.com/Laisky/laisky-support-bot/library/db/redis"
	"github.com/Laisky/laisky-support-bot/library/db/sql/counter"
	"github.com/Laisky/laisky-support-bot/library/db/sqldb"
	"github.com/Laisky/laisky-support-bot/library/faq"
	"github.com/Laisky/laisky-support-bot/library/log"
)

// backends opened connections shared by the stores
type backends struct {
	cfg storeSettings

	sqlDB   *sql.DB
	redisDB *rdb.DB
	mongoDB mongo.DB
}

func (b *backends) openSQL(ctx context.Context) (*sql.DB, error) {
	if b.sqlDB != nil {
		return b.sqlDB, nil
	}

	db, err := sqldb.Open(ctx, b.cfg.sqlDriver, b.cfg.sqlDSN)
	if err != nil {
		return nil, errors.Wrap(err, "open sql db")
	}

	b.sqlDB = db
	return db, nil
}

func (b *backends) openRedis() (*rdb.DB, error) {
	if b.redisDB != nil {
		return b.redisDB, nil
	}
	if b.cfg.redisAddr == "" {
		return nil, errors.New("settings.db.redis.addr is empty")
	}

	b.redisDB = rdb.NewDB(&redis.Options{
		Addr:     b.cfg.redisAddr,
		Password: b.cfg.redisPassword,
		DB:       b.cfg.redisDB,
	})
	return b.redisDB, nil
}

func (b *backends) openMongo(ctx context.Context) (mongo.DB, error) {
	if b.mongoDB != nil {
		return b.mongoDB, nil
	}

	db, err := mongo.NewDB(ctx, b.cfg.mongo)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	b.mongoDB = db
	return db, nil
}

// Close closes every opened connection
func (b *backends) Close(ctx context.Context) {
	logger := log.Logger.Named("backends")
	if b.sqlDB != nil {
		if err := b.sqlDB.Close(); err != nil {
			logger.Error("close sql db", zap.Error(err))
		}
	}
	if b.redisDB != nil {
		if err := b.redisDB.Close(); err != nil {
			logger.Error("close redis", zap.Error(err))
		}
	}
	if b.mongoDB != nil {
		if err := b.mongoDB.Close(ctx); err != nil {
			logger.Error("close mongo", zap.Error(err))
		}
	}
}

// buildStores opens only the backends the configured stores need.
// The returned backends must be closed by the caller, also on error.
func buildStores(ctx context.Context, cfg storeSettings) (service.Stores, *backends, error) {
	var stores service.Stores
	b := &backends{cfg: cfg}

	switch cfg.ticketsBackend {
	case "file":
		stores.Tickets = dao.NewFileTicketCounter(cfg.ticketsFile)
	case "sql":
		db, err := b.openSQL(ctx)
		if err != nil {
			return stores, b, errors.WithStack(err)
		}
		c, err := counter.NewCounter(db)
		if err != nil {
			return stores, b, errors.Wrap(err, "new sql counter")
		}
		if stores.Tickets, err = dao.NewSQLTicketCounter(c); err != nil {
			return stores, b, errors.WithStack(err)
		}
	case "redis":
		db, err := b.openRedis()
		if err != nil {
			return stores, b, errors.WithStack(err)
		}
		if stores.Tickets, err = dao.NewRedisTicketCounter(db); err != nil {
			return stores, b, errors.WithStack(err)
		}
	default:
		return stores, b, errors.Errorf("unknown tickets backend %q", cfg.ticketsBackend)
	}

	switch cfg.ratingsBackend {
	case "csv":
		stores.Ratings = dao.NewCSVRatingStore(cfg.ratingsFile)
	case "sql":
		db, err := b.openSQL(ctx)
		if err != nil {
			return stores, b, errors.WithStack(err)
		}
		if stores.Ratings, err = dao.NewSQLRatingStore(db, ""); err != nil {
			return stores, b, errors.WithStack(err)
		}
	default:
		return stores, b, errors.Errorf("unknown ratings backend %q", cfg.ratingsBackend)
	}

	switch cfg.escalationsBackend {
	case "none":
		stores.Escalations = dao.NopEscalationLog{}
	case "mongo":
		db, err := b.openMongo(ctx)
		if err != nil {
			return stores, b, errors.WithStack(err)
		}
		if stores.Escalations, err = dao.NewMongoEscalationLog(db.GetCol(dao.EscalationsColName)); err != nil {
			return stores, b, errors.WithStack(err)
		}
	case "redis":
		db, err := b.openRedis()
		if err != nil {
			return stores, b, errors.WithStack(err)
		}
		if stores.Escalations, err = dao.NewRedisEscalationLog(db); err != nil {
			return stores, b, errors.WithStack(err)
		}
	default:
		return stores, b, errors.Errorf("unknown escalations backend %q", cfg.escalationsBackend)
	}

	return stores, b, nil
}

// buildResolver faq source, optional cache and resolver
func buildResolver(cfg faqSettings) (*faq.Resolver, error) {
	source, err := faq.NewSourceFromURI(cfg.source, cfg.minio)
	if err != nil {
		return nil, errors.Wrap(err, "new faq source")
	}

	if cfg.cacheTTL > 0 {
		if source, err = faq.NewCachedSource(source, cfg.cacheTTL); err != nil {
			return nil, errors.Wrap(err, "new cached faq source")
		}
	}

	matchFunc := faq.SubstringMatch
	switch cfg.match {
	case "", "substring":
	case "exact":
		matchFunc = faq.ExactMatch
	default:
		return nil, errors.Errorf("unknown faq match %q", cfg.match)
	}

	resolver, err := faq.NewResolver(source,
		faq.WithThreshold(cfg.threshold),
		faq.WithMatcher(faq.NewMatcher(faq.WithMatchFunc(matchFunc))),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new faq resolver")
	}

	return resolver, nil
}
