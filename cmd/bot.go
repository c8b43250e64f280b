package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/laisky-support-bot/internal/support/controller"
	"github.com/Laisky/laisky-support-bot/internal/support/service"
	"github.com/Laisky/laisky-support-bot/library/log"
	"github.com/Laisky/laisky-support-bot/library/throttle"
)

var botCMD = &cobra.Command{
	Use:   "bot",
	Short: "run telegram support bot",
	Long:  `run telegram support bot by long polling, and the http api if settings.web.listen is set`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := runBot(ctx); err != nil {
			log.Logger.Panic("run bot", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(botCMD)
}

func runBot(ctx context.Context) error {
	st, err := loadBotSettings(sharedSettingsReader().get)
	if err != nil {
		return errors.Wrap(err, "load settings")
	}

	stores, bk, err := buildStores(ctx, st.stores)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		bk.Close(closeCtx)
	}()
	if err != nil {
		return errors.Wrap(err, "build stores")
	}

	resolver, err := buildResolver(st.faq)
	if err != nil {
		return errors.WithStack(err)
	}
	if r := resolver.Load(ctx); r.Status.Degraded() {
		// the bot still runs, every question resolves to absence until the faq is fixed
		log.Logger.Warn("faq source is degraded",
			zap.String("status", string(r.Status)),
			zap.Error(r.Err))
	} else {
		log.Logger.Info("faq loaded",
			zap.String("status", string(r.Status)),
			zap.Int("entries", len(r.Entries)))
	}

	th, err := throttle.NewUserThrottle(&st.throttle)
	if err != nil {
		return errors.Wrap(err, "new throttle")
	}

	bot, err := service.NewBot(st.token, st.api, st.pollTimeout)
	if err != nil {
		return errors.WithStack(err)
	}

	svc, err := service.New(bot, resolver, stores, st.support, service.WithThrottle(th))
	if err != nil {
		return errors.Wrap(err, "new support service")
	}

	var ctl *controller.Controller
	if st.webListen != "" {
		if ctl, err = controller.New(resolver, stores.Ratings); err != nil {
			return errors.Wrap(err, "new controller")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(gctx, bot)
	})
	if ctl != nil {
		server := controller.NewServer(ctl, gconfig.Shared.GetBool("debug"))
		g.Go(func() error {
			return controller.Run(gctx, st.webListen, server)
		})
	}

	return g.Wait()
}
