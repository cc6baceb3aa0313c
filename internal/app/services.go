package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/navigation"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/pkg/keymutex"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
	"github.com/yungbote/execudex-backend/internal/services"
)

type Services struct {
	Quota       services.QuotaGuard
	Locks       services.ProfileLockService
	Placeholder *services.PlaceholderMatcher
	Politicians services.ReadinessOrchestrator
	Legislation services.ReadinessOrchestrator
	Prefetcher  services.Prefetcher
	Metrics     services.MetricsService
	History     services.HistoryStore
	Sessions    services.SessionService

	Dispatcher navigation.Dispatcher
	Navigation *navigation.Registry

	log *logger.Logger
	cfg *config.Config
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg *config.Config, reposet repos.Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	loc, err := time.LoadLocation(cfg.Quota.TimeZone)
	if err != nil {
		return Services{}, fmt.Errorf("load quota time zone: %w", err)
	}
	quota := services.NewQuotaGuard(db, log, reposet.QuotaAccount, reposet.ProfileGrant, services.QuotaSettings{
		WeeklyLimit:      cfg.Quota.WeeklyLimit,
		WarningThreshold: cfg.Quota.WarningThreshold,
		Location:         loc,
	})

	threshold := cfg.Content.TabBarCardThreshold
	placeholder := services.NewPlaceholderMatcher(cfg.Content.PlaceholderPatterns)
	locks := services.NewProfileLockService(log, reposet.Politician, reposet.Legislation, reposet.Card, threshold)

	// One run at a time per profile, shared by the HTTP API and navigation sessions.
	runs := keymutex.New(keymutex.WithWaitObserver(observability.KeyWaitObserver("readiness")))
	politicians := services.NewPoliticianReadiness(log, reposet.Politician, clients.Functions, placeholder, runs)
	legislation := services.NewLegislationReadiness(log, reposet.Legislation, clients.Artifacts, locks, clients.Functions, placeholder, runs)

	var history services.HistoryStore
	if clients.Redis != nil {
		history = services.NewRedisHistory(log, clients.Redis, cfg.Redis.KeyPrefix)
	} else {
		log.Info("Redis not configured; recent history kept in memory")
		history = services.NewMemoryHistory()
	}

	s := Services{
		Quota:       quota,
		Locks:       locks,
		Placeholder: placeholder,
		Politicians: politicians,
		Legislation: legislation,
		Prefetcher:  services.NewPrefetcher(log, reposet.Politician, reposet.Legislation, locks),
		Metrics:     services.NewMetricsService(log, reposet.Politician, clients.Functions, cfg.Content.MetricsCooldown.Duration),
		History:     history,
		Sessions:    services.NewSessionService(log, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL.Duration),
		Dispatcher:  navigation.NewDispatcher(log, cfg.Edge.Timeout.Duration),
		log:         log,
		cfg:         cfg,
	}

	// Over HTTP the destination is returned in the outcome; nothing else is driven.
	s.Navigation = navigation.NewRegistry(func(string) (*navigation.Session, error) {
		return navigation.NewSession(s.NavigationDeps(navigation.NavigatorFunc(func(context.Context, navigation.Destination) error {
			return nil
		})))
	})
	return s, nil
}

// NavigationDeps assembles a navigation session around nav. Callers may swap the
// dispatcher or alerter before building the session.
func (s Services) NavigationDeps(nav navigation.Navigator) navigation.Deps {
	return navigation.Deps{
		Quota:        s.Quota,
		Politicians:  s.Politicians,
		Legislation:  s.Legislation,
		Prefetcher:   s.Prefetcher,
		Navigator:    nav,
		Log:          s.log,
		Sessions:     s.Sessions,
		History:      s.History,
		Dispatcher:   s.Dispatcher,
		ErrorDisplay: s.cfg.Navigation.ErrorDisplay.Duration,
		LoadingGrace: s.cfg.Navigation.LoadingGrace.Duration,
		UpgradePath:  s.cfg.Quota.UpgradePath,
	}
}
