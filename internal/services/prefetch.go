package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

// ProfilePayload is what the profile screen renders right after navigation.
type ProfilePayload struct {
	ID          int64                        `json:"id"`
	Kind        profiles.Kind                `json:"kind"`
	Politician  *profiles.PoliticianIndex    `json:"politician,omitempty"`
	PplProfile  *profiles.PoliticianProfile  `json:"ppl_profile,omitempty"`
	Legislation *profiles.LegislationIndex   `json:"legislation,omitempty"`
	LegiProfile *profiles.LegislationProfile `json:"legi_profile,omitempty"`
	Lock        LockStatus                   `json:"lock"`
	HideTabBar  bool                         `json:"hide_tab_bar"`
}

type Prefetcher interface {
	// Prefetch returns nil, nil when the profile has no index row.
	Prefetch(ctx context.Context, id int64, kind profiles.Kind) (*ProfilePayload, error)
}

type prefetcher struct {
	log         *logger.Logger
	politicians repos.PoliticianRepo
	legislation repos.LegislationRepo
	locks       ProfileLockService
}

func NewPrefetcher(
	log *logger.Logger,
	politicians repos.PoliticianRepo,
	legislation repos.LegislationRepo,
	locks ProfileLockService,
) Prefetcher {
	return &prefetcher{
		log:         log.With("service", "Prefetcher"),
		politicians: politicians,
		legislation: legislation,
		locks:       locks,
	}
}

func (p *prefetcher) Prefetch(ctx context.Context, id int64, kind profiles.Kind) (*ProfilePayload, error) {
	out := &ProfilePayload{ID: id, Kind: kind}
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.New(gctx)

	if kind.IsPolitician() {
		g.Go(func() error {
			row, err := p.politicians.GetIndex(gdbc, id)
			if err != nil {
				return fmt.Errorf("read politician index: %w", err)
			}
			out.Politician = row
			return nil
		})
		g.Go(func() error {
			row, err := p.politicians.GetProfile(gdbc, id)
			if err != nil {
				return fmt.Errorf("read politician profile: %w", err)
			}
			out.PplProfile = row
			return nil
		})
	} else {
		g.Go(func() error {
			row, err := p.legislation.GetIndex(gdbc, id)
			if err != nil {
				return fmt.Errorf("read legislation index: %w", err)
			}
			out.Legislation = row
			return nil
		})
		g.Go(func() error {
			row, err := p.legislation.GetProfile(gdbc, id)
			if err != nil {
				return fmt.Errorf("read legislation profile: %w", err)
			}
			out.LegiProfile = row
			return nil
		})
	}
	g.Go(func() error {
		out.Lock = p.locks.CheckLockStatus(gctx, id, kind)
		return nil
	})

	if err := g.Wait(); err != nil {
		p.log.Warn("Prefetch failed", "profile_id", id, "kind", string(kind), "error", err)
		return nil, err
	}
	if out.Politician == nil && out.Legislation == nil {
		return nil, nil
	}
	out.HideTabBar = p.locks.TabBarHidden(ctx, id, kind, out.Lock)
	return out, nil
}
