package main

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"

	"solofeed/internal/config"
	"solofeed/internal/engage"
	"solofeed/internal/engine"
	"solofeed/internal/feed"
	"solofeed/internal/identity"
	"solofeed/internal/model"
	"solofeed/internal/oracle"
	"solofeed/internal/random"
	"solofeed/internal/schedule"
	"solofeed/internal/store/sqlitekv"
	"solofeed/internal/stories"
)

// app is the wired process: one sqlite file, both stores and the engine on one loop.
type app struct {
	cfg      config.Config
	db       *sqlitekv.DB
	clock    clock.Clock
	loop     *schedule.Loop
	registry *identity.Registry
	feed     *feed.Store
	stories  *stories.Store
	engine   *engine.Engine
}

func currentUser(cfg config.ProfileConfig) model.Actor {
	me := identity.DefaultCurrentUser()
	if cfg.Username != "" {
		me.Username = cfg.Username
	}
	if cfg.AvatarRef != "" {
		me.AvatarRef = cfg.AvatarRef
	}
	return me
}

func openApp(ctx context.Context, cfg config.Config, clk clock.Clock) (*app, error) {
	db, err := sqlitekv.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	registry := identity.Default()
	rnd := random.New(cfg.Random.Seed)

	fs, err := feed.Open(ctx, db, clk, registry, currentUser(cfg.Profile))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	ss, err := stories.Open(ctx, db, clk, registry, rnd, stories.Options{
		ImagePool: cfg.Stories.ImagePool,
		MinItems:  cfg.Stories.MinItems,
		MaxItems:  cfg.Stories.MaxItems,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var client oracle.Client
	if cfg.Oracle.Endpoint != "" {
		client = oracle.NewHTTPClient(cfg.Oracle)
	}
	loop := schedule.New(clk)
	eng := engine.New(engine.Options{
		Loop:     loop,
		Feed:     fs,
		Stories:  ss,
		Registry: registry,
		Writer:   oracle.NewAdapter(client, rnd, cfg.Oracle.Timeout),
		Random:   rnd,
		Config:   cfg.Engagement,
		Journal:  db,
		Budget:   engage.NewBudget(db, engage.ActionTick, cfg.Engagement),
	})
	fs.SetHooks(eng)
	return &app{cfg: cfg, db: db, clock: clk, loop: loop, registry: registry, feed: fs, stories: ss, engine: eng}, nil
}

func (a *app) Close() error { return a.db.Close() }
