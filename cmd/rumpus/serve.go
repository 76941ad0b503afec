package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/rumpusparty/rumpus/pkg/config"
	"github.com/rumpusparty/rumpus/pkg/history"
	"github.com/rumpusparty/rumpus/pkg/ingress"
	"github.com/rumpusparty/rumpus/pkg/registry"
	"github.com/rumpusparty/rumpus/pkg/round"
	"github.com/rumpusparty/rumpus/pkg/round/modes"
	"github.com/rumpusparty/rumpus/pkg/world"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func serveCommand(configs []string) error {
	conf, err := config.Process(configs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rumpus configuration")
	}

	serverConfig := conf.Server

	damage := round.NewDamageBus()
	reg := registry.New(damage, round.NopDisplay{})

	for _, def := range modes.Definitions() {
		if err := reg.Register(def.Blueprint, def.New); err != nil {
			log.Warn().Err(err).Msg("could not register round type")
		}
	}
	reg.Configure(serverConfig.Rounds)
	if serverConfig.History.Recent > 0 {
		reg.SetRecentCap(int(serverConfig.History.Recent))
	}

	var store history.Store
	if serverConfig.History.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     serverConfig.History.Redis.Address,
			Password: serverConfig.History.Redis.Password,
			DB:       serverConfig.History.Redis.DB,
		})
		store = history.NewRedisStore(client)
	} else if dir := serverConfig.History.Directory; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Msgf("failed to make history dir: %s", dir)
		}
		store = history.FSStore(dir)
	}
	if store != nil {
		reg.SetStore(store)
	}

	var db *gorm.DB
	if path := serverConfig.World.DBPath; path != "" {
		db, err = world.OpenDB(path)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed to open world db: %s", path)
		}
	}

	gateway := ingress.NewGateway(damage, reg.Events())

	log.Info().Msgf(
		"%s: %d round types registered",
		serverConfig.Description,
		len(reg.Blueprints()),
	)

	errc := make(chan error, 1)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/ws/", gateway)
		mux.Handle("/api/", NewAPI(reg, db))

		errc <- http.ListenAndServe(
			fmt.Sprintf("0.0.0.0:%d", serverConfig.Ingress.Web.Port),
			mux,
		)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	signal.Notify(sigs, os.Kill)

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("failed to serve")
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	reg.EndCurrent()

	return nil
}
