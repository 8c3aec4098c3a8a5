package app

import (
	"context"
	"log"
	"os"
	"time"

	"tadreeb/internal/config"
	"tadreeb/internal/database"
	dbpostgres "tadreeb/internal/database/postgres"
	"tadreeb/internal/graphsync"
	"tadreeb/internal/infrastructure/cache"
	"tadreeb/internal/infrastructure/graphgw"
	"tadreeb/internal/repository"
	"tadreeb/internal/search"
	"tadreeb/internal/usecase"
	"tadreeb/internal/ws"
)

type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis
	Graph graphgw.Client
	Hub   *ws.Hub

	Recommendations usecase.RecommendationUsecase
	CourseSearch    usecase.CourseSearchUsecase
	GraphSync       usecase.GraphSyncUsecase
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	graph, err := graphgw.NewHTTPClient(graphgw.Config{
		GatewayURL:   cfg.Graph.GatewayURL,
		TokenURL:     cfg.Graph.TokenURL,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		Environment:  cfg.Graph.Environment,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)

	hub := ws.NewHub(logger)
	go hub.Run()
	ws.SetDefaultHub(hub)

	courses := repository.NewPostgresCourseRepository(db)
	skills := repository.NewPostgresSkillRepository(db)
	gaps := repository.NewPostgresSkillGapRepository(db)
	domains := repository.NewPostgresSkillDomainRepository(db)
	users := repository.NewPostgresUserRepository(db)

	resolver := search.NewResolver(domains, logger)
	syncer := graphsync.NewSyncer(graph, courses, skills, gaps, users,
		cfg.Graph.WriteInterval, logger, ws.NotifySyncProgress)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Cache:           redisCache,
		Graph:           graph,
		Hub:             hub,
		Recommendations: usecase.NewRecommendationUsecase(gaps, courses, graph, redisCache, logger),
		CourseSearch:    usecase.NewCourseSearchUsecase(resolver, courses),
		GraphSync:       usecase.NewGraphSyncUsecase(syncer, courses),
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
