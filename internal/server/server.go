package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Infinite-Loop-Club/club-site-api/internal/config"
	"github.com/Infinite-Loop-Club/club-site-api/internal/database"
	"github.com/Infinite-Loop-Club/club-site-api/internal/middlewares"
	"github.com/Infinite-Loop-Club/club-site-api/internal/repositories"
	"github.com/Infinite-Loop-Club/club-site-api/internal/services"
)

type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	db         database.Service

	memberService services.MemberService
	postService   services.PostService
	voteService   services.VoteService
}

func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db.Database()); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	memberRepo := repositories.NewMemberRepository(db)
	postRepo := repositories.NewPostRepository(db)
	voteRepo := repositories.NewVoteRepository(db)

	tokenService := services.NewTokenService(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg)

	s := &Server{
		cfg:           cfg,
		db:            db,
		memberService: services.NewMemberService(memberRepo),
		postService:   services.NewPostService(postRepo),
		voteService:   services.NewVoteService(memberRepo, voteRepo, tokenService, emailService, cfg.Candidates),
	}

	go middlewares.CleanupVisitors()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}
	if err := s.db.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Error disconnecting from database")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
