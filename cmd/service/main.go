package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	logger_lib "github.com/s21platform/logger-lib"
	"github.com/s21platform/metrics-lib/pkg"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/infra"
	"github.com/s21platform/chat-server/internal/pkg/jwt"
	"github.com/s21platform/chat-server/internal/pkg/tx"
	db "github.com/s21platform/chat-server/internal/repository/postgres"
	"github.com/s21platform/chat-server/internal/repository/redisdb"
	"github.com/s21platform/chat-server/internal/rest"
	"github.com/s21platform/chat-server/internal/service"
	"github.com/s21platform/chat-server/internal/ws"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

func main() {
	cfg := config.MustLoad()
	logger := logger_lib.New(cfg.Logger.Host, cfg.Logger.Port, cfg.Service.Name, cfg.Platform.Env)

	dbRepo := db.New(cfg)
	defer dbRepo.Close()

	redisClient := redisdb.New(cfg)
	defer redisClient.Close()

	metrics, err := pkg.NewMetrics(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Service.Name, cfg.Platform.Env)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect graphite: %v", err))
	}

	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	authService := service.NewAuth(dbRepo, tokens, redisClient)
	roomService := service.NewRoom(dbRepo)
	messageService := service.NewMessage(dbRepo)

	hub := ws.NewHub(logger, metrics)
	wsHandler := ws.NewHandler(hub, messageService, tokens, redisClient)

	handler := rest.New(authService, roomService, messageService, hub)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return infra.LoggerHTTP(next, logger)
	})
	router.Use(func(next http.Handler) http.Handler {
		return tx.TxMiddlewareHTTP(dbRepo)(next)
	})

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(infra.RateLimit(redisClient, authRateLimit, authRateWindow))
			r.Post("/auth/register", handler.Register)
			r.Post("/auth/login", handler.Login)
			r.Post("/auth/refresh", handler.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(infra.AuthHTTP(tokens))
			r.Get("/auth/me", handler.Me)
			r.Post("/auth/logout", handler.Logout)
			r.Post("/rooms", handler.CreateRoom)
			r.Get("/rooms", handler.ListRooms)
			r.Get("/rooms/{roomID}", handler.GetRoom)
			r.Get("/rooms/{roomID}/members", handler.ListRoomMembers)
			r.Post("/rooms/{roomID}/join", handler.JoinRoom)
			r.Get("/rooms/{roomID}/messages", handler.ListRoomMessages)
			r.Post("/rooms/{roomID}/messages", handler.SendMessage)
			r.Delete("/messages/{messageID}", handler.DeleteMessage)
			r.Post("/dm/{recipientID}", handler.SendDirectMessage)
			r.Get("/dm/{userID}", handler.DirectMessageHistory)
		})
	})

	// websocket clients authenticate inside the upgrade handshake
	router.Get("/ws", wsHandler.ServeWS)

	httpServer := &http.Server{
		Handler: router,
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Service.Port))
	if err != nil {
		logger.Error(fmt.Sprintf("failed to start TCP listener: %v", err))
		return
	}

	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("server error: %v", err))
	}
}
