package main

import (
	"net/http"

	"greencycle-be/internal/config"
	"greencycle-be/internal/db"
	"greencycle-be/internal/factory"
	"greencycle-be/internal/history"
	"greencycle-be/internal/httpx"
	"greencycle-be/internal/logger"
	"greencycle-be/internal/metrics"
	"greencycle-be/internal/order"
	"greencycle-be/internal/points"
	"greencycle-be/internal/reward"
	"greencycle-be/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	factoryRepo := factory.NewRepository(database)

	calc := points.NewCalculator(nil)
	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, userRepo, factoryRepo, calc)

	historyRepo := history.NewRepository(database)
	historySvc := history.NewService(historyRepo)

	rewardRepo := reward.NewRepository(database)
	rewardSvc := reward.NewService(rewardRepo, userRepo)

	httpMetrics := &metrics.HTTP{}
	router := httpx.NewRouter(httpx.Handlers{
		Auth:    &httpx.AuthHandler{Users: userSvc},
		Orders:  &httpx.OrderHandler{Orders: orderSvc},
		Rewards: &httpx.RewardHandler{Rewards: rewardSvc},
		History: &httpx.HistoryHandler{History: historySvc},
		Admin:   &httpx.AdminHandler{Users: userSvc, Factories: factoryRepo},
		Metrics: httpMetrics,
	})

	addr := ":" + cfg.AppPort
	logger.L().Info("server listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
