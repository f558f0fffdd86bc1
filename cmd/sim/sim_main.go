package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"Strongholds/internal/match/actor"
	"Strongholds/internal/match/app/port"
	"Strongholds/internal/match/infra/persistence/memory"
	matchmongo "Strongholds/internal/match/infra/persistence/mongodb"
	matchsqlite "Strongholds/internal/match/infra/persistence/sqlite"
	"Strongholds/internal/match/interfaces"
	"Strongholds/internal/match/service"
	"Strongholds/internal/shared/config"
	sharedmongo "Strongholds/internal/shared/infrastructure/mongo"
	sharedsqlite "Strongholds/internal/shared/infrastructure/sqlite"
	"Strongholds/internal/shared/logs"
	"Strongholds/internal/shared/serverconfig"
	transporthttp "Strongholds/internal/shared/transport/http"
	"Strongholds/internal/shared/transport/ws"
	"Strongholds/modules/kit/logx"

	"go.uber.org/zap"
)

const defaultMatchID = "default"

func main() {
	cfgPath := flag.String("config", "", "配置文件路径，默认向上查找 configs/conf.yml")
	flag.Parse()

	confPath := serverconfig.Load(*cfgPath)
	if err := logs.Init("sim", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer func() {
		_ = logs.Sync()
	}()
	logs.Info("conf loaded",
		zap.String("path", confPath),
		zap.Any("simserver", serverconfig.Conf.SimServer),
		zap.Any("match", serverconfig.Conf.Match),
		zap.String("replay_backend", serverconfig.Conf.Replay.Backend),
	)
	config.OnChange(func() {
		logs.SetLevel(serverconfig.Conf.Log.Level)
	})

	baseLogger := logx.NewZapLogger(logs.Logger())

	repo, closeRepo, err := openReplayRepository(serverconfig.Conf)
	if err != nil {
		logs.Fatal("open replay repository failed", zap.Error(err))
	}
	defer closeRepo()

	matchCfg := serverconfig.Conf.Match
	rules, err := service.RulesFromConfig(serverconfig.Conf.Rules, matchCfg.AccrualMode)
	if err != nil {
		logs.Fatal("invalid rules", zap.Error(err))
	}
	flushEvery := time.Duration(serverconfig.Conf.Replay.FlushIntervalMS) * time.Millisecond
	rt := actor.NewRuntime(repo, service.NewSetupFunc(matchCfg, rules), flushEvery, 0, baseLogger)
	defer rt.Shutdown()

	svc := service.NewMatchService(rt, repo, baseLogger)
	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	matchID, err := svc.CreateMatch(startCtx, defaultMatchID)
	cancelStart()
	if err != nil {
		logs.Fatal("create default match failed", zap.Error(err))
	}
	logs.Info("default match created", zap.String("match_id", matchID))

	matchModule := interfaces.New(svc, interfaces.Options{
		NeedTicket:   serverconfig.Conf.SimServer.NeedTicket,
		DefaultMatch: matchID,
		TicketTTL:    time.Duration(serverconfig.Conf.SimServer.TicketTTLS) * time.Second,
	}, baseLogger)

	wsRouter := ws.NewRouter(baseLogger)
	wsModules := []ws.Registrar{
		matchModule,
	}
	for _, m := range wsModules {
		m.WsRegister(wsRouter)
	}
	wsServer := ws.NewServer(wsRouter, baseLogger)
	wsServer.OnClose(matchModule.OnConnClose)

	addr := listenAddr(serverconfig.Conf.SimServer.Host, serverconfig.Conf.SimServer.Port)
	httpServer := transporthttp.NewHttpServer(addr, nil, baseLogger)
	httpModules := []transporthttp.Registrar{
		matchModule,
	}
	for _, m := range httpModules {
		m.HttpRegister(httpServer.Group())
	}
	httpServer.HandleWS("/ws", wsServer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("sim server start failed: %w", err)
			return
		}
		errCh <- nil
	}()
	logs.Info("sim server started", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func listenAddr(host string, port int) string {
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// openReplayRepository 按 replay.backend 选择回放存储，返回的 close 在进程退出时调用。
func openReplayRepository(conf serverconfig.Config) (port.ReplayRepository, func(), error) {
	switch conf.Replay.Backend {
	case "", "memory":
		return memory.NewReplayRepository(), func() {}, nil
	case "sqlite":
		db, err := sharedsqlite.Open(conf.Replay.SQLitePath, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		repo, err := matchsqlite.NewReplayRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil
	case "mongodb":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, disconnect, err := sharedmongo.Open(ctx, conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		repo := matchmongo.NewReplayRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return repo, disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unknown replay backend %q", conf.Replay.Backend)
	}
}
