// Command schemats generates TypeScript declarations from a MySQL schema.
//
//	schemats -h localhost -u root -p secret -d shop -o types/shop.d.ts
//	schemats serve -d shop -addr :8080
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/schemats/internal/config"
	"github.com/koustreak/schemats/internal/database/mysql"
	"github.com/koustreak/schemats/internal/emit"
	"github.com/koustreak/schemats/internal/filestore/minio"
	"github.com/koustreak/schemats/internal/generate"
	"github.com/koustreak/schemats/internal/logger"
	"github.com/koustreak/schemats/internal/output"
	"github.com/koustreak/schemats/internal/schema"
	"github.com/koustreak/schemats/internal/server"
)

const name = "schemats"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := "generate"
	if len(args) > 0 && (args[0] == "generate" || args[0] == "serve") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load(name, args, os.LookupEnv)
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout, name)
		return nil
	}
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Log)
	logger.SetGlobal(log)
	ctx = log.WithContext(ctx)

	db, err := mysql.New(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	filter, err := schema.NewFilter(cfg.Tables.Include, cfg.Tables.Exclude)
	if err != nil {
		return err
	}
	reader := schema.NewMySQLIntrospector(db, schema.Options{
		Concurrency:  cfg.Generate.Concurrency,
		QueryTimeout: cfg.Database.QueryTimeout,
		Filter:       filter,
		SkipViews:    cfg.Tables.SkipViews,
	})
	gen := generate.New(reader, generate.Options{
		ForceOptional: cfg.Generate.ForceOptional,
		Namespace:     cfg.Generate.Namespace,
		Naming:        emit.Naming(cfg.Generate.Naming),
		Concurrency:   cfg.Generate.Concurrency,
	})

	if cmd == "serve" {
		return serve(ctx, cfg, server.New(gen, cfg.Database.Database, db, log))
	}
	return generateOnce(ctx, cfg, gen)
}

func generateOnce(ctx context.Context, cfg *config.Config, gen *generate.Generator) error {
	log := logger.FromContext(ctx)

	doc, err := gen.Render(ctx, cfg.Database.Database)
	if err != nil {
		return err
	}

	file := output.NewFileWriter(cfg.Output.Path, cfg.Database.Database)
	writers := output.Multi{file}

	if cfg.Output.Object.Enabled() {
		store, err := minio.New(ctx, &cfg.Output.Object)
		if err != nil {
			return err
		}
		defer store.Close()

		key := file.Path
		if key == output.Stdout {
			key = output.DefaultFileName(cfg.Database.Database)
		}
		writers = append(writers, output.NewObjectWriter(store, &cfg.Output.Object, key))
	}

	if err := writers.Write(ctx, []byte(doc)); err != nil {
		return err
	}
	log.With().Str("database", cfg.Database.Database).Bool("force_optional", cfg.Generate.ForceOptional).
		Logger().Debug("generation finished")
	return nil
}

func serve(ctx context.Context, cfg *config.Config, s *server.Server) error {
	log := logger.FromContext(ctx)
	srv := s.HTTPServer(cfg.Server.Addr)

	serveErr := make(chan error, 1)
	go func() {
		log.With().Str("addr", srv.Addr).Str("database", cfg.Database.Database).Logger().Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
