// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose schema migrations routed through the application
// logger, a readiness probe, and error-classification helpers the stores use
// to translate driver errors into domain sentinels.
//
//	cfg, _ := config.Load[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Error("db unavailable", "error", err)
//	    os.Exit(1)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    os.Exit(1)
//	}
package pg
