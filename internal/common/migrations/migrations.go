// Package migrations holds the schema shared by the auth and chat services
// and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

const dir = "sql"

//go:embed sql/*.sql
var files embed.FS

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// Run opens databaseURL through the pgx stdlib driver and applies the
// requested direction. For Up and Down a non-zero version targets that
// version instead of the latest (Up) or one step (Down).
func Run(ctx context.Context, log *logger.Logger, databaseURL string, direction Direction, version int64) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	switch direction {
	case Up:
		if version > 0 {
			err = goose.UpToContext(ctx, db, dir, version)
		} else {
			err = goose.UpContext(ctx, db, dir)
		}
	case Down:
		if version > 0 {
			err = goose.DownToContext(ctx, db, dir, version)
		} else {
			err = goose.DownContext(ctx, db, dir)
		}
	case Status:
		err = goose.StatusContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", direction, err)
	}

	log.WithFields(ctx, logger.Fields{
		"action":    "migrate",
		"direction": string(direction),
	}).Info("migrations applied")
	return nil
}

type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatalf(format, v...)
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Infof(format, v...)
}
