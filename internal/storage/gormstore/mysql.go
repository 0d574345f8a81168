package gormstore

import (
	"context"

	drv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"

	"github.com/adanyl0v/tasklist/internal/config"
)

// DSN formats the driver connection string for cfg.
func DSN(cfg config.MySQLConfig) string {
	dsnCfg := drv.NewConfig()
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = cfg.Addr
	dsnCfg.User = cfg.Username
	dsnCfg.Passwd = cfg.Password
	dsnCfg.DBName = cfg.Database
	dsnCfg.ParseTime = true
	return dsnCfg.FormatDSN()
}

// OpenMySQL connects to the MySQL database described by cfg.
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig) (*Store, error) {
	return New(ctx, mysql.Open(DSN(cfg)))
}
