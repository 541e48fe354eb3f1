package database

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestOptionsDSN(t *testing.T) {
	o := Options{User: "app", Pass: "s3cret", Host: "db", Port: "3306", Name: "bistro"}
	dsn := o.DSN()

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q) unexpected error: %v", dsn, err)
	}
	if cfg.User != "app" || cfg.Passwd != "s3cret" || cfg.Addr != "db:3306" || cfg.DBName != "bistro" {
		t.Errorf("parsed config = %+v", cfg)
	}
	if !cfg.ParseTime {
		t.Error("ParseTime should be enabled")
	}
	if !cfg.ClientFoundRows {
		t.Error("ClientFoundRows should be enabled")
	}
	if !strings.Contains(dsn, "charset=utf8mb4") {
		t.Errorf("DSN %q should set charset", dsn)
	}
}
