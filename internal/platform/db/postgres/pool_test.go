package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/daily-report-grpc/internal/platform/config"
)

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	dbCfg := config.DatabaseConfig{
		Host:             "localhost",
		Port:             15432,
		User:             "user",
		Password:         "pass",
		Name:             "reports",
		SSLMode:          "disable",
		ApplicationName:  "daily-report-test",
		Timezone:         "UTC",
		StatementTimeout: 5 * time.Second,
		MaxOpenConns:     20,
		MaxIdleConns:     5,
		ConnMaxLifetime:  30 * time.Minute,
		ConnMaxIdleTime:  10 * time.Minute,
	}

	poolCfg, err := BuildPoolConfig(dbCfg)
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 20 {
		t.Errorf("expected MaxConns 20, got %d", poolCfg.MaxConns)
	}
	if poolCfg.MinConns != 5 {
		t.Errorf("expected MinConns 5, got %d", poolCfg.MinConns)
	}
	if poolCfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("unexpected MaxConnLifetime: %v", poolCfg.MaxConnLifetime)
	}
	if poolCfg.MaxConnIdleTime != 10*time.Minute {
		t.Errorf("unexpected MaxConnIdleTime: %v", poolCfg.MaxConnIdleTime)
	}
	if poolCfg.ConnConfig.Database != "reports" {
		t.Errorf("expected database reports, got %s", poolCfg.ConnConfig.Database)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != "daily-report-test" {
		t.Errorf("unexpected application_name: %s", got)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["timezone"]; got != "UTC" {
		t.Errorf("expected UTC session timezone, got %s", got)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["statement_timeout"]; got != "5000" {
		t.Errorf("expected statement_timeout in milliseconds, got %s", got)
	}
}
