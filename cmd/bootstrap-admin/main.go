package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ogurasousui/daily-report-grpc/internal/adapters/password"
	"github.com/ogurasousui/daily-report-grpc/internal/adapters/repository/postgres"
	"github.com/ogurasousui/daily-report-grpc/internal/core/employee"
	"github.com/ogurasousui/daily-report-grpc/internal/core/report"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/config"
	pg "github.com/ogurasousui/daily-report-grpc/internal/platform/db/postgres"
	"github.com/ogurasousui/daily-report-grpc/internal/platform/logger"
)

// readPassword は端末からエコーなしで入力を読み取ります。テストでは差し替えます。
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		code       = flag.String("code", "", "employee code of the administrator")
		name       = flag.String("name", "", "display name of the administrator")
	)
	flag.Parse()

	if strings.TrimSpace(*code) == "" || strings.TrimSpace(*name) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.PathFromEnv()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	fd := int(os.Stdin.Fd())
	plain, err := promptPassword(os.Stderr, bufio.NewReader(os.Stdin), fd, term.IsTerminal(fd))
	if err != nil {
		lg.Fatal("failed to read password", zap.Error(err))
	}

	ctx := context.Background()
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		lg.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	isolation, err := pg.ParseIsolationLevel(cfg.Database.IsolationLevel)
	if err != nil {
		lg.Fatal("invalid isolation level", zap.Error(err))
	}
	tm := pg.NewTransactionManager(dbPool, pg.WithIsolationLevel(isolation))

	reportSvc := report.NewService(postgres.NewReportRepository(dbPool), nil, tm, lg)
	svc := employee.NewService(
		postgres.NewEmployeeRepository(dbPool),
		reportSvc,
		password.NewBcryptHasher(cfg.Auth.BcryptCost),
		nil,
		tm,
		lg,
	)

	created, err := svc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Code:     *code,
		Name:     *name,
		Password: plain,
		Role:     employee.RoleAdmin,
	})
	if err != nil {
		lg.Fatal("failed to create administrator", zap.Error(err))
	}

	lg.Info("administrator created", zap.String("code", created.Code))
}

// promptPassword はパスワードを確認入力付きで読み取ります。
// 端末でない場合は標準入力の 1 行目をそのまま使用します。
func promptPassword(out io.Writer, in *bufio.Reader, fd int, interactive bool) (string, error) {
	if !interactive {
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	fmt.Fprint(out, "Confirm password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}
