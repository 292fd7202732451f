// Package main provides a CLI tool for seeding the catalogs with demo
// customers. Existing codes are skipped, so it can be run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/domain/catalogs/contact"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"salesdesk/pkg/config"
	"salesdesk/pkg/logger"
)

type accountSeed struct {
	Code string
	Name string
}

type contactSeed struct {
	Code      string
	FirstName string
	LastName  string
}

var demoAccounts = []accountSeed{
	{Code: "ACC-001", Name: "Acme"},
	{Code: "ACC-002", Name: "Globex"},
	{Code: "ACC-003", Name: "Initech"},
}

var demoContacts = []contactSeed{
	{Code: "CNT-001", FirstName: "Ada", LastName: "Lovelace"},
	{Code: "CNT-002", FirstName: "Alan", LastName: "Turing"},
}

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool, cfg.DB.StatementTimeout)
	accounts := account.NewService(catalog_repo.NewAccountRepo(txManager), txManager)
	contacts := contact.NewService(catalog_repo.NewContactRepo(txManager), txManager)

	for _, s := range demoAccounts {
		err := accounts.Create(ctx, account.NewAccount(s.Code, s.Name))
		report(log, "account", s.Code, err)
	}
	for _, s := range demoContacts {
		err := contacts.Create(ctx, contact.NewContact(s.Code, s.FirstName, s.LastName))
		report(log, "contact", s.Code, err)
	}

	log.Info("seeding completed")
}

func report(log *logger.Logger, kind, code string, err error) {
	switch {
	case err == nil:
		log.Infow("seeded", "kind", kind, "code", code)
	case apperror.HasCode(err, apperror.CodeDuplicate):
		log.Infow("already exists", "kind", kind, "code", code)
	default:
		log.Fatalw("failed to seed", "kind", kind, "code", code, "error", err)
	}
}
