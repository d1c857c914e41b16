package cli

import (
	"fmt"

	githubadapter "github.com/ericfisherdev/reviewsync/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/reviewsync/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewsync/internal/application"
	"github.com/ericfisherdev/reviewsync/internal/config"
	"github.com/ericfisherdev/reviewsync/internal/domain/port/driven"
)

// app holds the wired dependencies a command needs. Built per invocation;
// configuration problems surface here, before any remote call is made.
type app struct {
	cfg     *config.Config
	svc     *application.SyncService
	db      *sqliteadapter.DB
	journal driven.JournalStore
}

func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var gateway *githubadapter.Client
	if cfg.GitHubBaseURL != "" {
		gateway, err = githubadapter.NewEnterpriseClient(cfg.GitHubToken, cfg.GitHubBaseURL, cfg.RepoFullName, cfg.PRNumber)
	} else {
		gateway, err = githubadapter.NewClient(cfg.GitHubToken, cfg.RepoFullName, cfg.PRNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("creating github client: %w", err)
	}

	var db *sqliteadapter.DB
	var journal driven.JournalStore
	if cfg.DBPath != "" {
		db, err = sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening journal database: %w", err)
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			db.Close()
			return nil, err
		}
		journal = sqliteadapter.NewJournalRepo(db)
	}

	return &app{
		cfg:     cfg,
		svc:     application.NewSyncService(gateway, journal, cfg.DangerID, cfg.RepoFullName, cfg.PRNumber),
		db:      db,
		journal: journal,
	}, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
