// Package app wires configuration into the store, procedures and
// authenticator shared by the server and the CLI.
package app

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
	"gorm.io/gorm"

	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/cache"
	"household-budget-backend/internal/config"
	"household-budget-backend/internal/repository"
)

type App struct {
	DB            *gorm.DB
	Cache         *cache.QueryCache
	Repos         *repository.Repositories
	Procedures    repository.Procedures
	Authenticator auth.Authenticator
}

// New opens the database, runs migrations and selects the procedure and
// auth backends named by cfg.
func New(cfg *config.Config) (*App, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}

	var client *supabase.Client
	if cfg.UsesSupabase() {
		client, err = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, &supabase.ClientOptions{})
		if err != nil {
			return nil, fmt.Errorf("create supabase client: %w", err)
		}
	}

	qc := cache.New(cfg.CacheTTL)
	a := &App{
		DB:    db,
		Cache: qc,
		Repos: repository.New(db, qc),
	}

	if cfg.Procedures == config.ProceduresSupabase {
		a.Procedures = repository.NewSupabaseProcedures(client)
	} else {
		a.Procedures = repository.NewLocalProcedures(db)
	}
	if cfg.AuthMode == config.AuthSupabase {
		a.Authenticator = auth.NewSupabaseAuthenticator(client)
	} else {
		a.Authenticator = auth.HeaderAuthenticator{}
	}
	return a, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
