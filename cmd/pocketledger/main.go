package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"github.com/jask/pocketledger/internal/blobstore"
	"github.com/jask/pocketledger/internal/config"
	"github.com/jask/pocketledger/internal/database"
	"github.com/jask/pocketledger/internal/notify"
	"github.com/jask/pocketledger/internal/prefs"
	"github.com/jask/pocketledger/internal/secrets"
	"github.com/jask/pocketledger/internal/service"
	"github.com/jask/pocketledger/internal/store"
	"github.com/jask/pocketledger/internal/testdata"
	"github.com/jask/pocketledger/internal/tui"
)

func main() {
	seed := flag.Bool("seed", false, "populate sample data before starting")
	reset := flag.Bool("reset", false, "wipe all data before starting")
	settle := flag.String("settle", "", "settle up the balance owed by this person")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	vault, err := secrets.Default()
	if err != nil {
		log.Printf("warn: secrets vault unavailable: %v", err)
	}
	config.ResolveSecrets(&cfg, vault)

	blobs, db, closeStore, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	defer closeStore()

	s := store.New(blobs)
	if err := s.Load(ctx); err != nil {
		log.Fatalf("load store: %v", err)
	}

	loc := cfg.UI.Location()
	clock := service.InLocation(loc)
	userID := cfg.User.ID

	// services
	ledger := &service.Ledger{Store: s, Clock: clock}
	engine := &service.ActionEngine{Store: s, Clock: clock}
	transfers := &service.Transfers{Store: s, Clock: clock}
	income := &service.Income{Store: s, Clock: clock}
	subs := &service.Subscriptions{Store: s, Clock: clock}
	budgets := &service.Budgets{Store: s}
	reviews := &service.Reviews{Store: s, Clock: clock}
	friends := &service.Friends{Store: s, Clock: clock}
	accounts := &service.Accounts{Store: s}
	importer := &service.ImportService{Store: s, Clock: clock}
	maintenance := &service.MaintenanceService{Store: s, DB: db}

	if *reset {
		if err := maintenance.Reset(ctx); err != nil {
			log.Fatalf("reset: %v", err)
		}
		log.Printf("all data wiped")
	}
	if *seed {
		if err := testdata.Seed(ctx, testdata.Services{
			Accounts: accounts, Budgets: budgets, Ledger: ledger, Subscriptions: subs,
			Income: income, Transfers: transfers, Friends: friends,
		}, userID, clock()); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	if *settle != "" {
		settleUp(ctx, ledger, userID, *settle)
	}

	now := clock()
	if _, err := budgets.Rollover(ctx, userID, int(now.Month()), now.Year()); err != nil {
		log.Printf("warn: budget rollover: %v", err)
	}

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, userID)
		if err != nil {
			log.Printf("warn: telegram disabled: %v", err)
		} else {
			s.View(func(c *store.Collections) { tg.Prime(*c) })
			s.Observe(tg.Notify)
		}
	}

	if err := engine.Generate(ctx, userID); err != nil {
		log.Fatalf("generate actions: %v", err)
	}

	prefStore, err := prefs.Default()
	if err != nil {
		log.Printf("warn: import preferences unavailable: %v", err)
	}

	p := tea.NewProgram(tui.New(ctx, tui.Services{
		Engine:        engine,
		Ledger:        ledger,
		Transfers:     transfers,
		Income:        income,
		Subscriptions: subs,
		Reviews:       reviews,
		Accounts:      accounts,
		Import:        importer,
		Maintenance:   maintenance,
		Prefs:         prefStore,
	}, userID, s.Currency(), loc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func settleUp(ctx context.Context, ledger *service.Ledger, userID, name string) {
	r, err := ledger.SettleUpBalance(ctx, userID, name)
	if err != nil {
		log.Fatalf("settle %s: %v", name, err)
	}
	if r != nil {
		log.Printf("settled %s: %s", r.PersonName, r.Amount.StringFixed(2))
		return
	}
	if hint, ok := ledger.SuggestPerson(userID, name); ok {
		log.Printf("no balance owed by %q; did you mean %q?", name, hint)
		return
	}
	log.Printf("no balance owed by %q", name)
}

// openBlobStore picks the backend: the remote database when enabled, else
// redis or the local sqlite file. db is nil unless sqlite is used.
func openBlobStore(ctx context.Context, cfg config.Config) (blobstore.Store, *sql.DB, func(), error) {
	if cfg.Remote.Enabled {
		pg, err := blobstore.NewPostgres(ctx, blobstore.PostgresOptions{
			Host:     cfg.Remote.Host,
			Port:     cfg.Remote.Port,
			Database: cfg.Remote.Database,
			Username: cfg.Remote.Username,
			Password: cfg.Remote.Password,
			SSLMode:  cfg.Remote.SSLMode,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, nil, pg.Close, nil
	}

	if cfg.Store.Backend == "redis" {
		rds, err := blobstore.NewRedis(redis.RedisConf{Host: cfg.Redis.Host, Type: cfg.Redis.Type, Pass: cfg.Redis.Pass})
		if err != nil {
			return nil, nil, nil, err
		}
		return rds, nil, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db, cfg.UI.CurrencyCode); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("seed defaults: %w", err)
	}
	return blobstore.NewSQLite(db), db, func() { _ = db.Close() }, nil
}
