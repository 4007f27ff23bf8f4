package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/granabot/granabot/internal/llm"
	"github.com/granabot/granabot/internal/refcache"
	"github.com/granabot/granabot/internal/router"
	"github.com/granabot/granabot/internal/service"
	"github.com/granabot/granabot/internal/storage"
)

func init() {
	viper.SetDefault("storage.path", defaultDBPath())
	viper.SetDefault("ledger.timezone", "America/Sao_Paulo")
	viper.SetDefault("ledger.cache_ttl", refcache.DefaultTTL)
	viper.SetDefault("ledger.page_chars", 3500)
	viper.SetDefault("ledger.max_rows", 50)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.temperature", 0.2)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "granabot.db"
	}
	return filepath.Join(home, ".local", "share", "granabot", "ledger.db")
}

// newStorage opens the ledger database and brings the schema up to date.
func newStorage(ctx context.Context) (*storage.LedgerStorage, error) {
	store, err := storage.NewLedgerStorage(viper.GetString("storage.path"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}

	return store, nil
}

// newOracle builds the classifier oracle from config. Without an API key
// the interpreter still runs: the local grammars handle everything they
// can and the rest gets help text.
func newOracle(ctx context.Context) (service.Oracle, error) {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		slog.Warn("No LLM API key configured; ambiguous messages will get help text")
		return llm.DisabledOracle{}, nil
	}

	return llm.NewOracle(ctx, llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      apiKey,
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}, slog.Default())
}

// newRouter wires storage, oracle and reference cache into the message
// router.
func newRouter(ctx context.Context) (*router.Router, *storage.LedgerStorage, error) {
	store, err := newStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	oracle, err := newOracle(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	location, err := time.LoadLocation(viper.GetString("ledger.timezone"))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("invalid ledger.timezone: %w", err)
	}

	cache := refcache.New(viper.GetDuration("ledger.cache_ttl"))

	r := router.New(store, oracle, cache, router.Config{
		Location:     location,
		Payers:       viper.GetStringMapString("ledger.payers"),
		PayerAliases: viper.GetStringMapString("ledger.payer_aliases"),
		PageChars:    viper.GetInt("ledger.page_chars"),
		MaxRows:      viper.GetInt("ledger.max_rows"),
	}, slog.Default())

	return r, store, nil
}
