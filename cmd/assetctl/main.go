package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/audit"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/db"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "migrate" {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("falha ao aplicar schema")
		}
		log.Info().Msg("schema aplicado")
		return
	}

	logger := log.With().Str("component", "assetctl").Logger()
	service := inventory.NewService(inventory.NewPostgresStore(pool), nil, 0, nil, logger)

	switch cmd {
	case "history":
		if err := runHistory(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao consultar histórico")
		}
	case "clear-logs":
		if err := runClearLogs(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao limpar histórico")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "assetctl CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  assetctl migrate")
	fmt.Fprintln(os.Stderr, "  assetctl history [--json] [--limit 50] <assetId>")
	fmt.Fprintln(os.Stderr, "  assetctl clear-logs --actor \"Nome do operador\" --yes")
}

func runHistory(ctx context.Context, service *inventory.Service, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		asJSON = fs.Bool("json", false, "saída em JSON")
		limit  = fs.Int("limit", 50, "quantidade máxima de eventos")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("informe o id do ativo")
	}

	items, err := service.HistoryView(ctx, audit.Filter{AssetID: fs.Arg(0), Limit: *limit})
	if err != nil {
		return err
	}

	if *asJSON {
		encoded, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(encoded))
		return nil
	}

	if len(items) == 0 {
		fmt.Println("nenhum evento registrado")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  %-22s  %s", item.Timestamp.Local().Format("02/01/2006 15:04:05"), item.ActionLabel, item.AdminUser)
		if item.Notes != "" {
			fmt.Printf("  (%s)", item.Notes)
		}
		fmt.Println()
		for _, c := range item.Changes {
			fmt.Printf("    %s: %s -> %s\n", c.Field, c.Old, c.New)
		}
	}
	return nil
}

func runClearLogs(ctx context.Context, service *inventory.Service, args []string) error {
	fs := flag.NewFlagSet("clear-logs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		actor   = fs.String("actor", "", "operador responsável")
		confirm = fs.Bool("yes", false, "confirma a remoção de todo o histórico")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*confirm {
		return errors.New("operação irreversível: repita com --yes")
	}

	removed, err := service.ClearLogs(ctx, inventory.Actor{Name: *actor})
	if err != nil {
		return err
	}
	fmt.Printf("%d eventos removidos\n", removed)
	return nil
}
