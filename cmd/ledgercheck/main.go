// ledgercheck reproduce el libro de movimientos y compara el resultado con la proyección de stock.
//
// Uso:
//
//	go run ./cmd/ledgercheck --tenant <id> [--tenant <id> ...] [--rebuild]
//
// Sin --rebuild solo verifica y termina con código 1 si hay deriva. Con --rebuild, las empresas
// con deriva reciben una proyección reescrita a partir del libro.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("ledgercheck", pflag.ContinueOnError)
	tenants := flags.StringSlice("tenant", nil, "empresa a verificar (repetible o separada por comas)")
	rebuild := flags.Bool("rebuild", false, "reconstruir la proyección desde el libro")
	timeout := flags.Duration("timeout", 5*time.Minute, "tiempo máximo por empresa")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if len(*tenants) == 0 {
		fmt.Fprintln(os.Stderr, "ledgercheck: se requiere al menos un --tenant")
		flags.PrintDefaults()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		return 1
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return 1
	}
	defer pool.Close()

	queries := inventory.NewStockQueryUseCase(postgres.NewTxRunner(pool, cfg.DB.LockTimeout), log.Component("ledgercheck"))

	exit := 0
	for _, tenantID := range *tenants {
		tlog := log.Tenant(tenantID)
		report, err := check(ctx, queries, tenantID, *rebuild, *timeout)
		if err != nil {
			tlog.Error().Err(err).Msg("verificación fallida")
			exit = 1
			continue
		}
		ev := tlog.Info()
		if !report.Consistent() {
			ev = tlog.Warn()
			if !*rebuild {
				exit = 1
			}
		}
		ev.Bool("rebuild", *rebuild).
			Int("movements", report.Movements).
			Int("tuples", report.Tuples).
			Int("drifts", len(report.Drifts)).
			Msg("libro verificado")
		for _, d := range report.Drifts {
			fmt.Printf("%s\tlibro=%s\tproyección=%s\n", d.Key.String(), d.Ledger.String(), d.Projected.String())
		}
	}
	return exit
}

// check verifica y, si se pidió y hay deriva, reconstruye. Devuelve el reporte de la
// verificación para que las derivas corregidas queden a la vista.
func check(ctx context.Context, queries *inventory.StockQueryUseCase, tenantID string, rebuild bool, timeout time.Duration) (*inventory.VerifyReport, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	report, err := queries.Verify(ctx, tenantID)
	if err != nil || !rebuild || report.Consistent() {
		return report, err
	}
	if _, err := queries.Rebuild(ctx, tenantID); err != nil {
		return nil, err
	}
	return report, nil
}
