package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/jhoicas/control-stock/internal/application/auth"
	"github.com/jhoicas/control-stock/internal/application/inventory"
	"github.com/jhoicas/control-stock/internal/bootstrap"
	"github.com/jhoicas/control-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/control-stock/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/control-stock/pkg/config"
	"github.com/jhoicas/control-stock/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "stockctl",
		Usage: "Operaciones de mantenimiento del control de stock",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Aplica (o revierte con --down) las migraciones del esquema",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "revierte la última migración"},
				},
				Action: migrateCmd,
			},
			{
				Name:   "audit",
				Usage:  "Detecta saldos negativos y desvíos respecto del libro, sin modificar nada",
				Action: auditCmd,
			},
			{
				Name:   "repair",
				Usage:  "Repara las inconsistencias bajo el bloqueo de auditoría",
				Action: repairCmd,
			},
			{
				Name:  "bulk-load",
				Usage: "Procesa una planilla XLSX o CSV contra una sucursal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "ruta de la planilla"},
					&cli.StringFlag{Name: "branch", Aliases: []string{"b"}, Required: true, Usage: "ID de la sucursal"},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "set", Usage: "increment | set | decrement"},
					&cli.StringFlag{Name: "name", Usage: "nombre del lote (por defecto el nombre del archivo)"},
					&cli.StringFlag{Name: "actor", Value: inventory.SystemActorID, Usage: "usuario que firma los movimientos"},
				},
				Action: bulkLoadCmd,
			},
			{
				Name:  "token",
				Usage: "Emite un JWT para un usuario registrado (integraciones y pruebas)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "ID del usuario"},
					&cli.StringFlag{Name: "branch", Aliases: []string{"b"}, Usage: "sucursal habitual"},
				},
				Action: tokenCmd,
			},
			{
				Name:  "alerts",
				Usage: "Alertas de stock",
				Subcommands: []*cli.Command{
					{
						Name:  "recompute",
						Usage: "Recalcula las alertas de una sucursal",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "branch", Aliases: []string{"b"}, Required: true},
						},
						Action: recomputeAlertsCmd,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withContainer carga configuración y dependencias para un comando.
func withContainer(c *cli.Context, fn func(*bootstrap.Container) error) error {
	return withConfigAndContainer(c, func(_ *config.Config, ct *bootstrap.Container) error { return fn(ct) })
}

func withConfigAndContainer(c *cli.Context, fn func(*config.Config, *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Output: os.Stderr})
	container, err := bootstrap.New(c.Context, cfg, lg)
	if err != nil {
		return err
	}
	defer container.Close()
	return fn(cfg, container)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DB.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requiere DB_DRIVER=%s", config.DriverPostgres)
	}
	if c.Bool("down") {
		if err := postgres.MigrateDown(cfg.DB.ConnectionString()); err != nil {
			return err
		}
		fmt.Println("última migración revertida")
		return nil
	}
	res, err := postgres.MigrateUp(cfg.DB.ConnectionString())
	if err != nil {
		return err
	}
	fmt.Printf("esquema en versión %d (cambios: %t)\n", res.Version, res.Changed)
	return nil
}

func auditCmd(c *cli.Context) error {
	return withContainer(c, func(ct *bootstrap.Container) error {
		findings, err := ct.Auditor.DetectInconsistencies(c.Context)
		if err != nil {
			return err
		}
		return printJSON(findings)
	})
}

func repairCmd(c *cli.Context) error {
	return withContainer(c, func(ct *bootstrap.Container) error {
		summary, err := ct.Scheduler.RepairNow(c.Context)
		if err != nil {
			return err
		}
		return printJSON(summary)
	})
}

func bulkLoadCmd(c *cli.Context) error {
	lines, err := spreadsheet.ReadFile(c.String("file"))
	if err != nil {
		return err
	}
	name := c.String("name")
	if name == "" {
		name = c.String("file")
	}
	return withContainer(c, func(ct *bootstrap.Container) error {
		res, err := ct.BulkLoads.ProcessBatch(c.Context, inventory.ProcessBulkLoadInput{
			Name:     name,
			BranchID: c.String("branch"),
			Mode:     c.String("mode"),
			Lines:    lines,
			ActorID:  c.String("actor"),
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	})
}

func recomputeAlertsCmd(c *cli.Context) error {
	return withContainer(c, func(ct *bootstrap.Container) error {
		if err := ct.Alerts.RecomputeAlertsForBranch(c.Context, c.String("branch")); err != nil {
			return err
		}
		if err := ct.Invalidator.InvalidateAll(c.Context); err != nil {
			log.Printf("warning: no se invalidó el cache del dashboard: %v", err)
		}
		fmt.Println("alertas recalculadas")
		return nil
	})
}

func tokenCmd(c *cli.Context) error {
	return withConfigAndContainer(c, func(cfg *config.Config, ct *bootstrap.Container) error {
		uc := auth.NewAuthUseCase(ct.Repos.Users, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		})
		tok, err := uc.IssueToken(c.Context, c.String("user"), c.String("branch"))
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	})
}
