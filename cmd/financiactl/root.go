package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jhoicas/factoring-api/internal/application/dto"
	"github.com/jhoicas/factoring-api/internal/application/payments"
	"github.com/jhoicas/factoring-api/internal/bootstrap"
	"github.com/jhoicas/factoring-api/pkg/config"
	"github.com/jhoicas/factoring-api/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

type sweeper interface {
	ExecuteDue(ctx context.Context, now time.Time) (*dto.SweepResponse, error)
}

type expirer interface {
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
}

type globalFlags struct {
	timeout time.Duration
	json    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "financiactl",
		Short: "Tareas programadas de la plataforma de factoring",
		Long: `financiactl ejecuta los trabajos periódicos que la API expone en /api/admin:
el barrido de pagos vencidos y la expiración de propuestas.

Lee la misma configuración que la API (DATABASE_URL, REDIS_ADDRESS, PAYMENTS_MODE, ...)
desde el entorno o un archivo .env.`,
		Example: `  # Ejecutar los pagos vencidos (cron cada 5 minutos)
  financiactl sweep payments

  # Expirar propuestas vencidas con salida JSON
  financiactl proposals expire --json`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 5*time.Minute, "Tiempo máximo de la ejecución")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "Salida en JSON")

	root.AddCommand(newSweepCmd(flags), newProposalsCmd(flags))
	return root
}

func newSweepCmd(flags *globalFlags) *cobra.Command {
	sweep := &cobra.Command{Use: "sweep", Short: "Barridos de pagos"}
	sweep.AddCommand(&cobra.Command{
		Use:   "payments",
		Short: "Ejecuta los pagos pendientes con fecha alcanzada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, flags, func(ctx context.Context, svc *bootstrap.Services) error {
				return runSweep(ctx, svc.Sweep, time.Now(), cmd.OutOrStdout(), flags.json)
			})
		},
	})
	return sweep
}

func newProposalsCmd(flags *globalFlags) *cobra.Command {
	proposals := &cobra.Command{Use: "proposals", Short: "Mantenimiento de propuestas"}
	proposals.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Expira las propuestas sent/pending con vigencia vencida",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, flags, func(ctx context.Context, svc *bootstrap.Services) error {
				return runExpire(ctx, svc.Proposals, time.Now(), cmd.OutOrStdout(), flags.json)
			})
		},
	})
	return proposals
}

// withServices carga configuración, conecta y ejecuta fn con el timeout global.
func withServices(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, svc *bootstrap.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "financiactl"})

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
	defer cancel()

	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

// runSweep otra instancia con el candado no es un error: el pago se procesará allí.
func runSweep(ctx context.Context, s sweeper, now time.Time, out io.Writer, asJSON bool) error {
	res, err := s.ExecuteDue(ctx, now)
	if payments.IsSweepInProgress(err) {
		fmt.Fprintln(out, "barrido en curso en otra instancia; nada que hacer")
		return nil
	}
	if err != nil {
		return err
	}
	if asJSON {
		if err := json.NewEncoder(out).Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "procesados=%d ejecutados=%d fallidos=%d\n", res.Processed, res.Executed, res.Failed)
		for _, o := range res.Outcomes {
			fmt.Fprintf(out, "  %s\t%s\t%s\n", o.PaymentID, o.Outcome, o.Detail)
		}
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d pagos fallidos", res.Failed)
	}
	return nil
}

func runExpire(ctx context.Context, e expirer, now time.Time, out io.Writer, asJSON bool) error {
	ids, err := e.ExpireDue(ctx, now)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	if asJSON {
		return json.NewEncoder(out).Encode(dto.ExpireDueResponse{Expired: ids})
	}
	fmt.Fprintf(out, "propuestas expiradas: %d\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}
