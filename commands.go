package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"interview-analyzer/internal/config"
	"interview-analyzer/internal/ledger"
)

type cliState struct {
	configPath string
	cfg        *config.AppConfig
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:           "interview-analyzer",
		Short:         "Оценка видеоинтервью и журнал событий найма",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env необязателен
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("ошибка загрузки .env файла: %w", err)
			}

			cfg, err := config.LoadAppConfig(state.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger
			return nil
		},
	}
	root.PersistentFlags().StringVar(&state.configPath, "config", "", "файл конфигурации (yaml, json, toml)")

	root.AddCommand(newServeCmd(state), newLedgerCmd(state), newBankCmd(state))
	return root
}

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API интервью",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, state.cfg, state.logger)
		},
	}
}

func newLedgerCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Чтение и проверка журнала событий",
	}

	var actor string
	list := &cobra.Command{
		Use:   "list",
		Short: "Вывести блоки журнала в JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), state, func(ctx context.Context, l *ledger.Ledger) error {
				var (
					blocks []ledger.Block
					err    error
				)
				if actor != "" {
					blocks, err = l.ByActor(ctx, actor)
				} else {
					blocks, err = l.Blocks(ctx)
				}
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(blocks)
			})
		},
	}
	list.Flags().StringVar(&actor, "actor", "", "только блоки этого пользователя")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Пересчитать хеши и проверить непрерывность журнала",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), state, func(ctx context.Context, l *ledger.Ledger) error {
				report, err := l.Verify(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !report.Valid {
					fmt.Fprintf(out, "❌ Журнал поврежден на блоке %d: %s\n", report.BrokenAt, report.Reason)
					return fmt.Errorf("журнал не прошел проверку")
				}
				fmt.Fprintf(out, "✅ Журнал в порядке, блоков: %d\n", report.Blocks)
				return nil
			})
		},
	}

	cmd.AddCommand(list, verify)
	return cmd
}

func newBankCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Работа с банком интервью",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [path]",
		Short: "Проверить YAML банк интервью",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := state.cfg.Bank.Path
			if len(args) == 1 {
				path = args[0]
			}
			bank, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ %s\n", path)
			fmt.Fprintf(out, "• Категорий: %d\n", bank.GetTotalCategories())
			fmt.Fprintf(out, "• Вакансий: %d\n", bank.GetTotalJobs())
			fmt.Fprintf(out, "• Откликов: %d\n", len(bank.Applications))
			fmt.Fprintf(out, "• Пользователей: %d\n", len(bank.Users))
			return nil
		},
	})
	return cmd
}

func withLedger(ctx context.Context, state *cliState, fn func(context.Context, *ledger.Ledger) error) error {
	store, closeStore, err := openLedgerStore(ctx, state.cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	l, err := ledger.New(ctx, store, ledger.Options{Chained: state.cfg.Ledger.Chained}, state.logger)
	if err != nil {
		return err
	}
	return fn(ctx, l)
}
