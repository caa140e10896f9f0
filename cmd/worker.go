package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	txmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/transaction"
	transactionpkg "github.com/frahmantamala/payment-orchestration/internal/transaction"
	transactionPostgres "github.com/frahmantamala/payment-orchestration/internal/transaction/postgres"
	"github.com/frahmantamala/payment-orchestration/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background maintenance workers",
}

var expiryWorkerCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Expire authorizations and pending transactions past their window",
	Run: func(cmd *cobra.Command, args []string) {
		startExpiryWorker()
	},
}

var (
	expiryInterval time.Duration
	expiryWindow   time.Duration
)

func init() {
	expiryWorkerCmd.Flags().DurationVar(&expiryInterval, "interval", 5*time.Minute, "sweep interval")
	expiryWorkerCmd.Flags().DurationVar(&expiryWindow, "window", 7*24*time.Hour, "age after which an unsettled transaction expires")

	workerCmd.AddCommand(expiryWorkerCmd)
}

func startExpiryWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	repo := transactionPostgres.NewTransactionRepository(db)

	ticker := time.NewTicker(expiryInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("expiry worker started", "interval", expiryInterval, "window", expiryWindow)

	for {
		select {
		case <-ticker.C:
			sweepExpired(repo, log)
		case sig := <-sigChan:
			log.Info("received signal, shutting down expiry worker", "signal", sig)
			return
		}
	}
}

func sweepExpired(repo transactionpkg.RepositoryAPI, log *slog.Logger) {
	cutoff := time.Now().UTC().Add(-expiryWindow)

	for _, status := range []txmodel.Status{txmodel.StatusInitialized, txmodel.StatusPending, txmodel.StatusAuthorized} {
		page, err := repo.Search(txmodel.SearchFilter{
			Status:        status,
			CreatedBefore: &cutoff,
			PageSize:      100,
		})
		if err != nil {
			log.Error("expiry sweep query failed", "status", status, "error", err)
			continue
		}

		for _, tx := range page.Items {
			if appErr := transactionpkg.Transition(tx, txmodel.StatusExpired, "expire", map[string]string{
				"expired_after": expiryWindow.String(),
			}); appErr != nil {
				continue
			}
			if err := repo.Update(tx); err != nil {
				log.Error("failed to persist expiry", "transaction_id", tx.ID, "error", err)
				continue
			}
			log.Info("transaction expired", "transaction_id", tx.ID, "previous_status", status)
		}
	}
}
