package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	custmodel "github.com/frahmantamala/payment-orchestration/internal/core/datamodel/customer"
	customerpkg "github.com/frahmantamala/payment-orchestration/internal/customer"
	customerPostgres "github.com/frahmantamala/payment-orchestration/internal/customer/postgres"
	"github.com/frahmantamala/payment-orchestration/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a sandbox customer and card payment method",
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

func runSeed() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect database: %v\n", err)
		os.Exit(1)
	}

	service := customerpkg.NewService(customerPostgres.NewCustomerRepository(db), log)

	cust, err := service.CreateCustomer(&custmodel.Customer{
		Email:           "sandbox@example.com",
		Name:            "Sandbox Customer",
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed customer: %v\n", err)
		os.Exit(1)
	}

	method, err := service.CreatePaymentMethod(&custmodel.PaymentMethod{
		CustomerID: cust.ID,
		Type:       "card",
		Last4:      "4242",
		ExpMonth:   12,
		ExpYear:    2030,
		IsDefault:  true,
		IsVerified: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed payment method: %v\n", err)
		os.Exit(1)
	}

	log.Info("sandbox data seeded", "customer_id", cust.ID, "payment_method_id", method.ID)
}
