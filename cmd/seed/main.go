// Seeds the customer store with synthetic financial time series so the
// API can be exercised without calling POST /generate_customers first.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"creditagent/pkg/config"
	"creditagent/pkg/core/datagen"
	"creditagent/pkg/core/store"
)

func main() {
	godotenv.Load()

	count := flag.Int("count", 10, "number of customers to generate")
	seed := flag.Int64("seed", 0, "rng seed (0 uses the current time)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.NewConfig()
	fs, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatalf("Failed to open data directory %s: %v", cfg.DataDir, err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	customers := datagen.GenerateCustomers(rng, *count, datagen.DefaultDistribution())

	ctx := context.Background()
	for _, c := range customers {
		if err := fs.Save(ctx, c); err != nil {
			logger.Fatalf("Failed to save %s: %v", c.CustomerID, err)
		}
		logger.WithFields(logrus.Fields{
			"customer_id": c.CustomerID,
			"name":        c.Name,
			"profile":     c.ProfileType,
			"months":      len(c.MonthlyData),
		}).Info("customer saved")
	}
	logger.Infof("Seeded %d customers into %s", len(customers), cfg.DataDir)
}
