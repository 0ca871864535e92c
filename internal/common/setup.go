package common

import (
	"context"
	"log"
	"strings"

	"wallet-accounting-go/internal/database"
	"wallet-accounting-go/internal/models"
	"wallet-accounting-go/internal/node"
	"wallet-accounting-go/internal/onchain"
	"wallet-accounting-go/internal/pricing"
	"wallet-accounting-go/internal/wallet"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export or the
	// container runtime, so a missing .env is fine.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	DbService   *database.Service
	NodeService node.Node
	Wallet      *wallet.Wallet
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	chainParams, err := onchain.NetworkParams(cfg.Wallet.Network)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	zap.L().Info("Connecting to node",
		zap.String("host", cfg.Node.RPCHost),
		zap.String("network", cfg.Wallet.Network))
	nodeService, err := node.NewBitcoind(node.BitcoindParams{
		Host:       cfg.Node.RPCHost,
		User:       cfg.Node.RPCUser,
		Pass:       cfg.Node.RPCPass,
		Network:    chainParams,
		RPCTimeout: cfg.Node.RPCTimeout,
	})
	if err != nil {
		dbService.Close()
		return nil, err
	}

	ratio, err := pricing.NewPriceRatio(cfg.Wallet.PriceRatioSats, cfg.Wallet.PriceRatioCents)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	w, err := wallet.NewWallet(wallet.WalletParams{
		Journal:  dbService,
		Accounts: dbService,
		Rewards:  dbService,
		Node:     nodeService,
		Price:    wallet.FixedPriceSource{Ratio: ratio},
		Config:   cfg.Wallet,
	})
	if err != nil {
		dbService.Close()
		return nil, err
	}

	return &Services{
		DbService:   dbService,
		NodeService: nodeService,
		Wallet:      w,
	}, nil
}

// InitializeDatabaseOnly initializes just the database service without the
// node connection. Useful for read-only operations like querying balances.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
