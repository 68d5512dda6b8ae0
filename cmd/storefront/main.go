package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	adminAPI "github.com/ridloal/storefront-sync/internal/admin/api"
	adminService "github.com/ridloal/storefront-sync/internal/admin/service"
	cartAPI "github.com/ridloal/storefront-sync/internal/cart/api"
	cartRepo "github.com/ridloal/storefront-sync/internal/cart/repository"
	cartService "github.com/ridloal/storefront-sync/internal/cart/service"
	"github.com/ridloal/storefront-sync/internal/platform/config"
	"github.com/ridloal/storefront-sync/internal/platform/database"
	"github.com/ridloal/storefront-sync/internal/platform/kvstore"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/platform/web"
	productAPI "github.com/ridloal/storefront-sync/internal/product/api"
	productRepo "github.com/ridloal/storefront-sync/internal/product/repository"
	productService "github.com/ridloal/storefront-sync/internal/product/service"
	storefrontAPI "github.com/ridloal/storefront-sync/internal/storefront/api"
	storefrontService "github.com/ridloal/storefront-sync/internal/storefront/service"
	"github.com/ridloal/storefront-sync/internal/syncsignal"
)

const (
	shutdownTimeout = 10 * time.Second
	adminTokenTTL   = 12 * time.Hour
)

func main() {
	// Load Config
	config.LoadDotEnv()
	cfg := config.LoadStorefrontConfig()

	// Setup Logger
	logger.Setup(cfg.Log.Mode, cfg.Log.File)
	defer logger.Sync()
	logger.Info("Starting Storefront Service with backend mode '%s'...", cfg.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup Local Store
	kv, err := kvstore.Open(cfg.Local.Path, productRepo.BucketStorage, cartRepo.BucketCarts)
	if err != nil {
		logger.Error("Failed to open local store", err, nil)
		return
	}
	defer kv.Close()

	local, err := productRepo.NewBoltProductStore(kv)
	if err != nil {
		logger.Error("Failed to create local product store", err, nil)
		return
	}

	// Setup Remote Store
	var remote *productRepo.PostgresProductStore
	if cfg.Backend != config.BackendLocal {
		db, err := connectRemote(ctx, cfg)
		if err != nil {
			if cfg.Backend == config.BackendRemote {
				logger.Error("Remote backend required but unavailable", err, nil)
				return
			}
			logger.Warn("Remote backend unavailable, using local persistence: %v", err)
		} else {
			defer db.Close()
			remote = productRepo.NewPostgresProductStore(db, cfg.DB.DSN)
		}
	}

	// Setup Dependencies
	var (
		store    productRepo.ProductStore
		notifier syncsignal.ChangeNotifier
		importer adminService.Importer
		renderer storefrontService.Renderer
	)
	if remote != nil {
		rn, err := syncsignal.NewRemoteNotifier(ctx, remote)
		if err != nil {
			logger.Error("Failed to subscribe to remote product changes", err, nil)
			return
		}
		store, notifier = remote, rn
		renderer = storefrontService.NewRenderer(remote, local)
		logger.Info("Products are served from the remote backend")
	} else {
		bc, err := syncsignal.NewBroadcaster(local, cfg.SyncPoll)
		if err != nil {
			logger.Error("Failed to start local change broadcaster", err, nil)
			return
		}
		store, notifier, importer = local, bc, local
		renderer = storefrontService.NewRenderer(nil, local)
		logger.Info("Products are served from the local store at %s", cfg.Local.Path)
	}

	gate, err := adminService.NewDevGate(cfg.AdminDevPassword, cfg.SessionSecret, adminTokenTTL)
	if err != nil {
		logger.Error("Failed to set up admin password gate", err, nil)
		return
	}
	sessions := web.NewCookieStore(cfg.SessionSecret)

	admSvc := adminService.NewAdminService(store, notifier, importer, adminService.Options{RequireImage: cfg.RequireImage})
	prodSvc := productService.NewProductService(store)
	crtSvc := cartService.NewCartService(cartRepo.NewBoltCartRepository(kv), cartService.DefaultBankDetails)

	// Setup Gin Router
	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.MaxMultipartMemory = 2 * adminService.MaxImageBytes

	router.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			web.RespondError(c, "Healthz", err, "Product store unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	productAPI.NewProductHandler(prodSvc).RegisterRoutes(apiV1)
	adminAPI.NewAdminHandler(admSvc, gate, sessions).RegisterRoutes(apiV1)
	storefrontAPI.NewStorefrontHandler(renderer, notifier).RegisterRoutes(apiV1)
	cartAPI.NewCartHandler(crtSvc, sessions).RegisterRoutes(apiV1)

	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Storefront Service running on port " + cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to run Storefront Service server", err, nil)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down Storefront Service...")

	// closing the notifier ends open event streams so Shutdown does not wait on them
	if err := notifier.Close(); err != nil {
		logger.Error("Failed to close change notifier", err, nil)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Storefront Service forced to shut down", err, nil)
	}
}

// connectRemote opens the product database and checks the products table exists.
func connectRemote(ctx context.Context, cfg config.StorefrontConfig) (*sql.DB, error) {
	if cfg.DB.DSN == "" {
		return nil, errors.New("PRODUCT_DB_DSN is not set")
	}
	db, err := database.Connect(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := productRepo.NewPostgresProductStore(db, cfg.DB.DSN).Ping(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
