package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bookmarket/internal/config"
	"bookmarket/internal/domain/model"
	"bookmarket/internal/events"
	"bookmarket/internal/handler"
	"bookmarket/internal/infra/db"
	infraRepo "bookmarket/internal/infra/repository"
	"bookmarket/internal/logger"
	"bookmarket/internal/middleware"
	"bookmarket/internal/usecase"
	"bookmarket/internal/validator"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger("bookmarket-api", cfg.LogLevel)
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.Book{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.BookReview{},
		&model.AdminAction{},
	); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	bookRepo := infraRepo.NewBookGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	actionRepo := infraRepo.NewAdminActionGormRepository(gormDB)
	reportRepo := infraRepo.NewReportGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//デフォルトカテゴリ投入（空のときだけ）
	if err := categoryRepo.SeedDefaults(context.Background()); err != nil {
		log.Warn("failed to seed categories", zap.Error(err))
	}

	//イベント発行（AMQP未設定ならNoop）
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, log)
		if err != nil {
			log.Warn("failed to connect message broker, events disabled", zap.Error(err))
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	//Usecase生成
	audit := usecase.NewAuditRecorder(actionRepo, publisher, log)
	authValidator := validator.NewAuthValidator(userRepo)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	bookUC := usecase.NewBookUsecase(bookRepo, categoryRepo)
	adminBookUC := usecase.NewAdminBookUsecase(bookRepo, audit)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, bookRepo)
	orderUC := usecase.NewOrderUsecase(txManager, publisher, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, audit)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, bookRepo, audit)
	profileUC := usecase.NewProfileUsecase(userRepo, txManager)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, actionRepo, txManager, audit)
	reportUC := usecase.NewReportUsecase(cfg, reportRepo)
	uploadUC := usecase.NewUploadUsecase(cfg.UploadDir)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	bookH := handler.NewBookHandler(bookUC, reviewUC)
	sellerH := handler.NewSellerBookHandler(bookUC, uploadUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC)
	reviewH := handler.NewReviewHandler(reviewUC)
	profileH := handler.NewProfileHandler(profileUC, uploadUC)
	reportH := handler.NewReportHandler(reportUC)
	adminBookH := handler.NewAdminBookHandler(adminBookUC, reviewUC)
	adminOrderH := handler.NewAdminOrderHandler(adminOrderUC)
	adminUserH := handler.NewAdminUserHandler(adminUserUC, authUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())

	//アップロード画像の配信
	e.Static("/uploads", cfg.UploadDir)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authH.RegisterRoutes(e, cfg, userRepo)
	bookH.RegisterRoutes(e)
	sellerH.RegisterRoutes(e, cfg, userRepo)
	cartH.RegisterRoutes(e, cfg, userRepo)
	orderH.RegisterRoutes(e, cfg, userRepo)
	reviewH.RegisterRoutes(e, cfg, userRepo)
	profileH.RegisterRoutes(e, cfg, userRepo)
	reportH.RegisterRoutes(e, cfg, userRepo)
	adminBookH.RegisterRoutes(e, cfg, userRepo)
	adminOrderH.RegisterRoutes(e, cfg, userRepo)
	adminUserH.RegisterRoutes(e, cfg, userRepo)

	log.Info("starting server", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
