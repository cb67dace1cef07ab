package main

import (
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"

	"subliBack/internal/config"
	"subliBack/internal/handlers"
	"subliBack/internal/repositories"
	"subliBack/internal/services"
	"subliBack/utils"
)

type application struct {
	errorLog       *log.Logger
	infoLog        *log.Logger
	signingKey     string
	tokenManager   *utils.Manager
	db             *sql.DB
	userRepo       *repositories.UserRepository
	listingService *services.ListingService
	userHandler    *handlers.UserHandler
	listingHandler *handlers.ListingHandler
	inquiryHandler *handlers.InquiryHandler
	leadHandler    *handlers.LeadHandler
	paymentHandler *handlers.PaymentHandler
}

func initializeApp(db *sql.DB, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	listingRepo := repositories.ListingRepository{DB: db}
	inquiryRepo := repositories.InquiryRepository{DB: db}
	leadRepo := repositories.LeadRepository{DB: db}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	paymentEventRepo := repositories.PaymentEventRepository{RDB: rdb}

	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	storage := utils.NewStorage(utils.StorageConfig{
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
	})

	// Services
	mailer := services.NewMailerService(cfg.Mail.APIKey, cfg.Mail.From)
	listingService := &services.ListingService{
		ListingRepo: &listingRepo,
		UserRepo:    &userRepo,
		Notifier:    mailer,
		ErrorLog:    errorLog,
	}
	inquiryService := &services.InquiryService{
		InquiryRepo: &inquiryRepo,
		ListingRepo: &listingRepo,
		UserRepo:    &userRepo,
		Notifier:    mailer,
		ErrorLog:    errorLog,
	}
	leadService := &services.LeadService{LeadRepo: &leadRepo}
	userService := &services.UserService{
		UserRepo:     &userRepo,
		TokenManager: tokenManager,
		Notifier:     mailer,
		ErrorLog:     errorLog,
	}
	paymentService := services.NewPaymentService(services.PaymentConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
		BoostPrice:    cfg.Stripe.BoostPrice,
		ExtendPrice:   cfg.Stripe.ExtendPrice,
		Currency:      cfg.Stripe.Currency,
	}, &listingRepo, &paymentEventRepo, infoLog, errorLog)

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	listingHandler := &handlers.ListingHandler{
		Service:    listingService,
		Storage:    storage,
		SigningKey: cfg.Auth.SigningKey,
	}
	inquiryHandler := &handlers.InquiryHandler{Service: inquiryService}
	leadHandler := &handlers.LeadHandler{Service: leadService}
	paymentHandler := &handlers.PaymentHandler{Service: paymentService}

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		signingKey:     cfg.Auth.SigningKey,
		tokenManager:   tokenManager,
		db:             db,
		userRepo:       &userRepo,
		listingService: listingService,
		userHandler:    userHandler,
		listingHandler: listingHandler,
		inquiryHandler: inquiryHandler,
		leadHandler:    leadHandler,
		paymentHandler: paymentHandler,
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}
