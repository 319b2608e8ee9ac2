package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymsync/backend/internal/api"
	"gymsync/backend/internal/config"
	"gymsync/backend/internal/email"
	"gymsync/backend/internal/repository/mongo"
	"gymsync/backend/internal/service"
	"gymsync/backend/internal/storage"

	"github.com/gin-gonic/gin"
	mongodb "go.mongodb.org/mongo-driver/mongo"
)

func main() {
	log.Println("Starting GymSync server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	// Production refuses to start without a database. Development keeps the
	// lazily-connecting client so the public landing routes can still answer
	// with their fallback numbers.
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		if cfg.Server.IsProduction() || dbClient == nil {
			log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
		}
		log.Printf("WARN: MongoDB unreachable, continuing degraded: %v", err)
	} else {
		log.Println("Database connection established.")
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		ensure := func(name string, fn func(context.Context, *mongodb.Database) error) {
			if err := fn(ctx, appDB); err != nil {
				log.Printf("WARN: %s index creation failed: %v", name, err)
			}
		}
		ensure("user", mongo.EnsureUserIndexes)
		ensure("member profile", mongo.EnsureMemberProfileIndexes)
		ensure("trainer profile", mongo.EnsureTrainerProfileIndexes)
		ensure("plan", mongo.EnsurePlanIndexes)
		ensure("payment", mongo.EnsurePaymentIndexes)
		ensure("workout plan", mongo.EnsureWorkoutPlanIndexes)
		ensure("diet plan", mongo.EnsureDietPlanIndexes)
		ensure("chat", mongo.EnsureChatIndexes)
		ensure("message", mongo.EnsureMessageIndexes)
		ensure("otp", mongo.EnsureOTPIndexes)
		ensure("progress photo", mongo.EnsureProgressPhotoIndexes)
		log.Println("Index creation process completed.")
	}()

	// --- File Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Mailer ---
	mailer := email.NewSMTPMailer(cfg.SMTP)

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	memberProfileRepo := mongo.NewMongoMemberProfileRepository(appDB)
	trainerProfileRepo := mongo.NewMongoTrainerProfileRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	paymentRepo := mongo.NewMongoPaymentRepository(appDB)
	workoutPlanRepo := mongo.NewMongoWorkoutPlanRepository(appDB)
	dietPlanRepo := mongo.NewMongoDietPlanRepository(appDB)
	chatRepo := mongo.NewMongoChatRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)
	otpRepo := mongo.NewMongoOTPRepository(appDB)
	photoRepo := mongo.NewMongoProgressPhotoRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(userRepo, otpRepo, mailer, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, memberProfileRepo, trainerProfileRepo, workoutPlanRepo, dietPlanRepo)
	planService := service.NewPlanService(planRepo, userRepo, paymentRepo)
	paymentService := service.NewPaymentService(paymentRepo, planRepo, userRepo)
	memberService := service.NewMemberService(userRepo, memberProfileRepo, trainerProfileRepo, workoutPlanRepo, dietPlanRepo, photoRepo, fileStorage)
	trainerService := service.NewTrainerService(userRepo, trainerProfileRepo, workoutPlanRepo, dietPlanRepo)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, trainerProfileRepo)
	adminService := service.NewAdminService(userRepo, memberProfileRepo, trainerProfileRepo, workoutPlanRepo, dietPlanRepo, paymentRepo)
	landingService := service.NewLandingService(userRepo, planRepo)

	// --- Gin Engine ---
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(api.CORSMiddleware(cfg.Server.CORSOrigin))

	api.SetupRoutes(router, api.RouterDeps{
		JWTSecret:    cfg.JWT.Secret,
		CookieTTL:    cfg.JWT.Expiration,
		SecureCookie: cfg.Server.IsProduction(),
		UserRepo:     userRepo,

		AuthService:    authService,
		UserService:    userService,
		AdminService:   adminService,
		MemberService:  memberService,
		TrainerService: trainerService,
		PlanService:    planService,
		PaymentService: paymentService,
		ChatService:    chatService,
		LandingService: landingService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting.")
}
