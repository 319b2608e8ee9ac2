package api

import (
	"net/http"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"
	"gymsync/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything SetupRoutes needs to build the handlers.
type RouterDeps struct {
	JWTSecret    string
	CookieTTL    time.Duration
	SecureCookie bool

	UserRepo repository.UserRepository

	AuthService    service.AuthService
	UserService    service.UserService
	AdminService   service.AdminService
	MemberService  service.MemberService
	TrainerService service.TrainerService
	PlanService    service.PlanService
	PaymentService service.PaymentService
	ChatService    service.ChatService
	LandingService service.LandingService
}

// SetupRoutes registers every route group on the engine.
func SetupRoutes(router *gin.Engine, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthService, deps.CookieTTL, deps.SecureCookie)
	userHandler := NewUserHandler(deps.UserService, deps.SecureCookie)
	adminHandler := NewAdminHandler(deps.AdminService)
	memberHandler := NewMemberHandler(deps.MemberService, deps.PlanService)
	trainerHandler := NewTrainerHandler(deps.TrainerService)
	planHandler := NewPlanHandler(deps.PlanService)
	paymentHandler := NewPaymentHandler(deps.PaymentService)
	chatHandler := NewChatHandler(deps.ChatService)
	landingHandler := NewLandingHandler(deps.LandingService)

	authMiddleware := AuthMiddleware(deps.JWTSecret, deps.UserRepo)
	adminOnly := RoleMiddleware(domain.RoleAdmin)
	memberOnly := RoleMiddleware(domain.RoleMember)
	trainerOnly := RoleMiddleware(domain.RoleTrainer)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")

	// --- Public ---
	landingGroup := api.Group("/landing")
	{
		landingGroup.GET("", landingHandler.Landing)
		landingGroup.GET("/features", landingHandler.Features)
		landingGroup.GET("/plans", landingHandler.Plans)
	}
	statsGroup := api.Group("/stats")
	{
		statsGroup.GET("", landingHandler.Stats)
		statsGroup.GET("/trainers", landingHandler.TrainerStats)
		statsGroup.GET("/plans", landingHandler.PlanStats)
	}

	// --- Auth ---
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register/initiate", authHandler.InitiateRegistration)
		authGroup.POST("/register/verify", authHandler.VerifyRegistration)
		authGroup.POST("/register/resend-otp", authHandler.ResendOTP)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
	}

	// --- Account self-service (any authenticated role) ---
	userGroup := api.Group("/user")
	userGroup.Use(authMiddleware)
	{
		userGroup.GET("/profile", userHandler.GetProfile)
		userGroup.PUT("/profile", userHandler.UpdateProfile)
		userGroup.PUT("/password", userHandler.ChangePassword)
		userGroup.DELETE("", userHandler.DeleteAccount)
	}

	// --- Plan catalog ---
	planGroup := api.Group("/plans")
	{
		planGroup.GET("", planHandler.List)
		planGroup.GET("/:planId", planHandler.Get)

		planGroup.POST("/subscribe", authMiddleware, paymentHandler.Process)
		planGroup.GET("/access/check", authMiddleware, planHandler.CheckAccess)
		planGroup.GET("/subscription/history", authMiddleware, planHandler.SubscriptionHistory)

		planGroup.POST("", authMiddleware, adminOnly, planHandler.Create)
		planGroup.PUT("/:planId", authMiddleware, adminOnly, planHandler.Update)
		planGroup.DELETE("/:planId", authMiddleware, adminOnly, planHandler.Delete)
	}

	// --- Payments ---
	paymentGroup := api.Group("/payments")
	paymentGroup.Use(authMiddleware)
	{
		paymentGroup.POST("/process", paymentHandler.Process)
		paymentGroup.GET("/history", paymentHandler.History)
		paymentGroup.GET("/:paymentId", paymentHandler.Get)

		paymentGroup.GET("", adminOnly, paymentHandler.List)
		paymentGroup.PUT("/:paymentId/status", adminOnly, paymentHandler.UpdateStatus)
		paymentGroup.POST("/:paymentId/refund", adminOnly, paymentHandler.Refund)
		paymentGroup.GET("/reports/generate", adminOnly, paymentHandler.MonthlyReport)
		paymentGroup.GET("/reports/status", adminOnly, paymentHandler.StatusStats)
		paymentGroup.POST("/subscriptions/check-expired", adminOnly, paymentHandler.CheckExpired)
	}

	// --- Member ---
	memberGroup := api.Group("/member")
	memberGroup.Use(authMiddleware, memberOnly)
	{
		memberGroup.GET("/profile", memberHandler.GetProfile)
		memberGroup.PUT("/profile", memberHandler.UpdateProfile)
		memberGroup.PUT("/time-slot", memberHandler.SetTimeSlots)
		memberGroup.GET("/plans/available", memberHandler.AvailablePlans)
		memberGroup.POST("/subscription/choose", paymentHandler.Process)
		memberGroup.GET("/subscription/status", memberHandler.SubscriptionStatus)
		memberGroup.GET("/trainer", memberHandler.GetTrainer)
		memberGroup.GET("/my-plans", memberHandler.MyPlans)
		memberGroup.POST("/trainer-change", memberHandler.RequestTrainerChange)

		memberGroup.POST("/progress-photos", memberHandler.RequestPhotoUpload)
		memberGroup.GET("/progress-photos", memberHandler.ListPhotos)
		memberGroup.DELETE("/progress-photos/:photoId", memberHandler.DeletePhoto)
	}

	// --- Trainer ---
	trainerGroup := api.Group("/trainer")
	trainerGroup.Use(authMiddleware, trainerOnly)
	{
		trainerGroup.GET("/members", trainerHandler.GetMembers)
		trainerGroup.GET("/members/:memberId/plans", trainerHandler.GetMemberPlans)

		trainerGroup.POST("/workout-plan", trainerHandler.CreateWorkoutPlan)
		trainerGroup.PUT("/workout-plan/:planId", trainerHandler.UpdateWorkoutPlan)
		trainerGroup.DELETE("/workout-plan/:planId", trainerHandler.DeleteWorkoutPlan)

		trainerGroup.POST("/diet-plan", trainerHandler.CreateDietPlan)
		trainerGroup.PUT("/diet-plan/:planId", trainerHandler.UpdateDietPlan)
		trainerGroup.DELETE("/diet-plan/:planId", trainerHandler.DeleteDietPlan)

		trainerGroup.GET("/profile", trainerHandler.GetProfile)
		trainerGroup.PUT("/profile", trainerHandler.UpdateProfile)
	}

	// --- Chat (members and trainers) ---
	chatGroup := api.Group("/chat")
	chatGroup.Use(authMiddleware, RoleMiddleware(domain.RoleMember, domain.RoleTrainer))
	{
		chatGroup.POST("/initiate", chatHandler.Initiate)
		chatGroup.GET("", chatHandler.List)
		chatGroup.GET("/:chatId/history", chatHandler.History)
		chatGroup.POST("/:chatId/message", chatHandler.SendMessage)
		chatGroup.PUT("/:chatId/read", chatHandler.MarkRead)
		chatGroup.DELETE("/message/:messageId", chatHandler.DeleteMessage)
	}

	// --- Admin ---
	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware, adminOnly)
	{
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.GET("/users/timing", adminHandler.ListUserTimings)
		adminGroup.PUT("/users/:userId/verify", adminHandler.VerifyUser)
		adminGroup.DELETE("/users/:userId", adminHandler.RemoveUser)
		adminGroup.GET("/payments", paymentHandler.List)
		adminGroup.GET("/subscriptions", adminHandler.ListSubscriptions)
		adminGroup.GET("/trainer-assignments", adminHandler.TrainerAssignments)
		adminGroup.POST("/assign-trainer", adminHandler.AssignTrainer)
		adminGroup.GET("/dashboard-stats", adminHandler.DashboardStats)
	}
}
