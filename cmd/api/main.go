package main

import (
	"log"
	"os"

	_ "croppo/api/swagger" // swagger docs
	"croppo/internal/database"
	"croppo/internal/handler"
	"croppo/internal/middleware"
	"croppo/internal/repository"
	"croppo/internal/service"
	"croppo/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Croppo Farm Management API
// @version         1.0
// @description     Role-gated farm management backend: permission matrix, approval workflow, inventory, operations, and finance.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "croppo"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	queueRepo := repository.NewRequestQueueRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	farmRepo := repository.NewFarmRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	financeRepo := repository.NewFinanceRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, auditRepo, txManager)
	userService := service.NewUserService(userRepo)
	approvalService := service.NewApprovalService(approvalRepo, auditRepo, txManager, wsHub)
	queueService := service.NewRequestQueueService(queueRepo, inventoryRepo, auditRepo, txManager, wsHub)
	inventoryService := service.NewInventoryService(inventoryRepo, auditRepo, txManager, wsHub)
	farmService := service.NewFarmService(farmRepo)
	operationService := service.NewOperationService(operationRepo, farmRepo, auditRepo, txManager, approvalService)
	financeService := service.NewFinanceService(financeRepo)
	reportService := service.NewReportService(operationRepo, approvalRepo, financeRepo, inventoryService, financeService)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, queueService)
	farmHandler := handler.NewFarmHandler(farmService)
	operationHandler := handler.NewOperationHandler(operationService)
	financeHandler := handler.NewFinanceHandler(financeService)
	reportHandler := handler.NewReportHandler(reportService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:8081", "http://127.0.0.1:8081", "http://localhost:19006"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	approvalHandler.RegisterRoutes(api)
	inventoryHandler.RegisterRoutes(api)
	farmHandler.RegisterRoutes(api)
	operationHandler.RegisterRoutes(api)
	financeHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
