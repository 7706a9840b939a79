package main

import (
	"log"
	"os"

	_ "contable/api/swagger" // swagger docs
	"contable/internal/database"
	"contable/internal/handler"
	"contable/internal/middleware"
	"contable/internal/repository"
	"contable/internal/service"
	"contable/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Contable Fiscal API
// @version         1.0
// @description     ISR/IVA calculation and SAT reconciliation engine for personas físicas.
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
		dbName = "contable"
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
	txRepo := repository.NewTransactionRepository(db)
	paramRepo := repository.NewFiscalParameterRepository(db)
	calcRepo := repository.NewTaxCalculationRepository(db)
	annualRepo := repository.NewAnnualDeclarationRepository(db)
	satRepo := repository.NewSatDeclarationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo)
	txService := service.NewTransactionService(txRepo, auditService)
	paramService := service.NewParameterService(paramRepo, auditService, wsHub)
	fiscalService := service.NewFiscalService(txManager, txRepo, calcRepo, paramService, auditService, wsHub)
	annualService := service.NewAnnualService(txRepo, calcRepo, annualRepo, paramService, auditService, wsHub)
	reconService := service.NewReconciliationService(satRepo, calcRepo, auditService)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	txHandler := handler.NewTransactionHandler(txService)
	paramHandler := handler.NewParameterHandler(paramService)
	fiscalHandler := handler.NewFiscalHandler(fiscalService, annualService)
	declHandler := handler.NewDeclarationHandler(reconService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
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
	userHandler.RegisterRoutes(router.Group(""))
	txHandler.RegisterRoutes(router.Group(""))
	paramHandler.RegisterRoutes(router.Group(""))
	fiscalHandler.RegisterRoutes(router.Group(""))
	declHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
