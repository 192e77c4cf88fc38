package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/moustafa-dental/dental-lab-api/config"
	"github.com/moustafa-dental/dental-lab-api/controllers"
	"github.com/moustafa-dental/dental-lab-api/middleware"
	"github.com/moustafa-dental/dental-lab-api/models"
	"github.com/moustafa-dental/dental-lab-api/services"
)

func main() {
	log.Println("Starting Dental Lab API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Technician{},
		&models.Case{},
		&models.Payment{},
		&models.Notification{},
		&models.MillingCenter{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// S3 attachment storage; optional in local development
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
	} else {
		log.Println("AWS_S3_BUCKET not set, file attachments will not be stored")
	}

	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg)))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}

	protected := v1.Group("")
	protected.Use(middleware.EnsureValidToken(cfg))
	{
		protected.POST("/users", controllers.CreateUser)
		protected.GET("/users/me", controllers.GetCurrentUser)

		protected.POST("/cases", controllers.CreateCase)
		protected.GET("/cases", controllers.ListCases)
		protected.GET("/cases/:id", controllers.GetCase)
		protected.PATCH("/cases/:id", controllers.UpdateCase)
		protected.POST("/cases/:id/accept", controllers.AcceptCase)
		protected.POST("/cases/:id/submit", controllers.SubmitForReview)
		protected.POST("/cases/:id/approve", controllers.ApproveCase)
		protected.POST("/cases/:id/revision", controllers.RequestRevision)
		protected.POST("/cases/:id/notes", controllers.AddNote)
		protected.POST("/cases/:id/files", controllers.UploadCaseFiles)
		protected.DELETE("/cases/:id/files/:fileId", controllers.RemoveCaseFile)
		protected.GET("/cases/:id/milling-request", controllers.MillingRequest)

		protected.GET("/technicians", controllers.ListTechnicians)
		protected.POST("/technicians", controllers.CreateTechnician)
		protected.GET("/technicians/:id", controllers.GetTechnician)
		protected.PUT("/technicians/:id", controllers.UpdateTechnician)
		protected.PUT("/technicians/:id/pricing", controllers.UpdateTechnicianPricing)

		protected.GET("/payments", controllers.ListPayments)
		protected.GET("/payments/owed", controllers.GetOwed)
		protected.POST("/payments", controllers.CreatePayment)
		protected.GET("/payments/report", controllers.PaymentReportCSV)

		protected.GET("/notifications", controllers.ListNotifications)
		protected.POST("/notifications/:id/read", controllers.MarkNotificationRead)

		protected.GET("/milling-centers", controllers.ListMillingCenters)
		protected.POST("/milling-centers", controllers.CreateMillingCenter)
	}

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if cfg.CORSAllowOrigins == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSAllowOrigins, ",")
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Dental Lab API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
