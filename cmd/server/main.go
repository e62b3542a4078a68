package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/galp2508/shavzak-sub000/pkg/config"
	"github.com/galp2508/shavzak-sub000/pkg/database"
	"github.com/galp2508/shavzak-sub000/pkg/handlers"
	"github.com/galp2508/shavzak-sub000/pkg/learner"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	settings := config.Load()
	db := database.InitDB()
	store := learner.Open(settings.ModelPath)
	h := handlers.New(db, store, settings)

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shavzak Roster API",
			"version": "1.0.0",
		})
	})

	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)

	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/me", h.GetMe)
		api.PUT("/me", h.UpdateMe)

		api.GET("/platoons", h.ListPlatoons)
		api.GET("/persons", h.ListPersons)
		api.POST("/persons", h.CreatePerson)
		api.PUT("/persons/:id", h.UpdatePerson)
		api.DELETE("/persons/:id", h.DeletePerson)
		api.POST("/persons/:id/unavailability", h.AddUnavailability)

		api.GET("/templates", h.ListTemplates)

		api.GET("/shavzakim", h.ListRosters)
		api.POST("/shavzakim", h.CreateRoster)
		api.GET("/shavzakim/:id", h.GetRoster)
		api.POST("/shavzakim/:id/generate", h.Generate)

		api.POST("/feedback", h.SubmitFeedback)
	}

	admin := api.Group("")
	admin.Use(h.AdminOnly())
	{
		admin.POST("/platoons", h.CreatePlatoon)
		admin.POST("/platoons/:id/squads", h.CreateSquad)
		admin.POST("/templates", h.CreateTemplate)
		admin.GET("/join-requests", h.ListJoinRequests)
		admin.POST("/join-requests/:id/approve", h.ApproveJoinRequest)
		admin.GET("/model/stats", h.ModelStats)
		admin.POST("/model/train", h.TrainModel)
		admin.POST("/model/reset", h.ResetModel)
	}

	port := settings.Port
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
