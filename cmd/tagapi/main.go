package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helperkit/tagstore/internal/database"
	"github.com/helperkit/tagstore/internal/tag/handler"
	"github.com/helperkit/tagstore/internal/tag/repository"
	"github.com/helperkit/tagstore/internal/tag/service"
)

// Standalone tag API for local development and the chat front-end dev loop.
// No auth: every route is open. Use the main entrypoint for real deployments.
func main() {
	port := os.Getenv("TAG_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Prefer Mongo-backed storage when MONGODB_URI is provided.
	var svc *service.Service
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed repo", err)
			svc = service.NewMemory()
		} else {
			col := client.Database(os.Getenv("MONGODB_DATABASE")).Collection("tags")
			svc = service.New(repository.NewMongoRepo(col))
		}
	} else {
		svc = service.NewMemory()
	}

	handler.RegisterTagRoutes(r, svc)

	log.Printf("tag API listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
