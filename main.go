package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"projecthub/backend/config"
	"projecthub/backend/db"
	"projecthub/backend/handlers"
	"projecthub/backend/logging"
	"projecthub/backend/repositories"
	"projecthub/backend/scheduler"
	"projecthub/backend/services"
	"projecthub/backend/storage"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logging.InitLogger(cfg.LogFile)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logging.Logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	database := client.Database(db.DatabaseName)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logging.Logger.Fatalf("Failed to create indexes: %v", err)
	}

	usersCollection := database.Collection("users")
	projectsCollection := database.Collection("projects")
	membershipsCollection := database.Collection("memberships")
	tasksCollection := database.Collection("tasks")
	commentsCollection := database.Collection("comments")
	attachmentsCollection := database.Collection("attachments")

	notificationRepo, err := repositories.NewNotificationRepo(cfg.CassandraHost, logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer notificationRepo.CloseSession()

	attachmentStorage, err := storage.NewAttachmentStorage(cfg.Storage, attachmentsCollection, logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Failed to initialize attachment storage: %v", err)
	}

	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(usersCollection, membershipsCollection)
	projectService := services.NewProjectService(projectsCollection, membershipsCollection, tasksCollection, attachmentStorage)
	membershipService := services.NewMembershipService(membershipsCollection, projectsCollection, usersCollection, notificationService)
	taskService := services.NewTaskService(tasksCollection, projectsCollection, usersCollection, notificationService)
	commentService := services.NewCommentService(commentsCollection, tasksCollection, usersCollection, projectsCollection, notificationService)

	sweeper := scheduler.NewOverdueSweeper(tasksCollection, notificationService, cfg.SweepInterval, logging.Logger)
	sweeper.Start()
	defer sweeper.Stop()

	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentStorage)

	r := mux.NewRouter()

	r.HandleFunc("/users", userHandler.Register).Methods("POST")
	r.HandleFunc("/users/{userId}", userHandler.GetUser).Methods("GET")
	r.HandleFunc("/users/{userId}", userHandler.UpdateProfile).Methods("PUT")
	r.HandleFunc("/users/{userId}", userHandler.Deactivate).Methods("DELETE")

	r.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	r.HandleFunc("/projects/{projectId}", projectHandler.GetProject).Methods("GET")
	r.HandleFunc("/projects/{projectId}", projectHandler.UpdateProject).Methods("PUT")
	r.HandleFunc("/projects/{projectId}", projectHandler.DeleteProject).Methods("DELETE")

	r.HandleFunc("/projects/{projectId}/members", membershipHandler.AddMember).Methods("POST")
	r.HandleFunc("/projects/{projectId}/members", membershipHandler.ListMembers).Methods("GET")
	r.HandleFunc("/projects/{projectId}/members/{userId}", membershipHandler.RemoveMember).Methods("DELETE")
	r.HandleFunc("/projects/{projectId}/members/{userId}", membershipHandler.ChangeRole).Methods("PUT")

	r.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	r.HandleFunc("/tasks/{taskId}", taskHandler.GetTask).Methods("GET")
	r.HandleFunc("/tasks/{taskId}", taskHandler.UpdateTask).Methods("PUT")
	r.HandleFunc("/projects/{projectId}/tasks", taskHandler.GetTasksByProject).Methods("GET")

	r.HandleFunc("/tasks/{taskId}/comments", commentHandler.AddComment).Methods("POST")
	r.HandleFunc("/tasks/{taskId}/comments", commentHandler.ListComments).Methods("GET")

	r.HandleFunc("/notifications/{userId}", notificationHandler.GetNotifications).Methods("GET")
	r.HandleFunc("/notifications/read", notificationHandler.MarkAsRead).Methods("PUT")

	r.HandleFunc("/projects/{projectId}/attachments", attachmentHandler.Upload).Methods("POST")
	r.HandleFunc("/projects/{projectId}/attachments", attachmentHandler.List).Methods("GET")
	r.HandleFunc("/attachments/{attachmentId}", attachmentHandler.Download).Methods("GET")
	r.HandleFunc("/attachments/{attachmentId}", attachmentHandler.Delete).Methods("DELETE")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Backend is running"))
	}).Methods("GET")

	logging.Logger.Infof("Server is running on port %s", cfg.ServerPort)
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, r))
}
