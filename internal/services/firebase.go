// ===============================
// internal/services/firebase.go - Centralized Firebase Service
// ===============================

package services

import (
	"context"
	"fmt"

	"github.com/Randomizando3/DramaBoxV2/internal/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// TokenVerifier checks Firebase ID tokens
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseService struct {
	app        *firebase.App
	authClient *auth.Client
}

// NewFirebaseService creates and initializes a new Firebase service
func NewFirebaseService(cfg *config.Config) (*FirebaseService, error) {
	var opts []option.ClientOption
	if cfg.Firebase.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.Credentials))
	}

	fbConfig := &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}
	if !cfg.UsesMemoryDatabase() {
		fbConfig.DatabaseURL = cfg.Firebase.DatabaseURL
	}

	firebaseApp, err := firebase.NewApp(context.Background(), fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %w", err)
	}

	return &FirebaseService{
		app:        firebaseApp,
		authClient: authClient,
	}, nil
}

// VerifyIDToken verifies a Firebase ID token and returns the token claims
func (fs *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return fs.authClient.VerifyIDToken(ctx, idToken)
}

// Database opens the Realtime Database client
func (fs *FirebaseService) Database(ctx context.Context) (*db.Client, error) {
	client, err := fs.app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}
	return client, nil
}

// Storage opens the Cloud Storage client for the project's bucket
func (fs *FirebaseService) Storage(ctx context.Context) (*storage.Client, error) {
	client, err := fs.app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %w", err)
	}
	return client, nil
}
