package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"github.com/labstack/gommon/log"
	"google.golang.org/api/option"
)

const (
	CollectionCommitments = "commitments"
	CollectionCompanies   = "companies"
	CollectionPayments    = "payments"
)

// App bundles the Firebase services the API talks to.
type App struct {
	app       *fb.App
	Firestore *firestore.Client
}

// NewApp initializes Firebase from a service account file. An empty
// projectID lets the SDK read it from the credentials.
func NewApp(ctx context.Context, credentialsFile, projectID string) (*App, error) {
	var conf *fb.Config
	if projectID != "" {
		conf = &fb.Config{ProjectID: projectID}
	}

	app, err := fb.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	log.Info("Firebase initialized successfully")
	return &App{app: app, Firestore: client}, nil
}

func (a *App) Close() error {
	return a.Firestore.Close()
}
