package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. Base64 credentials win over a file.
func InitFirebase(ctx context.Context, s *Settings, log *zap.Logger) (*firebase.App, error) {
	if s.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	cfg := &firebase.Config{ProjectID: s.FirebaseProjectID}

	var opt option.ClientOption
	switch {
	case s.FirebaseCredentialsBase64 != "":
		log.Info("using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(s.FirebaseCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode base64 credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	case s.FirebaseCredentialsFile != "":
		if _, err := os.Stat(s.FirebaseCredentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file: %w", err)
		}
		log.Info("using Firebase credentials file", zap.String("path", s.FirebaseCredentialsFile))
		opt = option.WithCredentialsFile(s.FirebaseCredentialsFile)
	}

	var (
		app *firebase.App
		err error
	)
	if opt != nil {
		app, err = firebase.NewApp(ctx, cfg, opt)
	} else {
		// application default credentials, or the emulator when FIRESTORE_EMULATOR_HOST is set
		app, err = firebase.NewApp(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}
