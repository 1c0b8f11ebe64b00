package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/services"
)

var demoChain = []struct {
	name  string
	email string
}{
	{"Demo Admin", "admin@lexora.demo"},
	{"Demo Regional Director", "rd@lexora.demo"},
	{"Demo Head Group Manager", "hgm@lexora.demo"},
	{"Demo Group Operation Manager", "gom@lexora.demo"},
	{"Demo Team Operation Manager", "tom@lexora.demo"},
	{"Demo Salesman", "salesman@lexora.demo"},
}

func runSeed(ctx context.Context, storeOverride, password string) error {
	settings, log, err := loadSettings(storeOverride)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, closeStore, err := openStore(ctx, settings, log)
	if err != nil {
		return err
	}
	defer closeStore()

	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return errors.New("store already has users, seed only runs on an empty store")
	}

	auth := services.NewAuthService(store, log, settings.JWTSecret, settings.JWTLifetime, nil)
	referrer := ""
	for _, member := range demoChain {
		resp, err := auth.Signup(ctx, models.SignupRequest{
			FullName:   member.name,
			Email:      member.email,
			Password:   password,
			ReferrerID: referrer,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", member.email, err)
		}
		log.Info("seeded user",
			zap.String("id", resp.User.ID),
			zap.String("email", resp.User.Email),
			zap.String("role", string(resp.User.Role)),
		)
		referrer = resp.User.ID
	}
	return nil
}
