package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/narrative-weaver/config"
	"github.com/oksasatya/narrative-weaver/internal/container"
	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
)

var demoEntries = []struct {
	daysAgo int
	feeling string
	text    string
}{
	{6, "Anxious", "Big presentation tomorrow. Rehearsed twice and still feel like I'll forget everything."},
	{5, "Relieved", "The presentation went fine. Nobody noticed my hands shaking, or they were kind enough not to say."},
	{3, "Tired", "Slept badly. Dreamt I was late for a train that kept leaving from a different platform."},
	{1, "Happy", "Long walk by the river with Sam. We talked about moving somewhere quieter."},
	{0, "", "Quiet day. Cleaned the flat and read on the balcony."},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer c.Close(context.Background())

	email := "demo@narrativeweaver.local"
	password := "password123"
	name := "Demo User"

	user, err := c.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, err := helpers.HashPassword(password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		now := time.Now().UTC()
		user = &entity.User{ID: uuid.NewString(), Name: name, Email: email, Password: hash, CreatedAt: now, UpdatedAt: now}
		if err := c.Users.Create(ctx, user); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
	case err != nil:
		log.Fatalf("failed to look up user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", user.ID, email, user.Name, password)

	// Entries are replaced on every run
	if _, err := c.Entries.DeleteByOwner(ctx, user.ID); err != nil {
		log.Fatalf("failed to clear entries: %v", err)
	}
	now := time.Now().UTC()
	for _, d := range demoEntries {
		at := now.AddDate(0, 0, -d.daysAgo)
		e := &entity.DiaryEntry{
			ID:        uuid.NewString(),
			OwnerID:   user.ID,
			Text:      d.text,
			Feeling:   d.feeling,
			CreatedAt: at,
			UpdatedAt: at,
		}
		if err := c.Entries.Create(ctx, e); err != nil {
			log.Fatalf("failed to seed entry: %v", err)
		}
		if c.Index != nil {
			_ = c.Index.Put(ctx, e)
		}
	}
	fmt.Printf("seeded %d entries\n", len(demoEntries))
}
