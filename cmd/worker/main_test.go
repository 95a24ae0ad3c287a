package main

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/alicebob/miniredis/v2"

	"github.com/ghuser/bizdir/pkg/app"
	"github.com/ghuser/bizdir/pkg/cache"
	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/events"
	"github.com/ghuser/bizdir/pkg/logger"
	appsvcs "github.com/ghuser/bizdir/services/menu/application/services"
	menuEvents "github.com/ghuser/bizdir/services/menu/domain/events"
	"github.com/ghuser/bizdir/services/menu/infrastructure/persistence/memory"
)

func TestHandleBucketChanged_WarmsEveryBucket(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	redisClient, err := cache.NewRedisClient(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	a := &app.Application{
		Logger: logger.New(&config.Config{LogLevel: "error", Environment: config.EnvTesting}),
		Redis:  redisClient,
	}
	menu, err := appsvcs.NewMenuService(memory.NewMenuItemRepository(), cache.NewBucketCache(redisClient, time.Minute), a.Logger)
	if err != nil {
		t.Fatalf("NewMenuService: %v", err)
	}
	if _, err := menu.Create(ctx, appsvcs.CreateInput{Bucket: "header", Name: "Home", URL: "/", IsActive: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	msg, err := events.NewMessage(ctx, menuEvents.BucketChangedEvent{
		Version: 1,
		Buckets: []string{"header", "footer", "not-a-bucket"},
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	if err := handleBucketChanged(a, menu)(ctx, msg); err != nil {
		t.Fatalf("handler: %v", err)
	}
	for _, key := range []string{"menu:bucket:header", "menu:bucket:footer"} {
		if !mr.Exists(key) {
			t.Errorf("expected %s to be warmed", key)
		}
	}
}

func TestHandleBucketChanged_UndecodablePayload(t *testing.T) {
	a := &app.Application{Logger: logger.New(&config.Config{LogLevel: "error", Environment: config.EnvTesting})}
	menu, err := appsvcs.NewMenuService(memory.NewMenuItemRepository(), nil, a.Logger)
	if err != nil {
		t.Fatalf("NewMenuService: %v", err)
	}

	msg := message.NewMessage("1", []byte("{not json"))
	if err := handleBucketChanged(a, menu)(context.Background(), msg); err == nil {
		t.Fatal("expected decode error")
	}
}
