package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"tadreeb/internal/app"
	"tadreeb/internal/config"

	"github.com/google/uuid"
)

func main() {
	course := flag.String("course", "", "sync a single course id instead of the full unsynced set")
	user := flag.String("user", "", "replace the NEEDS edges for one user id")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch {
	case strings.TrimSpace(*course) != "":
		id, err := uuid.Parse(strings.TrimSpace(*course))
		if err != nil {
			log.Fatalf("invalid -course id: %v", err)
		}
		if err := c.GraphSync.SyncCourse(ctx, id); err != nil {
			log.Fatalf("course sync failed: %v", err)
		}
		log.Printf("course %s synced", id)

	case strings.TrimSpace(*user) != "":
		id, err := uuid.Parse(strings.TrimSpace(*user))
		if err != nil {
			log.Fatalf("invalid -user id: %v", err)
		}
		if err := c.GraphSync.SyncUserNeeds(ctx, id); err != nil {
			log.Fatalf("needs sync failed: %v", err)
		}
		log.Printf("needs for user %s replaced", id)

	default:
		report, err := c.GraphSync.SyncAllCourses(ctx)
		if err != nil {
			log.Fatalf("bulk sync failed after %d courses: %v", report.Total, err)
		}
		log.Printf("bulk sync done: total=%d synced=%d failed=%d", report.Total, report.Synced, report.Failed)
	}
}
