package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SchemaRefresher periodically refreshes a SchemaService
type SchemaRefresher struct {
	schemas *SchemaService
	cron    *cron.Cron
	timeout time.Duration
}

// NewSchemaRefresher schedules refreshes with a standard 5 field cron spec
func NewSchemaRefresher(schemas *SchemaService, spec string) (*SchemaRefresher, error) {
	r := &SchemaRefresher{
		schemas: schemas,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		timeout: 30 * time.Second,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return r, nil
}

// Start runs the schedule in the background
func (r *SchemaRefresher) Start() {
	log.Println("⏰ Schema refresher starting...")
	r.cron.Start()
}

// Stop stops the schedule and waits for a running refresh to finish
func (r *SchemaRefresher) Stop() {
	<-r.cron.Stop().Done()
	log.Println("⏰ Schema refresher stopped")
}

func (r *SchemaRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.schemas.Refresh(ctx); err != nil {
		log.Printf("⚠️ Schema refresh failed: %v", err)
	}
}
