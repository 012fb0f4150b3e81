package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/campus-coordinator/internal/application"
	"github.com/example/campus-coordinator/internal/config"
	httptransport "github.com/example/campus-coordinator/internal/http"
	"github.com/example/campus-coordinator/internal/notify"
	"github.com/example/campus-coordinator/internal/persistence"
	"github.com/example/campus-coordinator/internal/persistence/sqlite"
	"github.com/example/campus-coordinator/internal/workflow"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	eventRepo := newEventRepositoryAdapter(sqlite.NewEventRepository(pool))
	venueRepo := newVenueRepositoryAdapter(sqlite.NewVenueRepository(pool))
	resourceRepo := newResourceRepositoryAdapter(sqlite.NewResourceRepository(pool))

	var notifier application.Notifier
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect notification broker", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := publisher.Close(); cerr != nil {
				logger.Error("failed to close notification broker", "error", cerr)
			}
		}()
		notifier = publisher
	}

	eventService := application.NewEventServiceWithLogger(eventRepo, venueRepo, resourceRepo, notifier, idGenerator, now, logger)
	venueService := application.NewVenueServiceWithLogger(venueRepo, eventRepo, idGenerator, now, logger)
	resourceService := application.NewResourceServiceWithLogger(resourceRepo, eventRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Events:    httptransport.NewEventHandler(eventService, logger),
		Venues:    httptransport.NewVenueHandler(venueService, eventService, logger),
		Resources: httptransport.NewResourceHandler(resourceService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireActor(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("coordinator API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) error {
	return a.repo.CreateEvent(ctx, toPersistenceEvent(event))
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	stored, err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event))
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, filter application.EventRepositoryFilter) ([]application.Event, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}
	models, err := a.repo.ListEvents(ctx, persistence.EventFilter{
		VenueID:     filter.VenueID,
		RequesterID: filter.RequesterID,
		Department:  filter.Department,
		School:      filter.School,
		Statuses:    statuses,
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

type venueRepositoryAdapter struct {
	repo persistence.VenueRepository
}

func newVenueRepositoryAdapter(repo persistence.VenueRepository) *venueRepositoryAdapter {
	return &venueRepositoryAdapter{repo: repo}
}

func (a *venueRepositoryAdapter) CreateVenue(ctx context.Context, venue application.Venue) error {
	return a.repo.CreateVenue(ctx, toPersistenceVenue(venue))
}

func (a *venueRepositoryAdapter) GetVenue(ctx context.Context, id string) (application.Venue, error) {
	stored, err := a.repo.GetVenue(ctx, id)
	if err != nil {
		return application.Venue{}, err
	}
	return toApplicationVenue(stored), nil
}

func (a *venueRepositoryAdapter) UpdateVenue(ctx context.Context, venue application.Venue) error {
	return a.repo.UpdateVenue(ctx, toPersistenceVenue(venue))
}

func (a *venueRepositoryAdapter) ListVenues(ctx context.Context) ([]application.Venue, error) {
	models, err := a.repo.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	venues := make([]application.Venue, 0, len(models))
	for _, model := range models {
		venues = append(venues, toApplicationVenue(model))
	}
	return venues, nil
}

type resourceRepositoryAdapter struct {
	repo persistence.ResourceRepository
}

func newResourceRepositoryAdapter(repo persistence.ResourceRepository) *resourceRepositoryAdapter {
	return &resourceRepositoryAdapter{repo: repo}
}

func (a *resourceRepositoryAdapter) CreateResource(ctx context.Context, resource application.Resource) error {
	return a.repo.CreateResource(ctx, toPersistenceResource(resource))
}

func (a *resourceRepositoryAdapter) GetResource(ctx context.Context, id string) (application.Resource, error) {
	stored, err := a.repo.GetResource(ctx, id)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

func (a *resourceRepositoryAdapter) UpdateResource(ctx context.Context, resource application.Resource) error {
	return a.repo.UpdateResource(ctx, toPersistenceResource(resource))
}

func (a *resourceRepositoryAdapter) ListResources(ctx context.Context) ([]application.Resource, error) {
	models, err := a.repo.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	resources := make([]application.Resource, 0, len(models))
	for _, model := range models {
		resources = append(resources, toApplicationResource(model))
	}
	return resources, nil
}

func toApplicationEvent(model persistence.Event) application.Event {
	return application.Event{
		ID:          model.ID,
		Title:       model.Title,
		Type:        model.Type,
		Description: cloneString(model.Description),
		Start:       model.Start,
		End:         model.End,
		VenueID:     cloneString(model.VenueID),
		VenuePreference: application.VenuePreference{
			VenueID:           model.VenuePreference.VenueID,
			Type:              model.VenuePreference.Type,
			MinCapacity:       model.VenuePreference.MinCapacity,
			PreferredFeatures: append([]string(nil), model.VenuePreference.PreferredFeatures...),
		},
		ParticipantCount:     model.ParticipantCount,
		MandatoryResources:   toApplicationAllocations(model.MandatoryResources),
		OptionalResources:    toApplicationAllocations(model.OptionalResources),
		Status:               workflow.Status(model.Status),
		ExecutionState:       workflow.ExecutionState(model.ExecutionState),
		RequesterRole:        workflow.Role(model.RequesterRole),
		RequesterID:          model.RequesterID,
		Department:           model.Department,
		School:               model.School,
		RejectionReason:      cloneString(model.RejectionReason),
		ApprovalChain:        toApplicationChain(model.ApprovalChain),
		ModificationRequests: toApplicationModifications(model.ModificationRequests),
		IsModifiable:         model.IsModifiable,
		ConflictAcknowledged: model.ConflictAcknowledged,
		MarkedStartAt:        cloneTime(model.MarkedStartAt),
		MarkedCompleteAt:     cloneTime(model.MarkedCompleteAt),
		VenueReleasedAt:      cloneTime(model.VenueReleasedAt),
		ResourcesReleasedAt:  cloneTime(model.ResourcesReleasedAt),
		PostEventSummary:     cloneString(model.PostEventSummary),
		ActualParticipants:   cloneInt(model.ActualParticipants),
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
		Version:              model.Version,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:          event.ID,
		Title:       event.Title,
		Type:        event.Type,
		Description: cloneString(event.Description),
		Start:       event.Start,
		End:         event.End,
		VenueID:     cloneString(event.VenueID),
		VenuePreference: persistence.VenuePreference{
			VenueID:           event.VenuePreference.VenueID,
			Type:              event.VenuePreference.Type,
			MinCapacity:       event.VenuePreference.MinCapacity,
			PreferredFeatures: append([]string(nil), event.VenuePreference.PreferredFeatures...),
		},
		ParticipantCount:     event.ParticipantCount,
		MandatoryResources:   toPersistenceAllocations(event.MandatoryResources),
		OptionalResources:    toPersistenceAllocations(event.OptionalResources),
		Status:               string(event.Status),
		ExecutionState:       string(event.ExecutionState),
		RequesterRole:        string(event.RequesterRole),
		RequesterID:          event.RequesterID,
		Department:           event.Department,
		School:               event.School,
		RejectionReason:      cloneString(event.RejectionReason),
		ApprovalChain:        toPersistenceChain(event.ApprovalChain),
		ModificationRequests: toPersistenceModifications(event.ModificationRequests),
		IsModifiable:         event.IsModifiable,
		ConflictAcknowledged: event.ConflictAcknowledged,
		MarkedStartAt:        cloneTime(event.MarkedStartAt),
		MarkedCompleteAt:     cloneTime(event.MarkedCompleteAt),
		VenueReleasedAt:      cloneTime(event.VenueReleasedAt),
		ResourcesReleasedAt:  cloneTime(event.ResourcesReleasedAt),
		PostEventSummary:     cloneString(event.PostEventSummary),
		ActualParticipants:   cloneInt(event.ActualParticipants),
		CreatedAt:            event.CreatedAt,
		UpdatedAt:            event.UpdatedAt,
		Version:              event.Version,
	}
}

func toApplicationAllocations(models []persistence.Allocation) []application.Allocation {
	if len(models) == 0 {
		return nil
	}
	allocations := make([]application.Allocation, 0, len(models))
	for _, model := range models {
		allocations = append(allocations, application.Allocation{
			ResourceID: model.ResourceID,
			Name:       model.Name,
			Count:      model.Count,
			Priority:   model.Priority,
		})
	}
	return allocations
}

func toPersistenceAllocations(allocations []application.Allocation) []persistence.Allocation {
	if len(allocations) == 0 {
		return nil
	}
	models := make([]persistence.Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		models = append(models, persistence.Allocation{
			ResourceID: allocation.ResourceID,
			Name:       allocation.Name,
			Count:      allocation.Count,
			Priority:   allocation.Priority,
		})
	}
	return models
}

func toApplicationChain(models []persistence.ChainEntry) []application.ChainEntry {
	if len(models) == 0 {
		return nil
	}
	chain := make([]application.ChainEntry, 0, len(models))
	for _, model := range models {
		chain = append(chain, application.ChainEntry{
			Role:      workflow.Role(model.Role),
			Action:    workflow.Action(model.Action),
			ActorID:   model.ActorID,
			Override:  model.Override,
			Notes:     model.Notes,
			Timestamp: model.Timestamp,
		})
	}
	return chain
}

func toPersistenceChain(chain []application.ChainEntry) []persistence.ChainEntry {
	if len(chain) == 0 {
		return nil
	}
	models := make([]persistence.ChainEntry, 0, len(chain))
	for _, entry := range chain {
		models = append(models, persistence.ChainEntry{
			Role:      string(entry.Role),
			Action:    string(entry.Action),
			ActorID:   entry.ActorID,
			Override:  entry.Override,
			Notes:     entry.Notes,
			Timestamp: entry.Timestamp,
		})
	}
	return models
}

func toApplicationModifications(models []persistence.ModificationRequest) []application.ModificationRequest {
	if len(models) == 0 {
		return nil
	}
	requests := make([]application.ModificationRequest, 0, len(models))
	for _, model := range models {
		requests = append(requests, application.ModificationRequest{
			RequestedBy: workflow.Role(model.RequestedBy),
			ActorID:     model.ActorID,
			Notes:       model.Notes,
			Timestamp:   model.Timestamp,
		})
	}
	return requests
}

func toPersistenceModifications(requests []application.ModificationRequest) []persistence.ModificationRequest {
	if len(requests) == 0 {
		return nil
	}
	models := make([]persistence.ModificationRequest, 0, len(requests))
	for _, request := range requests {
		models = append(models, persistence.ModificationRequest{
			RequestedBy: string(request.RequestedBy),
			ActorID:     request.ActorID,
			Notes:       request.Notes,
			Timestamp:   request.Timestamp,
		})
	}
	return models
}

func toApplicationVenue(model persistence.Venue) application.Venue {
	return application.Venue{
		ID:        model.ID,
		Name:      model.Name,
		Type:      model.Type,
		Capacity:  model.Capacity,
		Features:  append([]string(nil), model.Features...),
		Location:  cloneString(model.Location),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceVenue(venue application.Venue) persistence.Venue {
	return persistence.Venue{
		ID:        venue.ID,
		Name:      venue.Name,
		Type:      venue.Type,
		Capacity:  venue.Capacity,
		Features:  append([]string(nil), venue.Features...),
		Location:  cloneString(venue.Location),
		CreatedAt: venue.CreatedAt,
		UpdatedAt: venue.UpdatedAt,
	}
}

func toApplicationResource(model persistence.Resource) application.Resource {
	return application.Resource{
		ID:                model.ID,
		Name:              model.Name,
		Type:              model.Type,
		TotalCapacity:     model.TotalCapacity,
		Description:       cloneString(model.Description),
		MaintenanceStatus: model.MaintenanceStatus,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func toPersistenceResource(resource application.Resource) persistence.Resource {
	return persistence.Resource{
		ID:                resource.ID,
		Name:              resource.Name,
		Type:              resource.Type,
		TotalCapacity:     resource.TotalCapacity,
		Description:       cloneString(resource.Description),
		MaintenanceStatus: resource.MaintenanceStatus,
		CreatedAt:         resource.CreatedAt,
		UpdatedAt:         resource.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
