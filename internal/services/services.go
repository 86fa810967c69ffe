package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/billing"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/identity"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/pipeline"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/redis"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/services/session"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	billingService  *billing.Service
	identityService *identity.Service
	pipelineService *pipeline.Service
	redisService    *redis.Service
	sessionService  *session.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Redis is optional; the session store falls back to memory without it
	redisService := redis.NewService()

	// Identity is required: without it no session can be established
	identityService := identity.NewService()
	if identityService == nil {
		return nil, fmt.Errorf("identity service not configured - set IDENTITY_BASE_URL")
	}

	// Pipeline and billing power the dashboard widgets
	pipelineService := pipeline.NewService()
	if pipelineService == nil {
		return nil, fmt.Errorf("pipeline service not configured - set PIPELINE_BASE_URL")
	}

	billingService := billing.NewService()
	if billingService == nil {
		log.Warn().Msg("Billing service not configured - credit balance widget will be unavailable")
	}

	sessionService := session.NewService(redisService, identityService)
	log.Info().Msg("Session lifecycle manager initialized")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		billingService:  billingService,
		identityService: identityService,
		pipelineService: pipelineService,
		redisService:    redisService,
		sessionService:  sessionService,
	}, nil
}

// GetSessionService returns the session lifecycle manager
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetPipelineService returns the document-processing client
func (s *Services) GetPipelineService() *pipeline.Service {
	return s.pipelineService
}

// GetBillingService returns the credits client, possibly nil
func (s *Services) GetBillingService() *billing.Service {
	return s.billingService
}

// GetRedisService returns the Redis client, possibly nil
func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}

// Close releases any held connections
func (s *Services) Close() {
	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
