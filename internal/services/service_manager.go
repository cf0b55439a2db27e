package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/examflow-ng/paper-service/internal/ai"
	"github.com/examflow-ng/paper-service/internal/events"
	"github.com/examflow-ng/paper-service/internal/repositories"
	"github.com/examflow-ng/paper-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AutosaveDelay time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	provider  ai.Provider
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	authService         AuthService
	paperService        PaperService
	aiService           AIService
	userService         UserService
	questionBankService QuestionBankService
	schoolService       SchoolService
	dashboardService    DashboardService
	importExportService ImportExportService
	autosave            *AutosaveManager

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, provider ai.Provider, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.logger, sm.validator, sm.config.JWTSecret, sm.config.TokenTTL)
	sm.paperService = NewPaperService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.aiService = NewAIService(sm.repo, sm.provider, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.questionBankService = NewQuestionBankService(sm.repo, sm.logger, sm.validator)
	sm.schoolService = NewSchoolService(sm.repo, sm.logger, sm.validator)
	sm.dashboardService = NewDashboardService(sm.repo, sm.logger)
	sm.importExportService = NewImportExportService(sm.repo, sm.userService, sm.logger, sm.validator)
	sm.autosave = NewAutosaveManager(sm.paperService, sm.logger, sm.config.AutosaveDelay)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Paper() PaperService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.paperService
}

func (sm *serviceManager) AI() AIService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.aiService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) QuestionBank() QuestionBankService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.questionBankService
}

func (sm *serviceManager) School() SchoolService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.schoolService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.importExportService
}

// Autosave returns the debounce manager for editor writes.
func (sm *serviceManager) Autosave() *AutosaveManager {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.autosave
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.autosave != nil {
		sm.autosave.Stop(ctx)
	}
	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}
	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
