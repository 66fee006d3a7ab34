package authz

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/sirupsen/logrus"
)

// Service provides helpers for enforcing authorization decisions.
type Service struct {
	cfg          Config
	enforcer     *casbin.Enforcer
	logger       *logrus.Entry
	flagProvider FlagProvider
	mu           sync.RWMutex
}

// NewService constructs a Service with the provided config.
func NewService(cfg Config) (*Service, error) {
	cfg = cfg.normalized()

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "authz")
	} else {
		logger = logrus.WithField("component", "authz")
	}

	enf, err := newEnforcer()
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:          cfg,
		enforcer:     enf,
		logger:       logger,
		flagProvider: cfg.FlagProvider,
	}, nil
}

// Authorize returns an error if the request is denied.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	mode := s.flagProvider.Mode()
	if mode == ModeDisabled {
		return nil
	}
	allowed, err := s.Check(ctx, req)
	if err != nil {
		return err
	}
	recordDecision(mode, allowed)
	if allowed {
		return nil
	}
	fields := logrus.Fields{
		"subject": req.Subject,
		"object":  req.Object,
		"action":  req.Action,
		"mode":    mode,
	}
	if mode == ModeShadow {
		s.logger.WithContext(ctx).WithFields(fields).Warn("authz shadow deny")
		return nil
	}
	s.logger.WithContext(ctx).WithFields(fields).Warn("authz denied request")
	return forbiddenError(req)
}

// Check evaluates a request without returning an authorization error.
func (s *Service) Check(ctx context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.enforcer.Enforce(req.Subject, req.Object, req.Action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	return res, nil
}

// Mode returns the current enforcement mode.
func (s *Service) Mode() Mode {
	return s.flagProvider.Mode()
}

var (
	defaultServiceOnce sync.Once
	defaultService     *Service
	defaultServiceErr  error
)

// Use returns a singleton Service configured via environment variables.
func Use() *Service {
	defaultServiceOnce.Do(func() {
		defaultService, defaultServiceErr = NewService(DefaultConfig())
	})
	if defaultServiceErr != nil {
		panic(defaultServiceErr)
	}
	return defaultService
}
