// Package preferences holds the user's display toggles. They are read from
// storage once when the service is created and kept in memory afterwards.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"thoughtburn/internal/storage"
)

// Storage keys, shared with data written by earlier clients.
const (
	KeyReduceMotion = "reduceMotion"
	KeySoundEnabled = "soundEnabled"
)

var ErrInvalidPatch = errors.New("preferences: invalid patch")

// Preferences are the UI toggles.
type Preferences struct {
	ReduceMotion bool `json:"reduceMotion" yaml:"reduceMotion"`
	SoundEnabled bool `json:"soundEnabled" yaml:"soundEnabled"`
}

// Defaults returns the preferences used when nothing valid is stored.
func Defaults() Preferences {
	return Preferences{ReduceMotion: false, SoundEnabled: true}
}

// Patch changes a subset of the preferences. Nil fields are left as they are.
type Patch struct {
	ReduceMotion *bool `json:"reduceMotion" validate:"required_without=SoundEnabled"`
	SoundEnabled *bool `json:"soundEnabled" validate:"required_without=ReduceMotion"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service serves the current preferences and persists updates.
type Service struct {
	provider storage.Provider
	logger   *slog.Logger

	mu      sync.RWMutex
	current Preferences
}

// NewService loads the stored preferences. Missing or unreadable values fall
// back to their defaults and are logged; creating the service never fails.
func NewService(ctx context.Context, provider storage.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		provider: provider,
		logger:   logger.With(slog.String("component", "preferences")),
	}

	defaults := Defaults()
	s.current = Preferences{
		ReduceMotion: s.loadBool(ctx, KeyReduceMotion, defaults.ReduceMotion),
		SoundEnabled: s.loadBool(ctx, KeySoundEnabled, defaults.SoundEnabled),
	}
	return s
}

// Current returns the preferences held by the service.
func (s *Service) Current() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and persists patch, then replaces the held preferences.
// When a write fails the held value keeps whatever was persisted before it.
func (s *Service) Update(ctx context.Context, patch Patch) (Preferences, error) {
	if err := validate.Struct(patch); err != nil {
		return s.Current(), fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.ReduceMotion != nil {
		if err := s.provider.Set(ctx, KeyReduceMotion, strconv.FormatBool(*patch.ReduceMotion)); err != nil {
			return s.current, fmt.Errorf("save %s: %w", KeyReduceMotion, err)
		}
		s.current.ReduceMotion = *patch.ReduceMotion
	}
	if patch.SoundEnabled != nil {
		if err := s.provider.Set(ctx, KeySoundEnabled, strconv.FormatBool(*patch.SoundEnabled)); err != nil {
			return s.current, fmt.Errorf("save %s: %w", KeySoundEnabled, err)
		}
		s.current.SoundEnabled = *patch.SoundEnabled
	}

	s.logger.Info("Preferences updated",
		slog.Bool("reduce_motion", s.current.ReduceMotion),
		slog.Bool("sound_enabled", s.current.SoundEnabled))
	return s.current, nil
}

func (s *Service) loadBool(ctx context.Context, key string, fallback bool) bool {
	raw, found, err := s.provider.Get(ctx, key)
	if err != nil {
		s.logger.Error("Failed to load preference, using default",
			slog.String("key", key),
			slog.Any("error", err))
		return fallback
	}
	if !found || raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.logger.Warn("Ignoring malformed preference",
			slog.String("key", key),
			slog.String("value", raw))
		return fallback
	}
	return v
}
