package preferences_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoughtburn/internal/preferences"
	"thoughtburn/internal/storage"
	"thoughtburn/internal/testsupport"
)

type failingProvider struct {
	storage.Provider
	getErr error
	setErr error
}

func (p *failingProvider) Get(ctx context.Context, key string) (string, bool, error) {
	if p.getErr != nil {
		return "", false, p.getErr
	}
	return p.Provider.Get(ctx, key)
}

func (p *failingProvider) Set(ctx context.Context, key, value string) error {
	if p.setErr != nil {
		return p.setErr
	}
	return p.Provider.Set(ctx, key, value)
}

func boolPtr(b bool) *bool { return &b }

func TestNewService(t *testing.T) {
	ctx := context.Background()
	logger := testsupport.GetLogger()

	t.Run("defaults when nothing is stored", func(t *testing.T) {
		svc := preferences.NewService(ctx, storage.NewMemoryProvider(), logger)
		assert.Equal(t, preferences.Defaults(), svc.Current())
		assert.True(t, svc.Current().SoundEnabled)
		assert.False(t, svc.Current().ReduceMotion)
	})

	t.Run("loads stored values", func(t *testing.T) {
		p := storage.NewMemoryProvider()
		require.NoError(t, p.Set(ctx, preferences.KeyReduceMotion, "true"))
		require.NoError(t, p.Set(ctx, preferences.KeySoundEnabled, "false"))

		svc := preferences.NewService(ctx, p, logger)
		assert.Equal(t, preferences.Preferences{ReduceMotion: true, SoundEnabled: false}, svc.Current())
	})

	t.Run("malformed values fall back per key", func(t *testing.T) {
		p := storage.NewMemoryProvider()
		require.NoError(t, p.Set(ctx, preferences.KeyReduceMotion, "true"))
		require.NoError(t, p.Set(ctx, preferences.KeySoundEnabled, "loud"))

		svc := preferences.NewService(ctx, p, logger)
		assert.Equal(t, preferences.Preferences{ReduceMotion: true, SoundEnabled: true}, svc.Current())
	})

	t.Run("read failures fall back to defaults", func(t *testing.T) {
		p := &failingProvider{Provider: storage.NewMemoryProvider(), getErr: errors.New("unavailable")}

		svc := preferences.NewService(ctx, p, logger)
		assert.Equal(t, preferences.Defaults(), svc.Current())
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	logger := testsupport.GetLogger()

	t.Run("persists and holds a partial update", func(t *testing.T) {
		p := storage.NewMemoryProvider()
		svc := preferences.NewService(ctx, p, logger)

		got, err := svc.Update(ctx, preferences.Patch{ReduceMotion: boolPtr(true)})
		require.NoError(t, err)

		want := preferences.Preferences{ReduceMotion: true, SoundEnabled: true}
		assert.Equal(t, want, got)
		assert.Equal(t, want, svc.Current())

		raw, found, err := p.Get(ctx, preferences.KeyReduceMotion)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "true", raw)
		_, found, _ = p.Get(ctx, preferences.KeySoundEnabled)
		assert.False(t, found, "untouched keys are not written")
	})

	t.Run("survives a reload", func(t *testing.T) {
		p := storage.NewMemoryProvider()
		svc := preferences.NewService(ctx, p, logger)
		_, err := svc.Update(ctx, preferences.Patch{SoundEnabled: boolPtr(false), ReduceMotion: boolPtr(true)})
		require.NoError(t, err)

		reloaded := preferences.NewService(ctx, p, logger)
		assert.Equal(t, preferences.Preferences{ReduceMotion: true, SoundEnabled: false}, reloaded.Current())
	})

	t.Run("rejects an empty patch", func(t *testing.T) {
		svc := preferences.NewService(ctx, storage.NewMemoryProvider(), logger)

		got, err := svc.Update(ctx, preferences.Patch{})
		assert.ErrorIs(t, err, preferences.ErrInvalidPatch)
		assert.Equal(t, preferences.Defaults(), got)
	})

	t.Run("write failure keeps the held value", func(t *testing.T) {
		p := &failingProvider{Provider: storage.NewMemoryProvider()}
		svc := preferences.NewService(ctx, p, logger)
		p.setErr = errors.New("read-only")

		_, err := svc.Update(ctx, preferences.Patch{SoundEnabled: boolPtr(false)})
		require.Error(t, err)
		assert.Equal(t, preferences.Defaults(), svc.Current())
	})
}
