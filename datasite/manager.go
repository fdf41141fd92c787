// api/datasite/manager.go
package datasite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/store"
)

// Manager organizes the datasite: private content lives in the byte store,
// while discoverable YAML metadata records live under public/metadata.
type Manager struct {
	mu         sync.RWMutex
	datasets   map[string]model.DatasetMetadata
	fs         afero.Fs
	path       string
	ownerEmail string
	content    store.ByteStore
	now        func() time.Time
}

// NewManager sets up the datasite directory structure and loads any
// existing dataset metadata.
func NewManager(fs afero.Fs, path, ownerEmail string, content store.ByteStore) (*Manager, error) {
	m := &Manager{
		datasets:   make(map[string]model.DatasetMetadata),
		fs:         fs,
		path:       path,
		ownerEmail: ownerEmail,
		content:    content,
		now:        time.Now,
	}

	directories := []string{
		filepath.Join(path, "private", "content"),
		filepath.Join(path, "private", "datasets"),
		filepath.Join(path, "public", "results"),
		filepath.Join(path, "public", "metadata"),
	}
	for _, dir := range directories {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create datasite directory %s: %w", dir, err)
		}
	}

	if err := m.loadMetadata(); err != nil {
		return nil, err
	}
	logger.Info("Datasite manager initialized",
		zap.String("path", path),
		zap.Int("datasets", len(m.datasets)))
	return m, nil
}

func (m *Manager) metadataDir() string {
	return filepath.Join(m.path, "public", "metadata")
}

func (m *Manager) loadMetadata() error {
	entries, err := afero.ReadDir(m.fs, m.metadataDir())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.datasets = make(map[string]model.DatasetMetadata)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := afero.ReadFile(m.fs, filepath.Join(m.metadataDir(), entry.Name()))
		if err != nil {
			logger.Warn("Failed to read dataset metadata",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		var meta model.DatasetMetadata
		if err := yaml.Unmarshal(data, &meta); err != nil {
			logger.Warn("Failed to parse dataset metadata",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		m.datasets[meta.Name] = meta
	}
	return nil
}

// AddContent stores the bytes and publishes a metadata record for discovery.
func (m *Manager) AddContent(ctx context.Context, name string, content []byte, contentType, description string, tags []string) (model.DatasetMetadata, error) {
	if name == "" {
		return model.DatasetMetadata{}, fmt.Errorf("%w: dataset name must not be empty", gate_errors.ErrInvalidRequestData)
	}
	if tags == nil {
		tags = []string{}
	}

	if err := m.content.Put(ctx, name, content); err != nil {
		return model.DatasetMetadata{}, fmt.Errorf("failed to store content %s: %w", name, err)
	}

	meta := model.DatasetMetadata{
		Name:        name,
		Description: description,
		ContentType: contentType,
		Size:        len(content),
		CreatedAt:   m.now(),
		Tags:        tags,
		AccessLevel: "private",
		OwnerEmail:  m.ownerEmail,
	}
	if err := m.saveMetadata(meta); err != nil {
		return model.DatasetMetadata{}, err
	}

	m.mu.Lock()
	m.datasets[name] = meta
	m.mu.Unlock()

	logger.Info("Added dataset content", zap.String("name", name), zap.Int("size", meta.Size))
	return meta, nil
}

func (m *Manager) saveMetadata(meta model.DatasetMetadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for %s: %w", meta.Name, err)
	}
	path := filepath.Join(m.metadataDir(), meta.Name+".yaml")
	if err := afero.WriteFile(m.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", path, err)
	}
	return nil
}

// GetContent retrieves the raw bytes for a dataset.
func (m *Manager) GetContent(ctx context.Context, name string) ([]byte, error) {
	return m.content.Get(ctx, name)
}

// ListDatasets returns a snapshot of the known dataset metadata.
func (m *Manager) ListDatasets() []model.DatasetMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.DatasetMetadata, 0, len(m.datasets))
	for _, meta := range m.datasets {
		out = append(out, meta)
	}
	return out
}

// RemoveContent deletes a dataset's bytes and metadata record.
func (m *Manager) RemoveContent(ctx context.Context, name string) error {
	if err := m.content.Delete(ctx, name); err != nil {
		return err
	}
	metaPath := filepath.Join(m.metadataDir(), name+".yaml")
	if exists, _ := afero.Exists(m.fs, metaPath); exists {
		if err := m.fs.Remove(metaPath); err != nil {
			return err
		}
	}

	m.mu.Lock()
	delete(m.datasets, name)
	m.mu.Unlock()

	logger.Info("Removed dataset content", zap.String("name", name))
	return nil
}

// CleanupOrphans drops metadata records whose content is gone from the byte
// store and returns how many were removed.
func (m *Manager) CleanupOrphans(ctx context.Context) int {
	m.mu.RLock()
	names := make([]string, 0, len(m.datasets))
	for name := range m.datasets {
		names = append(names, name)
	}
	m.mu.RUnlock()

	var removed int
	for _, name := range names {
		if _, err := m.content.Get(ctx, name); !errors.Is(err, gate_errors.ErrContentNotFound) {
			continue
		}
		metaPath := filepath.Join(m.metadataDir(), name+".yaml")
		if err := m.fs.Remove(metaPath); err != nil {
			logger.Warn("Failed to remove orphaned metadata",
				zap.String("name", name), zap.Error(err))
			continue
		}
		m.mu.Lock()
		delete(m.datasets, name)
		m.mu.Unlock()
		removed++
		logger.Info("Removed orphaned dataset metadata", zap.String("name", name))
	}
	return removed
}

// RunMaintenance reloads metadata periodically and evicts orphaned records.
// It runs until the context is cancelled.
func (m *Manager) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.loadMetadata(); err != nil {
				logger.Error("Datasite maintenance failed", zap.Error(err))
				continue
			}
			m.CleanupOrphans(ctx)
		case <-ctx.Done():
			logger.Info("Datasite maintenance stopped")
			return
		}
	}
}
