package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidbz/cinder/internal/domain"
)

// Registry implements the ClientRegistry interface.
type Registry struct {
	mu            sync.RWMutex
	clients       map[string]domain.ModelClient
	modelToClient map[string]string
}

// NewRegistry creates a new client registry.
func NewRegistry() *Registry {
	return &Registry{
		clients:       make(map[string]domain.ModelClient),
		modelToClient: make(map[string]string),
	}
}

// Register adds a client to the registry.
func (r *Registry) Register(ctx context.Context, client domain.ModelClient) error {
	if client == nil {
		return errors.New("client cannot be nil")
	}

	name := client.Name()
	if name == "" {
		return errors.New("client name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[name]; exists {
		return fmt.Errorf("client %s already registered", name)
	}

	r.clients[name] = client

	// Build reverse index from the client's supported models.
	for _, model := range client.SupportedModels(ctx) {
		r.modelToClient[model] = name
	}

	return nil
}

// Get retrieves a client by name.
func (r *Registry) Get(_ context.Context, name string) (domain.ModelClient, error) {
	if name == "" {
		return nil, errors.New("client name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[name]
	if !exists {
		return nil, fmt.Errorf("client %s not found", name)
	}

	return client, nil
}

// List returns all registered client names.
func (r *Registry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}

	return names, nil
}

// GetByModel retrieves a client that serves the given model.
func (r *Registry) GetByModel(ctx context.Context, model string) (domain.ModelClient, error) {
	if model == "" {
		return nil, errors.New("model cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Use the reverse index for O(1) lookup.
	clientName, exists := r.modelToClient[model]
	if !exists {
		// Fallback to linear search for models not in the known list.
		for _, client := range r.clients {
			if client.IsModelSupported(ctx, model) {
				return client, nil
			}
		}
		return nil, fmt.Errorf("no client found for model: %s", model)
	}

	client, exists := r.clients[clientName]
	if !exists {
		return nil, fmt.Errorf("client not found: %s", clientName)
	}

	return client, nil
}
