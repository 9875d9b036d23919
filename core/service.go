package core

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Interface defines a common interface for all services
type Interface interface {
	Start(ctx context.Context) error
	Stop()
}

type entry struct {
	name    string
	service Interface
}

// Registry starts services in registration order and stops them in reverse
type Registry struct {
	services []entry
	started  int
}

// NewRegistry creates a new core registry
func NewRegistry() *Registry {
	return &Registry{
		services: make([]entry, 0),
	}
}

// Register adds a named service to the registry
func (sr *Registry) Register(name string, service Interface) {
	sr.services = append(sr.services, entry{name: name, service: service})
}

// Names returns registered service names in start order
func (sr *Registry) Names() []string {
	names := make([]string, 0, len(sr.services))
	for _, e := range sr.services {
		names = append(names, e.name)
	}
	return names
}

// StartAll starts all registered services. If one fails, the services
// already started are stopped again and the error is returned.
func (sr *Registry) StartAll(ctx context.Context) error {
	for i, e := range sr.services {
		if err := e.service.Start(ctx); err != nil {
			sr.started = i
			sr.StopAll()
			return fmt.Errorf("start %s: %w", e.name, err)
		}
		log.Debugf("Core: started %s", e.name)
	}
	sr.started = len(sr.services)
	return nil
}

// StopAll stops started services in reverse order
func (sr *Registry) StopAll() {
	for i := sr.started - 1; i >= 0; i-- {
		e := sr.services[i]
		e.service.Stop()
		log.Debugf("Core: stopped %s", e.name)
	}
	sr.started = 0
}
