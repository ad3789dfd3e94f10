// Package catalog resolves interface names to live component instances under
// an activation policy.
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"zyan/domain"
	"zyan/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Registration struct {
	InterfaceName string                  `validate:"required"`
	Factory       domain.Factory          `validate:"required"`
	Policy        domain.ActivationPolicy `validate:"oneof=0 1"`
}

type instanceBox struct {
	component domain.Component
}

type registration struct {
	Registration
	mu       sync.Mutex // guards singleton creation only
	instance atomic.Pointer[instanceBox]
}

// Handle is what Resolve hands out. Release must be called exactly once per
// resolution; it closes SingleCall instances and is a no-op for singletons.
type Handle struct {
	InterfaceName string
	Policy        domain.ActivationPolicy
	Component     domain.Component
	release       func()
	released      atomic.Bool
}

func (h *Handle) Release() {
	if h.released.CompareAndSwap(false, true) && h.release != nil {
		h.release()
	}
}

type Catalog struct {
	mu            sync.RWMutex
	registrations map[string]*registration
	log           *slog.Logger
}

func NewCatalog(log *slog.Logger) *Catalog {
	return &Catalog{registrations: make(map[string]*registration), log: log}
}

// Register adds a component under interfaceName. Registrations are immutable.
func (c *Catalog) Register(interfaceName string, factory domain.Factory, policy domain.ActivationPolicy) error {
	reg := Registration{InterfaceName: interfaceName, Factory: factory, Policy: policy}
	if err := validate.Struct(reg); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.registrations[interfaceName]; ok {
		return fmt.Errorf("%w: %s", errors.ErrComponentAlreadyRegistered, interfaceName)
	}
	c.registrations[interfaceName] = &registration{Registration: reg}
	c.log.Info("Component registered", "interface", interfaceName, "policy", policy.String())
	return nil
}

// Resolve returns an instance for interfaceName according to its policy.
func (c *Catalog) Resolve(interfaceName string) (*Handle, error) {
	c.mu.RLock()
	reg, ok := c.registrations[interfaceName]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrComponentNotFound, interfaceName)
	}

	switch reg.Policy {
	case domain.SingleCall:
		component, err := activate(reg.Factory)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrActivationFailure, interfaceName, err)
		}
		return &Handle{
			InterfaceName: interfaceName,
			Policy:        domain.SingleCall,
			Component:     component,
			release:       func() { c.dispose(interfaceName, component) },
		}, nil
	default:
		component, err := c.singleton(reg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrActivationFailure, interfaceName, err)
		}
		return &Handle{InterfaceName: interfaceName, Policy: domain.Singleton, Component: component}, nil
	}
}

func (c *Catalog) Lookup(interfaceName string) (Registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.registrations[interfaceName]
	if !ok {
		return Registration{}, false
	}
	return reg.Registration, true
}

// Registrations lists registered interfaces sorted by name.
func (c *Catalog) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]Registration, 0, len(c.registrations))
	for _, reg := range c.registrations {
		res = append(res, reg.Registration)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].InterfaceName < res[j].InterfaceName })
	return res
}

// Reset closes and forgets every singleton instance. Registrations are kept.
func (c *Catalog) Reset() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, reg := range c.registrations {
		reg.mu.Lock()
		if box := reg.instance.Swap(nil); box != nil {
			c.dispose(name, box.component)
		}
		reg.mu.Unlock()
	}
}

// singleton lazily creates the shared instance with double-checked locking.
// A failed creation is not cached.
func (c *Catalog) singleton(reg *registration) (domain.Component, error) {
	if box := reg.instance.Load(); box != nil {
		return box.component, nil
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if box := reg.instance.Load(); box != nil {
		return box.component, nil
	}
	component, err := activate(reg.Factory)
	if err != nil {
		return nil, err
	}
	reg.instance.Store(&instanceBox{component: component})
	c.log.Debug("Singleton activated", "interface", reg.InterfaceName)
	return component, nil
}

// activate runs the factory, turning a panic into an error and closing any
// partially constructed instance returned alongside an error.
func activate(factory domain.Factory) (component domain.Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewPanicError(r)
			component = nil
		}
	}()
	component, err = factory()
	if err != nil {
		if closer, ok := component.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	if component == nil {
		return nil, fmt.Errorf("factory returned a nil component")
	}
	return component, nil
}

func (c *Catalog) dispose(interfaceName string, component domain.Component) {
	closer, ok := component.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		c.log.Warn("Component disposal failed", "interface", interfaceName, "error", err)
	}
}
