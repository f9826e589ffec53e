package host

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/convene/internal/ir"
)

// ServiceConvention registers services.
type ServiceConvention interface {
	ConfigureServices(sc *ServiceContext) error
}

// ServiceDelegate is the delegate form of ServiceConvention.
type ServiceDelegate func(sc *ServiceContext) error

// Lifetime is the declared lifetime of a service. The registry records it
// and does not enforce it.
type Lifetime int

const (
	Singleton Lifetime = iota
	Scoped
	Transient
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// ServiceDescriptor describes one registered service.
type ServiceDescriptor struct {
	Name     string
	Lifetime Lifetime
	Factory  func() (any, error)
}

// ErrDuplicateService is returned when a service name is registered twice.
var ErrDuplicateService = errors.New("duplicate service")

// ServiceCollection is an ordered registry of service descriptors.
type ServiceCollection struct {
	descriptors []ServiceDescriptor
	index       map[string]int
}

// NewServiceCollection creates an empty collection.
func NewServiceCollection() *ServiceCollection {
	return &ServiceCollection{index: make(map[string]int)}
}

// Add registers d. Names are unique within a collection.
func (c *ServiceCollection) Add(d ServiceDescriptor) error {
	if d.Name == "" {
		return errors.New("service name is required")
	}
	if _, exists := c.index[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateService, d.Name)
	}
	c.index[d.Name] = len(c.descriptors)
	c.descriptors = append(c.descriptors, d)
	return nil
}

// AddSingleton registers a singleton service.
func (c *ServiceCollection) AddSingleton(name string, factory func() (any, error)) error {
	return c.Add(ServiceDescriptor{Name: name, Lifetime: Singleton, Factory: factory})
}

// AddTransient registers a transient service.
func (c *ServiceCollection) AddTransient(name string, factory func() (any, error)) error {
	return c.Add(ServiceDescriptor{Name: name, Lifetime: Transient, Factory: factory})
}

// Get returns the descriptor registered under name.
func (c *ServiceCollection) Get(name string) (ServiceDescriptor, bool) {
	i, ok := c.index[name]
	if !ok {
		return ServiceDescriptor{}, false
	}
	return c.descriptors[i], true
}

// Len returns the number of registered services.
func (c *ServiceCollection) Len() int { return len(c.descriptors) }

// Names returns service names in registration order.
func (c *ServiceCollection) Names() []string {
	names := make([]string, len(c.descriptors))
	for i, d := range c.descriptors {
		names[i] = d.Name
	}
	return names
}

// Descriptors returns a copy of the descriptors in registration order.
func (c *ServiceCollection) Descriptors() []ServiceDescriptor {
	return slices.Clone(c.descriptors)
}

// ServiceContext is what service conventions are applied against.
type ServiceContext struct {
	HostType      ir.HostType
	Services      *ServiceCollection
	Configuration *Configuration
	Logger        *slog.Logger
}
