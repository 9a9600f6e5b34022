package main

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/KOMKZ/go-yogan-binding/binding"
	"github.com/KOMKZ/go-yogan-binding/graph"
)

type Clock struct {
	started time.Time
}

type Settings struct {
	DSN      string
	PoolSize int
}

type Repository struct {
	clock    *Clock
	settings Settings
}

type Cache struct {
	capacity int
}

type Service struct {
	repo  *Repository
	cache *Cache
	label string
}

// Handler one per request id
type Handler struct {
	service *Service
	request int64
}

func newRepository(c *Clock, s Settings) *Repository {
	return &Repository{clock: c, settings: s}
}

func newService(r *Repository, label string) *Service {
	return &Service{repo: r, label: label}
}

// demo the bindctl graph:
//
//	handler (value scope on request id)
//	  service (lazy) .cache = cache (singleton)
//	    repository (lazy)
//	      clock (constructor), settings (lazy constant)
type demo struct {
	requestID atomic.Int64

	clockCalls   atomic.Int64
	cacheCalls   atomic.Int64
	handlerCalls atomic.Int64

	clock    *binding.Constructor[*Clock]
	settings *binding.Lazy[Settings]
	repo     *binding.Lazy[*Repository]
	cache    *binding.ValueScoped[*Cache, bool]
	service  *binding.Lazy[*Service]
	request  *binding.Lazy[*Handler]
	handler  *binding.ValueScoped[*Handler, int64]
}

func newDemo(opts ...binding.Option) (*demo, error) {
	d := &demo{}
	var err error

	d.clock, err = binding.NewConstructor(func() (*Clock, error) {
		d.clockCalls.Add(1)
		return &Clock{started: time.Now()}, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	d.settings, err = binding.Declare[Settings](func(*graph.Builder) graph.Node {
		return graph.Value(Settings{DSN: "memory://demo", PoolSize: 4})
	}, opts...)
	if err != nil {
		return nil, err
	}

	d.repo, err = binding.Declare[*Repository](func(b *graph.Builder) graph.Node {
		return graph.Ctor2("newRepository", newRepository, b.Dependency(d.clock), b.Dependency(d.settings))
	}, opts...)
	if err != nil {
		return nil, err
	}

	cache, err := binding.Declare[*Cache](func(*graph.Builder) graph.Node {
		return graph.Ctor0("newCache", func() *Cache {
			d.cacheCalls.Add(1)
			return &Cache{capacity: 128}
		})
	}, opts...)
	if err != nil {
		return nil, err
	}
	if d.cache, err = binding.Singleton[*Cache](cache, opts...); err != nil {
		return nil, err
	}

	d.service, err = binding.Declare[*Service](func(b *graph.Builder) graph.Node {
		return graph.Init(
			graph.Ctor2("newService", newService, b.Dependency(d.repo), graph.Value("demo")),
			graph.Assign("cache", b.Dependency(d.cache), func(s *Service, c *Cache) { s.cache = c }),
		)
	}, opts...)
	if err != nil {
		return nil, err
	}

	d.request, err = binding.Declare[*Handler](func(b *graph.Builder) graph.Node {
		return graph.Ctor1("newHandler", func(s *Service) *Handler {
			d.handlerCalls.Add(1)
			return &Handler{service: s, request: d.requestID.Load()}
		}, b.Dependency(d.service))
	}, opts...)
	if err != nil {
		return nil, err
	}

	d.handler, err = binding.GroupByValue[*Handler](d.requestID.Load, d.request, opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// bindings the registered bindings; the handler is only reachable through its scope
func (d *demo) bindings() []binding.Untyped {
	return []binding.Untyped{d.clock, d.settings, d.repo, d.cache, d.service, d.handler}
}

// targets lazies whose graphs can be printed, by name
func (d *demo) targets() map[string]interface{ Description() *graph.Description } {
	return map[string]interface{ Description() *graph.Description }{
		"settings":   d.settings,
		"repository": d.repo,
		"service":    d.service,
		"handler":    d.request,
	}
}

func (d *demo) description(target string) (*graph.Description, error) {
	l, ok := d.targets()[target]
	if !ok {
		names := make([]string, 0, len(d.targets()))
		for name := range d.targets() {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown target %q (one of %v)", target, names)
	}
	return l.Description(), nil
}
