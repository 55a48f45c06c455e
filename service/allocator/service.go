package allocator

import (
	"fmt"
	"math"
	"sync"

	"github.com/viant/teller/model"
	"go.uber.org/zap"
)

// Clock supplies the logical time used to stamp pages.
type Clock interface {
	Now() int
}

// Config represents allocator configuration
type Config struct {
	// Pages is the fixed number of pages in the pool
	Pages int

	// PageSize is the storage size of every page in bytes
	PageSize int
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{
		Pages:    10,
		PageSize: 16,
	}
}

// Ref identifies a page within the pool.
type Ref int

type page struct {
	data           []byte
	used           bool
	lastAccessTime int
}

// Page is returned by Allocate.
type Page struct {
	Ref Ref
	// Reclaimed is true when the page was taken from a previous owner.
	Reclaimed bool
}

// Service manages the page pool
type Service struct {
	config Config
	clock  Clock
	logger *zap.Logger
	pages  []*page
	mux    sync.Mutex
}

// Option customises the allocator.
type Option func(*Service)

// WithLogger sets the logger used to report reclaims.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Allocate returns the first free page; when none is free it reclaims the
// page with the smallest last access time (lowest index on ties).
func (s *Service) Allocate() (*Page, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if len(s.pages) == 0 {
		return nil, ErrExhausted
	}
	now := s.clock.Now()
	victim := -1
	oldest := math.MaxInt
	for i, p := range s.pages {
		if !p.used {
			p.used = true
			p.lastAccessTime = now
			return &Page{Ref: Ref(i)}, nil
		}
		if p.lastAccessTime < oldest {
			oldest = p.lastAccessTime
			victim = i
		}
	}
	p := s.pages[victim]
	s.logger.Warn("reclaiming page still in use",
		zap.Int("page", victim),
		zap.Int("lastAccessTime", p.lastAccessTime))
	p.lastAccessTime = now
	clear(p.data)
	return &Page{Ref: Ref(victim), Reclaimed: true}, nil
}

// Reclaim returns a page to the free pool.
func (s *Service) Reclaim(ref Ref) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	p, err := s.page(ref)
	if err != nil {
		return err
	}
	p.used = false
	p.lastAccessTime = 0
	return nil
}

// Touch stamps the page with the current logical time.
func (s *Service) Touch(ref Ref) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	p, err := s.page(ref)
	if err != nil {
		return err
	}
	p.lastAccessTime = s.clock.Now()
	return nil
}

// Read returns a copy of the page storage.
func (s *Service) Read(ref Ref) ([]byte, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	p, err := s.page(ref)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, len(p.data))
	copy(ret, p.data)
	return ret, nil
}

// Write copies data into the page storage.
func (s *Service) Write(ref Ref, data []byte) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	p, err := s.page(ref)
	if err != nil {
		return err
	}
	if len(data) > len(p.data) {
		return fmt.Errorf("%w: %d > %d bytes", ErrPageOverflow, len(data), len(p.data))
	}
	copy(p.data, data)
	return nil
}

// Pages returns the memory map.
func (s *Service) Pages() []model.PageInfo {
	s.mux.Lock()
	defer s.mux.Unlock()
	ret := make([]model.PageInfo, len(s.pages))
	for i, p := range s.pages {
		ret[i] = model.PageInfo{Index: i, Used: p.used, LastAccessTime: p.lastAccessTime}
	}
	return ret
}

// PageSize returns the storage size of a page.
func (s *Service) PageSize() int {
	return s.config.PageSize
}

func (s *Service) page(ref Ref) (*page, error) {
	if int(ref) < 0 || int(ref) >= len(s.pages) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRef, ref)
	}
	return s.pages[ref], nil
}

// New creates an allocator with a pool of config.Pages pages.
func New(clock Clock, config Config, opts ...Option) *Service {
	s := &Service{
		config: config,
		clock:  clock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if config.Pages < 0 {
		config.Pages = 0
	}
	s.pages = make([]*page, config.Pages)
	for i := range s.pages {
		s.pages[i] = &page{data: make([]byte, config.PageSize)}
	}
	return s
}
