package database

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/ledger/internal/config"
)

// Constructor builds a new database handle.
type Constructor func() (*Database, error)

// Slot holds at most one shared handle for the lifetime of a process.
// Providers created later over the same slot reuse whatever it holds.
type Slot struct {
	mu sync.Mutex
	db *Database
}

// Load returns the stored handle or nil.
func (s *Slot) Load() *Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Store replaces the stored handle.
func (s *Slot) Store(db *Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = db
}

// Clear empties the slot and returns the handle it held.
func (s *Slot) Clear() *Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.db
	s.db = nil
	return db
}

func (s *Slot) IsEmpty() bool {
	return s.Load() == nil
}

// loadOrCreate constructs under the slot lock so concurrent providers
// never store two different handles.
func (s *Slot) loadOrCreate(construct Constructor) (*Database, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, false, nil
	}
	db, err := construct()
	if err != nil {
		return nil, false, err
	}
	s.db = db
	return db, true, nil
}

// Provider hands out one shared database handle.
//
// With cacheInSlot set, the handle lives in the slot and survives the
// provider being re-created. Without it the provider keeps the handle to
// itself and never writes to the slot, though it still returns a handle
// somebody else stored there.
type Provider struct {
	construct   Constructor
	slot        *Slot
	cacheInSlot bool

	mu sync.Mutex
	db *Database
}

func NewProvider(construct Constructor, slot *Slot, cacheInSlot bool) *Provider {
	if slot == nil {
		slot = &Slot{}
	}
	return &Provider{
		construct:   construct,
		slot:        slot,
		cacheInSlot: cacheInSlot,
	}
}

// Get returns the shared handle, constructing it on first use.
// Constructor errors are returned unchanged and nothing is cached.
func (p *Provider) Get() (*Database, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db := p.slot.Load(); db != nil {
		return db, nil
	}
	if p.db != nil {
		return p.db, nil
	}

	if p.cacheInSlot {
		db, created, err := p.slot.loadOrCreate(p.construct)
		if err != nil {
			return nil, err
		}
		if created {
			log.Info().Bool("cached", true).Msg("Database client initialized")
		}
		return db, nil
	}

	db, err := p.construct()
	if err != nil {
		return nil, err
	}
	p.db = db
	log.Info().Bool("cached", false).Msg("Database client initialized")
	return db, nil
}

// Close closes the handle this provider would return and forgets it.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	db := p.db
	p.db = nil
	if p.cacheInSlot {
		if cached := p.slot.Clear(); cached != nil {
			db = cached
		}
	}
	if db == nil {
		return nil
	}
	return db.Close()
}

// DefaultSlot is the process-wide slot behind Shared.
var DefaultSlot = &Slot{}

var (
	sharedMu       sync.Mutex
	sharedProvider *Provider
)

// SharedProvider returns the package-level provider, creating it from cfg on
// first use. Later calls ignore cfg.
func SharedProvider(cfg config.Database) *Provider {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedProvider == nil {
		opts := OptionsFromConfig(cfg)
		sharedProvider = NewProvider(func() (*Database, error) {
			return Open(opts)
		}, DefaultSlot, cfg.CacheClient)
	}
	return sharedProvider
}

// Shared returns the process-wide database handle.
func Shared(cfg config.Database) (*Database, error) {
	return SharedProvider(cfg).Get()
}

// ResetShared drops the package-level provider, as a configuration reload
// does. DefaultSlot is left untouched, so a cached handle is picked up again.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedProvider = nil
}
