package fee

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
)

// Config holds the fee amounts: class -> development fee and bus stop -> bus fee.
// A missing key means a zero fee.
type Config struct {
	DevelopmentFees map[string]int `json:"developmentFees"`
	BusStops        map[string]int `json:"busStops"`
}

func (c Config) clone() Config {
	return Config{
		DevelopmentFees: cloneMap(c.DevelopmentFees),
		BusStops:        cloneMap(c.BusStops),
	}
}

func cloneMap(m map[string]int) map[string]int {
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// ConfigUpdate replaces each supplied (non-nil) mapping as a whole.
type ConfigUpdate struct {
	DevelopmentFees map[string]int `json:"developmentFees" validate:"omitempty,dive,keys,class,endkeys,min=0"`
	BusStops        map[string]int `json:"busStops" validate:"omitempty,dive,keys,notblank,endkeys,min=0"`
}

func (cu ConfigUpdate) Validate() error { return core.Validate.Struct(cu) }

// DefaultBusStops are installed on first run.
var DefaultBusStops = map[string]int{
	"Main Gate":       800,
	"Market Square":   900,
	"Railway Station": 1000,
	"City Center":     850,
	"Park Avenue":     750,
	"School Road":     700,
}

// DefaultConfig returns the fees installed on first run: class N pays 400 + N*100, plus DefaultBusStops.
func DefaultConfig() Config {
	devFees := make(map[string]int, core.MaxClass)
	for n := core.MinClass; n <= core.MaxClass; n++ {
		devFees[strconv.Itoa(n)] = 400 + n*100
	}
	return Config{
		DevelopmentFees: devFees,
		BusStops:        cloneMap(DefaultBusStops),
	}
}

type Store struct {
	mu    sync.RWMutex
	blobs core.BlobStore
	conf  Config
}

// NewStore loads the fee configuration, installing and persisting the defaults when none is stored.
func NewStore(blobs core.BlobStore) (*Store, error) {
	s := &Store{blobs: blobs}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var conf Config
	found, err := core.LoadJSON(s.blobs, core.KeyFeeConfig, &conf)
	if err != nil {
		return errors.Wrap(err, "loading fee config")
	}
	if !found {
		conf = DefaultConfig()
		if err = core.SaveJSON(s.blobs, core.KeyFeeConfig, conf); err != nil {
			return errors.Wrap(err, "installing default fee config")
		}
	}
	if conf.DevelopmentFees == nil {
		conf.DevelopmentFees = make(map[string]int)
	}
	if conf.BusStops == nil {
		conf.BusStops = make(map[string]int)
	}
	s.conf = conf
	return nil
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conf.clone()
}

// Update replaces the supplied mappings wholesale and persists the result.
func (s *Store) Update(cu ConfigUpdate) error {
	if err := cu.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conf := s.conf.clone()
	if cu.DevelopmentFees != nil {
		conf.DevelopmentFees = cloneMap(cu.DevelopmentFees)
	}
	if cu.BusStops != nil {
		conf.BusStops = cloneMap(cu.BusStops)
	}
	if err := core.SaveJSON(s.blobs, core.KeyFeeConfig, conf); err != nil {
		return errors.Wrap(err, "saving fee config")
	}
	s.conf = conf
	return nil
}

// DevelopmentFee returns the fee of a class; 0 if unknown.
func (s *Store) DevelopmentFee(class string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conf.DevelopmentFees[class]
}

// BusFee returns the fee of a bus stop; 0 if unknown.
func (s *Store) BusFee(busStop string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conf.BusStops[busStop]
}

// Suggest returns the fees to pre-fill when recording a payment for a student of `class` picked up at `busStop`.
func (s *Store) Suggest(class, busStop string) (devFee, busFee int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conf.DevelopmentFees[class], s.conf.BusStops[busStop]
}

// BusStopNames returns the configured bus stops.
func (s *Store) BusStopNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.conf.BusStops))
	for name := range s.conf.BusStops {
		names = append(names, name)
	}
	return names
}

// Reset drops the stored configuration and reinstalls the defaults.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(core.KeyFeeConfig); err != nil {
		return errors.Wrap(err, "deleting fee config")
	}
	return s.load()
}
