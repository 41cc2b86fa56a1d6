// Package geo finds the user's approximate location for the booking map.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartwaste/pickup/pkg/domain"
)

// ErrUnavailable is returned when no location source produced a coordinate.
var ErrUnavailable = errors.New("location unavailable")

// Locator produces the user's coordinate.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinate, error)
}

// Static always returns the same coordinate.
type Static domain.Coordinate

// Locate implements Locator.
func (s Static) Locate(context.Context) (domain.Coordinate, error) {
	return domain.Coordinate(s), nil
}

// Denied never produces a location.
type Denied struct{}

// Locate implements Locator.
func (Denied) Locate(context.Context) (domain.Coordinate, error) {
	return domain.Coordinate{}, ErrUnavailable
}

// ipLocation is the subset of the ipapi.co response we read.
type ipLocation struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Country   string  `json:"country_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Error     bool    `json:"error"`
	Reason    string  `json:"reason"`
}

// IPLocator asks an ipapi.co compatible endpoint for the caller's location
// and caches the first success.
type IPLocator struct {
	url  string
	http *http.Client
	log  *zap.Logger

	mu     sync.Mutex
	cached *domain.Coordinate
}

// NewIPLocator returns a locator querying url.
func NewIPLocator(url string, log *zap.Logger) *IPLocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &IPLocator{url: url, http: &http.Client{Timeout: 5 * time.Second}, log: log}
}

// Locate implements Locator.
func (l *IPLocator) Locate(ctx context.Context) (domain.Coordinate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return *l.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geo.Locate: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geo.Locate: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("geo.Locate: lookup returned HTTP %d", resp.StatusCode)
	}

	var loc ipLocation
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return domain.Coordinate{}, fmt.Errorf("geo.Locate: decode: %w", err)
	}
	if loc.Error {
		return domain.Coordinate{}, fmt.Errorf("geo.Locate: %s", loc.Reason)
	}
	c := domain.Coordinate{Lat: loc.Latitude, Lng: loc.Longitude}
	if c.IsZero() {
		return domain.Coordinate{}, fmt.Errorf("geo.Locate: %w", ErrUnavailable)
	}

	l.log.Debug("location resolved by ip", zap.String("city", loc.City), zap.String("country", loc.Country))
	l.cached = &c
	return c, nil
}

// Chain tries each locator in turn and returns the first coordinate.
type Chain []Locator

// Locate implements Locator.
func (c Chain) Locate(ctx context.Context) (domain.Coordinate, error) {
	errs := make([]error, 0, len(c))
	for _, l := range c {
		coord, err := l.Locate(ctx)
		if err == nil {
			return coord, nil
		}
		if ctx.Err() != nil {
			return domain.Coordinate{}, ctx.Err()
		}
		errs = append(errs, err)
	}
	return domain.Coordinate{}, errors.Join(append([]error{ErrUnavailable}, errs...)...)
}

// Options selects location sources.
type Options struct {
	Fixed     *domain.Coordinate
	IPLookup  bool
	LookupURL string
	Log       *zap.Logger
}

// New builds the locator for opts: a fixed coordinate when given, otherwise
// the IP lookup when enabled, otherwise Denied.
func New(opts Options) Locator {
	var chain Chain
	if opts.Fixed != nil && !opts.Fixed.IsZero() {
		chain = append(chain, Static(*opts.Fixed))
	}
	if opts.IPLookup && opts.LookupURL != "" {
		chain = append(chain, NewIPLocator(opts.LookupURL, opts.Log))
	}
	switch len(chain) {
	case 0:
		return Denied{}
	case 1:
		return chain[0]
	}
	return chain
}

// Result is the outcome of Resolve. When Found is false, Center is the
// fallback map centre and the user's position is unknown.
type Result struct {
	User   domain.Coordinate
	Center domain.Coordinate
	Found  bool
}

// Resolve runs loc and applies the fallback centre on failure.
func Resolve(ctx context.Context, loc Locator, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	c, err := loc.Locate(ctx)
	if err != nil {
		log.Warn("location access denied", zap.Error(err))
		return Result{Center: domain.FallbackLocation}
	}
	return Result{User: c, Center: c, Found: true}
}
