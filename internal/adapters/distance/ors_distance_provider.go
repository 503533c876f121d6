package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/obs"
	"parcel-dispatch-service/internal/ports"
	"strings"
	"time"
)

const metersPerMile = 1609.344

// ORSDistanceProvider implements DistanceProvider using OpenRouteService road distances.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - Persistent distance caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use when its caches are.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	backoff       time.Duration
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

type ORSOption func(*ORSDistanceProvider)

// WithORSBaseURL points the provider at another ORS deployment.
func WithORSBaseURL(baseURL string) ORSOption {
	return func(o *ORSDistanceProvider) { o.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithORSBackoff sets the initial retry backoff.
func WithORSBackoff(d time.Duration) ORSOption {
	return func(o *ORSDistanceProvider) { o.backoff = d }
}

// NewORSDistanceProvider builds a provider. Either cache may be nil.
func NewORSDistanceProvider(
	apiKey string,
	distanceCache ports.DistanceCache,
	geocodeCache ports.GeocodeCache,
	opts ...ORSOption,
) (*ORSDistanceProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.openrouteservice.org",
		profile:       "driving-car",
		backoff:       200 * time.Millisecond,
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSDistanceProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSDistanceProvider) Distance(
	ctx context.Context,
	origin string,
	destination string,
) (float64, error) {
	normOrigin := o.normalize(origin)
	normDestination := o.normalize(destination)
	if normOrigin == "" || normDestination == "" {
		return 0, errors.New("get ORS distance: origin and destination must be non-empty")
	}
	if normOrigin == normDestination {
		return 0, nil
	}

	results, err := o.Distances(ctx, normOrigin, []string{normDestination})
	if err != nil {
		return 0, fmt.Errorf("get ORS distance %q -> %q: %w", normOrigin, normDestination, err)
	}

	miles, ok := results[normDestination]
	if !ok {
		return 0, fmt.Errorf("get ORS distance: no result for %q -> %q", origin, destination)
	}

	return miles, nil
}

// Compute distances in miles from a single origin to many destinations.
// Result keys are the destination strings as given by the caller.
func (o *ORSDistanceProvider) Distances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "ors.Distances")(&err)

	normOrigin := o.normalize(origin)
	if normOrigin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]string, 0, len(destinations))
	for _, d := range destinations {
		nd := o.normalize(d)
		if nd == "" || nd == normOrigin {
			continue
		}
		if _, ok := seen[nd]; ok {
			continue
		}
		seen[nd] = struct{}{}
		destList = append(destList, nd)
	}

	if len(destList) == 0 {
		return keyedBy(destinations, normOrigin, nil, o.normalize), nil
	}

	hits := make(map[string]float64)
	// Check the persistent distance cache before issuing external API calls.
	if o.distanceCache != nil {
		hits, err = o.distanceCache.GetMany(ctx, normOrigin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	misses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}
	if len(misses) == 0 {
		return keyedBy(destinations, normOrigin, hits, o.normalize), nil
	}

	coords, err := o.coordinates(ctx, append([]string{normOrigin}, misses...))
	if err != nil {
		return nil, err
	}

	destinationCoords := make([]domain.Coordinates, 0, len(misses))
	for _, d := range misses {
		destinationCoords = append(destinationCoords, coords[d])
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, coords[normOrigin], misses, destinationCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	missing := make([]string, 0)
	for _, d := range misses {
		if _, ok := fetched[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"ORS matrix service did not return the following destinations: %s",
			strings.Join(missing, ", "),
		)
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, normOrigin, fetched); err != nil {
			log.Printf("distance cache write failed: %v", err)
		}
	}

	out := make(map[string]float64, len(hits)+len(fetched))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return keyedBy(destinations, normOrigin, out, o.normalize), nil
}

// keyedBy maps normalized results back onto the caller's destination strings.
// A destination equal to the origin is zero miles away.
func keyedBy(destinations []string, normOrigin string, byNorm map[string]float64, normalize func(string) string) map[string]float64 {
	out := make(map[string]float64, len(destinations))
	for _, d := range destinations {
		nd := normalize(d)
		if nd == normOrigin {
			out[d] = 0
			continue
		}
		if v, ok := byNorm[nd]; ok {
			out[d] = v
		}
	}
	return out
}

// coordinates resolves every address through the geocode cache, then ORS.
func (o *ORSDistanceProvider) coordinates(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	hits := make(map[string]domain.Coordinates)
	if o.geocodeCache != nil {
		var err error
		hits, err = o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	if len(misses) > 0 {
		var err error
		fresh, err = o.geocodeMany(ctx, misses)
		if err != nil {
			return nil, fmt.Errorf("retrieving coordinates: %w", err)
		}
	}

	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	coords := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		coords[k] = v
	}
	for k, v := range fresh {
		coords[k] = v
	}

	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}
	return coords, nil
}
