package services

import (
	"fmt"
	"sort"

	"github.com/lborres/reisetagebuch/core"
)

// Operation ids of the base endpoints. Adapters key their handlers by these.
const (
	OpListBucket   = "listBucketItems"
	OpUpsertBucket = "upsertBucketItem"
	OpAppendLog    = "appendBucketLog"
	OpSyncProfile  = "syncProfile"
	OpListTrips    = "listTrips"
	OpUpsertTrip   = "upsertTrip"
	OpGetTrip      = "getTrip"
	OpHealth       = "health"
)

// BaseEndpoints returns framework-agnostic descriptions of every API route.
// Paths are relative to the configured base path.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/bucketlist",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpListBucket,
				Description: "List the bucket-list items of a user ordered by year",
			},
		},
		{
			Path:   "/bucketlist",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpUpsertBucket,
				Description: "Create or update a bucket-list item",
				Write:       true,
			},
		},
		{
			Path:   "/bucketlist/log",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpAppendLog,
				Description: "Append a bucket-list audit entry",
			},
		},
		{
			Path:   "/profile/sync",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpSyncProfile,
				Description: "Mirror a user profile into the users collection",
			},
		},
		{
			Path:   "/reisen",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpListTrips,
				Description: "List the trips of a user ordered by start date",
			},
		},
		{
			Path:   "/reisen",
			Method: "POST",
			Metadata: core.EndpointMetadata{
				OperationID: OpUpsertTrip,
				Description: "Create or update a trip",
				Write:       true,
			},
		},
		{
			Path:   "/reisen/:id",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpGetTrip,
				Description: "Get a single trip owned by the user",
			},
		},
		{
			Path:   "/health",
			Method: "GET",
			Metadata: core.EndpointMetadata{
				OperationID: OpHealth,
				Description: "Report the document store connection state",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a new registry with all base endpoints pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	for _, ep := range BaseEndpoints() {
		ep := ep
		reg.endpoints[endpointKey(&ep)] = &ep
	}

	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// RegisterPlugin registers additional endpoints.
// Returns error if any endpoint conflicts with existing endpoints
// or with other endpoints in the same batch.
//
// If an error occurs, no endpoints from the batch are registered.
func (r *EndpointRegistry) RegisterPlugin(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := endpointKey(&endpoints[i])

		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("plugin endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("plugin contains duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints[endpointKey(&ep)] = &ep
	}

	return nil
}

// Endpoints returns all registered endpoints sorted by path, then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
