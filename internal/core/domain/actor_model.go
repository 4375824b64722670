package domain

import "time"

const (
	ACTOR_ID_MASTER   = "master"
	ACTOR_ID_UPSTREAM = "upstream"
	ACTOR_ID_CATALOG  = "catalog"
	ACTOR_ID_MQTT     = "mqtt"
	ACTOR_ID_SESSION  = "session"
)

// upstream

type ListCatalogRequest struct {
	ActorRequestMixIn
	Format Format
}

type ListCatalogResponse struct {
	ActorResponseMixIn
	Format  Format
	Devices []DeviceSummary
}

type FetchDescriptorsRequest struct {
	ActorRequestMixIn
	Plan FetchPlan
}

type FetchDescriptorsResponse struct {
	ActorResponseMixIn
	Snapshot Snapshot
	Results  []FetchResult
}

type GetDescriptorRequest struct {
	ActorRequestMixIn
	Ref DeviceRef
}

type GetDescriptorResponse struct {
	ActorResponseMixIn
	Descriptor *DeviceDescriptor
}

// catalog

type GetCatalogRequest struct {
	ActorRequestMixIn
	Format Format
}

type GetCatalogResponse struct {
	ActorResponseMixIn
	Devices  []DeviceSummary
	Failures map[Format]string
	LoadedAt map[Format]time.Time
}

type RefreshCatalogRequest struct {
	ActorRequestMixIn
	Format Format
}

type RefreshCatalogResponse struct {
	ActorResponseMixIn
}

// comparison sessions

type CreateSessionRequest struct {
	ActorRequestMixIn
}

type CreateSessionResponse struct {
	ActorResponseMixIn
	SessionID string
}

type AddDeviceRequest struct {
	SessionRequestMixIn
	Ref DeviceRef
}

type RemoveDeviceRequest struct {
	SessionRequestMixIn
	Ref DeviceRef
}

type ClearSelectionRequest struct {
	SessionRequestMixIn
}

type RefreshSelectionRequest struct {
	SessionRequestMixIn
}

type GetSelectionRequest struct {
	SessionRequestMixIn
}

type SelectionResponse struct {
	ActorResponseMixIn
	State    SessionState
	Snapshot Snapshot
	Devices  []DeviceRef
}

type GetComparisonRequest struct {
	SessionRequestMixIn
}

type GetComparisonResponse struct {
	ActorResponseMixIn
	State    SessionState
	Snapshot Snapshot
	Matrix   ComparisonMatrix
	Failures []*FetchFailure
}

type GetSpecsRequest struct {
	SessionRequestMixIn
}

type GetSpecsResponse struct {
	ActorResponseMixIn
	State    SessionState
	Snapshot Snapshot
	Matrix   SpecsMatrix
}

type GetCandidatesRequest struct {
	SessionRequestMixIn
	Query string
}

type GetCandidatesResponse struct {
	ActorResponseMixIn
	Devices []DeviceSummary
}

// ErrorResponse answers a request that could not be routed.
type ErrorResponse struct {
	ActorResponseMixIn
}

// health

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}

// ensure interface compliance
var _ SessionRequest = (*AddDeviceRequest)(nil)
