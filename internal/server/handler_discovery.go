package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	endpoints := []endpointInfo{
		{"/api/v1/containers", []string{"GET"}, "Managed containers with start policy, last timed start and last sweep decision"},
		{"/api/v1/containers/{name}", []string{"GET"}, "Single managed container"},
		{"/api/v1/health", []string{"GET"}, "Supervisor health and version"},
		{"/healthz", []string{"GET"}, "Supervisor health for probes"},
	}
	if s.metrics != nil {
		endpoints = append(endpoints, endpointInfo{"/metrics", []string{"GET"}, "Prometheus metrics"})
	}
	respondOK(w, reqID, discoveryResponse{
		Name:        "depstart API",
		Version:     "v1",
		Description: "Dependency-aware container start supervisor",
		Endpoints:   endpoints,
	})
}
