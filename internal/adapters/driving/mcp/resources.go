package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/postop/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for postop resources.
	uriScheme = "postop://"

	timeFormat = time.RFC3339
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Patients == nil {
		return
	}

	// Static resource for listing patients.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "patients",
		Name:        "patients",
		Description: "IDs of all patients with a stored profile",
		MIMEType:    "application/json",
	}, s.handlePatientsResource)

	// Template for a single patient's profile.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "patients/{patientId}",
		Name:        "patient-profile",
		Description: "A patient's stored profile and indexed document count",
		MIMEType:    "application/json",
	}, s.handlePatientResource)
}

// handlePatientsResource returns the list of patient IDs.
func (s *Server) handlePatientsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ids, err := s.ports.Patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	return jsonResource(req.Params.URI, ids)
}

// patientInfo is the JSON shape of the patient-profile resource.
type patientInfo struct {
	PatientID     string                `json:"patient_id"`
	Profile       domain.PatientProfile `json:"profile"`
	DocumentCount int                   `json:"document_count"`
}

// handlePatientResource returns one patient's profile.
func (s *Server) handlePatientResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract patientId from URI: postop://patients/{patientId}
	patientID := extractPatientID(req.Params.URI)
	if patientID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	details, err := s.ports.Patients.Get(ctx, patientID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting patient: %w", err)
	}

	return jsonResource(req.Params.URI, patientInfo{
		PatientID:     details.PatientID,
		Profile:       details.Profile,
		DocumentCount: details.DocumentCount,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPatientID extracts the patient ID from a URI like postop://patients/{patientId}.
func extractPatientID(uri string) string {
	const prefix = uriScheme + "patients/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
