package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Canvai resources.
	uriScheme = "canvai://"
)

// storeInfo describes a persisted store without its entries.
type storeInfo struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Model     string    `json:"model,omitempty"`
	BuiltAt   time.Time `json:"built_at"`
	Entries   int       `json:"entries"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stores",
		Name:        "stores",
		Description: "Names of all built index stores",
		MIMEType:    "application/json",
	}, s.handleStoresResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "stores/{name}",
		Name:        "store",
		Description: "Dimension, metric, model and size of one index store",
		MIMEType:    "application/json",
	}, s.handleStoreResource)
}

// handleStoresResource lists persisted store names.
func (s *Server) handleStoresResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names := []string{}
	if s.ports.Stores != nil {
		listed, err := s.ports.Stores.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing stores: %w", err)
		}
		names = append(names, listed...)
	}

	return jsonResource(req.Params.URI, names)
}

// handleStoreResource describes one store.
func (s *Server) handleStoreResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractStoreName(req.Params.URI)
	if s.ports.Stores == nil || name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	store, err := s.ports.Stores.Load(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("loading store: %w", err)
	}

	return jsonResource(req.Params.URI, storeInfo{
		Name:      store.Name,
		Dimension: store.Dimension,
		Metric:    store.Metric.String(),
		Model:     store.Model,
		BuiltAt:   store.BuiltAt,
		Entries:   store.Len(),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractStoreName extracts the name from a URI like canvai://stores/{name}.
func extractStoreName(uri string) string {
	const prefix = uriScheme + "stores/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
