package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/musclemap/internal/heatmap"
	"github.com/claude/musclemap/internal/muscle"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

type muscleGroupInfo struct {
	Tag              string  `json:"tag"`
	ExampleIntensity float64 `json:"example_intensity"`
}

func (h *handlers) muscleGroups(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	example := heatmap.DefaultExample()
	groups := make([]muscleGroupInfo, 0, muscle.Count)
	for _, g := range muscle.All() {
		groups = append(groups, muscleGroupInfo{Tag: g.String(), ExampleIntensity: example[g]})
	}
	return jsonResource(req.Params.URI, groups)
}

func (h *handlers) gradient(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, map[string]any{
		"inactive": heatmap.InactiveColor,
		"stops":    heatmap.GradientStops(),
	})
}

func (h *handlers) currentHeatmap(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	hm, err := h.engine.Heatmap(ctx, UserIDFromContext(ctx), h.windows.Default)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, hm)
}
