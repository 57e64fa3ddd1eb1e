package mcp

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/musclemap/internal/heatmap"
	"github.com/claude/musclemap/internal/muscle"
)

// parseOverrides decodes a {"tag": intensity} object. Unknown tags are an
// error; an empty string means no overrides were supplied.
func parseOverrides(s string) (heatmap.Intensities, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var in heatmap.Intensities
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}
	if in == nil {
		in = heatmap.Intensities{}
	}
	return in, nil
}

// muscleSummary is one row of get_muscle_stats.
type muscleSummary struct {
	Muscle    muscle.MuscleGroup     `json:"muscle"`
	Volume    float64                `json:"volume"`
	Frequency int                    `json:"frequency"`
	Intensity float64                `json:"intensity"`
	Exercises []heatmap.Contribution `json:"exercises"`
}

// rankMuscles orders cells by volume, then by canonical order, and attaches
// the contributing exercises.
func rankMuscles(h heatmap.Heatmap, contrib map[muscle.MuscleGroup][]heatmap.Contribution) []muscleSummary {
	out := make([]muscleSummary, 0, len(h.Muscles))
	for _, c := range h.Muscles {
		ex := contrib[c.Muscle]
		if ex == nil {
			ex = []heatmap.Contribution{}
		}
		out = append(out, muscleSummary{
			Muscle:    c.Muscle,
			Volume:    c.Volume,
			Frequency: c.Frequency,
			Intensity: c.Intensity,
			Exercises: ex,
		})
	}
	slices.SortStableFunc(out, func(a, b muscleSummary) int {
		return cmp.Compare(b.Volume, a.Volume)
	})
	return out
}

// --- Tool definitions ---

var toolGetMuscleHeatmap = mcp.NewTool("get_muscle_heatmap",
	mcp.WithDescription("Per-muscle training heatmap. Returns volume (kg×reps of completed sets), frequency (logged exercises), intensity in [0,1] relative to the most-trained muscle, and a display color for each of the 14 muscle groups. When the user has no logs in the window, intensities come from an illustrative example and has_activity is false."),
	mcp.WithNumber("window_days", mcp.Description("Look-back window in days (7, 30 or 90). Defaults to 30.")),
)

var toolGetMuscleStats = mcp.NewTool("get_muscle_stats",
	mcp.WithDescription("Muscles ranked by training volume over a window, each with the exercises that contributed to it. Useful for spotting neglected muscle groups."),
	mcp.WithNumber("window_days", mcp.Description("Look-back window in days (7, 30 or 90). Defaults to 30.")),
)

var toolClassifyExercise = mcp.NewTool("classify_exercise",
	mcp.WithDescription("Show which muscle groups an exercise name counts toward and which keyword rules fired. Matching is case-insensitive substring/keyword based; unknown names map to no muscles."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name as logged, e.g. 'Romanian Deadlift'")),
)

var toolPreviewHeatmap = mcp.NewTool("preview_heatmap",
	mcp.WithDescription("Render a heatmap from explicit intensities instead of logged data. Omitted muscles are 0 and values are clamped to [0,1]. Without overrides, returns the illustrative example."),
	mcp.WithString("overrides_json", mcp.Description(`JSON object of muscle tag to intensity, e.g. {"chest": 0.8, "quads": 1}`)),
	mcp.WithNumber("window_days", mcp.Description("Window label for the preview. Defaults to 30.")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Totals across all stored logs: entries, sets, completed sets, tonnage, date range, per-exercise and per-source counts."),
)

// --- Tool handlers ---

func (h *handlers) resolveWindow(req mcp.CallToolRequest) (int, error) {
	return h.windows.Resolve(req.GetInt("window_days", 0))
}

func (h *handlers) getMuscleHeatmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := h.resolveWindow(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hm, err := h.engine.Heatmap(ctx, UserIDFromContext(ctx), days)
	if err != nil {
		h.log.Error("mcp get_muscle_heatmap", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(hm)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMuscleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := h.resolveWindow(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	uid := UserIDFromContext(ctx)

	hm, err := h.engine.Heatmap(ctx, uid, days)
	if err != nil {
		h.log.Error("mcp get_muscle_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	logs, err := h.ds.QueryWorkoutLogs(ctx, heatmap.Cutoff(hm.GeneratedAt, days), uid)
	if err != nil {
		h.log.Error("mcp get_muscle_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	contrib := heatmap.Contributions(h.classifier, logs, days, hm.GeneratedAt)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"window_days":  days,
		"has_activity": hm.HasActivity,
		"muscles":      rankMuscles(hm, contrib),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) classifyExercise(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	result, err := mcp.NewToolResultJSON(h.classifier.Explain(name))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewHeatmap(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	overrides, err := parseOverrides(req.GetString("overrides_json", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	days, err := h.resolveWindow(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.engine.Preview(days, overrides))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
