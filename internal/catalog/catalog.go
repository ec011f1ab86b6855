// Package catalog defines the fixed tool surface of the CapCut MCP server.
//
// The descriptor table below is the single source of truth for tool names,
// parameter types, defaults, and required fields. The dispatch core validates
// calls against it and the transport adapters derive the advertised JSON
// schemas from it, so the two can never diverge.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool names, matching the wire catalog exactly.
const (
	ToolCreateDraft = "create_draft"
	ToolAddVideo    = "add_video"
	ToolAddAudio    = "add_audio"
	ToolAddImage    = "add_image"
	ToolAddText     = "add_text"
	ToolAddSubtitle = "add_subtitle"
	ToolAddEffect   = "add_effect"
	ToolAddSticker  = "add_sticker"
	ToolSaveDraft   = "save_draft"
)

// DraftIDParam is the argument carrying the target draft identifier. Every
// tool except create_draft accepts it; the dispatch core enforces presence.
const DraftIDParam = "draft_id"

// Param describes one input parameter of a tool.
type Param struct {
	Name        string
	Type        string // JSON schema type: "string", "number", "integer", "boolean", "array"
	Description string
	Default     any // nil when the parameter has no default
	Required    bool
}

// Descriptor describes one remotely invocable tool.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// RequiredParams returns the names of all parameters marked required.
func (d Descriptor) RequiredParams() []string {
	var required []string
	for _, p := range d.Params {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// Defaults returns a fresh map of parameter name to declared default value.
// Parameters without a default are omitted.
func (d Descriptor) Defaults() map[string]any {
	defaults := make(map[string]any)
	for _, p := range d.Params {
		if p.Default != nil {
			defaults[p.Name] = p.Default
		}
	}
	return defaults
}

// InputSchema renders the descriptor as a JSON schema for tools/list.
func (d Descriptor) InputSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(d.Params))
	for _, p := range d.Params {
		prop := &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		}
		if p.Default != nil {
			raw, err := json.Marshal(p.Default)
			if err != nil {
				panic(fmt.Sprintf("catalog: marshal default for %s.%s: %v", d.Name, p.Name, err))
			}
			prop.Default = json.RawMessage(raw)
		}
		properties[p.Name] = prop
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   d.RequiredParams(),
	}
}

// Tools returns the full tool catalog in a stable order. The returned slice
// is a copy; callers may not mutate the catalog.
func Tools() []Descriptor {
	out := make([]Descriptor, len(tools))
	copy(out, tools)
	return out
}

// Lookup finds a descriptor by tool name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range tools {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// draftIDParam is shared by every tool that targets an existing draft.
var draftIDParam = Param{Name: DraftIDParam, Type: "string", Description: "Target draft ID"}

var tools = []Descriptor{
	{
		Name:        ToolCreateDraft,
		Description: "Create a new CapCut draft",
		Params: []Param{
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
		},
	},
	{
		Name:        ToolAddVideo,
		Description: "Add a video segment to a draft, with optional transition, mask, and background blur",
		Params: []Param{
			{Name: "video_url", Type: "string", Required: true, Description: "Video URL"},
			draftIDParam,
			{Name: "start", Type: "number", Default: 0, Description: "Source start time in seconds"},
			{Name: "end", Type: "number", Description: "Source end time in seconds"},
			{Name: "target_start", Type: "number", Default: 0, Description: "Timeline start time in seconds"},
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
			{Name: "transform_x", Type: "number", Default: 0, Description: "Horizontal position offset"},
			{Name: "transform_y", Type: "number", Default: 0, Description: "Vertical position offset"},
			{Name: "scale_x", Type: "number", Default: 1, Description: "Horizontal scale factor"},
			{Name: "scale_y", Type: "number", Default: 1, Description: "Vertical scale factor"},
			{Name: "speed", Type: "number", Default: 1.0, Description: "Playback speed"},
			{Name: "track_name", Type: "string", Default: "main", Description: "Track name"},
			{Name: "volume", Type: "number", Default: 1.0, Description: "Audio volume"},
			{Name: "transition", Type: "string", Description: "Transition type"},
			{Name: "transition_duration", Type: "number", Default: 0.5, Description: "Transition duration in seconds"},
			{Name: "mask_type", Type: "string", Description: "Mask type"},
			{Name: "background_blur", Type: "integer", Description: "Background blur level (1-4)"},
		},
	},
	{
		Name:        ToolAddAudio,
		Description: "Add an audio segment to a draft",
		Params: []Param{
			{Name: "audio_url", Type: "string", Required: true, Description: "Audio URL"},
			draftIDParam,
			{Name: "start", Type: "number", Default: 0, Description: "Source start time in seconds"},
			{Name: "end", Type: "number", Description: "Source end time in seconds"},
			{Name: "target_start", Type: "number", Default: 0, Description: "Timeline start time in seconds"},
			{Name: "volume", Type: "number", Default: 1.0, Description: "Audio volume"},
			{Name: "speed", Type: "number", Default: 1.0, Description: "Playback speed"},
			{Name: "track_name", Type: "string", Default: "audio_main", Description: "Track name"},
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
		},
	},
	{
		Name:        ToolAddImage,
		Description: "Add an image segment to a draft, with optional animations, transition, and mask",
		Params: []Param{
			{Name: "image_url", Type: "string", Required: true, Description: "Image URL"},
			draftIDParam,
			{Name: "start", Type: "number", Default: 0, Description: "Timeline start time in seconds"},
			{Name: "end", Type: "number", Default: 3.0, Description: "Timeline end time in seconds"},
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
			{Name: "transform_x", Type: "number", Default: 0, Description: "Horizontal position offset"},
			{Name: "transform_y", Type: "number", Default: 0, Description: "Vertical position offset"},
			{Name: "scale_x", Type: "number", Default: 1, Description: "Horizontal scale factor"},
			{Name: "scale_y", Type: "number", Default: 1, Description: "Vertical scale factor"},
			{Name: "track_name", Type: "string", Default: "main", Description: "Track name"},
			{Name: "intro_animation", Type: "string", Description: "Intro animation name"},
			{Name: "outro_animation", Type: "string", Description: "Outro animation name"},
			{Name: "transition", Type: "string", Description: "Transition type"},
			{Name: "mask_type", Type: "string", Description: "Mask type"},
		},
	},
	{
		Name:        ToolAddText,
		Description: "Add styled text to a draft, with optional shadow, background, and per-range styles",
		Params: []Param{
			{Name: "text", Type: "string", Required: true, Description: "Text content"},
			{Name: "start", Type: "number", Required: true, Description: "Timeline start time in seconds"},
			{Name: "end", Type: "number", Required: true, Description: "Timeline end time in seconds"},
			draftIDParam,
			{Name: "font_color", Type: "string", Default: "#ffffff", Description: "Font color"},
			{Name: "font_size", Type: "integer", Default: 24, Description: "Font size"},
			{Name: "shadow_enabled", Type: "boolean", Default: false, Description: "Enable text shadow"},
			{Name: "shadow_color", Type: "string", Default: "#000000", Description: "Shadow color"},
			{Name: "shadow_alpha", Type: "number", Default: 0.8, Description: "Shadow opacity"},
			{Name: "shadow_angle", Type: "number", Default: 315.0, Description: "Shadow angle in degrees"},
			{Name: "shadow_distance", Type: "number", Default: 5.0, Description: "Shadow distance"},
			{Name: "shadow_smoothing", Type: "number", Default: 0.0, Description: "Shadow smoothing"},
			{Name: "background_color", Type: "string", Description: "Background color"},
			{Name: "background_alpha", Type: "number", Default: 1.0, Description: "Background opacity"},
			{Name: "background_style", Type: "integer", Default: 0, Description: "Background style"},
			{Name: "background_round_radius", Type: "number", Default: 0.0, Description: "Background corner radius"},
			{Name: "text_styles", Type: "array", Description: "Per-range style overrides"},
		},
	},
	{
		Name:        ToolAddSubtitle,
		Description: "Add an SRT subtitle track to a draft with styling options",
		Params: []Param{
			{Name: "srt_path", Type: "string", Required: true, Description: "SRT file path or URL"},
			draftIDParam,
			{Name: "track_name", Type: "string", Default: "subtitle", Description: "Track name"},
			{Name: "time_offset", Type: "number", Default: 0, Description: "Time offset in seconds"},
			{Name: "font", Type: "string", Description: "Font name"},
			{Name: "font_size", Type: "number", Default: 8.0, Description: "Font size"},
			{Name: "font_color", Type: "string", Default: "#FFFFFF", Description: "Font color"},
			{Name: "bold", Type: "boolean", Default: false, Description: "Bold text"},
			{Name: "italic", Type: "boolean", Default: false, Description: "Italic text"},
			{Name: "underline", Type: "boolean", Default: false, Description: "Underlined text"},
			{Name: "border_width", Type: "number", Default: 0.0, Description: "Border width"},
			{Name: "border_color", Type: "string", Default: "#000000", Description: "Border color"},
			{Name: "background_color", Type: "string", Default: "#000000", Description: "Background color"},
			{Name: "background_alpha", Type: "number", Default: 0.0, Description: "Background opacity"},
			{Name: "transform_x", Type: "number", Default: 0.0, Description: "Horizontal position offset"},
			{Name: "transform_y", Type: "number", Default: -0.8, Description: "Vertical position offset"},
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
		},
	},
	{
		Name:        ToolAddEffect,
		Description: "Add a visual effect to a draft",
		Params: []Param{
			{Name: "effect_type", Type: "string", Required: true, Description: "Effect type name"},
			draftIDParam,
			{Name: "start", Type: "number", Default: 0, Description: "Timeline start time in seconds"},
			{Name: "end", Type: "number", Default: 3.0, Description: "Timeline end time in seconds"},
			{Name: "track_name", Type: "string", Default: "effect_01", Description: "Track name"},
			{Name: "params", Type: "array", Description: "Effect parameter list"},
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
		},
	},
	{
		Name:        ToolAddSticker,
		Description: "Add a sticker to a draft",
		Params: []Param{
			{Name: "sticker_url", Type: "string", Required: true, Description: "Sticker URL"},
			draftIDParam,
			{Name: "start", Type: "number", Default: 0, Description: "Timeline start time in seconds"},
			{Name: "end", Type: "number", Default: 3.0, Description: "Timeline end time in seconds"},
			{Name: "width", Type: "integer", Default: 1080, Description: "Canvas width in pixels"},
			{Name: "height", Type: "integer", Default: 1920, Description: "Canvas height in pixels"},
			{Name: "transform_x", Type: "number", Default: 0, Description: "Horizontal position offset"},
			{Name: "transform_y", Type: "number", Default: 0, Description: "Vertical position offset"},
			{Name: "scale_x", Type: "number", Default: 1, Description: "Horizontal scale factor"},
			{Name: "scale_y", Type: "number", Default: 1, Description: "Vertical scale factor"},
			{Name: "rotation", Type: "number", Default: 0, Description: "Rotation angle in degrees"},
			{Name: "track_name", Type: "string", Default: "sticker_main", Description: "Track name"},
		},
	},
	{
		Name:        ToolSaveDraft,
		Description: "Save a draft and produce the final composition",
		Params: []Param{
			{Name: DraftIDParam, Type: "string", Required: true, Description: "Target draft ID"},
		},
	},
}
