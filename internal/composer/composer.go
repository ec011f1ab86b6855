// Package composer defines the boundary to the composition backend.
//
// The backend owns all actual media manipulation: it materializes draft
// folders, mutates tracks, downloads remote assets, and renders saves. The
// dispatch core treats it as a black box with one entry point per asset kind.
package composer

import "context"

// Composer is the external collaborator that turns a validated tool call
// into a mutation of a draft's backing folder. Calls may block on file I/O
// or network fetches; callers are expected to bound them with the context.
type Composer interface {
	CreateDraft(ctx context.Context, draftID string, width, height int) (folder string, err error)
	AddVideo(ctx context.Context, folder string, p VideoParams) (any, error)
	AddAudio(ctx context.Context, folder string, p AudioParams) (any, error)
	AddImage(ctx context.Context, folder string, p ImageParams) (any, error)
	AddText(ctx context.Context, folder string, p TextParams) (any, error)
	AddSubtitle(ctx context.Context, folder string, p SubtitleParams) (any, error)
	AddEffect(ctx context.Context, folder string, p EffectParams) (any, error)
	AddSticker(ctx context.Context, folder string, p StickerParams) (any, error)
	SaveDraft(ctx context.Context, folder, draftID string) (any, error)
}

// VideoParams carries the merged argument set for a video segment. Start and
// End describe the source clip range and are passed through untouched; the
// backend derives its own duration semantics for video.
type VideoParams struct {
	VideoURL           string   `mapstructure:"video_url" json:"video_url"`
	Start              float64  `mapstructure:"start" json:"start"`
	End                *float64 `mapstructure:"end" json:"end,omitempty"`
	TargetStart        float64  `mapstructure:"target_start" json:"target_start"`
	Width              int      `mapstructure:"width" json:"width"`
	Height             int      `mapstructure:"height" json:"height"`
	TransformX         float64  `mapstructure:"transform_x" json:"transform_x"`
	TransformY         float64  `mapstructure:"transform_y" json:"transform_y"`
	ScaleX             float64  `mapstructure:"scale_x" json:"scale_x"`
	ScaleY             float64  `mapstructure:"scale_y" json:"scale_y"`
	Speed              float64  `mapstructure:"speed" json:"speed"`
	TrackName          string   `mapstructure:"track_name" json:"track_name"`
	Volume             float64  `mapstructure:"volume" json:"volume"`
	Transition         *string  `mapstructure:"transition" json:"transition,omitempty"`
	TransitionDuration float64  `mapstructure:"transition_duration" json:"transition_duration"`
	MaskType           *string  `mapstructure:"mask_type" json:"mask_type,omitempty"`
	BackgroundBlur     *int     `mapstructure:"background_blur" json:"background_blur,omitempty"`
}

// AudioParams carries the merged argument set for an audio segment.
type AudioParams struct {
	AudioURL    string   `mapstructure:"audio_url" json:"audio_url"`
	Start       float64  `mapstructure:"start" json:"start"`
	End         *float64 `mapstructure:"end" json:"end,omitempty"`
	TargetStart float64  `mapstructure:"target_start" json:"target_start"`
	Volume      float64  `mapstructure:"volume" json:"volume"`
	Speed       float64  `mapstructure:"speed" json:"speed"`
	TrackName   string   `mapstructure:"track_name" json:"track_name"`
	Width       int      `mapstructure:"width" json:"width"`
	Height      int      `mapstructure:"height" json:"height"`
}

// ImageParams carries the merged argument set for an image segment.
// Duration is derived by the dispatch core as end - start.
type ImageParams struct {
	ImageURL       string  `mapstructure:"image_url" json:"image_url"`
	Start          float64 `mapstructure:"start" json:"start"`
	Duration       float64 `mapstructure:"-" json:"duration"`
	Width          int     `mapstructure:"width" json:"width"`
	Height         int     `mapstructure:"height" json:"height"`
	TransformX     float64 `mapstructure:"transform_x" json:"transform_x"`
	TransformY     float64 `mapstructure:"transform_y" json:"transform_y"`
	ScaleX         float64 `mapstructure:"scale_x" json:"scale_x"`
	ScaleY         float64 `mapstructure:"scale_y" json:"scale_y"`
	TrackName      string  `mapstructure:"track_name" json:"track_name"`
	IntroAnimation *string `mapstructure:"intro_animation" json:"intro_animation,omitempty"`
	OutroAnimation *string `mapstructure:"outro_animation" json:"outro_animation,omitempty"`
	Transition     *string `mapstructure:"transition" json:"transition,omitempty"`
	MaskType       *string `mapstructure:"mask_type" json:"mask_type,omitempty"`
}

// TextParams carries the merged argument set for a text segment. Text always
// lands on the fixed "text_main" track. Duration is derived as end - start.
type TextParams struct {
	Text                  string           `mapstructure:"text" json:"text"`
	Start                 float64          `mapstructure:"start" json:"start"`
	Duration              float64          `mapstructure:"-" json:"duration"`
	FontColor             string           `mapstructure:"font_color" json:"font_color"`
	FontSize              int              `mapstructure:"font_size" json:"font_size"`
	TrackName             string           `mapstructure:"-" json:"track_name"`
	Width                 int              `mapstructure:"width" json:"width"`
	Height                int              `mapstructure:"height" json:"height"`
	TextStyles            []map[string]any `mapstructure:"text_styles" json:"text_styles,omitempty"`
	ShadowEnabled         bool             `mapstructure:"shadow_enabled" json:"shadow_enabled"`
	ShadowColor           string           `mapstructure:"shadow_color" json:"shadow_color"`
	ShadowAlpha           float64          `mapstructure:"shadow_alpha" json:"shadow_alpha"`
	ShadowAngle           float64          `mapstructure:"shadow_angle" json:"shadow_angle"`
	ShadowDistance        float64          `mapstructure:"shadow_distance" json:"shadow_distance"`
	ShadowSmoothing       float64          `mapstructure:"shadow_smoothing" json:"shadow_smoothing"`
	BackgroundColor       *string          `mapstructure:"background_color" json:"background_color,omitempty"`
	BackgroundAlpha       float64          `mapstructure:"background_alpha" json:"background_alpha"`
	BackgroundStyle       int              `mapstructure:"background_style" json:"background_style"`
	BackgroundRoundRadius float64          `mapstructure:"background_round_radius" json:"background_round_radius"`
}

// SubtitleParams carries the merged argument set for an SRT subtitle track.
type SubtitleParams struct {
	SRTPath         string  `mapstructure:"srt_path" json:"srt_path"`
	TrackName       string  `mapstructure:"track_name" json:"track_name"`
	TimeOffset      float64 `mapstructure:"time_offset" json:"time_offset"`
	Font            *string `mapstructure:"font" json:"font,omitempty"`
	FontSize        float64 `mapstructure:"font_size" json:"font_size"`
	FontColor       string  `mapstructure:"font_color" json:"font_color"`
	Bold            bool    `mapstructure:"bold" json:"bold"`
	Italic          bool    `mapstructure:"italic" json:"italic"`
	Underline       bool    `mapstructure:"underline" json:"underline"`
	BorderWidth     float64 `mapstructure:"border_width" json:"border_width"`
	BorderColor     string  `mapstructure:"border_color" json:"border_color"`
	BackgroundColor string  `mapstructure:"background_color" json:"background_color"`
	BackgroundAlpha float64 `mapstructure:"background_alpha" json:"background_alpha"`
	TransformX      float64 `mapstructure:"transform_x" json:"transform_x"`
	TransformY      float64 `mapstructure:"transform_y" json:"transform_y"`
	Width           int     `mapstructure:"width" json:"width"`
	Height          int     `mapstructure:"height" json:"height"`
}

// EffectParams carries the merged argument set for a visual effect.
// Duration is derived as end - start.
type EffectParams struct {
	EffectType string  `mapstructure:"effect_type" json:"effect_type"`
	Start      float64 `mapstructure:"start" json:"start"`
	Duration   float64 `mapstructure:"-" json:"duration"`
	TrackName  string  `mapstructure:"track_name" json:"track_name"`
	Params     []any   `mapstructure:"params" json:"params"`
	Width      int     `mapstructure:"width" json:"width"`
	Height     int     `mapstructure:"height" json:"height"`
}

// StickerParams carries the merged argument set for a sticker segment.
// Duration is derived as end - start.
type StickerParams struct {
	StickerURL string  `mapstructure:"sticker_url" json:"sticker_url"`
	Start      float64 `mapstructure:"start" json:"start"`
	Duration   float64 `mapstructure:"-" json:"duration"`
	Width      int     `mapstructure:"width" json:"width"`
	Height     int     `mapstructure:"height" json:"height"`
	TransformX float64 `mapstructure:"transform_x" json:"transform_x"`
	TransformY float64 `mapstructure:"transform_y" json:"transform_y"`
	ScaleX     float64 `mapstructure:"scale_x" json:"scale_x"`
	ScaleY     float64 `mapstructure:"scale_y" json:"scale_y"`
	Rotation   float64 `mapstructure:"rotation" json:"rotation"`
	TrackName  string  `mapstructure:"track_name" json:"track_name"`
}
