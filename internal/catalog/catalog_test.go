package catalog

import (
	"testing"
)

func TestToolsMatchWireCatalog(t *testing.T) {
	want := []string{
		"create_draft",
		"add_video",
		"add_audio",
		"add_image",
		"add_text",
		"add_subtitle",
		"add_effect",
		"add_sticker",
		"save_draft",
	}
	got := Tools()
	if len(got) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("tool %d: expected %q, got %q", i, name, got[i].Name)
		}
	}
}

func TestRequiredParams(t *testing.T) {
	tests := []struct {
		tool string
		want []string
	}{
		{"create_draft", nil},
		{"add_video", []string{"video_url"}},
		{"add_audio", []string{"audio_url"}},
		{"add_image", []string{"image_url"}},
		{"add_text", []string{"text", "start", "end"}},
		{"add_subtitle", []string{"srt_path"}},
		{"add_effect", []string{"effect_type"}},
		{"add_sticker", []string{"sticker_url"}},
		{"save_draft", []string{"draft_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			desc, ok := Lookup(tt.tool)
			if !ok {
				t.Fatalf("tool %q not in catalog", tt.tool)
			}
			got := desc.RequiredParams()
			if len(got) != len(tt.want) {
				t.Fatalf("expected required %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("required[%d]: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	desc, ok := Lookup("create_draft")
	if !ok {
		t.Fatal("create_draft not in catalog")
	}
	defaults := desc.Defaults()
	if defaults["width"] != 1080 {
		t.Errorf("expected width default 1080, got %v", defaults["width"])
	}
	if defaults["height"] != 1920 {
		t.Errorf("expected height default 1920, got %v", defaults["height"])
	}

	desc, _ = Lookup("add_image")
	defaults = desc.Defaults()
	if defaults["end"] != 3.0 {
		t.Errorf("expected add_image end default 3.0, got %v", defaults["end"])
	}
	if defaults["track_name"] != "main" {
		t.Errorf("expected add_image track_name default main, got %v", defaults["track_name"])
	}
	if _, ok := defaults["image_url"]; ok {
		t.Error("required params must not carry defaults")
	}
}

func TestDraftIDAcceptedByAllButCreate(t *testing.T) {
	for _, desc := range Tools() {
		hasDraftID := false
		for _, p := range desc.Params {
			if p.Name == DraftIDParam {
				hasDraftID = true
			}
		}
		if desc.Name == ToolCreateDraft {
			if hasDraftID {
				t.Error("create_draft must not accept draft_id")
			}
			continue
		}
		if !hasDraftID {
			t.Errorf("tool %q must accept draft_id", desc.Name)
		}
	}
}

func TestInputSchemaRendering(t *testing.T) {
	desc, _ := Lookup("add_video")
	schema := desc.InputSchema()
	if schema.Type != "object" {
		t.Fatalf("expected object schema, got %q", schema.Type)
	}
	prop, ok := schema.Properties["speed"]
	if !ok {
		t.Fatal("expected speed property")
	}
	if prop.Type != "number" {
		t.Errorf("expected speed type number, got %q", prop.Type)
	}
	if string(prop.Default) != "1" {
		t.Errorf("expected speed default 1, got %s", prop.Default)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "video_url" {
		t.Errorf("expected required [video_url], got %v", schema.Required)
	}
}

func TestToolsReturnsCopy(t *testing.T) {
	first := Tools()
	first[0] = Descriptor{Name: "mutated"}
	if Tools()[0].Name != ToolCreateDraft {
		t.Error("mutating the returned slice must not alter the catalog")
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("foo"); ok {
		t.Error("expected lookup miss for unknown tool")
	}
}
