package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/guanyang/capcut-mcp/internal/catalog"
	"github.com/guanyang/capcut-mcp/internal/composer"
	"github.com/guanyang/capcut-mcp/internal/dispatch"
	"github.com/guanyang/capcut-mcp/internal/draft"
)

// stubComposer satisfies the composer boundary with canned results.
type stubComposer struct {
	err error
}

func (s *stubComposer) CreateDraft(_ context.Context, draftID string, width, height int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "/drafts/" + draftID, nil
}

func (s *stubComposer) asset() (any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[string]any{"segment_id": "seg-1"}, nil
}

func (s *stubComposer) AddVideo(context.Context, string, composer.VideoParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) AddAudio(context.Context, string, composer.AudioParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) AddImage(context.Context, string, composer.ImageParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) AddText(context.Context, string, composer.TextParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) AddSubtitle(context.Context, string, composer.SubtitleParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) AddEffect(context.Context, string, composer.EffectParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) AddSticker(context.Context, string, composer.StickerParams) (any, error) {
	return s.asset()
}

func (s *stubComposer) SaveDraft(context.Context, string, string) (any, error) {
	return s.asset()
}

// connectClientSession builds a server over a stub composer and connects an
// in-memory MCP client to it.
func connectClientSession(t *testing.T) (*mcp.ClientSession, func()) {
	t.Helper()

	stub := &stubComposer{}
	dispatcher := dispatch.New(draft.NewRegistry(stub), stub, false)
	server := NewServer(dispatcher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect server: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		_ = serverSession.Close()
		cancel()
		t.Fatalf("connect client: %v", err)
	}
	return clientSession, func() {
		_ = clientSession.Close()
		_ = serverSession.Close()
		cancel()
	}
}

// callEnvelope invokes a tool and decodes the result envelope from its text
// content.
func callEnvelope(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (map[string]any, *mcp.CallToolResult) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("call %s returned %d content blocks, want 1", name, len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("call %s returned %T content, want text", name, res.Content[0])
	}
	var envelope map[string]any
	if err := json.Unmarshal([]byte(text.Text), &envelope); err != nil {
		t.Fatalf("decode %s envelope: %v", name, err)
	}
	return envelope, res
}

func TestListToolsExposesCatalog(t *testing.T) {
	session, closeFn := connectClientSession(t)
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	listed := make(map[string]*mcp.Tool, len(res.Tools))
	for _, tool := range res.Tools {
		listed[tool.Name] = tool
	}
	for _, desc := range catalog.Tools() {
		tool, ok := listed[desc.Name]
		if !ok {
			t.Errorf("tool %s not listed", desc.Name)
			continue
		}
		if tool.Description != desc.Description {
			t.Errorf("tool %s description = %q, want %q", desc.Name, tool.Description, desc.Description)
		}
	}
	if len(res.Tools) != len(catalog.Tools()) {
		t.Errorf("listed %d tools, want %d", len(res.Tools), len(catalog.Tools()))
	}

	video := listed[catalog.ToolAddVideo]
	if video == nil || video.InputSchema == nil {
		t.Fatal("add_video schema missing")
	}
	schema, err := json.Marshal(video.InputSchema)
	if err != nil {
		t.Fatalf("marshal add_video schema: %v", err)
	}
	if !strings.Contains(string(schema), `"video_url"`) {
		t.Errorf("add_video schema missing video_url: %s", schema)
	}
}

func TestCallToolSuccessEnvelope(t *testing.T) {
	session, closeFn := connectClientSession(t)
	defer closeFn()

	envelope, res := callEnvelope(t, session, catalog.ToolCreateDraft, map[string]any{})

	if res.IsError {
		t.Fatal("create_draft marked as error")
	}
	if envelope["success"] != true {
		t.Errorf("success = %v, want true", envelope["success"])
	}
	id, _ := envelope["draft_id"].(string)
	if id == "" {
		t.Error("draft_id missing from envelope")
	}
	if envelope["width"] != float64(1080) || envelope["height"] != float64(1920) {
		t.Errorf("dimensions = %vx%v, want 1080x1920", envelope["width"], envelope["height"])
	}
}

func TestCallToolFailureEnvelope(t *testing.T) {
	session, closeFn := connectClientSession(t)
	defer closeFn()

	envelope, res := callEnvelope(t, session, catalog.ToolAddImage, map[string]any{"draft_id": "d"})

	if !res.IsError {
		t.Fatal("expected error result")
	}
	if envelope["success"] != false {
		t.Errorf("success = %v, want false", envelope["success"])
	}
	if envelope["kind"] != string(dispatch.KindMissingArgument) {
		t.Errorf("kind = %v, want %s", envelope["kind"], dispatch.KindMissingArgument)
	}
	if envelope["error"] != "Missing required argument: image_url" {
		t.Errorf("error = %v", envelope["error"])
	}
	if _, present := envelope["traceback"]; present {
		t.Error("remote channel envelope carries a traceback")
	}
}

func TestCallToolCompositionFlow(t *testing.T) {
	session, closeFn := connectClientSession(t)
	defer closeFn()

	envelope, _ := callEnvelope(t, session, catalog.ToolCreateDraft, map[string]any{"width": 720, "height": 1280})
	id := envelope["draft_id"].(string)

	envelope, res := callEnvelope(t, session, catalog.ToolAddImage, map[string]any{
		"image_url": "http://x/a.png",
		"draft_id":  id,
		"start":     0,
		"end":       2.5,
	})
	if res.IsError {
		t.Fatalf("add_image failed: %v", envelope["error"])
	}
	if envelope["draft_id"] != id {
		t.Errorf("add_image draft_id = %v, want %s", envelope["draft_id"], id)
	}

	envelope, res = callEnvelope(t, session, catalog.ToolSaveDraft, map[string]any{"draft_id": id})
	if res.IsError {
		t.Fatalf("save_draft failed: %v", envelope["error"])
	}

	envelope, res = callEnvelope(t, session, catalog.ToolSaveDraft, map[string]any{"draft_id": id})
	if !res.IsError {
		t.Fatal("second save succeeded")
	}
	if envelope["kind"] != string(dispatch.KindDraftState) {
		t.Errorf("kind = %v, want %s", envelope["kind"], dispatch.KindDraftState)
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	stub := &stubComposer{}
	err := Run(context.Background(), Config{
		Transport: "tcp",
		Registry:  draft.NewRegistry(stub),
		Composer:  stub,
	})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("err = %v, want unsupported transport error", err)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if err := Run(context.Background(), Config{Transport: TransportStdio}); err == nil {
		t.Fatal("expected error for missing registry and composer")
	}
}
