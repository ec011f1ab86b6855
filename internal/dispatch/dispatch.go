// Package dispatch validates tool calls against the catalog and routes them
// to the composition backend, producing the uniform result envelope.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/go-viper/mapstructure/v2"

	"github.com/guanyang/capcut-mcp/internal/catalog"
	"github.com/guanyang/capcut-mcp/internal/composer"
	"github.com/guanyang/capcut-mcp/internal/draft"
)

// Dispatcher is the shared call core behind every transport adapter.
type Dispatcher struct {
	registry *draft.Registry
	composer composer.Composer

	// includeTracebacks attaches a diagnostic stack to composer and internal
	// failures. Enabled for the local stdio channel only; the network-facing
	// SSE channel never leaks process internals.
	includeTracebacks bool
}

// New creates a dispatcher over the shared registry and composer.
func New(registry *draft.Registry, comp composer.Composer, includeTracebacks bool) *Dispatcher {
	return &Dispatcher{
		registry:          registry,
		composer:          comp,
		includeTracebacks: includeTracebacks,
	}
}

// Invoke runs one tool call end to end. It is total: every failure path,
// including a panic below this frame, is folded into the result envelope and
// the dispatcher stays usable for subsequent calls.
func (d *Dispatcher) Invoke(ctx context.Context, req Request) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = d.failure(errInternal(fmt.Sprintf("panic: %v", rec)))
		}
	}()

	desc, ok := catalog.Lookup(req.Name)
	if !ok {
		return Fail(errUnknownTool(req.Name))
	}

	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}
	for _, field := range desc.RequiredParams() {
		if _, present := args[field]; !present {
			return Fail(errMissingArgument(field))
		}
	}

	switch req.Name {
	case catalog.ToolCreateDraft:
		return d.createDraft(ctx, desc, args)
	case catalog.ToolSaveDraft:
		return d.saveDraft(ctx, args)
	default:
		return d.addAsset(ctx, desc, req.Name, args)
	}
}

// createDraft allocates a registry session. The registry talks to the
// composer itself so a backend failure leaves no entry behind.
func (d *Dispatcher) createDraft(ctx context.Context, desc catalog.Descriptor, args map[string]any) Result {
	merged := merge(desc.Defaults(), args)
	width := intArg(merged, "width", 1080)
	height := intArg(merged, "height", 1920)

	session, err := d.registry.Create(ctx, width, height)
	if err != nil {
		return d.failure(errComposer(err))
	}

	return Succeed(map[string]any{
		"draft_id":     session.ID,
		"draft_folder": session.Folder,
		"width":        session.Width,
		"height":       session.Height,
	})
}

// addAsset resolves the draft, holds its operation lock across the composer
// call, and advances the session to composing on first success.
func (d *Dispatcher) addAsset(ctx context.Context, desc catalog.Descriptor, name string, args map[string]any) Result {
	id, ok := args[catalog.DraftIDParam].(string)
	if !ok || id == "" {
		return Fail(errInvalidDraftID())
	}

	session, unlock, err := d.registry.Lock(id)
	if err != nil {
		return Fail(errInvalidDraftID())
	}
	defer unlock()

	if session.State == draft.StateSaved {
		return Fail(errDraftState("Draft already saved"))
	}

	merged := merge(desc.Defaults(), args)
	// Dimensions declared at create_draft are the draft's defaults; the
	// catalog's process-wide defaults apply only before a session exists.
	if _, present := args["width"]; !present {
		merged["width"] = session.Width
	}
	if _, present := args["height"]; !present {
		merged["height"] = session.Height
	}

	payload, err := d.callComposer(ctx, name, session.Folder, merged)
	if err != nil {
		var dispatchErr *Error
		if errors.As(err, &dispatchErr) {
			return d.failure(dispatchErr)
		}
		return d.failure(errComposer(err))
	}

	if session.State == draft.StateNew {
		if err := d.registry.AdvanceState(id, draft.StateComposing); err != nil {
			return d.failure(errInternal(fmt.Sprintf("advance draft state: %v", err)))
		}
	}

	return Succeed(map[string]any{
		"draft_id": id,
		"result":   payload,
	})
}

// saveDraft renders the final composition and marks the session saved. An
// empty save (no assets added yet) is permitted.
func (d *Dispatcher) saveDraft(ctx context.Context, args map[string]any) Result {
	id, ok := args[catalog.DraftIDParam].(string)
	if !ok || id == "" {
		return Fail(errInvalidDraftID())
	}

	session, unlock, err := d.registry.Lock(id)
	if err != nil {
		return Fail(errInvalidDraftID())
	}
	defer unlock()

	if session.State == draft.StateSaved {
		return Fail(errDraftState("Draft already saved"))
	}

	payload, err := d.composer.SaveDraft(ctx, session.Folder, id)
	if err != nil {
		return d.failure(errComposer(err))
	}

	if err := d.registry.AdvanceState(id, draft.StateSaved); err != nil {
		return d.failure(errInternal(fmt.Sprintf("advance draft state: %v", err)))
	}

	return Succeed(map[string]any{
		"draft_id": id,
		"result":   payload,
	})
}

// callComposer decodes the merged argument set into the matching parameter
// struct, derives duration where the tool calls for it, and invokes the
// composer entry point for the tool.
func (d *Dispatcher) callComposer(ctx context.Context, name, folder string, merged map[string]any) (any, error) {
	switch name {
	case catalog.ToolAddVideo:
		var p composer.VideoParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		return d.composer.AddVideo(ctx, folder, p)
	case catalog.ToolAddAudio:
		var p composer.AudioParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		return d.composer.AddAudio(ctx, folder, p)
	case catalog.ToolAddImage:
		var p composer.ImageParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		p.Duration = spanDuration(merged)
		return d.composer.AddImage(ctx, folder, p)
	case catalog.ToolAddText:
		var p composer.TextParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		p.Duration = spanDuration(merged)
		p.TrackName = "text_main"
		return d.composer.AddText(ctx, folder, p)
	case catalog.ToolAddSubtitle:
		var p composer.SubtitleParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		return d.composer.AddSubtitle(ctx, folder, p)
	case catalog.ToolAddEffect:
		var p composer.EffectParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		p.Duration = spanDuration(merged)
		return d.composer.AddEffect(ctx, folder, p)
	case catalog.ToolAddSticker:
		var p composer.StickerParams
		if err := decodeParams(name, merged, &p); err != nil {
			return nil, err
		}
		p.Duration = spanDuration(merged)
		return d.composer.AddSticker(ctx, folder, p)
	default:
		return nil, errInternal(fmt.Sprintf("no composer entry point for tool %s", name))
	}
}

// failure builds a failure envelope, attaching a diagnostic stack to
// composer and internal faults when tracebacks are enabled.
func (d *Dispatcher) failure(err *Error) Result {
	result := Fail(err)
	if d.includeTracebacks && (err.Kind == KindComposerError || err.Kind == KindInternal) {
		result.Traceback = string(debug.Stack())
	}
	return result
}

// decodeParams maps the merged argument set onto a composer parameter
// struct. Decoding is weakly typed to accept the numeric representations
// JSON delivers.
func decodeParams(tool string, merged map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errInternal(fmt.Sprintf("build %s decoder: %v", tool, err))
	}
	if err := decoder.Decode(merged); err != nil {
		return errInternal(fmt.Sprintf("decode %s arguments: %v", tool, err))
	}
	return nil
}

// spanDuration derives end - start from the merged arguments. Zero and
// negative spans are passed through untouched; rejecting them is the
// backend's call.
func spanDuration(merged map[string]any) float64 {
	return floatArg(merged, "end", 0) - floatArg(merged, "start", 0)
}

// merge overlays caller arguments on top of declared defaults.
func merge(defaults, args map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(args))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range args {
		merged[k] = v
	}
	return merged
}

func floatArg(args map[string]any, key string, fallback float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	default:
		return fallback
	}
}
