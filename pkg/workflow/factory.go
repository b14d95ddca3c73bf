package workflow

import (
	"github.com/pvsairam/Sentient-Playground/pkg/llm"
	"github.com/pvsairam/Sentient-Playground/pkg/models"
	"github.com/pvsairam/Sentient-Playground/pkg/usage"
)

// Factory selects and builds the engine for a session. Selection is a
// credential-availability predicate, never a type check: a job flagged for
// realtime still falls back to the simulated engine when no usable
// credentials survive to WebSocket attach.
type Factory struct {
	tracker  *usage.Tracker
	defaults models.CredentialBundle
	pacing   Pacing

	// clientOpts lets tests point provider clients at local servers.
	clientOpts []llm.Option
}

// NewFactory creates an engine factory. defaults supplies server-side
// provider keys (from the environment) used when a job's bundle is missing
// an entry.
func NewFactory(tracker *usage.Tracker, defaults models.CredentialBundle, pacing Pacing, clientOpts ...llm.Option) *Factory {
	return &Factory{
		tracker:    tracker,
		defaults:   defaults,
		pacing:     pacing,
		clientOpts: clientOpts,
	}
}

// EngineFor picks the engine for a job. The session bundle is merged over
// the server defaults; caller-supplied keys always win.
func (f *Factory) EngineFor(job models.Job, bundle models.CredentialBundle) Engine {
	if job.UseRealtime {
		merged := bundle.Merge(f.defaults)
		if selection, ok := SelectModels(merged); ok {
			client := llm.NewClient(merged.Keys, merged.ModelHint, f.clientOpts...)
			return NewRealtimeEngine(client, selection, f.tracker, f.pacing)
		}
	}
	return NewSimulatedEngine(f.pacing)
}

// Available reports whether a bundle (merged over the server defaults)
// can run in realtime mode. Used at job creation to set the realtime flag.
func (f *Factory) Available(bundle models.CredentialBundle) bool {
	_, ok := SelectModels(bundle.Merge(f.defaults))
	return ok
}

// RealtimeAvailable reports whether the server's own credentials allow
// realtime mode without caller-supplied keys. Surfaced by /health.
func (f *Factory) RealtimeAvailable() bool {
	_, ok := SelectModels(f.defaults)
	return ok
}
