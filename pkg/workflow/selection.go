package workflow

import "github.com/pvsairam/Sentient-Playground/pkg/models"

// ModelSelection pins the models a realtime session will use: a router
// model for classification/planning/composition and a cheaper worker model
// for per-task execution.
type ModelSelection struct {
	Router string
	Worker string
}

// SelectModels picks the best available models for a credential bundle.
// A caller-selected Fireworks model wins, then Anthropic, then OpenAI.
// ok is false when the bundle carries no usable credentials; this is the
// credential-availability predicate that gates realtime mode.
func SelectModels(b models.CredentialBundle) (ModelSelection, bool) {
	switch {
	case b.Key(models.ProviderFireworks) != "" && b.ModelHint != "":
		return ModelSelection{Router: b.ModelHint, Worker: b.ModelHint}, true
	case b.Key(models.ProviderAnthropic) != "":
		return ModelSelection{
			Router: "claude-3-5-sonnet-20241022",
			Worker: "claude-3-5-haiku-20241022",
		}, true
	case b.Key(models.ProviderOpenAI) != "":
		return ModelSelection{Router: "gpt-4o", Worker: "gpt-4o-mini"}, true
	}
	return ModelSelection{}, false
}
