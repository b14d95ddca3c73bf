package usage

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pvsairam/Sentient-Playground/pkg/llm"
	"github.com/pvsairam/Sentient-Playground/pkg/models"
)

// ModelRate maps a model-name substring to a provider and its per-million
// token rates (USD).
type ModelRate struct {
	Match         string  `yaml:"match"`
	Provider      string  `yaml:"provider"`
	InputPerMTok  float64 `yaml:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok"`
}

// PricingTable resolves model names to rates. Entries are matched in order
// and the first substring hit wins, so more specific entries (gpt-4o-mini)
// must precede their prefixes (gpt-4o).
type PricingTable struct {
	rates []ModelRate
}

// builtinRates is the default pricing table. Rates are per 1M tokens.
func builtinRates() []ModelRate {
	return []ModelRate{
		{Match: "gpt-4o-mini", Provider: models.ProviderOpenAI, InputPerMTok: 0.15, OutputPerMTok: 0.60},
		{Match: "gpt-4o", Provider: models.ProviderOpenAI, InputPerMTok: 2.50, OutputPerMTok: 10.00},
		{Match: "claude-3-5-sonnet", Provider: models.ProviderAnthropic, InputPerMTok: 3.00, OutputPerMTok: 15.00},
		{Match: "claude-3-5-haiku", Provider: models.ProviderAnthropic, InputPerMTok: 0.80, OutputPerMTok: 4.00},
		{Match: "dobby", Provider: models.ProviderFireworks, InputPerMTok: 1.00, OutputPerMTok: 1.00},
	}
}

// DefaultPricing returns the builtin pricing table.
func DefaultPricing() *PricingTable {
	return &PricingTable{rates: builtinRates()}
}

// pricingFile is the YAML shape of a pricing override file.
type pricingFile struct {
	Models []ModelRate `yaml:"models"`
}

// LoadPricing reads a YAML pricing file and merges it over the builtin
// table. File entries override builtin entries with the same match string
// and are otherwise prepended, so they win substring resolution.
func LoadPricing(path string) (*PricingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}

	var parsed pricingFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse pricing file: %w", err)
	}

	return mergePricing(builtinRates(), parsed.Models), nil
}

// mergePricing merges user rates over builtin rates. User entries replace
// builtin entries with the same match string in place; new entries are
// placed ahead of the builtins.
func mergePricing(builtin, user []ModelRate) *PricingTable {
	merged := make([]ModelRate, 0, len(builtin)+len(user))
	replaced := make(map[string]ModelRate, len(user))
	var fresh []ModelRate
	for _, rate := range user {
		if rate.Match == "" {
			continue
		}
		known := false
		for _, b := range builtin {
			if b.Match == rate.Match {
				known = true
				break
			}
		}
		if known {
			replaced[rate.Match] = rate
		} else {
			fresh = append(fresh, rate)
		}
	}

	merged = append(merged, fresh...)
	for _, rate := range builtin {
		if override, ok := replaced[rate.Match]; ok {
			merged = append(merged, override)
			continue
		}
		merged = append(merged, rate)
	}
	return &PricingTable{rates: merged}
}

// Lookup resolves a model name. Unrecognized models map to provider
// "unknown" with zero rates.
func (t *PricingTable) Lookup(model string) ModelRate {
	lower := strings.ToLower(model)
	for _, rate := range t.rates {
		if strings.Contains(lower, strings.ToLower(rate.Match)) {
			return rate
		}
	}
	return ModelRate{Match: "", Provider: models.ProviderUnknown}
}

// Cost estimates the USD cost of a call at this rate.
func (r ModelRate) Cost(u llm.Usage) float64 {
	return float64(u.PromptTokens)*r.InputPerMTok/1e6 +
		float64(u.CompletionTokens)*r.OutputPerMTok/1e6
}
