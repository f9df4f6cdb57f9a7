// Package pricing maps model identifiers to per-token rates and turns
// usage counts into dollar cost.
package pricing

// Rates holds per-million-token prices in USD.
type Rates struct {
	Prompt     float64
	Completion float64
}

// tokenDenominator is the token count the published rates are quoted against.
const tokenDenominator = 1_000_000

// table is the embedded price list. Models absent from the table price
// at zero rather than erroring.
var table = map[string]Rates{
	"gpt-5":      {Prompt: 1.25, Completion: 10.0},
	"gpt-5-mini": {Prompt: 0.25, Completion: 2.0},
	"gpt-5-nano": {Prompt: 0.05, Completion: 0.4},
}

// Lookup returns the rates for a model and whether the model is priced.
func Lookup(model string) (Rates, bool) {
	r, ok := table[model]
	return r, ok
}

// Cost computes the dollar cost of a completion. Unknown models cost 0.
func Cost(model string, promptTokens, completionTokens int) float64 {
	r, ok := table[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/tokenDenominator*r.Prompt +
		float64(completionTokens)/tokenDenominator*r.Completion
}
