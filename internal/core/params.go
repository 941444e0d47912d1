package core

// ModelParams is the provider-call configuration a cloud strategy resolves
// to: model choice, sampling parameters, output cap and extra transport
// headers. LocalOnly and Rejected carry no ModelParams.
type ModelParams struct {
	Model       string            `json:"model" yaml:"model"`
	Temperature float64           `json:"temperature" yaml:"temperature"`
	MaxTokens   int               `json:"max_tokens" yaml:"max_tokens"`
	TopP        float64           `json:"top_p" yaml:"top_p"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}
