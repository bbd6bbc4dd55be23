package llm

import (
	"context"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// Generator is the text-generation capability. Failures are surfaced as-is;
// no retries happen at this layer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type Config struct {
	BaseURL string   `json:"baseURL" yaml:"baseURL"`
	APIKey  string   `json:"apiKey" yaml:"apiKey"`
	Model   string   `json:"model" yaml:"model"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	// Parse the string duration
	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() ([]byte, error) {
	str := d.Duration().String()
	return yaml.Marshal(str)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	// Parse the string duration
	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}
