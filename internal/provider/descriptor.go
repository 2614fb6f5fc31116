package provider

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Kind identifies which backend integration a provider entry instantiates.
type Kind string

const (
	KindGoogle    Kind = "google"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
)

// Descriptor is the raw configuration record for one provider, stored as JSON
// in the configuration store under the provider id.
type Descriptor struct {
	// ID is the configuration store key, not part of the JSON value.
	ID string `json:"-"`

	Kind        Kind   `json:"provider" validate:"required"`
	SecretName  string `json:"apiKeySecretName" validate:"required"`
	RoutingPath string `json:"gatewayProviderPath" validate:"required"`
}

var validate = validator.New()

// ParseDescriptor decodes and validates one configuration store value.
func ParseDescriptor(id, raw string) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: provider %q: %v", ErrDescriptorInvalid, id, err)
	}

	d.ID = id

	if err := validate.Struct(d); err != nil {
		return Descriptor{}, fmt.Errorf("%w: provider %q: %v", ErrDescriptorInvalid, id, err)
	}

	return d, nil
}
