package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuboski/openai-gateway/internal/aigateway"
	"github.com/kasuboski/openai-gateway/internal/provider/anthropic"
	"github.com/kasuboski/openai-gateway/internal/provider/google"
	"github.com/kasuboski/openai-gateway/internal/provider/openai"
)

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor("google", `{"provider":"google","apiKeySecretName":"GOOGLE_API_KEY","gatewayProviderPath":"google-ai-studio"}`)
	require.NoError(t, err)

	assert.Equal(t, "google", d.ID)
	assert.Equal(t, KindGoogle, d.Kind)
	assert.Equal(t, "GOOGLE_API_KEY", d.SecretName)
	assert.Equal(t, "google-ai-studio", d.RoutingPath)
}

func TestParseDescriptor_BadJSON(t *testing.T) {
	_, err := ParseDescriptor("google", `{oops`)
	assert.ErrorIs(t, err, ErrDescriptorInvalid)
}

func TestParseDescriptor_MissingFields(t *testing.T) {
	cases := map[string]string{
		"no kind":   `{"apiKeySecretName":"K","gatewayProviderPath":"p"}`,
		"no secret": `{"provider":"google","gatewayProviderPath":"p"}`,
		"no path":   `{"provider":"google","apiKeySecretName":"K"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDescriptor("x", raw)
			assert.ErrorIs(t, err, ErrDescriptorInvalid)
		})
	}
}

func TestBuildFactory_EachKind(t *testing.T) {
	ep := aigateway.Endpoint{BaseURL: "https://gw.example/path", AuthToken: "tok"}

	cases := []struct {
		kind Kind
		want interface{}
	}{
		{KindGoogle, (*google.Client)(nil)},
		{KindOpenAI, (*openai.Client)(nil)},
		{KindAnthropic, (*anthropic.Client)(nil)},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			factory, err := BuildFactory(Descriptor{
				ID:          string(tc.kind),
				Kind:        tc.kind,
				SecretName:  "K",
				RoutingPath: "path",
			}, "secret", ep)
			require.NoError(t, err)

			client := factory("some-model")
			require.NotNil(t, client)
			assert.IsType(t, tc.want, client)
		})
	}
}

func TestBuildFactory_UnsupportedKind(t *testing.T) {
	_, err := BuildFactory(Descriptor{
		ID:          "alien",
		Kind:        "martian",
		SecretName:  "K",
		RoutingPath: "mars",
	}, "secret", aigateway.Endpoint{BaseURL: "https://gw.example/mars"})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestBuildFactory_FactoryIsReusable(t *testing.T) {
	factory, err := BuildFactory(Descriptor{
		ID:          "google",
		Kind:        KindGoogle,
		SecretName:  "K",
		RoutingPath: "google-ai-studio",
	}, "secret", aigateway.Endpoint{BaseURL: "https://gw.example/google-ai-studio", AuthToken: "tok"})
	require.NoError(t, err)

	a := factory("gemini-2.0-flash").(*google.Client)
	b := factory("gemini-2.0-pro").(*google.Client)

	assert.Equal(t, "gemini-2.0-flash", a.ModelName())
	assert.Equal(t, "gemini-2.0-pro", b.ModelName())
	assert.Equal(t, a.Endpoint(), b.Endpoint())
}
