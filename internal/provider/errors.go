package provider

import "errors"

var (
	// ErrMalformedModelID reports a composite model id that does not split
	// into a provider and a model name.
	ErrMalformedModelID = errors.New("malformed model id")

	// ErrProviderNotFound reports a provider namespace absent from the
	// current snapshot.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrDescriptorInvalid reports an unparseable or incomplete descriptor.
	ErrDescriptorInvalid = errors.New("invalid provider descriptor")

	// ErrSecretMissing reports a descriptor whose named secret is not bound.
	ErrSecretMissing = errors.New("provider secret missing")

	// ErrUnsupportedKind reports a descriptor naming a backend kind this
	// build does not support.
	ErrUnsupportedKind = errors.New("unsupported provider kind")
)
