// Package secrets exposes named secret strings bound to the process.
package secrets

import "os"

// Source resolves named secrets. The second return is false when the secret is
// not bound.
type Source interface {
	Get(name string) (string, bool)
}

// Env reads secrets from process environment variables.
type Env struct{}

func NewEnv() Env { return Env{} }

func (Env) Get(name string) (string, bool) {
	val, ok := os.LookupEnv(name)
	if val == "" {
		return "", false
	}
	return val, ok
}

// Static serves secrets from a fixed map, for tests.
type Static map[string]string

func (s Static) Get(name string) (string, bool) {
	val, ok := s[name]
	return val, ok
}
