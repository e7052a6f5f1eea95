// Package generator holds the text-generation providers behind the summary
// pipeline. Every provider exposes Generate(ctx, prompt) (string, error).
package generator

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Unavailable.Generate.
var ErrUnavailable = errors.New("generator not configured")

// Unavailable stands in when no provider key is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
