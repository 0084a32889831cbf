package unit

import (
	_ "embed"
	"strings"

	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
)

//go:embed default_en.txt
var defaultDefinitions string

// Default returns a registry loaded with the built-in definition set.
func Default(opts Options) (*Registry, error) {
	r := New(opts)
	if err := r.LoadDefinitions(strings.NewReader(defaultDefinitions)); err != nil {
		return nil, coreerrors.Wrap(err, "loading default definitions")
	}
	return r, nil
}
