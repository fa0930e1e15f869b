// Package yamlutil decodes textbook.yaml. It is the only importer of the
// YAML library.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds the config file size.
var MaxInputSize = 1 << 20

var (
	ErrEmpty         = errors.New("yamlutil: empty document")
	ErrNilTarget     = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge = errors.New("yamlutil: input exceeds maximum size")
	ErrDecode        = errors.New("yamlutil: decode failed")
)

// Decode decodes data into v strictly: unknown keys and duplicated keys are
// errors. Decode errors quote the offending source lines.
func Decode(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrEmpty
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilTarget
	}

	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict(), yaml.DisallowDuplicateKey()); err != nil {
		return fmt.Errorf("%w:\n%s", ErrDecode, yaml.FormatError(err, false, true))
	}
	return nil
}
