package config

import (
	"github.com/go-viper/mapstructure/v2"
)

// DecodeStrict decodes a raw argument mapping into a typed target struct,
// rejecting keys the target does not declare. Fields are matched via the
// `koanf` struct tag.
func DecodeStrict(raw map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "koanf",
		Result:           target,
		ErrorUnused:      true,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
