package ytthumb

import (
	"errors"
	"fmt"
)

var ErrUnknownVariant = errors.New("unknown thumbnail variant")

type Variant string

const (
	VariantMaxRes  Variant = "maxresdefault"
	VariantSD      Variant = "sddefault"
	VariantHQ      Variant = "hqdefault"
	VariantMQ      Variant = "mqdefault"
	VariantDefault Variant = "default"
)

const variantsLength = 5

var variants = [variantsLength]Variant{
	VariantMaxRes,
	VariantSD,
	VariantHQ,
	VariantMQ,
	VariantDefault,
}

// display only, youtube does not guarantee these
var variantSizes = map[Variant]string{
	VariantMaxRes:  "1280 x 720",
	VariantSD:      "640 x 480",
	VariantHQ:      "480 x 360",
	VariantMQ:      "320 x 180",
	VariantDefault: "120 x 90",
}

// Variants returns the thumbnail variants from the largest to the smallest.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants[:])
	return out
}

func (v Variant) Size() string {
	return variantSizes[v]
}

func (v Variant) String() string {
	return string(v)
}

func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if _, ok := variantSizes[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}

	return v, nil
}
