package preview

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

const inputMaxLength = 2048

var SessionIdRule = []validation.Rule{
	validation.Required,
	is.UUIDv4,
}

var SessionTokenRule = []validation.Rule{
	validation.Required,
}

var InputRule = []validation.Rule{
	validation.Length(0, inputMaxLength),
}

var CloseReasonRule = []validation.Rule{
	validation.Required,
	validation.In(CloseReasonButton, CloseReasonOverlay, CloseReasonEscape),
}

var VariantRule = []validation.Rule{
	validation.Required,
	validation.In(variantNames()...),
}

func variantNames() []any {
	vs := ytthumb.Variants()
	names := make([]any, 0, len(vs))
	for _, v := range vs {
		names = append(names, string(v))
	}

	return names
}
