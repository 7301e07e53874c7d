package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		steps []string
		want  string
	}{
		{name: "no steps", raw: " Raw ", want: " Raw "},
		{name: "lowercase", raw: "EAU", steps: []string{"lowercase"}, want: "eau"},
		{name: "uppercase alias", raw: "eau", steps: []string{"ToUpper"}, want: "EAU"},
		{name: "remove symbols keeps digits and separators only", raw: "50 ML!", steps: []string{"removesymbols"}, want: "50"},
		{name: "remove symbols price", raw: "€ 1.299,00", steps: []string{"removesymbols"}, want: "1.299,00"},
		{name: "remove punctuation keeps letters", raw: "50 ML!", steps: []string{"removepunctuation"}, want: "50 ML"},
		{name: "remove spaces", raw: "400 6000 1234", steps: []string{"removespaces"}, want: "40060001234"},
		{name: "remove commas", raw: "1,234", steps: []string{"removecommas"}, want: "1234"},
		{name: "collapse spaces", raw: "  Eau   de  Parfum ", steps: []string{"collapsespaces"}, want: "Eau de Parfum"},
		{name: "titlecase", raw: "eau DE parfum", steps: []string{"titlecase"}, want: "Eau De Parfum"},
		{name: "chained in order", raw: " Size: 50ML ", steps: []string{"trim", "extractafter:size:", "lowercase"}, want: "50ml"},
		{name: "extract after alternatives", raw: "Volume 100 ml", steps: []string{"extractafter:Size|Volume"}, want: "100 ml"},
		{name: "extract after no match", raw: "100 ml", steps: []string{"extractafter:Size:"}, want: "100 ml"},
		{name: "extract between first and second colon", raw: "Size: 50ml: tester", steps: []string{"extractafter:*:"}, want: "50ml"},
		{name: "wildcard without second colon", raw: "Size: 50ml", steps: []string{"extractafter:*:"}, want: "50ml"},
		{name: "map to boolean", raw: "Ja", steps: []string{"maptoboolean:ja:true,nein:false"}, want: "true"},
		{name: "map to boolean unmatched passes", raw: "vielleicht", steps: []string{"maptoboolean:ja:true,nein:false"}, want: "vielleicht"},
		{name: "unknown step is no-op", raw: "Value", steps: []string{"sparkle", "uppercase"}, want: "VALUE"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Transform(tc.raw, tc.steps))
		})
	}
}

func TestTransform_NormalizeComposesAccents(t *testing.T) {
	t.Parallel()

	decomposed := "Herme\u0300s"
	assert.Equal(t, "Herm\u00e8s", Transform(decomposed, []string{"normalize"}))
}

func TestKnownTransformation(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownTransformation("extractafter:*:"))
	assert.True(t, KnownTransformation(" LowerCase "))
	assert.False(t, KnownTransformation("sparkle"))
}
