package scraper

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, html string) *Extraction {
	t.Helper()
	result, err := ExtractProfile(strings.NewReader(html))
	require.NoError(t, err)
	return result
}

func TestExtractProfileMaxPower(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *int
	}{
		{
			name: "max across description blocks",
			html: `<div><span class="desc">250</span><span class="desc">9999</span></div>`,
			want: intPtr(9999),
		},
		{
			name: "description class variants",
			html: `<p class="profile_desc">GS 712 / AP 301</p><p class="description">papd 688</p>`,
			want: intPtr(712),
		},
		{
			name: "description blocks win over larger page numbers",
			html: `<span class="desc">650</span><footer>9000</footer>`,
			want: intPtr(650),
		},
		{
			name: "falls back to whole page",
			html: `<table><tr><td>Level</td><td>62</td></tr><tr><td>papd</td><td>705</td></tr></table>`,
			want: intPtr(705),
		},
		{
			name: "fallback when description holds only out-of-range numbers",
			html: `<span class="desc">Lv 62</span><b>733</b>`,
			want: intPtr(733),
		},
		{
			name: "ignores digits inside longer numbers",
			html: `<span class="desc">ID 1234567</span>`,
			want: nil,
		},
		{
			name: "no digits anywhere",
			html: `<html><body><h1>Perfil</h1><p class="desc">sem dados</p></body></html>`,
			want: nil,
		},
		{
			name: "below range only",
			html: `<span class="desc">42 99</span>`,
			want: nil,
		},
		{
			name: "lower bound included",
			html: `<span class="desc">100</span>`,
			want: intPtr(100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract(t, tt.html)
			if tt.want == nil {
				assert.Nil(t, got.MaxPower)
				return
			}
			require.NotNil(t, got.MaxPower)
			assert.Equal(t, *tt.want, *got.MaxPower)
		})
	}
}

func TestExtractProfileNoMatchIsNotPrivate(t *testing.T) {
	got := extract(t, `<html><body><p>Nothing to see</p></body></html>`)
	assert.Nil(t, got.MaxPower)
	assert.False(t, got.IsPrivate)
}

func TestExtractProfilePrivateMarkers(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Perfil Privado", true},
		{"este perfil é privado", true},
		{"PERFIL PRIVADO", true},
		{"Perfil pRIVADO", false},
		{"PrivaDo", false},
		{"Perfil público", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := extract(t, `<div class="notice">`+tt.text+`</div>`)
			assert.Equal(t, tt.want, got.IsPrivate)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, stderrors.New("connection reset")
}

func TestExtractProfileReadFailure(t *testing.T) {
	_, err := ExtractProfile(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func intPtr(v int) *int {
	return &v
}
