package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFilter(t *testing.T) {
	testCases := []struct {
		name      string
		rules     []string
		pathAware bool
		included  []string
		excluded  []string
	}{
		{
			name:     "no rules includes everything",
			included: []string{"anything", ""},
		},
		{
			name:     "include only",
			rules:    []string{"+com.acme.*"},
			included: []string{"com.acme.core", "COM.ACME.util"},
			excluded: []string{"org.other"},
		},
		{
			name:     "exclude wins",
			rules:    []string{"+com.acme.*", "-*Test?"},
			included: []string{"com.acme.Service"},
			excluded: []string{"com.acme.ServiceTests", "com.acme.FooTestX"},
		},
		{
			name:     "dots are literal",
			rules:    []string{"+a.b"},
			included: []string{"a.b"},
			excluded: []string{"axb"},
		},
		{
			name:      "path aware separators",
			rules:     []string{"-*/generated/*"},
			pathAware: true,
			included:  []string{"src/main.go"},
			excluded:  []string{"src/generated/x.go", `src\generated\x.go`},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewDefaultFilter(tc.rules, tc.pathAware)
			require.NoError(t, err)
			assert.Equal(t, len(tc.rules) > 0, f.HasCustomFilters())
			for _, name := range tc.included {
				assert.True(t, f.IsElementIncludedInReport(name), name)
			}
			for _, name := range tc.excluded {
				assert.False(t, f.IsElementIncludedInReport(name), name)
			}
		})
	}
}

func TestDefaultFilterRejectsRulesWithoutSign(t *testing.T) {
	_, err := NewDefaultFilter([]string{"+ok", "bad", "alsobad"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
	assert.Contains(t, err.Error(), `"alsobad"`)
}

func TestIncludeAll(t *testing.T) {
	f := IncludeAll()
	assert.False(t, f.HasCustomFilters())
	assert.True(t, f.IsElementIncludedInReport("x"))
}
