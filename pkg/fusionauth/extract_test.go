package fusionauth_test

import (
	"testing"

	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/stretchr/testify/require"
)

func TestExtractExecution(t *testing.T) {
	t.Parallel()

	t.Run("standard CAS markup", func(t *testing.T) {
		page := `<form><input type="hidden" name="execution" value="e1s1"/><input type="hidden" name="_eventId" value="submit"/></form>`
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, "e1s1", v)
	})

	t.Run("value before name and single quotes", func(t *testing.T) {
		page := `<input value='abc-123_==' type='hidden' name='execution'>`
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, "abc-123_==", v)
	})

	t.Run("long opaque token spanning attributes on new lines", func(t *testing.T) {
		token := "f6a1c2d3-aaaa-bbbb-cccc-1234567890ab_ZXlKaGJHY2lPaUpJVXpVeE1pSjkuZXlK"
		page := "<input\n  type=\"hidden\"\n  name=\"execution\"\n  value=\"" + token + "\"\n/>"
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, token, v)
	})

	t.Run("html entities are decoded", func(t *testing.T) {
		v, err := fusionauth.ExtractExecution(`<input name="execution" value="a&amp;b">`)
		require.NoError(t, err)
		require.Equal(t, "a&b", v)
	})

	t.Run("duplicate fields with the same value", func(t *testing.T) {
		page := `<input name="execution" value="x1"><input name="execution" value="x1">`
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, "x1", v)
	})

	t.Run("unclosed title does not hide the form", func(t *testing.T) {
		page := `<html><head><title>CAS</head><body><form><input type="hidden" name="execution" value="abc"/></form></body></html>`
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, "abc", v)
	})

	t.Run("form inside noscript", func(t *testing.T) {
		page := `<noscript><form method="post"><input type="hidden" name="execution" value="ns-1"></form></noscript>`
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, "ns-1", v)
	})

	t.Run("unquoted attributes and upper-case tag", func(t *testing.T) {
		v, err := fusionauth.ExtractExecution(`<INPUT TYPE=hidden NAME=execution VALUE=e2s1>`)
		require.NoError(t, err)
		require.Equal(t, "e2s1", v)
	})

	t.Run("name mentioned inside another attribute is ignored", func(t *testing.T) {
		page := `<input data-note="name=execution value=bogus" name="lt" value="x"><input name="execution" value="real">`
		v, err := fusionauth.ExtractExecution(page)
		require.NoError(t, err)
		require.Equal(t, "real", v)
	})

	failures := map[string]string{
		"no field":           `<html><body>maintenance</body></html>`,
		"empty value":        `<input name="execution" value="">`,
		"missing value":      `<input name="execution">`,
		"conflicting values": `<input name="execution" value="a"><input name="execution" value="b">`,
		"different field":    `<input name="executionId" value="a">`,
	}
	for name, page := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := fusionauth.ExtractExecution(page)
			require.Error(t, err)
			require.ErrorIs(t, err, fusionauth.ErrExtraction)
			require.ErrorIs(t, err, fusionauth.ErrServiceUnavailable)
			require.NotErrorIs(t, err, fusionauth.ErrInvalidCredentials)
		})
	}
}
