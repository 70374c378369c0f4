package welcome

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEscape_MapsExactlyFiveCharacters(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#39;", Escape(`&<>"'`))
	assert.Equal(t, "plain text é ç / = ;", Escape("plain text é ç / = ;"))
	assert.Equal(t, "", Escape(""))
}

func TestEscape_LeavesNoMarkup(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"a & b",
		"&amp;",
		`"><img src=x onerror=alert(1)>`,
		"<<>>&&",
		"Tom & Jerry's <b>show</b>",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			out := Escape(in)
			assert.NotContains(t, out, "<")
			assert.NotContains(t, out, ">")
			assert.NotContains(t, out, `"`)
			assert.NotContains(t, out, "'")

			// Every ampersand must start one of the entities we emit.
			for i := strings.Index(out, "&"); i >= 0; i = nextAmp(out, i) {
				rest := out[i:]
				ok := strings.HasPrefix(rest, "&amp;") || strings.HasPrefix(rest, "&lt;") ||
					strings.HasPrefix(rest, "&gt;") || strings.HasPrefix(rest, "&quot;") || strings.HasPrefix(rest, "&#39;")
				require.True(t, ok, "bare ampersand in %q", out)
			}
		})
	}
}

func nextAmp(s string, from int) int {
	j := strings.Index(s[from+1:], "&")
	if j < 0 {
		return -1
	}
	return from + 1 + j
}

func TestRender_GreetsNameAndShowsEmail(t *testing.T) {
	page := NewRenderer().Render(strPtr("Ana"), strPtr("ana@example.com"))

	assert.Contains(t, page, "Boas-vindas, Ana!")
	assert.Contains(t, page, "Seu e-mail é: ana@example.com")
	assert.Contains(t, page, "Obrigado por se cadastrar!")
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<html lang="pt-BR">`)
	assert.Contains(t, page, "<title>Boas-Vindas</title>")
}

func TestRender_EscapesMarkup(t *testing.T) {
	page := NewRenderer().Render(strPtr("<script>"), strPtr("a@b.com"))

	assert.Contains(t, page, "Boas-vindas, &lt;script&gt;!")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "Seu e-mail é: a@b.com")
}

func TestRender_EscapesQuotesInBothFields(t *testing.T) {
	page := NewRenderer().Render(strPtr(`O'Brien "Bob"`), strPtr(`x'@"y`))

	assert.Contains(t, page, "Boas-vindas, O&#39;Brien &quot;Bob&quot;!")
	assert.Contains(t, page, "Seu e-mail é: x&#39;@&quot;y")
}

func TestRender_MissingFieldsRenderEmpty(t *testing.T) {
	var page string
	require.NotPanics(t, func() {
		page = NewRenderer().Render(nil, nil)
	})

	assert.Contains(t, page, "<h1>Boas-vindas, !</h1>")
	assert.Contains(t, page, "<p>Seu e-mail é: </p>")
	assert.Contains(t, page, "</html>")
}

func TestRender_EscapesExactlyOnce(t *testing.T) {
	page := NewRenderer().Render(strPtr("&amp;"), strPtr("a&b"))

	assert.Contains(t, page, "Boas-vindas, &amp;amp;!")
	assert.NotContains(t, page, "&amp;amp;amp;")
	assert.Contains(t, page, "Seu e-mail é: a&amp;b")
}

func TestRender_AlwaysLinksBackToForm(t *testing.T) {
	r := NewRenderer()
	cases := [][2]*string{
		{nil, nil},
		{strPtr("Ana"), strPtr("ana@example.com")},
		{strPtr(`<a href="evil">`), strPtr("</a>")},
	}

	for _, c := range cases {
		page := r.Render(c[0], c[1])
		assert.Contains(t, page, `<a href="index.html">Voltar ao formulário</a>`)
		assert.Equal(t, 1, strings.Count(page, `href="`))
	}
}

func TestRenderSubmission(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, r.Render(nil, nil), RenderSubmission(r, nil))
	assert.Equal(t, r.Render(nil, nil), RenderSubmission(r, &Submission{}))
	assert.Equal(t, r.Render(strPtr("Ana"), strPtr("")), RenderSubmission(r, NewSubmission("Ana", "")))
}

func TestIndexPage_PostsFieldsToWelcome(t *testing.T) {
	page, err := IndexPage()
	require.NoError(t, err)

	body := string(page)
	assert.Contains(t, body, `action="welcome"`)
	assert.Contains(t, body, `method="post"`)
	assert.Contains(t, body, `name="name"`)
	assert.Contains(t, body, `name="email"`)
}

func TestEscape_ReplacesInvalidUTF8(t *testing.T) {
	assert.Equal(t, "a�b", Escape("a\xff\xfeb"))
	assert.Equal(t, "&lt;�&gt;", Escape("<\xc3>"))
}

func TestRender_OutputIsValidUTF8(t *testing.T) {
	page := NewRenderer().Render(strPtr("Jo\xffão"), strPtr("\xfe@example.com"))

	assert.True(t, utf8.ValidString(page))
	assert.Contains(t, page, "Boas-vindas, Jo�ão!")
	assert.Contains(t, page, "Seu e-mail é: �@example.com")
}
