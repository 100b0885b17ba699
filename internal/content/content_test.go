package content

import (
	"strings"
	"testing"

	"github.com/olegiv/notary-go/internal/model"
)

func TestSanitize_StripsScript(t *testing.T) {
	out := Sanitize(`<p>hello</p><script>alert(1)</script>`)
	if strings.Contains(out, "script") {
		t.Errorf("Sanitize left script tag: %q", out)
	}
	if !strings.Contains(out, "<p>hello</p>") {
		t.Errorf("Sanitize dropped safe markup: %q", out)
	}
}

func TestSanitize_StripsEventHandlers(t *testing.T) {
	out := Sanitize(`<a href="https://example.com" onclick="steal()">link</a>`)
	if strings.Contains(out, "onclick") {
		t.Errorf("Sanitize left event handler: %q", out)
	}
	if !strings.Contains(out, "link") {
		t.Errorf("Sanitize dropped link text: %q", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("RenderMarkdown error: %v", err)
	}
	if !strings.Contains(out, "<h1") {
		t.Errorf("missing heading: %q", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("missing bold text: %q", out)
	}
}

func TestRenderBody(t *testing.T) {
	md, err := RenderBody("*em*", model.ContentFormatMarkdown)
	if err != nil {
		t.Fatalf("RenderBody(markdown) error: %v", err)
	}
	if !strings.Contains(md, "<em>em</em>") {
		t.Errorf("markdown body not rendered: %q", md)
	}

	html, err := RenderBody("<p>kept</p><script>no</script>", model.ContentFormatHTML)
	if err != nil {
		t.Fatalf("RenderBody(html) error: %v", err)
	}
	if strings.Contains(html, "script") || !strings.Contains(html, "kept") {
		t.Errorf("html body not sanitized correctly: %q", html)
	}
}
