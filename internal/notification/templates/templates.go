// Package templates renders the transactional email bodies from embedded
// template files. Each scenario has an HTML and a text variant so mail clients
// that strip HTML still get a usable message.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	texttmpl "text/template"
)

//go:embed files/*.tmpl
var embeddedFS embed.FS

// PasswordResetData holds variables for the password_reset scenario.
type PasswordResetData struct {
	Name      string
	ResetURL  string
	ExpiresIn string
}

// Rendered holds the materialized bodies for one email.
type Rendered struct {
	HTML string
	Text string
}

// RenderPasswordReset renders the password reset email.
func RenderPasswordReset(data PasswordResetData) (Rendered, error) {
	return render("password_reset", data)
}

func render(scenario string, data any) (Rendered, error) {
	var out Rendered

	ht, err := htmltmpl.ParseFS(embeddedFS, fmt.Sprintf("files/%s.html.tmpl", scenario))
	if err != nil {
		return out, fmt.Errorf("parse html template %q: %w", scenario, err)
	}
	var htmlBuf bytes.Buffer
	if err := ht.Execute(&htmlBuf, data); err != nil {
		return out, fmt.Errorf("execute html template %q: %w", scenario, err)
	}

	tt, err := texttmpl.ParseFS(embeddedFS, fmt.Sprintf("files/%s.text.tmpl", scenario))
	if err != nil {
		return out, fmt.Errorf("parse text template %q: %w", scenario, err)
	}
	var textBuf bytes.Buffer
	if err := tt.Execute(&textBuf, data); err != nil {
		return out, fmt.Errorf("execute text template %q: %w", scenario, err)
	}

	out.HTML = htmlBuf.String()
	out.Text = textBuf.String()
	return out, nil
}
