package handlers

import (
	"embed"
	"html/template"

	"elretiro/console/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates; each page is addressed by its file
// name.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type roleOption struct {
	Value string
	Label string
}

func roleOptions() []roleOption {
	out := make([]roleOption, 0, len(models.UserRoles))
	for _, r := range models.UserRoles {
		out = append(out, roleOption{Value: string(r), Label: r.Label()})
	}
	return out
}
