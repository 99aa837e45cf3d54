package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page and partial.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Assets is the embedded stylesheet tree.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"hex": func(id primitive.ObjectID) string { return id.Hex() },
		"date": func(t time.Time) string {
			return t.UTC().Format("Jan 2, 2006 15:04")
		},
	}
}
