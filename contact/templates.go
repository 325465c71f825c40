package contact

import (
	"embed"
	"io/fs"
)

const (
	contactTemplate = "contact.md"
	testTemplate    = "test.md"
)

//go:embed templates
var templateFS embed.FS

// Templates returns the email templates used by the Deliverer, laid out for
// mailer.NewRenderer: bodies at the root, layouts under layouts/.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
