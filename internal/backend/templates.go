package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var gitignoreTemplates = map[string]string{
	"go": `# Binaries
*.exe
*.dll
*.so
*.dylib
*.test
*.out

# Dependency and build output
vendor/
bin/
`,
	"node": `node_modules/
npm-debug.log*
yarn-error.log*
dist/
build/
.env
`,
	"python": `__pycache__/
*.py[cod]
.venv/
venv/
*.egg-info/
dist/
build/
.env
`,
}

const mitLicense = `MIT License

Copyright (c) %d %s

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`

// GitignoreTemplates lists the available .gitignore template names.
func GitignoreTemplates() []string {
	return []string{"go", "node", "python"}
}

// WriteTemplates writes the requested starter files into repo. Files that
// already exist are left untouched.
func (c *CLI) WriteTemplates(_ context.Context, repo string, opts TemplateOptions) error {
	files := map[string]string{}

	if opts.Readme {
		name := filepath.Base(repo)
		readme := "# " + name + "\n"
		if d := strings.TrimSpace(opts.Description); d != "" {
			readme += "\n" + d + "\n"
		}
		files["README.md"] = readme
	}
	if opts.Gitignore != "" {
		tmpl, ok := gitignoreTemplates[strings.ToLower(opts.Gitignore)]
		if !ok {
			return Errorf(KindValidation, "templates", "unknown .gitignore template %q", opts.Gitignore)
		}
		files[".gitignore"] = tmpl
	}
	switch strings.ToLower(opts.License) {
	case "":
	case "mit":
		author := opts.Author
		if author == "" {
			author = "The Authors"
		}
		files["LICENSE"] = fmt.Sprintf(mitLicense, time.Now().Year(), author)
	default:
		return Errorf(KindValidation, "templates", "unknown license %q", opts.License)
	}

	for name, content := range files {
		path := filepath.Join(repo, name)
		if _, err := os.Stat(path); err == nil {
			c.logger.Debug("template exists, skipping", "path", path)
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return &Error{Kind: KindUnknown, Op: "templates", Message: err.Error(), Err: err}
		}
	}
	return nil
}
