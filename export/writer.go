package export

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/regen/errors"
)

// ModuleWriter renders units into one flat output directory, one file each.
type ModuleWriter struct {
	Dir        string
	Extension  string
	MainModule string

	// formatter is the parsed post-write command; the file path is appended.
	formatter []string
}

// NewModuleWriter returns a writer for dir. formatCommand may be empty; when set it
// is split with shell quoting rules and run after every successful write.
func NewModuleWriter(dir, extension, mainModule, formatCommand string) (*ModuleWriter, error) {
	w := &ModuleWriter{Dir: dir, Extension: extension, MainModule: mainModule}
	if strings.TrimSpace(formatCommand) != "" {
		args, err := shellquote.Split(formatCommand)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid format command %q", formatCommand)
		}
		w.formatter = args
	}
	return w, nil
}

// Path is the file a destination module is written to.
func (w *ModuleWriter) Path(module string) string {
	return filepath.Join(w.Dir, FileStem(module)+w.Extension)
}

// RenderImports writes one bare import per symbol of the main pseudo-module,
// then one from-import per origin module, both in sorted order.
func (w *ModuleWriter) RenderImports(t *ImportTable) string {
	var sb strings.Builder
	for _, symbol := range t.Symbols(w.MainModule) {
		sb.WriteString("import ")
		sb.WriteString(symbol)
		sb.WriteByte('\n')
	}
	for _, module := range t.Modules() {
		if module == w.MainModule {
			continue
		}
		sb.WriteString("from ")
		sb.WriteString(module)
		sb.WriteString(" import ")
		sb.WriteString(strings.Join(t.Symbols(module), ", "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Render composes the import block and the body of r.
func (w *ModuleWriter) Render(r Renderer) string {
	imports := w.RenderImports(r.Base().Imports)
	if imports == "" {
		return r.RenderBody()
	}
	return imports + "\n" + r.RenderBody()
}

// Write renders r to its destination through a temp file and a rename, so a
// failed write never leaves a partial module behind.
func (w *ModuleWriter) Write(r Renderer) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", w.Dir)
	}

	path := w.Path(r.Base().Module)
	tmp, err := os.CreateTemp(w.Dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(w.Render(r)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrapf(err, "failed to set permissions on %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrapf(err, "failed to move %s into place", path)
	}
	return path, nil
}

// Format runs the configured formatter on path. It is a no-op without one.
func (w *ModuleWriter) Format(ctx context.Context, path string) error {
	if len(w.formatter) == 0 {
		return nil
	}
	args := append(append([]string{}, w.formatter[1:]...), path)
	cmd := exec.CommandContext(ctx, w.formatter[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.WithDetail(
			errors.Wrapf(err, "formatter %s failed on %s", w.formatter[0], path),
			strings.TrimSpace(string(out)),
		)
	}
	return nil
}
