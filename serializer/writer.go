package serializer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/koba/db-changelog/changelog"
)

const defaultPackage = "changelogs"

// Write renders changeSets as a Go source file and writes it to w in one call.
// w is closed on every path. The changelog path of the first changeset names the package and variable.
func (s *Serializer) Write(changeSets []*changelog.ChangeSet, w io.WriteCloser) error {
	src, err := s.render(changeSets, definePath(changeSets, ""))
	if err != nil {
		w.Close()
		return err
	}
	return s.writeRendered(src, w)
}

// WriteFile writes changeSets to the file at filePath. The file is removed if writing fails.
func (s *Serializer) WriteFile(filePath string, changeSets []*changelog.ChangeSet) error {
	src, err := s.render(changeSets, definePath(changeSets, filePath))
	if err != nil {
		return err
	}
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create changelog file: %w", err)
	}
	if err := s.writeRendered(src, f); err != nil {
		os.Remove(filePath)
		return err
	}
	return nil
}

func (s *Serializer) writeRendered(src string, w io.WriteCloser) error {
	_, err := io.WriteString(w, src)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	return nil
}

// Append is not supported. Regenerate the whole file with Write instead.
func (s *Serializer) Append(cs *changelog.ChangeSet, filePath string) error {
	return &Error{Type: "ChangeSet", Err: fmt.Errorf("%w: %s", ErrAppendUnsupported, filePath)}
}

// definePath returns the changelog path the first changeset was declared in.
// Changesets built by hand without one fall back to their identity path, then to fallback.
func definePath(changeSets []*changelog.ChangeSet, fallback string) string {
	if len(changeSets) == 0 || changeSets[0] == nil {
		return fallback
	}
	cs := changeSets[0]
	switch {
	case cs.ChangeLogPath != "":
		return cs.ChangeLogPath
	case cs.LogicalFilePath == "" && cs.FilePath != "":
		return cs.FilePath
	}
	return fallback
}

func (s *Serializer) render(changeSets []*changelog.ChangeSet, filePath string) (string, error) {
	pkg := s.pkg
	if pkg == "" {
		pkg = packageName(filePath)
	}
	name := s.varName
	if name == "" {
		name = varName(filePath)
	}
	if name == "" {
		name = fmt.Sprintf("ChangeLog%d", s.now().UnixMilli())
	}

	p := &printer{}
	p.line("package %s", pkg)
	p.line("")
	p.line("import %q", changelog.ImportPath)
	p.line("")
	head := fmt.Sprintf("var %s = %sDefine(%q, func(b *%sBuilder)", name, qualifier, filePath, qualifier)
	err := p.block(head, len(changeSets) == 0, func() error {
		for i, cs := range changeSets {
			if i > 0 {
				p.buf.WriteByte('\n')
			}
			if err := p.changeSet(cs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var serr *Error
		if errors.As(err, &serr) {
			return "", err
		}
		return "", &Error{Err: err}
	}
	return p.buf.String(), nil
}

// packageName derives a package name from the directory of filePath
func packageName(filePath string) string {
	dir := path.Base(path.Dir(filepath.ToSlash(filePath)))
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return defaultPackage
	}
	return name
}

// varName derives an exported identifier from the base name of filePath
func varName(filePath string) string {
	base := path.Base(filepath.ToSlash(filePath))
	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, w := range words {
		runes := []rune(w)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	name := b.String()
	if name == "" {
		return ""
	}
	if unicode.IsDigit(rune(name[0])) {
		return "ChangeLog" + name
	}
	return name
}
