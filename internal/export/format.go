package export

import (
	"errors"
	"fmt"
)

var ErrUnsupportedFormat = errors.New("export: unsupported format")

type format struct {
	contentType string
	render      func(*Statement) ([]byte, error)
}

var formats = map[string]format{
	"txt": {
		contentType: "text/plain; charset=utf-8",
		render: func(st *Statement) ([]byte, error) {
			return []byte(TextBody(st)), nil
		},
	},
	"xlsx": {
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		render:      XLSX,
	},
	"pdf": {
		contentType: "application/pdf",
		render:      PDF,
	},
}

// Render encodes st in the format named by its file extension (txt, xlsx or pdf)
// and returns the bytes with their content type.
func Render(st *Statement, ext string) ([]byte, string, error) {
	f, ok := formats[ext]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	data, err := f.render(st)
	if err != nil {
		return nil, "", fmt.Errorf("rendering %s: %w", ext, err)
	}

	return data, f.contentType, nil
}

// Supported reports whether ext names a known format.
func Supported(ext string) bool {
	_, ok := formats[ext]
	return ok
}

// FileName is the download name of a statement, stamped with its generation date.
func FileName(st *Statement, ext string) string {
	return fmt.Sprintf("statement_%s.%s", st.GeneratedAt.Format("20060102"), ext)
}
