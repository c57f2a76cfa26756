package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// DefaultWKHTMLArgs read HTML from stdin and write the PDF to stdout.
var DefaultWKHTMLArgs = []string{"--quiet", "--encoding", "utf-8", "-", "-"}

// WKHTMLRenderer pipes the HTML report through the wkhtmltopdf binary.
type WKHTMLRenderer struct {
	Path string
	Args []string
}

func NewWKHTMLRenderer(path string) *WKHTMLRenderer {
	if strings.TrimSpace(path) == "" {
		path = "wkhtmltopdf"
	}
	return &WKHTMLRenderer{Path: path, Args: DefaultWKHTMLArgs}
}

func (r *WKHTMLRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	args := r.Args
	if args == nil {
		args = DefaultWKHTMLArgs
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdin = bytes.NewReader(html)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRendererMissing, r.Path)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.WithError(err).WithField("stderr", strings.TrimSpace(stderr.String())).Warn("wkhtmltopdf failed")
		return nil, fmt.Errorf("run %s: %w", r.Path, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("run %s: empty output", r.Path)
	}
	return stdout.Bytes(), nil
}
