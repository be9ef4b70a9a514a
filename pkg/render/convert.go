package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"

	apperr "github.com/matzehuels/alluvial/pkg/errors"
)

// EnvConverter overrides the rsvg-convert binary used by [DefaultConverter].
const EnvConverter = "ALLUVIAL_RSVG_CONVERT"

// ErrConverterMissing is returned when the converter binary cannot be found.
var ErrConverterMissing = errors.New("rsvg-convert not found")

// Raster names a target format and its scale factor. Scale only applies to
// PNG; zero means 1.
type Raster struct {
	Format string // "pdf" or "png"
	Scale  float64
}

// Converter turns SVG documents into PDF or PNG by piping them through
// rsvg-convert (librsvg).
type Converter struct {
	Binary string
}

// DefaultConverter uses $ALLUVIAL_RSVG_CONVERT, or rsvg-convert on PATH.
func DefaultConverter() *Converter {
	if bin := os.Getenv(EnvConverter); bin != "" {
		return &Converter{Binary: bin}
	}
	return &Converter{Binary: "rsvg-convert"}
}

// Convert runs the converter on svg. A missing binary is reported as an
// UNSUPPORTED error wrapping [ErrConverterMissing].
func (c *Converter) Convert(ctx context.Context, svg []byte, r Raster) ([]byte, error) {
	bin, err := exec.LookPath(c.Binary)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeUnsupported, ErrConverterMissing,
			"%s export needs librsvg (brew install librsvg, apt install librsvg2-bin)", r.Format)
	}

	cmd := exec.CommandContext(ctx, bin, r.args()...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "rsvg-convert %s: %s", r.Format, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

func (r Raster) args() []string {
	args := []string{"-f", r.Format}
	if r.Format == "png" && r.Scale > 0 && r.Scale != 1 {
		args = append(args, "-z", strconv.FormatFloat(r.Scale, 'f', 2, 64))
	}
	return args
}
