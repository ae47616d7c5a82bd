package app

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/liuran001/KnowItAll-Go/bot/provider"
	"github.com/liuran001/KnowItAll-Go/bot/tooltip"
)

// AnnotateStream reads r line by line and writes the tooltips of every line
// that produced annotations. Lines without annotations produce no output.
func AnnotateStream(ctx context.Context, registry *provider.Registry, r io.Reader, w io.Writer, limit int) error {
	if registry == nil {
		return fmt.Errorf("provider registry required")
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := bufio.NewWriter(w)
	defer out.Flush()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		body, omitted := tooltip.RenderAll(line, registry.Annotate(line), limit)
		if body == "" {
			continue
		}
		if _, err := fmt.Fprintln(out, body); err != nil {
			return fmt.Errorf("write tooltips: %w", err)
		}
		if omitted > 0 {
			if _, err := fmt.Fprintf(out, "… and %d more\n", omitted); err != nil {
				return fmt.Errorf("write tooltips: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return out.Flush()
}
