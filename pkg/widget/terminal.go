package widget

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/bornholm/ownsearch/pkg/render"
	"github.com/pkg/errors"
)

// TerminalView prints results as markdown. Transitions are not rendered.
type TerminalView struct {
	mutex sync.Mutex
	out   io.Writer
	err   io.Writer
}

// Alert implements View.
func (v *TerminalView) Alert(ctx context.Context, message string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	fmt.Fprintln(v.err, message)
}

// ShowLoading implements View.
func (v *TerminalView) ShowLoading(ctx context.Context) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if _, err := fmt.Fprintln(v.out, "Searching..."); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Show implements View.
func (v *TerminalView) Show(ctx context.Context, content template.HTML, transition Transition) error {
	markdown, err := render.Markdown(content)
	if err != nil {
		return errors.WithStack(err)
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	if _, err := fmt.Fprintf(v.out, "%s\n\n", markdown); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func NewTerminalView(out io.Writer, err io.Writer) *TerminalView {
	return &TerminalView{
		out: out,
		err: err,
	}
}

var _ View = &TerminalView{}
