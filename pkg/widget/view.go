package widget

import (
	"context"
	"html/template"
	"time"
)

// View is the results container the controller renders into. Calls are
// serialized by the controller and must not call back into it.
type View interface {
	// Alert surfaces a blocking message to the user.
	Alert(ctx context.Context, message string)
	// ShowLoading replaces the container content with the loading indicator.
	ShowLoading(ctx context.Context) error
	// Show replaces the container content with the given fragment.
	Show(ctx context.Context, content template.HTML, transition Transition) error
}

// Transition describes the cosmetic fade applied when content is swapped.
type Transition struct {
	FadeOut time.Duration
	FadeIn  time.Duration
}

var DefaultTransition = Transition{
	FadeOut: 150 * time.Millisecond,
	FadeIn:  150 * time.Millisecond,
}
