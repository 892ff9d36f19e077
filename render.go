package moonclock

// Renderer redraws a field only when its text changes. It owns the state of
// every field; nothing else writes it.
//
// The erase pass writes the previously drawn text in the background color at
// the same origin. With a monospaced face that covers exactly the old strokes,
// so a shorter new string leaves no trailing glyphs behind.
type Renderer struct {
	surface Surface
	layout  Layout
	state   [numFields]FieldState
	draws   [numFields]int
}

// NewRenderer returns a renderer drawing on s with layout l. Every field
// starts with empty previous text, so the first Render of each field draws.
func NewRenderer(s Surface, l Layout) *Renderer {
	return &Renderer{surface: s, layout: l}
}

// Render draws text for f if it differs from what is on screen and reports
// whether the surface was touched.
func (r *Renderer) Render(f Field, text string) bool {
	st := &r.state[f]
	st.Current = text
	if text == st.Previous {
		return false
	}

	p := r.layout.Placement(f)
	r.surface.SetColor(r.layout.Background)
	r.surface.SetCursor(p.X, p.Y)
	r.surface.WriteText(st.Previous)

	r.surface.SetColor(p.Color)
	r.surface.SetCursor(p.X, p.Y)
	r.surface.WriteText(text)

	st.Previous = text
	r.draws[f]++
	return true
}

// State returns the tracked text of f.
func (r *Renderer) State(f Field) FieldState {
	return r.state[f]
}

// Draws returns how many times f has been redrawn.
func (r *Renderer) Draws(f Field) int {
	return r.draws[f]
}

// Reset forgets everything drawn so the next Render of each field draws
// again. The caller is expected to have blanked the surface.
func (r *Renderer) Reset() {
	r.state = [numFields]FieldState{}
}
