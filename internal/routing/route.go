package routing

// Route is a path pattern declared by a plugin plus the metadata the table
// builder needs to order it.
type Route struct {
	// Pattern is a literal path or a parameterized pattern such as /feed/:id.
	Pattern string
	// Priority orders routes of equal specificity; higher wins. Zero leaves the
	// decision to registration order.
	Priority int
	// Override allows this route to replace another plugin's route with the
	// identical pattern.
	Override bool
	// Handler is an opaque reference back into the owning plugin. The core never
	// interprets it.
	Handler any

	compiled *Pattern
}

// Compile validates the pattern and returns a copy of the route carrying the
// compiled form.
func (r Route) Compile() (Route, error) {
	p, err := CompilePattern(r.Pattern)
	if err != nil {
		return Route{}, err
	}
	r.compiled = &p
	return r, nil
}

// Compiled returns the compiled pattern when Compile has been called.
func (r Route) Compiled() (Pattern, bool) {
	if r.compiled == nil {
		return Pattern{}, false
	}
	return *r.compiled, true
}

func (r Route) pattern() (Pattern, error) {
	if r.compiled != nil {
		return *r.compiled, nil
	}
	return CompilePattern(r.Pattern)
}
