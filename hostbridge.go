package hostbridge

// ApplicationContext supplies the platform capabilities objects may need
// without going through a handle table.
type ApplicationContext interface {
	// Application returns the host application object.
	Application() any
	// CurrentWindow returns the current top-level window, or nil.
	CurrentWindow() any
	// InterceptResults asks the platform to route window results to the
	// bridge, which forwards them to the registered ResultHandler.
	InterceptResults()
}

// ResultHandler is implemented by native types that consume results
// returned to the current window (for example from a picker or a
// permission prompt). Creating an instance of such a type through the
// bridge makes it the single current handler.
type ResultHandler interface {
	OnResult(requestCode, resultCode int, data any)
}

// StaticContext is an ApplicationContext with fixed objects.
type StaticContext struct {
	App    any
	Window any
	// OnIntercept is called by InterceptResults when set.
	OnIntercept func()
}

func (c *StaticContext) Application() any   { return c.App }
func (c *StaticContext) CurrentWindow() any { return c.Window }

func (c *StaticContext) InterceptResults() {
	if c.OnIntercept != nil {
		c.OnIntercept()
	}
}
