package page

const (
	RouteHome   = "/"
	RouteMovies = "/movies"
)

type Kind string

const (
	KindRender   Kind = "render"
	KindRedirect Kind = "redirect"
	KindInvalid  Kind = "invalid"
	KindFailed   Kind = "failed"
)

// Result is what a page operation asks the caller to do next. Navigation is
// never performed by the controller itself.
type Result struct {
	Kind   Kind
	Data   any
	To     string
	Errors map[string]string
	Err    error
}

func Render(data any) Result {
	return Result{Kind: KindRender, Data: data}
}

func Redirect(to string) Result {
	return Result{Kind: KindRedirect, To: to}
}

// Invalid reports field errors that blocked a submit. data is the form as
// it stands so it can be shown again.
func Invalid(data any, fields map[string]string) Result {
	return Result{Kind: KindInvalid, Data: data, Errors: fields}
}

func Failed(data any, err error) Result {
	return Result{Kind: KindFailed, Data: data, Err: err}
}
