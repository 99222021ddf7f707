package models

// Result is the uniform outcome of a synchronizer operation. Remote errors
// never propagate past a synchronizer; they are flattened into this shape
// for the view layer to branch on.
type Result struct {
	Success bool
	Error   string
}

// OK returns a successful result.
func OK() Result {
	return Result{Success: true}
}

// Fail converts an error into a failed result.
func Fail(err error) Result {
	if err == nil {
		return OK()
	}
	return Result{Success: false, Error: err.Error()}
}
