package dispatcher

import "github.com/claytechnologie/toolsdk/internal/menu"

// PostDispatchHook observes every dispatch result, including no-ops.
type PostDispatchHook interface {
	PostDispatch(sel Selection, d menu.Descriptor, result Result)
}

// PostDispatchFunc adapts a function to PostDispatchHook.
type PostDispatchFunc func(sel Selection, d menu.Descriptor, result Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(sel Selection, d menu.Descriptor, result Result) {
	f(sel, d, result)
}
