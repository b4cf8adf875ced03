package assert

import (
	"fmt"
	"reflect"
	"runtime"
)

// NotNil panics when v is nil, used by singleton accessors.
func NotNil(v interface{}) {
	if v == nil {
		panic("assert: unexpected nil value")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			panic(fmt.Sprintf("assert: unexpected nil %s", rv.Type()))
		}
	}
}

// NotCircular panics if the calling accessor is re-entered while its own
// initialisation is still on the stack of the same goroutine.
func NotCircular() {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	caller := runtime.FuncForPC(pc).Name()

	buf := make([]uintptr, 64)
	n := runtime.Callers(3, buf)
	frames := runtime.CallersFrames(buf[:n])
	for {
		frame, more := frames.Next()
		if frame.Function == caller {
			panic(fmt.Sprintf("assert: circular initialisation detected in %s", caller))
		}
		if !more {
			break
		}
	}
}
