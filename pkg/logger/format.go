package logger

import (
	"fmt"
	"log"
)

// emit writes through *dst with the file:line of the helper's caller.
func emit(dst **log.Logger, format string, v ...interface{}) {
	Init()
	l := *dst
	if l == nil {
		return
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	_ = l.Output(3, msg)
}
