//go:build lambdaoj

package native

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef struct {
	int  final_result;
	long time_used;
	long mem_used;
} TaskResult;

typedef int (*compile_fn)(char *, char *, int, char *);
typedef int (*run_task_fn)(char *, char *, char *, int, int, TaskResult *);

static int call_compile(void *f, char *src, char *exe, int compiler, char *errlog) {
	return ((compile_fn)f)(src, exe, compiler, errlog);
}

static int call_run_task(void *f, char *exe, char *in, char *out, int tl, int ml, TaskResult *tr) {
	return ((run_task_fn)f)(exe, in, out, tl, ml, tr);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/programme-lv/grader/internal/backend"
)

type library struct {
	handle  unsafe.Pointer
	compile unsafe.Pointer
	runTask unsafe.Pointer
}

func dlError() error {
	msg := C.dlerror()
	if msg == nil {
		return errors.New("unknown dlopen error")
	}
	return errors.New(C.GoString(msg))
}

func openLibrary(path string) (*library, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, dlError()
	}
	lib := &library{handle: handle}

	for name, dst := range map[string]*unsafe.Pointer{"compile": &lib.compile, "run_task": &lib.runTask} {
		cname := C.CString(name)
		sym := C.dlsym(handle, cname)
		C.free(unsafe.Pointer(cname))
		if sym == nil {
			err := dlError()
			C.dlclose(handle)
			return nil, fmt.Errorf("symbol %s: %w", name, err)
		}
		*dst = sym
	}
	return lib, nil
}

func (l *library) close() error {
	if C.dlclose(l.handle) != 0 {
		return dlError()
	}
	return nil
}

func (l *library) compile(src, exe string, compilerID int, errLog string) int {
	csrc, cexe, clog := C.CString(src), C.CString(exe), C.CString(errLog)
	defer C.free(unsafe.Pointer(csrc))
	defer C.free(unsafe.Pointer(cexe))
	defer C.free(unsafe.Pointer(clog))

	return int(C.call_compile(l.compile, csrc, cexe, C.int(compilerID), clog))
}

func (l *library) runTask(exe, input, output string, timeLimit, memLimit int) backend.RunOutcome {
	cexe, cin, cout := C.CString(exe), C.CString(input), C.CString(output)
	defer C.free(unsafe.Pointer(cexe))
	defer C.free(unsafe.Pointer(cin))
	defer C.free(unsafe.Pointer(cout))

	var tr C.TaskResult
	C.call_run_task(l.runTask, cexe, cin, cout, C.int(timeLimit), C.int(memLimit), &tr)
	return backend.RunOutcome{
		Fault:    backend.FaultCode(tr.final_result),
		TimeUsed: int64(tr.time_used),
		MemUsed:  int64(tr.mem_used),
	}
}
