// Package fasttext implements internal/validity.Classifier via cgo
// against libfasttext, loading a trained fastText `.bin` model and
// calling its predict(text) -> (label, proba) C++ API directly.
package fasttext

/*
#cgo LDFLAGS: -lfasttext
#include <stdlib.h>

typedef void* fasttext_handle_t;

extern fasttext_handle_t fasttext_load_model(const char *path);
extern void fasttext_free_model(fasttext_handle_t handle);
extern int fasttext_predict(fasttext_handle_t handle, const char *text, char *label_out, int label_out_len, float *proba_out);
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/nail-agent/nail/internal/validity"
)

// Classifier wraps a loaded fastText model handle.
type Classifier struct {
	handle C.fasttext_handle_t
	closed bool
}

// Load opens the fastText model at path.
func Load(path string) (*Classifier, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.fasttext_load_model(cPath)
	if handle == nil {
		return nil, fmt.Errorf("fasttext: failed to load model at %s", path)
	}
	return &Classifier{handle: handle}, nil
}

// Predict implements [validity.Classifier].
func (c *Classifier) Predict(text string) (validity.Label, float64, error) {
	if c.closed {
		return "", 0, fmt.Errorf("fasttext: Predict on closed classifier")
	}

	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))

	const bufLen = 64
	buf := make([]byte, bufLen)
	var proba C.float

	rc := C.fasttext_predict(c.handle, cText, (*C.char)(unsafe.Pointer(&buf[0])), C.int(bufLen), &proba)
	if rc != 0 {
		return "", 0, fmt.Errorf("fasttext: predict failed with code %d", rc)
	}

	label := validity.Label(C.GoString((*C.char)(unsafe.Pointer(&buf[0]))))
	return label, float64(proba), nil
}

// Close releases the underlying model handle. Safe to call more than
// once.
func (c *Classifier) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	C.fasttext_free_model(c.handle)
	return nil
}
