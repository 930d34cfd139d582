// Package nativelm binds internal/ngram.Model to the native n-gram
// trie language model via cgo, calling the same shared library's C ABI
// directly rather than reimplementing the trie lookup in Go.
package nativelm

/*
#cgo LDFLAGS: -lngramlm
#include <stdlib.h>

typedef void* ngram_handle_t;

extern ngram_handle_t ngram_open(const char *path, const char *pad, int order);
extern void ngram_close(ngram_handle_t handle);
extern unsigned int ngram_joint_log_prob(ngram_handle_t handle, const char *text, int order);
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/nail-agent/nail/internal/ngram"
)

// Opener opens native n-gram trie models from disk.
type Opener struct{}

// NewOpener returns a ready-to-use Opener.
func NewOpener() Opener { return Opener{} }

// Open loads the model at path, which must have a companion `.utrie`
// file alongside it. pad is the native library's padding token and
// order the maximum n-gram order the returned handle will be queried
// at.
func (Opener) Open(path string, pad string, order int) (ngram.Model, error) {
	if _, err := os.Stat(path + ".utrie"); err != nil {
		return nil, fmt.Errorf("%w: %s.utrie: %v", ngram.ErrModelMissing, path, err)
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	cPad := C.CString(pad)
	defer C.free(unsafe.Pointer(cPad))

	handle := C.ngram_open(cPath, cPad, C.int(order))
	if handle == nil {
		return nil, fmt.Errorf("nativelm: failed to open model at %s", path)
	}

	return &model{handle: handle}, nil
}

type model struct {
	handle C.ngram_handle_t
	closed bool
}

// JointLogProb implements [ngram.Model]. The native library encodes
// the negative log probability in thousandths as an unsigned integer;
// this recovers the real-valued natural-log probability by dividing
// by -1000.
func (m *model) JointLogProb(text string, order int) (float64, error) {
	if m.closed {
		return 0, fmt.Errorf("nativelm: JointLogProb on closed model")
	}
	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))

	encoded := C.ngram_joint_log_prob(m.handle, cText, C.int(order))
	return -float64(encoded) / 1000.0, nil
}

// Close implements [ngram.Model].
func (m *model) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	C.ngram_close(m.handle)
	return nil
}
