package slint

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// Generator is the base for emitters that consume the lowered
// representation: it buffers output and carries a sticky error so callers
// can chain Emit calls without checking each one.
type Generator struct {
	Config *Data
	OutDir string
	Err    error
	buf    bytes.Buffer
	writer *bufio.Writer
}

func (gen *Generator) GetConfigString(k string, defaultValue string) string {
	if gen.Config == nil || !gen.Config.Has(k) {
		return defaultValue
	}
	return gen.Config.GetString(k)
}

func (gen *Generator) GetConfigBool(k string, defaultValue bool) bool {
	if gen.Config == nil || !gen.Config.Has(k) {
		return defaultValue
	}
	return gen.Config.GetBool(k)
}

func (gen *Generator) Emit(s string) {
	if gen.Err == nil && gen.writer != nil {
		_, gen.Err = gen.writer.WriteString(s)
	}
}

func (gen *Generator) Emitf(format string, args ...interface{}) {
	gen.Emit(fmt.Sprintf(format, args...))
}

func (gen *Generator) Begin() {
	if gen.Err != nil {
		return
	}
	gen.buf.Reset()
	gen.writer = bufio.NewWriter(&gen.buf)
}

func (gen *Generator) End() string {
	if gen.Err != nil || gen.writer == nil {
		return ""
	}
	gen.writer.Flush()
	return gen.buf.String()
}

func (gen *Generator) WriteFile(path string, content string) {
	if gen.Err != nil {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		gen.Err = err
		return
	}
	defer f.Close()
	writer := bufio.NewWriter(f)
	_, gen.Err = writer.WriteString(content)
	writer.Flush()
}

func (gen *Generator) FileExists(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return true
}
