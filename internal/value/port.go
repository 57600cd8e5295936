package value

import (
	"bufio"
	"io"
)

// Port is an I/O handle (spec §3 "Port"): textual or binary, input or
// output, optionally positionable. String ports wrap a bytes.Buffer-backed
// io.ReadWriter and never touch the host filesystem.
type Port struct {
	Name     string
	Binary   bool
	Input    bool
	Output   bool
	Closed   bool
	Reader   *bufio.Reader
	Writer   io.Writer
	closeFn  func() error
}

func NewOutputPort(name string, w io.Writer, closeFn func() error) *Port {
	return &Port{Name: name, Output: true, Writer: w, closeFn: closeFn}
}

func NewInputPort(name string, r io.Reader, closeFn func() error) *Port {
	return &Port{Name: name, Input: true, Reader: bufio.NewReader(r), closeFn: closeFn}
}

func (p *Port) Close() error {
	if p.Closed {
		return nil
	}
	p.Closed = true
	if p.closeFn != nil {
		return p.closeFn()
	}
	return nil
}

func (p *Port) TypeName() string { return "port" }
func (p *Port) Write() string    { return "#<port:" + p.Name + ">" }
func (p *Port) Display() string  { return p.Write() }
