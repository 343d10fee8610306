package detector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// service is a landmark process speaking the frame protocol: a 4-byte
// big-endian length and a JPEG in, one JSON line out per frame.
type service struct {
	argv []string
	cmd  *exec.Cmd
	in   io.WriteCloser
	out  *bufio.Reader
}

func newService(argv ...string) *service {
	return &service{argv: argv}
}

func (s *service) running() bool {
	return s.cmd != nil
}

func (s *service) start() error {
	if s.running() {
		return nil
	}

	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.argv[0], err)
	}

	s.cmd, s.in, s.out = cmd, in, bufio.NewReader(out)
	return nil
}

// exchange sends one frame and returns the reply line. Any I/O failure
// stops the process so the next call starts a fresh one.
func (s *service) exchange(jpeg []byte) ([]byte, error) {
	if err := writeFrame(s.in, jpeg); err != nil {
		s.stop()
		return nil, fmt.Errorf("send frame: %w", err)
	}
	line, err := s.out.ReadBytes('\n')
	if err != nil {
		s.stop()
		return nil, fmt.Errorf("read landmarks: %w", err)
	}
	return line, nil
}

// stop closes stdin, which the service treats as end of input, and reaps it.
func (s *service) stop() error {
	if !s.running() {
		return nil
	}
	s.in.Close()
	err := s.cmd.Wait()
	s.cmd, s.in, s.out = nil, nil, nil
	return err
}

func writeFrame(w io.Writer, jpeg []byte) error {
	buf := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(buf, uint32(len(jpeg)))
	copy(buf[4:], jpeg)
	_, err := w.Write(buf)
	return err
}
