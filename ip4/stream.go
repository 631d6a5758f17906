package ip4

import "io"

// streamState is one state of the byte-driven line validator shared by
// Validate and StripInvalid.
type streamState int

const (
	stStart streamState = iota
	stAfterComma
	stSeekingDigit
	stSeekingDot
	stSeekingOctetDot
	stSeekingMasklessTerminal
	stSeekingMaskDigit
	stSeekingMaskTerminal
	stSeekingNewline
	stInvalid
)

// streamReadBufSize is the rolling read buffer size the streaming driver
// uses; the spec requires at least 16KiB of steady-state memory.
const streamReadBufSize = 16 * 1024

// StripLineBufferSize bounds the per-line staging buffer StripInvalid
// uses while deciding whether to flush a candidate line to its sink. 34
// bytes holds any single address, CIDR, or plain range written without
// leading zeros, including CRLF (at most 33 bytes), while keeping memory
// use independent of input length. Longer lines the state machine would
// accept (leading zeros, or a range with masks) are dropped. Exported so a
// caller with unusually long legal lines can raise it before calling
// StripInvalid.
var StripLineBufferSize = 34

// lineMachine is the state machine behind both stream operations. It
// accepts mask values in [1,32] (leading digit 1-9, total value <= 32),
// which is wider than ParseEntry's [8,32] — a divergence inherited from
// the system this was ported from and preserved rather than unified.
type lineMachine struct {
	state        streamState
	currentOctet int
	nOctets      int
	commaValid   bool
}

func newLineMachine() *lineMachine {
	m := &lineMachine{}
	m.enterStart()
	return m
}

// enterStart is the only line-start transition: it resets the per-line
// auxiliary fields and permits exactly one comma on the new line.
func (m *lineMachine) enterStart() {
	m.state = stStart
	m.currentOctet = 0
	m.nOctets = 0
	m.commaValid = true
}

// feed processes one byte and reports whether a line terminator was
// recognized on it, and if so whether the completed line was valid. A
// line terminates when LF arrives in a terminal-eligible state (START,
// SEEKING_NEWLINE, SEEKING_MASKLESS_TERMINAL, SEEKING_MASK_TERMINAL);
// LF in any other state still ends the line, just as an invalid one.
func (m *lineMachine) feed(c byte) (terminated, valid bool) {
	if c == '\n' {
		valid = m.state == stStart || m.state == stSeekingNewline ||
			m.state == stSeekingMasklessTerminal || m.state == stSeekingMaskTerminal
		m.enterStart()
		return true, valid
	}

	switch m.state {
	case stStart, stAfterComma, stSeekingDigit:
		if isDigit(c) {
			m.currentOctet = int(c - '0')
			m.nOctets++
			if m.nOctets == 4 {
				m.state = stSeekingMasklessTerminal
			} else {
				m.state = stSeekingOctetDot
			}
		} else {
			m.state = stInvalid
		}
	case stSeekingDot:
		// Named in the transition table for completeness; stSeekingOctetDot
		// folds this exact check inline on seeing '.', so feed never
		// actually leaves a byte waiting in this state.
		if c == '.' {
			if m.nOctets >= 4 {
				m.state = stInvalid
			} else {
				m.state = stSeekingDigit
			}
		} else {
			m.state = stInvalid
		}
	case stSeekingOctetDot:
		switch {
		case isDigit(c):
			m.currentOctet = m.currentOctet*10 + int(c-'0')
			if m.currentOctet > 255 {
				m.state = stInvalid
			}
		case c == '.':
			if m.nOctets >= 4 {
				m.state = stInvalid
			} else {
				m.state = stSeekingDigit
			}
		default:
			m.state = stInvalid
		}
	case stSeekingMasklessTerminal:
		switch {
		case isDigit(c):
			m.currentOctet = m.currentOctet*10 + int(c-'0')
			if m.currentOctet > 255 {
				m.state = stInvalid
			}
		case c == '/':
			m.state = stSeekingMaskDigit
		case c == ',' && m.commaValid:
			m.commaValid = false
			m.nOctets = 0
			m.state = stAfterComma
		case c == '\r':
			m.state = stSeekingNewline
		default:
			m.state = stInvalid
		}
	case stSeekingMaskDigit:
		if c >= '1' && c <= '9' {
			m.currentOctet = int(c - '0')
			m.state = stSeekingMaskTerminal
		} else {
			m.state = stInvalid
		}
	case stSeekingMaskTerminal:
		switch {
		case isDigit(c):
			m.currentOctet = m.currentOctet*10 + int(c-'0')
			if m.currentOctet > 32 {
				m.state = stInvalid
			}
		case c == ',' && m.commaValid:
			m.commaValid = false
			m.nOctets = 0
			m.state = stAfterComma
		case c == '\r':
			m.state = stSeekingNewline
		default:
			m.state = stInvalid
		}
	case stSeekingNewline:
		m.state = stInvalid
	case stInvalid:
		// Sink state: every byte but the line-terminating LF (handled
		// above) leaves it right where it is.
	}
	return false, false
}

// Validate reads source to completion, classifying each newline-terminated
// line per the entry grammar, and returns the 1-based line numbers of the
// first n invalid lines. The very end of input is treated as if a
// synthetic LF arrived after the last byte, so an unterminated valid
// final line is accepted. Validate never buffers more than a rolling
// streamReadBufSize-byte window regardless of input length.
//
// Validate returns ErrBadArgument if n <= 0.
func Validate(source io.Reader, n int) ([]int, error) {
	if n <= 0 {
		return nil, ErrBadArgument
	}

	m := newLineMachine()
	buf := make([]byte, streamReadBufSize)
	var invalid []int
	lineNumber := 1

	record := func(terminated, valid bool) bool {
		if !terminated {
			return false
		}
		if !valid {
			invalid = append(invalid, lineNumber)
		}
		lineNumber++
		return len(invalid) >= n
	}

	for {
		nRead, err := source.Read(buf)
		if nRead > 0 {
			for _, c := range buf[:nRead] {
				if record(m.feed(c)) {
					return invalid, nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return invalid, err
		}
		if nRead == 0 {
			break
		}
	}

	if m.state != stStart {
		record(m.feed('\n'))
	}
	return invalid, nil
}

// StripInvalid reads source to completion and writes to sink a copy
// containing only the syntactically valid lines, each with its original
// terminator(s); a valid unterminated final line is written with an LF
// appended. It accumulates each candidate line in a fixed
// StripLineBufferSize-byte staging buffer; a line longer than that is
// discarded even if its prefix could have been valid. I/O errors from
// source or sink propagate directly to the caller.
func StripInvalid(source io.Reader, sink io.Writer) error {
	m := newLineMachine()
	readBuf := make([]byte, streamReadBufSize)
	lineBuf := make([]byte, 0, StripLineBufferSize)
	outBuf := make([]byte, 0, streamReadBufSize)

	flush := func() error {
		if len(outBuf) == 0 {
			return nil
		}
		_, err := sink.Write(outBuf)
		outBuf = outBuf[:0]
		return err
	}

	finishLine := func(valid bool) error {
		if valid {
			outBuf = append(outBuf, lineBuf...)
			if cap(outBuf)-len(outBuf) < StripLineBufferSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		lineBuf = lineBuf[:0]
		return nil
	}

	process := func(c byte) error {
		if len(lineBuf) >= StripLineBufferSize {
			m.state = stInvalid
		} else {
			lineBuf = append(lineBuf, c)
		}
		terminated, valid := m.feed(c)
		if terminated {
			return finishLine(valid)
		}
		return nil
	}

	for {
		nRead, err := source.Read(readBuf)
		if nRead > 0 {
			for _, c := range readBuf[:nRead] {
				if perr := process(c); perr != nil {
					return perr
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if nRead == 0 {
			break
		}
	}

	if m.state != stStart {
		if perr := process('\n'); perr != nil {
			return perr
		}
	}
	return flush()
}
