package ui

// action is what the escape filter asks the terminal to do.
type action int

const (
	none action = iota
	halt
	help
	insert
)

const escapeChar = '~'

const helpText = "\r\nSupported escape sequences:\r\n" +
	" ~. - terminate emulator\r\n" +
	" ~? - this message\r\n" +
	" ~~ - send the escape character by typing it twice\r\n" +
	" ~< - insert the contents of a host file into the console stream\r\n" +
	"(Note that escapes are only recognized immediately after newline.)\r\n"

// escapeFilter recognises ssh-style tilde escapes at the start of a line.
type escapeFilter struct {
	phase int // 0: mid-line, 1: after newline, 2: after newline and tilde
}

// filter consumes one input byte. ok reports whether ch is passed on to the machine.
func (f *escapeFilter) filter(ch byte) (ok bool, a action) {
	switch f.phase {
	case 0:
		if ch == '\n' || ch == '\r' {
			f.phase = 1
		}
		return true, none
	case 1:
		if ch == escapeChar {
			f.phase = 2
			return false, none
		}
		f.phase = 0
		if ch == '\n' || ch == '\r' {
			f.phase = 1
		}
		return true, none
	}
	f.phase = 0
	switch ch {
	case escapeChar:
		return true, none
	case '.':
		return false, halt
	case '?':
		return false, help
	case '<':
		return false, insert
	}
	return false, none
}
