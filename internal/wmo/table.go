package wmo

// letterTable maps the letters of one closed code alphabet to the values of
// an enumeration and back.
type letterTable[T comparable] struct {
	byLetter map[byte]T
	letters  map[T]byte
	names    map[T]string
}

type letterEntry[T comparable] struct {
	letter byte
	value  T
	name   string
}

func newLetterTable[T comparable](entries ...letterEntry[T]) letterTable[T] {
	t := letterTable[T]{
		byLetter: make(map[byte]T, len(entries)),
		letters:  make(map[T]byte, len(entries)),
		names:    make(map[T]string, len(entries)),
	}
	for _, e := range entries {
		t.byLetter[e.letter] = e.value
		// The first letter listed for a value is its canonical encoding.
		if _, ok := t.letters[e.value]; !ok {
			t.letters[e.value] = e.letter
			t.names[e.value] = e.name
		}
	}
	return t
}

func (t letterTable[T]) lookup(c byte) (T, bool) {
	v, ok := t.byLetter[c]
	return v, ok
}

func (t letterTable[T]) letter(v T) byte {
	return t.letters[v]
}

func (t letterTable[T]) name(v T) string {
	if n, ok := t.names[v]; ok {
		return n
	}
	return "unknown"
}

// entry is shorthand for building table entries.
func entry[T comparable](letter byte, value T, name string) letterEntry[T] {
	return letterEntry[T]{letter: letter, value: value, name: name}
}
