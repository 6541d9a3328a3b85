package common

// WipeByteArray overwrites the contents of b with zeros. Used to drop
// plaintext passwords read from the terminal as soon as they are consumed.
//
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
