package common

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to drop passwords from memory once they have been sent to the
// remote session service. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
