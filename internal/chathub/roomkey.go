package chathub

// RoomKey derives the room identifier for a pair of users. Both sides
// compute the same key regardless of argument order.
func RoomKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}
