package object

// hashName implements the case-insensitive field/action/method name hash
// used throughout the kernel dictionaries (spec: field and action names
// are resolved without regard to case, so "UID" and "uid" land in the
// same slot). Every byte is folded to lower-case before mixing, using
// the FNV-1a algorithm in place of the original's byte-at-a-time
// multiply-xor StrHash.
func hashName(name string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}
