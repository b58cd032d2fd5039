/* uhubctl - per-port USB hub power control
 *
 * Container ID normalization
 */

package main

import "bytes"

// containerIDNormalize parses a container ID string (such as a
// platform rule's container-id, in any of the usual UUID spellings)
// and reformats it into the canonical form used throughout this program:
// 32 lowercase hex digits, no dashes, no braces.
//
// If input does not decode to exactly 16 bytes worth of hex digits, it
// returns an empty string.
func containerIDNormalize(uuid string) string {
	var buf [32]byte
	var cnt int

	in := bytes.ToLower([]byte(uuid))

	if bytes.HasPrefix(in, []byte("urn:")) {
		in = in[4:]
	}
	if bytes.HasPrefix(in, []byte("uuid:")) {
		in = in[5:]
	}

	for len(in) != 0 {
		c := in[0]
		in = in[1:]

		if '0' <= c && c <= '9' || 'a' <= c && c <= 'f' {
			if cnt == 32 {
				return ""
			}
			buf[cnt] = c
			cnt++
		}
	}

	if cnt != 32 {
		return ""
	}

	return string(buf[:])
}

// containerIDFromBytes renders a raw 16-byte Container ID capability
// descriptor field as the canonical 32-hex-digit string.
func containerIDFromBytes(b []byte) string {
	if len(b) != 16 {
		return ""
	}

	const hexDigits = "0123456789abcdef"
	var buf [32]byte
	for i, c := range b {
		buf[i*2] = hexDigits[c>>4]
		buf[i*2+1] = hexDigits[c&0x0f]
	}
	return string(buf[:])
}
