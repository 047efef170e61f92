// Package vlq decodes base64 variable-length-quantity runs as used by the
// "mappings" field of a v3 source map.
package vlq

import "fmt"

const (
	signBitMask            = 0b1
	continuationBitMask    = 0b1 << 5
	continuationValueMask  = 0b011111
	continuationValueShift = 0
	firstValueMask         = 0b011110
	firstValueShift        = 1
)

var alphabet = buildAlphabet()

func buildAlphabet() map[byte]uint32 {
	m := make(map[byte]uint32, 64)
	add := func(lo, hi byte) {
		for c := lo; c <= hi; c++ {
			m[c] = uint32(len(m))
		}
	}
	add('A', 'Z')
	add('a', 'z')
	add('0', '9')
	m['+'] = uint32(len(m))
	m['/'] = uint32(len(m))
	return m
}

// Decode parses a run of base64 VLQ characters into a sequence of signed
// 32-bit integers. An unrecognized character is a decode error.
func Decode(s string) ([]int32, error) {
	var result []int32
	var current uint32
	var bitOffset uint32
	var sign int32 = 1
	continuation := false

	for i := 0; i < len(s); i++ {
		sextet, ok := alphabet[s[i]]
		if !ok {
			return nil, fmt.Errorf("vlq: invalid character %q at offset %d", s[i], i)
		}

		var masked uint32
		if !continuation {
			if sextet&signBitMask != 0 {
				sign = -1
			} else {
				sign = 1
			}
			masked = (sextet & firstValueMask) >> firstValueShift
		} else {
			masked = (sextet & continuationValueMask) >> continuationValueShift
		}

		current += masked << bitOffset
		if continuation {
			bitOffset += 5
		} else {
			bitOffset += 4
		}
		continuation = sextet&continuationBitMask != 0

		if !continuation {
			result = append(result, sign*int32(current))
			current = 0
			bitOffset = 0
			sign = 1
		}
	}

	return result, nil
}
