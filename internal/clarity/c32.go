package clarity

import (
	"crypto/sha256"
	"math/big"
)

// Crockford base32 alphabet used by Stacks c32check addresses.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// c32Address renders a principal's version byte and hash160 as a Stacks
// address ("SP..." on mainnet). Checksum is the first four bytes of a double
// SHA-256 over version || hash.
func c32Address(version byte, hash []byte) string {
	sum := sha256.Sum256(append([]byte{version}, hash...))
	sum = sha256.Sum256(sum[:])

	payload := make([]byte, 0, len(hash)+4)
	payload = append(payload, hash...)
	payload = append(payload, sum[:4]...)

	return "S" + string(c32Alphabet[version&0x1f]) + c32Encode(payload)
}

// c32Encode encodes bytes in Crockford base32, preserving leading zero bytes
// as leading '0' characters.
func c32Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(data)
	base := big.NewInt(32)
	mod := new(big.Int)

	var digits []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		digits = append(digits, '0')
	}

	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
