package evaluator

import (
	"encoding/base64"
	"net/url"
	"strings"
)

func encodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// decodeBase64 accepts only padded standard-alphabet input.
func decodeBase64(s string) (string, error) {
	if len(s)%4 != 0 {
		return "", newStructuredError("CONV-0003", map[string]any{"Reason": "la longitud no es múltiplo de 4"})
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", newStructuredError("CONV-0003", map[string]any{"Reason": "carácter inválido"})
	}
	return string(b), nil
}

const upperHex = "0123456789ABCDEF"

// encodeURI percent-encodes every byte outside the unreserved set
// (letters, digits and -_.~).
func encodeURI(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&0x0f])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// decodeURI maps %XX pairs to bytes and '+' to a space.
func decodeURI(s string) (string, error) {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return "", newStructuredError("CONV-0004", map[string]any{"Reason": "secuencia de escape inválida"})
	}
	return out, nil
}
