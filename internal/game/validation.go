package game

import (
	"encoding/base64"
	"strings"
)

const (
	codeLength    = 6
	codeAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxNameLength = 20
	maxWordLength = 40
)

func validateName(name string) (string, error) {
	trimmed := normalizeText(name)
	if trimmed == "" {
		return "", validationError("name is required")
	}
	if len(trimmed) > maxNameLength {
		return "", validationError("name must be %d characters or fewer", maxNameLength)
	}
	if !isSafeText(trimmed) {
		return "", validationError("name contains unsupported characters")
	}
	return trimmed, nil
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != codeLength {
		return "", validationError("room code must be %d characters", codeLength)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return "", validationError("room code contains unsupported characters")
		}
	}
	return code, nil
}

func normalizeWord(word string) (string, error) {
	trimmed := normalizeText(word)
	if trimmed == "" {
		return "", validationError("word is required")
	}
	if len(trimmed) > maxWordLength {
		return "", validationError("word must be %d characters or fewer", maxWordLength)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.', '!', '?':
			continue
		default:
			return false
		}
	}
	return true
}

// decodeImageData accepts a data URL or bare base64 and returns the MIME
// type and the decoded bytes.
func decodeImageData(data string, maxBytes int) (string, []byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", nil, validationError("no image data")
	}
	mime := "image/png"
	if header, payload, ok := strings.Cut(data, ","); ok {
		if !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
			return "", nil, validationError("image must be a base64 data URL")
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		data = payload
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, validationError("unsupported image type")
	}
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(data)) > maxBytes+2 {
		return "", nil, validationError("drawing is too large")
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, validationError("image data is not valid base64")
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return "", nil, validationError("drawing is too large")
	}
	return mime, decoded, nil
}

// ValidName reports whether name would be accepted as a player name.
func ValidName(name string) bool {
	_, err := validateName(name)
	return err == nil
}

// ValidCode reports whether code is shaped like a room code.
func ValidCode(code string) bool {
	_, err := normalizeCode(code)
	return err == nil
}
