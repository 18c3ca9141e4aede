package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/catalogql/internal/domain"
)

// Token versions. cursorVersion tags full query cursors, offsetVersion tags
// the simple next-page tokens of the offset path.
const (
	cursorVersion = "v1"
	offsetVersion = "o1"
)

// CursorCodec encodes cursors into opaque signed tokens and decodes them
// back. Tokens round-trip through untrusted clients, so every decode
// verifies an HMAC-SHA256 tag before unmarshalling; tampered or
// wrong-version tokens fail with domain.ErrInvalidCursor.
type CursorCodec struct {
	secret []byte
}

// NewCursorCodec creates a codec signing with the given secret. An empty
// secret derives a process-local random key, which invalidates outstanding
// cursors on restart.
func NewCursorCodec(secret string) *CursorCodec {
	if strings.TrimSpace(secret) == "" {
		secret = uuid.New().String()
	}
	return &CursorCodec{secret: []byte(secret)}
}

// Encode serializes and signs a cursor.
func (c *CursorCodec) Encode(cursor domain.Cursor) (string, error) {
	payload, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return c.sign(cursorVersion, payload), nil
}

// Decode verifies and deserializes a cursor token.
func (c *CursorCodec) Decode(token string) (domain.Cursor, error) {
	payload, err := c.verify(cursorVersion, token)
	if err != nil {
		return domain.Cursor{}, err
	}

	var cursor domain.Cursor
	if err := json.Unmarshal(payload, &cursor); err != nil {
		return domain.Cursor{}, fmt.Errorf("%w: malformed payload", domain.ErrInvalidCursor)
	}
	return cursor, nil
}

// EncodeOffset signs a continuation token for the offset-paginated path.
func (c *CursorCodec) EncodeOffset(offset int) string {
	return c.sign(offsetVersion, []byte(strconv.Itoa(offset)))
}

// DecodeOffset verifies an offset continuation token.
func (c *CursorCodec) DecodeOffset(token string) (int, error) {
	payload, err := c.verify(offsetVersion, token)
	if err != nil {
		return 0, err
	}
	offset, err := strconv.Atoi(string(payload))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: malformed offset payload", domain.ErrInvalidCursor)
	}
	return offset, nil
}

func (c *CursorCodec) sign(version string, payload []byte) string {
	encoded := version + "." + base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return encoded + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *CursorCodec) verify(version, token string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrInvalidCursor)
	}
	if parts[0] != version {
		return nil, fmt.Errorf("%w: unsupported token version %q", domain.ErrInvalidCursor, parts[0])
	}

	provided, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", domain.ErrInvalidCursor)
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(mac.Sum(nil), provided) {
		return nil, fmt.Errorf("%w: signature mismatch", domain.ErrInvalidCursor)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrInvalidCursor)
	}
	return payload, nil
}
