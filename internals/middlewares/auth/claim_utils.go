// internals/middlewares/auth/claim_utils.go
package auth

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

/* ======== Extractors ======== */

func extractBearerToken(c *fiber.Ctx) (string, error) {
	// 1) Ambil dari Authorization header atau fallback cookie
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
			log.Println("[DEBUG] Authorization dari Cookie")
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - No token provided")
	}

	// 2) Robust split: toleransi spasi ganda & case-insensitive
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - Invalid token format")
	}
	tok := fields[1]

	// 3) Sanitasi: buang kutip di kiri/kanan & spasi
	tok = strings.TrimSpace(tok)
	tok = strings.Trim(tok, "\"'")

	if tok == "" {
		return "", fmt.Errorf("unauthorized - Empty token")
	}
	return tok, nil
}

func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expVal, ok := claims["exp"]
	if !ok {
		return fmt.Errorf("token has no exp")
	}

	var expUnix int64
	switch t := expVal.(type) {
	case float64:
		expUnix = int64(t)
	case int64:
		expUnix = t
	case string:
		if n, err := parseInt64(strings.TrimSpace(t)); err == nil {
			expUnix = n
		} else {
			return fmt.Errorf("invalid exp format")
		}
	default:
		// best-effort untuk tipe numeric lain (mis. json.Number via interface{})
		if s := fmt.Sprintf("%v", t); s != "" {
			if n, err := parseInt64(s); err == nil {
				expUnix = n
			} else {
				return fmt.Errorf("invalid exp type")
			}
		} else {
			return fmt.Errorf("invalid exp type")
		}
	}

	now := time.Now().UTC()
	expTime := time.Unix(expUnix, 0).UTC()
	if now.After(expTime.Add(skew)) {
		return fmt.Errorf("token expired at %v", expTime)
	}
	return nil
}

func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	idRaw, ok := claims["id"]
	if !ok {
		return uuid.Nil, fmt.Errorf("no user id")
	}
	switch v := idRaw.(type) {
	case string:
		return uuid.Parse(strings.TrimSpace(v))
	default:
		return uuid.Nil, fmt.Errorf("invalid user id type")
	}
}

/* ======== Store claims to Locals ======== */

func storeBasicClaimsToLocals(c *fiber.Ctx, claims jwt.MapClaims) {
	if role, ok := claims["role"].(string); ok {
		c.Locals("userRole", role)
	}
	if userName, ok := claims["user_name"].(string); ok {
		c.Locals("user_name", userName)
	}
}

/* ======== Helpers ======== */

func parseInt64(s string) (int64, error) {
	// kecilkan depedensi: simple parser untuk angka desimal
	var n int64
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("non-digit")
		}
		n = n*10 + int64(ch-'0')
	}
	return n, nil
}
