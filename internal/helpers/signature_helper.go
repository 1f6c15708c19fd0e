package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedTicketCode = errors.New("invalid ticket code format")
	ErrBadTicketSignature  = errors.New("invalid ticket code signature")
)

type TicketClaims struct {
	TicketID      uint
	ReservationID uint
	PerformanceID uint
	Row           int
	Seat          int
}

func NewTicketSigner(secretKey string) *TicketSigner {
	return &TicketSigner{SecretKey: secretKey}
}

// TicketSigner produces and checks the payload printed on ticket QR codes.
type TicketSigner struct {
	SecretKey string
}

func (s *TicketSigner) payload(t TicketClaims) string {
	return fmt.Sprintf("ticket:%d;reservation:%d;performance:%d;row:%d;seat:%d",
		t.TicketID, t.ReservationID, t.PerformanceID, t.Row, t.Seat)
}

func (s *TicketSigner) GenerateSignature(t TicketClaims) string {
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(s.payload(t)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *TicketSigner) Encode(t TicketClaims) string {
	return s.payload(t) + ";signature:" + s.GenerateSignature(t)
}

// Decode parses a code produced by Encode and verifies its signature.
func (s *TicketSigner) Decode(code string) (TicketClaims, error) {
	parts := strings.Split(code, ";")
	if len(parts) != 6 {
		return TicketClaims{}, ErrMalformedTicketCode
	}

	keys := []string{"ticket", "reservation", "performance", "row", "seat", "signature"}
	values := make([]string, len(keys))
	for i, key := range keys {
		prefix := key + ":"
		if !strings.HasPrefix(parts[i], prefix) {
			return TicketClaims{}, ErrMalformedTicketCode
		}
		values[i] = strings.TrimPrefix(parts[i], prefix)
	}

	nums := make([]uint64, 5)
	for i := range nums {
		n, err := strconv.ParseUint(values[i], 10, 64)
		if err != nil {
			return TicketClaims{}, ErrMalformedTicketCode
		}
		nums[i] = n
	}

	claims := TicketClaims{
		TicketID:      uint(nums[0]),
		ReservationID: uint(nums[1]),
		PerformanceID: uint(nums[2]),
		Row:           int(nums[3]),
		Seat:          int(nums[4]),
	}

	expected := s.GenerateSignature(claims)
	if !hmac.Equal([]byte(expected), []byte(values[5])) {
		return TicketClaims{}, ErrBadTicketSignature
	}
	return claims, nil
}
