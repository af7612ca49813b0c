package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidSeatToken = errors.New("invalid seat token")

// SeatClaims identifies one seat at one table.
type SeatClaims struct {
	TableID string
	Seat    int
}

// IssueSeatToken signs an HS256 token for a seat.
func IssueSeatToken(secret, tableID string, seat int, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"table_id": tableID,
		"seat":     seat,
		"exp":      jwt.NewNumericDate(exp).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign seat token: %w", err)
	}
	return signed, nil
}

// ParseSeatToken validates a seat token and returns its claims.
func ParseSeatToken(secret, token string) (*SeatClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSeatToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSeatToken
	}
	tableID, _ := claims["table_id"].(string)
	seatf, _ := claims["seat"].(float64)
	seat := int(seatf)
	if tableID == "" || (seat != 1 && seat != 2) {
		return nil, ErrInvalidSeatToken
	}
	if _, ok := claims["exp"]; !ok {
		return nil, ErrInvalidSeatToken
	}
	return &SeatClaims{TableID: tableID, Seat: seat}, nil
}

// VerifySeat checks a seat token against the table it is being used for.
func (m *Manager) VerifySeat(tableID, token string) (int, error) {
	claims, err := ParseSeatToken(m.config.JWTSecret, token)
	if err != nil {
		return 0, err
	}
	if claims.TableID != tableID {
		return 0, ErrInvalidSeatToken
	}
	if _, err := m.table(tableID); err != nil {
		return 0, err
	}
	return claims.Seat, nil
}
