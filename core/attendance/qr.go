package attendance

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core/employee"
)

const (
	qrSeparator = "|"
	qrClockSkew = 30 * time.Second
)

var (
	qrSalt  = []byte("hrms.core.attendance.qr")
	NowFunc = time.Now // mockable

	// errors
	ErrInvalidToken     = errors.New("invalid QR code")
	ErrTokenExpired     = errors.New("QR code expired")
	ErrTokenReplayed    = errors.New("QR code already used")
	ErrEmployeeInactive = errors.New("employee is not active")
)

// NonceStore remembers the QR nonces already used.
type NonceStore interface {
	// Claim records nonce for ttl. It returns false when the nonce was already claimed.
	Claim(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

type qrClaims struct {
	EmployeeID string
	IssuedAt   time.Time
	Nonce      string
}

// MakeQRToken issues a single use attendance token for emp, signed with the employee's QR secret and globalKey.
func MakeQRToken(emp employee.Employee, globalKey string) (string, error) {
	return makeQRToken(emp, globalKey, NowFunc(), uuid.NewString())
}

func makeQRToken(emp employee.Employee, globalKey string, issuedAt time.Time, nonce string) (string, error) {
	if len(emp.QRSecret) == 0 {
		return "", errors.New("employee has no QR secret")
	}
	payload := strings.Join([]string{emp.ID, strconv.FormatInt(issuedAt.Unix(), 10), nonce}, qrSeparator)
	sig := signQR([]byte(payload), emp.QRSecret, globalKey)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

func signQR(payload, secret []byte, globalKey string) []byte {
	var key bytes.Buffer
	key.Write(qrSalt)
	key.Write(secret)
	key.WriteString(globalKey)
	sum := sha256.Sum256(key.Bytes())

	h := hmac.New(sha256.New, sum[:])
	h.Write(payload)
	return h.Sum(nil)
}

// parseQRToken splits a token into its claims, payload and signature. It does not verify anything.
func parseQRToken(token string) (qrClaims, []byte, []byte, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 {
		return qrClaims{}, nil, nil, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return qrClaims{}, nil, nil, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(sig) != sha256.Size {
		return qrClaims{}, nil, nil, ErrInvalidToken
	}

	fields := strings.Split(string(payload), qrSeparator)
	if len(fields) != 3 || fields[0] == "" || fields[2] == "" {
		return qrClaims{}, nil, nil, ErrInvalidToken
	}
	iat, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return qrClaims{}, nil, nil, ErrInvalidToken
	}
	return qrClaims{EmployeeID: fields[0], IssuedAt: time.Unix(iat, 0), Nonce: fields[2]}, payload, sig, nil
}

// VerifyQRToken checks a scanned token and burns its nonce. It returns the token's employee.
func (svc *Service) VerifyQRToken(ctx context.Context, token string) (employee.Employee, error) {
	claims, payload, sig, err := parseQRToken(token)
	if err != nil {
		return employee.Employee{}, err
	}

	emp, err := svc.employees.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return employee.Employee{}, ErrInvalidToken
		}
		return employee.Employee{}, errors.Wrap(err, "getting employee")
	}
	if !hmac.Equal(sig, signQR(payload, emp.QRSecret, svc.conf.QRSecretKey)) {
		return employee.Employee{}, ErrInvalidToken
	}

	now := NowFunc()
	ttl := svc.conf.Attendance.QRTokenTTL
	if claims.IssuedAt.Before(now.Add(-ttl)) || claims.IssuedAt.After(now.Add(qrClockSkew)) {
		return employee.Employee{}, ErrTokenExpired
	}
	if !emp.IsActive() {
		return employee.Employee{}, ErrEmployeeInactive
	}

	fresh, err := svc.nonces.Claim(ctx, claims.EmployeeID+":"+claims.Nonce, ttl+qrClockSkew)
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "claiming QR nonce")
	}
	if !fresh {
		return employee.Employee{}, ErrTokenReplayed
	}
	return emp, nil
}
