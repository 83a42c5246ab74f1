package service

import (
	"alcyxob/trainer-marketplace/internal/config"
	"alcyxob/trainer-marketplace/internal/domain"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(config.JWTConfig{Secret: "s3cret", Expiration: time.Hour})
	require.NoError(t, err)

	id := primitive.NewObjectID()
	token, err := svc.Issue(id, domain.RoleTrainer)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserObjectID())
	assert.Equal(t, domain.RoleTrainer, claims.Role)
	assert.Equal(t, id.Hex(), claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenService_Rejects(t *testing.T) {
	svc, err := NewTokenService(config.JWTConfig{Secret: "s3cret", Expiration: time.Hour})
	require.NoError(t, err)
	other, err := NewTokenService(config.JWTConfig{Secret: "different", Expiration: time.Hour})
	require.NoError(t, err)

	id := primitive.NewObjectID()
	foreign, err := other.Issue(id, domain.RoleAdmin)
	require.NoError(t, err)

	expired := &TokenService{secret: []byte("s3cret"), ttl: time.Hour, now: func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}}
	stale, err := expired.Issue(id, domain.RoleAdmin)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: id.Hex(), Role: domain.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "nope", Role: domain.RoleAdmin}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: id.Hex(), Role: "root"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret":   foreign,
		"expired":        stale,
		"alg none":       unsigned,
		"malformed":      "not.a.jwt",
		"empty":          "",
		"bad uid claim":  badUID,
		"bad role claim": badRole,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(config.JWTConfig{})
	assert.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role  domain.Role
		op    Operation
		allow bool
	}{
		{domain.RoleAdmin, OpTrainerCreate, true},
		{domain.RoleTrainer, OpTrainerCreate, false},
		{domain.RoleTrainer, OpTrainerUpdate, true},
		{domain.RoleStudent, OpTrainerUpdate, false},
		{domain.RoleTrainer, OpTrainerDelete, false},
		{domain.RoleAdmin, OpTrainerDelete, true},
		{domain.RoleTrainer, OpCourseCreate, true},
		{domain.RoleStudent, OpCourseSchedule, false},
		{domain.RoleTrainer, OpCourseDelete, false},
		{domain.RoleStudent, OpProfileUpdate, true},
		{domain.RoleAdmin, Operation("course.publish"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+string(tt.op), func(t *testing.T) {
			err := Authorize(tt.role, tt.op)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}
