package services

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "test-secret",
	}

	pair, err := svc.GenerateTokenPair("fid-1", "0x1111111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if pair.ExpiresIn != 3600 {
		t.Fatalf("expires_in = %d, want 3600", pair.ExpiresIn)
	}

	claims, err := svc.VerifyJWTToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyJWTToken: %v", err)
	}
	if claims.Fid != "fid-1" {
		t.Fatalf("fid = %q, want fid-1", claims.Fid)
	}
	if claims.PrimaryAddress != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("primary address = %q", claims.PrimaryAddress)
	}
}

func TestJWTExpiredTokenRejected(t *testing.T) {
	svc := &JWTService{
		AccessTokenDuration: -time.Hour,
		jwtSecretKey:        "test-secret",
	}

	token, err := svc.ToJWT("fid-1", "")
	if err != nil {
		t.Fatalf("ToJWT: %v", err)
	}

	if _, err := svc.VerifyJWTToken(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestJWTWrongSecretRejected(t *testing.T) {
	issuer := &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "issuer-secret"}
	verifier := &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "other-secret"}

	token, err := issuer.ToJWT("fid-1", "")
	if err != nil {
		t.Fatalf("ToJWT: %v", err)
	}

	if _, err := verifier.VerifyJWTToken(token); err == nil {
		t.Fatal("token with wrong signature verified")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := &JWTService{}

	if _, err := svc.ExtractTokenFromHeader(""); err == nil {
		t.Fatal("empty header accepted")
	}
	if _, err := svc.ExtractTokenFromHeader("Token abc"); err == nil {
		t.Fatal("non-bearer header accepted")
	}

	token, err := svc.ExtractTokenFromHeader("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractTokenFromHeader: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("token = %q", token)
	}
}
