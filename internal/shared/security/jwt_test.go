package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAward_缺少JWT_SECRET应失败(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Award(1, "m1", 1, 0); !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("期望 JWT_SECRET 为空时 Award 返回错误，got=%v", err)
	}
}

func TestAwardParse_正常签发并解析(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")

	token, err := Award(42, "match-7", 2, time.Minute)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}

	_, claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken err=%v", err)
	}
	if claims.PlayerID != 42 || claims.MatchID != "match-7" || claims.Alliance != 2 {
		t.Fatalf("claims 异常：%+v", claims)
	}
}

func TestParse_默认有效期与换密钥(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-123")
	expired, err := Award(1, "m", 1, -time.Minute)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	// ttl<=0 回落到默认有效期
	if _, _, err := ParseToken(expired); err != nil {
		t.Fatalf("默认有效期内应能解析，got=%v", err)
	}

	token, _ := Award(1, "m", 1, time.Minute)
	t.Setenv("JWT_SECRET", "another-secret")
	if _, _, err := ParseToken(token); !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Fatalf("换密钥后应签名校验失败，got=%v", err)
	}
}
