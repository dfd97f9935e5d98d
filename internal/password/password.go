// Package password はパスワードのハッシュ化と検証を提供します。
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLength = 32
	keyLength  = 64

	// scrypt のコストパラメータ
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Hash はパスワードを scrypt でハッシュ化し、"salt:key" 形式（各16進数）で返します。
// ソルトは呼び出しごとにランダム生成されるため、同じパスワードでも出力は毎回異なります。
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify はパスワードを保存済みハッシュと照合します。
// 比較は一定時間で行い、形式が不正なハッシュは常に false を返します。
func Verify(plaintext, encoded string) bool {
	salt, key, ok := decode(encoded)
	if !ok {
		return false
	}

	derived, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(derived, key) == 1
}

func decode(encoded string) (salt, key []byte, ok bool) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return nil, nil, false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) != saltLength {
		return nil, nil, false
	}

	key, err = hex.DecodeString(parts[1])
	if err != nil || len(key) != keyLength {
		return nil, nil, false
	}

	return salt, key, true
}
