package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrNoAdminSecret = errors.New("admin secret not configured")

// Paramètres OWASP (équilibre sécurité/perf)
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultParams = &Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashSecret génère un hash Argon2id au format PHC :
// $argon2id$v=19$m=65536,t=3,p=2$salt$hash
func HashSecret(secret string, params *Argon2Params) (string, error) {
	if params == nil {
		params = DefaultParams
	}
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(secret), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Iterations, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// Argon2Verifier compare le credential admin au hash configuré.
// Sans hash configuré, tout est refusé.
type Argon2Verifier struct {
	encodedHash string
}

func NewArgon2Verifier(encodedHash string) *Argon2Verifier {
	return &Argon2Verifier{encodedHash: strings.TrimSpace(encodedHash)}
}

func (a *Argon2Verifier) Verify(credential string) error {
	if a.encodedHash == "" {
		return ErrNoAdminSecret
	}
	if credential == "" {
		return errors.New("empty credential")
	}

	p, salt, hash, err := decodeHash(a.encodedHash)
	if err != nil {
		return err
	}

	other := argon2.IDKey([]byte(credential), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	// Comparaison à temps constant
	if subtle.ConstantTimeCompare(hash, other) == 1 {
		return nil
	}
	return errors.New("invalid credential")
}

func decodeHash(encodedHash string) (p *Argon2Params, salt, hash []byte, err error) {
	vals := strings.Split(encodedHash, "$")
	if len(vals) != 6 || vals[1] != "argon2id" {
		return nil, nil, nil, errors.New("invalid hash format")
	}

	var version int
	if _, err = fmt.Sscanf(vals[2], "v=%d", &version); err != nil {
		return nil, nil, nil, err
	}
	if version != argon2.Version {
		return nil, nil, nil, errors.New("incompatible argon2 version")
	}

	p = &Argon2Params{}
	if _, err = fmt.Sscanf(vals[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, nil, err
	}

	salt, err = base64.RawStdEncoding.DecodeString(vals[4])
	if err != nil {
		return nil, nil, nil, err
	}
	p.SaltLength = uint32(len(salt))

	hash, err = base64.RawStdEncoding.DecodeString(vals[5])
	if err != nil {
		return nil, nil, nil, err
	}
	p.KeyLength = uint32(len(hash))

	return p, salt, hash, nil
}
