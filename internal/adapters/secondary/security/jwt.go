package security

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// UserClaims : claims émis par le fournisseur d'identité
type UserClaims struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier valide des access tokens RS256 avec la clé publique de l'IdP.
// Ce service ne signe jamais de tokens.
type JWTVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewJWTVerifier charge la clé publique PEM. issuer vide = pas de contrôle.
func NewJWTVerifier(publicKeyPEM []byte, issuer string) (*JWTVerifier, error) {
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return &JWTVerifier{publicKey: pubKey, issuer: issuer}, nil
}

// Validate vérifie signature + expiration et retourne le username
func (j *JWTVerifier) Validate(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Empêche les attaques "alg=none" / HS256 avec la clé publique
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.publicKey, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	username := strings.TrimSpace(claims.Username)
	if username == "" {
		username = strings.TrimSpace(claims.Name)
	}
	if username == "" {
		return "", fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}
	return username, nil
}
